package repository

import (
	"context"
	"time"

	"github.com/taskforge/backend/domain"
)

// ActivityRepository journals task mutations per owner. Record failures must
// never fail the mutation they describe; callers log and move on.
type ActivityRepository interface {
	Record(ctx context.Context, entry domain.ActivityEntry) error
	Recent(ctx context.Context, ownerID string, limit int) ([]domain.ActivityEntry, error)
	PruneOlderThan(ctx context.Context, cutoff time.Time) (int, error)
}
