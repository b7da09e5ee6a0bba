package repository

import (
	"context"
	"time"

	"github.com/taskforge/backend/domain"
)

// TaskFilter narrows an owner's task listing. OwnerID is mandatory; the rest
// are optional refinements.
type TaskFilter struct {
	OwnerID   string
	Search    string
	Priority  domain.Priority
	Completed *bool
	Limit     int
	Offset    int
}

// TaskUpdate carries the partial-update fields; nil means "leave unchanged".
type TaskUpdate struct {
	Title       *string
	Description *string
	Priority    *domain.Priority
	DueDate     *time.Time
}

// TaskRepository persists tasks. Every id-addressed operation is owner-scoped:
// a task belonging to another user behaves exactly like a missing one.
type TaskRepository interface {
	GetOwned(ctx context.Context, id, ownerID string) (*domain.Task, error)
	List(ctx context.Context, filter TaskFilter) ([]domain.Task, error)
	Create(ctx context.Context, task *domain.Task) (*domain.Task, error)
	UpdateOwned(ctx context.Context, id, ownerID string, update TaskUpdate) (*domain.Task, error)
	DeleteOwned(ctx context.Context, id, ownerID string) error
	ToggleOwned(ctx context.Context, id, ownerID string) (*domain.Task, error)
	Stats(ctx context.Context, ownerID string) (*domain.TaskStats, error)
}
