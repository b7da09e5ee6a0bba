package activity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"

	"github.com/taskforge/backend/domain"
	"github.com/taskforge/backend/repository"
)

// Store journals task mutations in BoltDB. Keys are
// "<owner>/<reverse-nanos>/<id>" so a forward cursor over an owner prefix
// yields newest entries first.
type Store struct {
	db     *bolt.DB
	bucket []byte
}

// Open initializes the BoltDB file and ensures the bucket exists.
func Open(path string, bucket string) (*Store, error) {
	if bucket == "" {
		bucket = "activity"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucket))
		return err
	}); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{
		db:     db,
		bucket: []byte(bucket),
	}, nil
}

func (s *Store) Record(ctx context.Context, entry domain.ActivityEntry) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	if entry.OwnerID == "" {
		return domain.ErrInvalidPayload
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.OccurredAt.IsZero() {
		entry.OccurredAt = time.Now()
	}

	payload, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	key := buildKey(entry)
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).Put(key, payload)
	})
}

func (s *Store) Recent(ctx context.Context, ownerID string, limit int) ([]domain.ActivityEntry, error) {
	if s == nil || s.db == nil {
		return nil, bolt.ErrDatabaseNotOpen
	}
	if limit <= 0 {
		limit = 20
	}

	prefix := []byte(ownerID + "/")
	var entries []domain.ActivityEntry
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(s.bucket).Cursor()
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix) && len(entries) < limit; k, v = c.Next() {
			var entry domain.ActivityEntry
			if err := json.Unmarshal(v, &entry); err != nil {
				continue
			}
			entries = append(entries, entry)
		}
		return nil
	})
	return entries, err
}

func (s *Store) PruneOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	if s == nil || s.db == nil {
		return 0, bolt.ErrDatabaseNotOpen
	}

	pruned := 0
	err := s.db.Update(func(tx *bolt.Tx) error {
		c := tx.Bucket(s.bucket).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var entry domain.ActivityEntry
			if err := json.Unmarshal(v, &entry); err != nil || entry.OccurredAt.Before(cutoff) {
				if err := c.Delete(); err != nil {
					return err
				}
				pruned++
			}
		}
		return nil
	})
	return pruned, err
}

// Size returns the number of journal entries, used by the health monitor.
func (s *Store) Size() (int, error) {
	if s == nil || s.db == nil {
		return 0, bolt.ErrDatabaseNotOpen
	}
	size := 0
	err := s.db.View(func(tx *bolt.Tx) error {
		size = tx.Bucket(s.bucket).Stats().KeyN
		return nil
	})
	return size, err
}

// Close releases the underlying BoltDB file.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func buildKey(entry domain.ActivityEntry) []byte {
	reverse := uint64(math.MaxInt64 - entry.OccurredAt.UnixNano())
	return []byte(fmt.Sprintf("%s/%020d/%s", entry.OwnerID, reverse, entry.ID))
}

var _ repository.ActivityRepository = (*Store)(nil)
