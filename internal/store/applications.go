// internal/store/applications.go
package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"student-intake/internal/common/database"
	"student-intake/internal/models"
)

// ApplicationStore is the durable collection of application records. Every
// read-modify-write of the collection holds mu, so writers in one process
// never lose each other's appends. Nothing is coordinated across processes.
type ApplicationStore struct {
	ns    database.Namespace
	mu    sync.Mutex
	now   func() time.Time
	newID func(time.Time) string
}

func NewApplicationStore(ns database.Namespace, opts ...Option) *ApplicationStore {
	o := buildOptions(opts)
	return &ApplicationStore{ns: ns, now: o.now, newID: o.newID}
}

// Create stores rec under a fresh id and returns the id. Any id or
// timestamps on rec are replaced; nil slices become empty.
func (s *ApplicationStore) Create(ctx context.Context, rec models.ApplicationRecord) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := loadCollection[models.ApplicationRecord](ctx, s.ns, ApplicationsKey)
	if err != nil {
		return "", err
	}

	now := s.now()
	rec = rec.Clone()
	rec.ID = s.newID(now)
	rec.CreatedAt = now
	rec.UpdatedAt = now
	if rec.Status == "" {
		rec.Status = models.StatusPending
	}
	if rec.Stage == "" {
		rec.Stage = models.StageSubmitted
	}
	if rec.Priority == "" {
		rec.Priority = models.PriorityNormal
	}

	records = append(records, rec)
	if err := saveCollection(ctx, s.ns, ApplicationsKey, records); err != nil {
		return "", err
	}
	return rec.ID, nil
}

// FindByID returns the record with id; found is false when there is none.
func (s *ApplicationStore) FindByID(ctx context.Context, id string) (models.ApplicationRecord, bool, error) {
	records, err := loadCollection[models.ApplicationRecord](ctx, s.ns, ApplicationsKey)
	if err != nil {
		return models.ApplicationRecord{}, false, err
	}
	for _, rec := range records {
		if rec.ID == id {
			return rec, true, nil
		}
	}
	return models.ApplicationRecord{}, false, nil
}

// ListAll returns every record in insertion order.
func (s *ApplicationStore) ListAll(ctx context.Context) ([]models.ApplicationRecord, error) {
	return loadCollection[models.ApplicationRecord](ctx, s.ns, ApplicationsKey)
}

// Update applies mutate to the record with id and persists the result with a
// fresh updatedAt. The mutation may not change the id or createdAt, and may
// only append notes.
func (s *ApplicationStore) Update(ctx context.Context, id string, mutate func(*models.ApplicationRecord) error) (models.ApplicationRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := loadCollection[models.ApplicationRecord](ctx, s.ns, ApplicationsKey)
	if err != nil {
		return models.ApplicationRecord{}, err
	}

	idx := -1
	for i := range records {
		if records[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return models.ApplicationRecord{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	before := records[idx]
	after := before.Clone()
	if err := mutate(&after); err != nil {
		return models.ApplicationRecord{}, err
	}
	if err := checkInvariants(before, after); err != nil {
		return models.ApplicationRecord{}, err
	}

	after.UpdatedAt = s.now()
	if after.UpdatedAt.Before(after.CreatedAt) {
		after.UpdatedAt = after.CreatedAt
	}
	records[idx] = after

	if err := saveCollection(ctx, s.ns, ApplicationsKey, records); err != nil {
		return models.ApplicationRecord{}, err
	}
	return after, nil
}

func checkInvariants(before, after models.ApplicationRecord) error {
	if after.ID != before.ID {
		return fmt.Errorf("%w: id is immutable", ErrInvariantViolated)
	}
	if !after.CreatedAt.Equal(before.CreatedAt) {
		return fmt.Errorf("%w: createdAt is immutable", ErrInvariantViolated)
	}
	if len(after.Notes) < len(before.Notes) {
		return fmt.Errorf("%w: notes are append-only", ErrInvariantViolated)
	}
	for i, n := range before.Notes {
		m := after.Notes[i]
		if m.Text != n.Text || m.Author != n.Author || !m.Timestamp.Equal(n.Timestamp) {
			return fmt.Errorf("%w: note %d was modified", ErrInvariantViolated, i)
		}
	}
	if !after.Status.IsValid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvariantViolated, after.Status)
	}
	return nil
}
