// Package storage contains an in-memory submission store with the same
// surface as the SQL repository. The API handler tests run against it.
package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dharsanguruparan/IntakeDesk/internal/model"
)

// MemoryStore keeps submissions in a map guarded by an RWMutex.
type MemoryStore struct {
	mu   sync.RWMutex
	subs map[string]*model.Submission
}

// NewMemoryStore constructs a MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		subs: make(map[string]*model.Submission),
	}
}

// Create inserts a submission. Pre-set ids and timestamps are respected so
// tests can seed records with distinct submission times.
func (m *MemoryStore) Create(_ context.Context, sub *model.Submission) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	if sub.SubmittedAt.IsZero() {
		sub.SubmittedAt = time.Now().UTC()
	}
	m.subs[sub.ID] = sub.Clone()
	return nil
}

// Get returns a copy of the record.
func (m *MemoryStore) Get(_ context.Context, id string) (*model.Submission, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sub, ok := m.subs[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	return sub.Clone(), nil
}

// List returns copies of every record, newest first.
func (m *MemoryStore) List(_ context.Context) ([]*model.Submission, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*model.Submission, 0, len(m.subs))
	for _, sub := range m.subs {
		out = append(out, sub.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].SubmittedAt.After(out[j].SubmittedAt)
	})
	return out, nil
}

// Update applies a partial edit and stamps LastAdminEditAt.
func (m *MemoryStore) Update(_ context.Context, id string, upd *model.SubmissionUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	sub, ok := m.subs[id]
	if !ok {
		return model.ErrNotFound
	}
	upd.Apply(sub)
	now := time.Now().UTC()
	sub.LastAdminEditAt = &now
	return nil
}

// Delete removes a record.
func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.subs[id]; !ok {
		return model.ErrNotFound
	}
	delete(m.subs, id)
	return nil
}
