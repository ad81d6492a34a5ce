package storage

import (
	"context"
	"sync"
	"time"

	"github.com/sevigo/pr-warden/internal/core"
)

// MemoryStore is an in-memory Store used in tests and in setups that opt out
// of persistence. Records are lost on restart.
type MemoryStore struct {
	mu      sync.Mutex
	nextID  int64
	records []core.ReviewRecord
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nextID: 1}
}

func (m *MemoryStore) SaveReview(_ context.Context, record *core.ReviewRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	saved := *record
	saved.ID = m.nextID
	saved.CreatedAt = time.Now().UTC()
	m.nextID++
	m.records = append(m.records, saved)
	return nil
}

func (m *MemoryStore) GetLatestReviewForPR(_ context.Context, repoFullName string, prNumber int) (*core.ReviewRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := len(m.records) - 1; i >= 0; i-- {
		r := m.records[i]
		if r.RepoFullName == repoFullName && r.PRNumber == prNumber {
			return &r, nil
		}
	}
	return nil, ErrNoReview
}
