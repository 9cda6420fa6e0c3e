// Package draft persists in-progress closing counts so a counter can
// resume after a crash or page reload. Drafts are keyed by venue and
// shift and are deleted when the shift closes.
package draft

import (
	"context"
	"sync"

	"barcaja/backend/internal/domain"
)

type Store interface {
	Save(ctx context.Context, venueID string, shiftID string, d domain.CountDraft) error
	Load(ctx context.Context, venueID string, shiftID string) (*domain.CountDraft, bool, error)
	Delete(ctx context.Context, venueID string, shiftID string) error
}

type MemoryStore struct {
	mu     sync.RWMutex
	drafts map[string]domain.CountDraft
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{drafts: make(map[string]domain.CountDraft)}
}

func (m *MemoryStore) Save(_ context.Context, venueID string, shiftID string, d domain.CountDraft) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drafts[draftKey(venueID, shiftID)] = d
	return nil
}

func (m *MemoryStore) Load(_ context.Context, venueID string, shiftID string) (*domain.CountDraft, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.drafts[draftKey(venueID, shiftID)]
	if !ok {
		return nil, false, nil
	}
	copied := d
	return &copied, true, nil
}

func (m *MemoryStore) Delete(_ context.Context, venueID string, shiftID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.drafts, draftKey(venueID, shiftID))
	return nil
}

func draftKey(venueID, shiftID string) string {
	return "shift_progress:" + venueID + ":" + shiftID
}
