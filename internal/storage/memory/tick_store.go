package memory

import (
	"context"
	"sort"
	"sync"

	"tokenscout/internal/domain"
	"tokenscout/internal/storage"
)

// TickStore is an in-memory implementation of storage.TickStore.
type TickStore struct {
	mu   sync.RWMutex
	data map[int64][]*domain.PriceTick // keyed by alert_id
}

// NewTickStore creates a new in-memory tick store.
func NewTickStore() *TickStore {
	return &TickStore{
		data: make(map[int64][]*domain.PriceTick),
	}
}

// Compile-time interface check.
var _ storage.TickStore = (*TickStore)(nil)

// InsertBulk appends a batch of ticks. Append-only, duplicates allowed.
func (s *TickStore) InsertBulk(_ context.Context, ticks []*domain.PriceTick) error {
	if len(ticks) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range ticks {
		if t == nil || t.AlertID == 0 {
			return storage.ErrInvalidInput
		}
		tickCopy := *t
		s.data[t.AlertID] = append(s.data[t.AlertID], &tickCopy)
	}
	return nil
}

// GetByAlert retrieves all ticks for an alert ordered by observed_at ASC.
func (s *TickStore) GetByAlert(_ context.Context, alertID int64) ([]*domain.PriceTick, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ticks := s.data[alertID]
	result := make([]*domain.PriceTick, 0, len(ticks))
	for _, t := range ticks {
		tickCopy := *t
		result = append(result, &tickCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ObservedAt < result[j].ObservedAt
	})
	return result, nil
}

// TrueHigh returns the maximum tick price for an alert.
func (s *TickStore) TrueHigh(_ context.Context, alertID int64) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ticks := s.data[alertID]
	if len(ticks) == 0 {
		return 0, storage.ErrNotFound
	}

	high := ticks[0].Price
	for _, t := range ticks[1:] {
		if t.Price > high {
			high = t.Price
		}
	}
	return high, nil
}
