package memory

import (
	"context"
	"sort"
	"sync"

	"tokenscout/internal/domain"
	"tokenscout/internal/storage"
)

// TrackingStore is an in-memory implementation of storage.TrackingStore.
type TrackingStore struct {
	mu   sync.RWMutex
	data map[trackingKey]*domain.TrackingPoint
}

type trackingKey struct {
	alertID        int64
	horizonMinutes int
}

// NewTrackingStore creates a new in-memory tracking store.
func NewTrackingStore() *TrackingStore {
	return &TrackingStore{
		data: make(map[trackingKey]*domain.TrackingPoint),
	}
}

// Compile-time interface check.
var _ storage.TrackingStore = (*TrackingStore)(nil)

// Upsert inserts or replaces the point for (alert_id, horizon_minutes).
// Extremes and hit flags merge monotonically with any existing row.
func (s *TrackingStore) Upsert(_ context.Context, p *domain.TrackingPoint) error {
	if p == nil || p.AlertID == 0 {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	pointCopy := *p
	k := trackingKey{p.AlertID, p.HorizonMinutes}
	if prev, exists := s.data[k]; exists {
		if prev.HighestPrice > pointCopy.HighestPrice {
			pointCopy.HighestPrice = prev.HighestPrice
		}
		if prev.LowestPrice < pointCopy.LowestPrice {
			pointCopy.LowestPrice = prev.LowestPrice
		}
		pointCopy.SLHit = pointCopy.SLHit || prev.SLHit
		pointCopy.TP1Hit = pointCopy.TP1Hit || prev.TP1Hit
		pointCopy.TP2Hit = pointCopy.TP2Hit || prev.TP2Hit
		pointCopy.TP3Hit = pointCopy.TP3Hit || prev.TP3Hit
	}
	s.data[k] = &pointCopy
	return nil
}

// GetByAlert retrieves all points for an alert ordered by horizon ASC.
func (s *TrackingStore) GetByAlert(_ context.Context, alertID int64) ([]*domain.TrackingPoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.TrackingPoint
	for k, p := range s.data {
		if k.alertID == alertID {
			pointCopy := *p
			result = append(result, &pointCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].HorizonMinutes < result[j].HorizonMinutes
	})
	return result, nil
}

// GetByAlertHorizon retrieves one point. Returns ErrNotFound if absent.
func (s *TrackingStore) GetByAlertHorizon(_ context.Context, alertID int64, horizonMinutes int) (*domain.TrackingPoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, exists := s.data[trackingKey{alertID, horizonMinutes}]
	if !exists {
		return nil, storage.ErrNotFound
	}

	pointCopy := *p
	return &pointCopy, nil
}
