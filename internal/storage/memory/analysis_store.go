package memory

import (
	"context"
	"sort"
	"sync"

	"tokenscout/internal/domain"
	"tokenscout/internal/storage"
)

// AnalysisStore is an in-memory implementation of storage.AnalysisStore.
type AnalysisStore struct {
	mu   sync.RWMutex
	data map[int64]*domain.AlertAnalysis // keyed by alert_id
}

// NewAnalysisStore creates a new in-memory analysis store.
func NewAnalysisStore() *AnalysisStore {
	return &AnalysisStore{
		data: make(map[int64]*domain.AlertAnalysis),
	}
}

// Compile-time interface check.
var _ storage.AnalysisStore = (*AnalysisStore)(nil)

// Upsert writes the analysis for an alert, replacing any prior row.
func (s *AnalysisStore) Upsert(_ context.Context, a *domain.AlertAnalysis) error {
	if a == nil || a.AlertID == 0 {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	analysisCopy := *a
	if a.TimeToSLMin != nil {
		v := *a.TimeToSLMin
		analysisCopy.TimeToSLMin = &v
	}
	if a.TimeToTP1Min != nil {
		v := *a.TimeToTP1Min
		analysisCopy.TimeToTP1Min = &v
	}
	if a.TimeToTP2Min != nil {
		v := *a.TimeToTP2Min
		analysisCopy.TimeToTP2Min = &v
	}
	if a.TimeToTP3Min != nil {
		v := *a.TimeToTP3Min
		analysisCopy.TimeToTP3Min = &v
	}
	s.data[a.AlertID] = &analysisCopy
	return nil
}

// GetByAlert retrieves the analysis. Returns ErrNotFound if absent.
func (s *AnalysisStore) GetByAlert(_ context.Context, alertID int64) (*domain.AlertAnalysis, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, exists := s.data[alertID]
	if !exists {
		return nil, storage.ErrNotFound
	}

	analysisCopy := *a
	return &analysisCopy, nil
}

// GetByTimeRange retrieves analyses written within [start, end] (inclusive).
func (s *AnalysisStore) GetByTimeRange(_ context.Context, start, end int64) ([]*domain.AlertAnalysis, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.AlertAnalysis
	for _, a := range s.data {
		if a.AnalyzedAt >= start && a.AnalyzedAt <= end {
			analysisCopy := *a
			result = append(result, &analysisCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].AnalyzedAt < result[j].AnalyzedAt
	})
	return result, nil
}
