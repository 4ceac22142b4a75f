package memory

import (
	"context"
	"sort"
	"sync"

	"tokenscout/internal/domain"
	"tokenscout/internal/storage"
)

// AlertStore is an in-memory implementation of storage.AlertStore.
type AlertStore struct {
	mu     sync.RWMutex
	nextID int64
	data   map[int64]*domain.Alert
	// dedupe mirrors the (token_address, created_at) unique constraint.
	dedupe map[alertKey]int64
}

type alertKey struct {
	tokenAddress string
	createdAt    int64
}

// NewAlertStore creates a new in-memory alert store.
func NewAlertStore() *AlertStore {
	return &AlertStore{
		nextID: 1,
		data:   make(map[int64]*domain.Alert),
		dedupe: make(map[alertKey]int64),
	}
}

// Compile-time interface check.
var _ storage.AlertStore = (*AlertStore)(nil)

// Save inserts a new alert and returns its assigned id. Returns
// ErrDuplicateKey if (token_address, created_at) exists.
func (s *AlertStore) Save(_ context.Context, a *domain.Alert) (int64, error) {
	if a == nil || a.TokenAddress == "" || a.CreatedAt == 0 {
		return 0, storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	k := alertKey{a.TokenAddress, a.CreatedAt}
	if _, exists := s.dedupe[k]; exists {
		return 0, storage.ErrDuplicateKey
	}

	id := s.nextID
	s.nextID++

	// Store a copy to prevent external mutation
	alertCopy := *a
	alertCopy.ID = id
	s.data[id] = &alertCopy
	s.dedupe[k] = id
	return id, nil
}

// GetByID retrieves an alert by id. Returns ErrNotFound if not exists.
func (s *AlertStore) GetByID(_ context.Context, id int64) (*domain.Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, exists := s.data[id]
	if !exists {
		return nil, storage.ErrNotFound
	}

	alertCopy := *a
	return &alertCopy, nil
}

// GetLatestByToken retrieves the newest alert for a token on a network.
func (s *AlertStore) GetLatestByToken(_ context.Context, network domain.Network, tokenAddress string) (*domain.Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest *domain.Alert
	for _, a := range s.data {
		if a.Network != network || a.TokenAddress != tokenAddress {
			continue
		}
		if latest == nil || a.CreatedAt > latest.CreatedAt ||
			(a.CreatedAt == latest.CreatedAt && a.ID > latest.ID) {
			latest = a
		}
	}
	if latest == nil {
		return nil, storage.ErrNotFound
	}

	alertCopy := *latest
	return &alertCopy, nil
}

// GetByToken retrieves all alerts for a token ordered by created_at ASC.
func (s *AlertStore) GetByToken(_ context.Context, network domain.Network, tokenAddress string) ([]*domain.Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Alert
	for _, a := range s.data {
		if a.Network == network && a.TokenAddress == tokenAddress {
			alertCopy := *a
			result = append(result, &alertCopy)
		}
	}
	sortAlerts(result)
	return result, nil
}

// GetOpen retrieves all alerts not yet closed, ordered by created_at ASC.
func (s *AlertStore) GetOpen(_ context.Context) ([]*domain.Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Alert
	for _, a := range s.data {
		if !a.IsClosed {
			alertCopy := *a
			result = append(result, &alertCopy)
		}
	}
	sortAlerts(result)
	return result, nil
}

// GetByTimeRange retrieves alerts created within [start, end] (inclusive).
func (s *AlertStore) GetByTimeRange(_ context.Context, start, end int64) ([]*domain.Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Alert
	for _, a := range s.data {
		if a.CreatedAt >= start && a.CreatedAt <= end {
			alertCopy := *a
			result = append(result, &alertCopy)
		}
	}
	sortAlerts(result)
	return result, nil
}

// UpdateExtremes raises highest_price / lowers lowest_price monotonically.
func (s *AlertStore) UpdateExtremes(_ context.Context, id int64, price float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, exists := s.data[id]
	if !exists {
		return storage.ErrNotFound
	}

	if price > a.HighestPrice {
		a.HighestPrice = price
	}
	if price < a.LowestPrice {
		a.LowestPrice = price
	}
	return nil
}

// Close marks an alert closed. Closing a closed alert is a no-op.
func (s *AlertStore) Close(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, exists := s.data[id]
	if !exists {
		return storage.ErrNotFound
	}
	a.IsClosed = true
	return nil
}

func sortAlerts(alerts []*domain.Alert) {
	sort.Slice(alerts, func(i, j int) bool {
		if alerts[i].CreatedAt != alerts[j].CreatedAt {
			return alerts[i].CreatedAt < alerts[j].CreatedAt
		}
		return alerts[i].ID < alerts[j].ID
	})
}
