package storage

import (
	"context"

	"tokenscout/internal/domain"
)

// AlertStore provides access to alerts storage. Alerts are append-only
// except for the running max/min fields and the closed flag.
type AlertStore interface {
	// Save inserts a new alert and returns its assigned id. Returns
	// ErrDuplicateKey if (token_address, created_at) already exists.
	Save(ctx context.Context, a *domain.Alert) (int64, error)

	// GetByID retrieves an alert by id. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, id int64) (*domain.Alert, error)

	// GetLatestByToken retrieves the newest alert for a token on a network.
	// Returns ErrNotFound when the token has no history.
	GetLatestByToken(ctx context.Context, network domain.Network, tokenAddress string) (*domain.Alert, error)

	// GetByToken retrieves all alerts for a token ordered by created_at ASC.
	GetByToken(ctx context.Context, network domain.Network, tokenAddress string) ([]*domain.Alert, error)

	// GetOpen retrieves all alerts not yet closed, ordered by created_at ASC.
	GetOpen(ctx context.Context) ([]*domain.Alert, error)

	// GetByTimeRange retrieves alerts created within [start, end] ms, inclusive.
	GetByTimeRange(ctx context.Context, start, end int64) ([]*domain.Alert, error)

	// UpdateExtremes raises highest_price / lowers lowest_price monotonically.
	// A price inside the current extremes is a no-op, never a regression.
	UpdateExtremes(ctx context.Context, id int64, price float64) error

	// Close marks an alert closed. Closing a closed alert is a no-op.
	Close(ctx context.Context, id int64) error
}

// TrackingStore provides access to tracking_points storage.
type TrackingStore interface {
	// Upsert inserts or replaces the point for (alert_id, horizon_minutes).
	// Highest/lowest fields are merged monotonically on conflict, so
	// concurrent or out-of-order writers can never lower a max.
	Upsert(ctx context.Context, p *domain.TrackingPoint) error

	// GetByAlert retrieves all points for an alert ordered by horizon ASC.
	GetByAlert(ctx context.Context, alertID int64) ([]*domain.TrackingPoint, error)

	// GetByAlertHorizon retrieves one point. Returns ErrNotFound if absent.
	GetByAlertHorizon(ctx context.Context, alertID int64, horizonMinutes int) (*domain.TrackingPoint, error)
}

// AnalysisStore provides access to alert_analyses storage.
type AnalysisStore interface {
	// Upsert writes the analysis for an alert, replacing any prior row.
	Upsert(ctx context.Context, a *domain.AlertAnalysis) error

	// GetByAlert retrieves the analysis. Returns ErrNotFound if absent.
	GetByAlert(ctx context.Context, alertID int64) (*domain.AlertAnalysis, error)

	// GetByTimeRange retrieves analyses written within [start, end] ms.
	GetByTimeRange(ctx context.Context, start, end int64) ([]*domain.AlertAnalysis, error)
}

// TickStore appends raw continuous price observations. Append-only
// timeseries, no uniqueness; backed by ClickHouse in production.
type TickStore interface {
	// InsertBulk appends a batch of ticks.
	InsertBulk(ctx context.Context, ticks []*domain.PriceTick) error

	// GetByAlert retrieves all ticks for an alert ordered by observed_at ASC.
	GetByAlert(ctx context.Context, alertID int64) ([]*domain.PriceTick, error)

	// TrueHigh returns the maximum tick price for an alert, or ErrNotFound
	// when no ticks exist.
	TrueHigh(ctx context.Context, alertID int64) (float64, error)
}
