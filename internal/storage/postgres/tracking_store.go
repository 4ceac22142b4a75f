package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"tokenscout/internal/domain"
	"tokenscout/internal/storage"
)

// TrackingStore implements storage.TrackingStore using PostgreSQL.
type TrackingStore struct {
	pool *Pool
}

// NewTrackingStore creates a new TrackingStore.
func NewTrackingStore(pool *Pool) *TrackingStore {
	return &TrackingStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TrackingStore = (*TrackingStore)(nil)

// Upsert inserts or replaces the point for (alert_id, horizon_minutes).
// Hit flags and extremes merge monotonically: a hit stays hit, the max never
// drops and the min never rises, whatever order concurrent writers land in.
func (s *TrackingStore) Upsert(ctx context.Context, p *domain.TrackingPoint) error {
	if p == nil || p.AlertID == 0 {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO tracking_points (
			alert_id, horizon_minutes, price, roi_pct,
			sl_hit, tp1_hit, tp2_hit, tp3_hit,
			highest_price, lowest_price, recorded_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (alert_id, horizon_minutes) DO UPDATE SET
			price = EXCLUDED.price,
			roi_pct = EXCLUDED.roi_pct,
			sl_hit = tracking_points.sl_hit OR EXCLUDED.sl_hit,
			tp1_hit = tracking_points.tp1_hit OR EXCLUDED.tp1_hit,
			tp2_hit = tracking_points.tp2_hit OR EXCLUDED.tp2_hit,
			tp3_hit = tracking_points.tp3_hit OR EXCLUDED.tp3_hit,
			highest_price = GREATEST(tracking_points.highest_price, EXCLUDED.highest_price),
			lowest_price = LEAST(tracking_points.lowest_price, EXCLUDED.lowest_price),
			recorded_at = EXCLUDED.recorded_at
	`

	_, err := s.pool.Exec(ctx, query,
		p.AlertID, p.HorizonMinutes, p.Price, p.ROIPct,
		p.SLHit, p.TP1Hit, p.TP2Hit, p.TP3Hit,
		p.HighestPrice, p.LowestPrice, p.RecordedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert tracking point: %w", err)
	}
	return nil
}

// GetByAlert retrieves all points for an alert ordered by horizon ASC.
func (s *TrackingStore) GetByAlert(ctx context.Context, alertID int64) ([]*domain.TrackingPoint, error) {
	query := `
		SELECT alert_id, horizon_minutes, price, roi_pct,
		       sl_hit, tp1_hit, tp2_hit, tp3_hit,
		       highest_price, lowest_price, recorded_at
		FROM tracking_points
		WHERE alert_id = $1
		ORDER BY horizon_minutes ASC
	`

	rows, err := s.pool.Query(ctx, query, alertID)
	if err != nil {
		return nil, fmt.Errorf("get tracking points by alert: %w", err)
	}
	defer rows.Close()

	return scanTrackingPoints(rows)
}

// GetByAlertHorizon retrieves one point. Returns ErrNotFound if absent.
func (s *TrackingStore) GetByAlertHorizon(ctx context.Context, alertID int64, horizonMinutes int) (*domain.TrackingPoint, error) {
	query := `
		SELECT alert_id, horizon_minutes, price, roi_pct,
		       sl_hit, tp1_hit, tp2_hit, tp3_hit,
		       highest_price, lowest_price, recorded_at
		FROM tracking_points
		WHERE alert_id = $1 AND horizon_minutes = $2
	`

	row := s.pool.QueryRow(ctx, query, alertID, horizonMinutes)
	p, err := scanTrackingPoint(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get tracking point: %w", err)
	}
	return p, nil
}

func scanTrackingPoint(row pgx.Row) (*domain.TrackingPoint, error) {
	var p domain.TrackingPoint
	err := row.Scan(
		&p.AlertID, &p.HorizonMinutes, &p.Price, &p.ROIPct,
		&p.SLHit, &p.TP1Hit, &p.TP2Hit, &p.TP3Hit,
		&p.HighestPrice, &p.LowestPrice, &p.RecordedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func scanTrackingPoints(rows pgx.Rows) ([]*domain.TrackingPoint, error) {
	var points []*domain.TrackingPoint

	for rows.Next() {
		p, err := scanTrackingPoint(rows)
		if err != nil {
			return nil, fmt.Errorf("scan tracking point row: %w", err)
		}
		points = append(points, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tracking point rows: %w", err)
	}

	return points, nil
}
