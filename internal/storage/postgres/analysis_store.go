package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"tokenscout/internal/domain"
	"tokenscout/internal/storage"
)

// AnalysisStore implements storage.AnalysisStore using PostgreSQL.
type AnalysisStore struct {
	pool *Pool
}

// NewAnalysisStore creates a new AnalysisStore.
func NewAnalysisStore(pool *Pool) *AnalysisStore {
	return &AnalysisStore{pool: pool}
}

// Compile-time interface check.
var _ storage.AnalysisStore = (*AnalysisStore)(nil)

// Upsert writes the analysis for an alert, replacing any prior row.
func (s *AnalysisStore) Upsert(ctx context.Context, a *domain.AlertAnalysis) error {
	if a == nil || a.AlertID == 0 {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO alert_analyses (
			alert_id, best_roi_pct, worst_roi_pct, roi_4h_pct, roi_24h_pct,
			time_to_sl_min, time_to_tp1_min, time_to_tp2_min, time_to_tp3_min,
			quality, coherent, analyzed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (alert_id) DO UPDATE SET
			best_roi_pct = EXCLUDED.best_roi_pct,
			worst_roi_pct = EXCLUDED.worst_roi_pct,
			roi_4h_pct = EXCLUDED.roi_4h_pct,
			roi_24h_pct = EXCLUDED.roi_24h_pct,
			time_to_sl_min = EXCLUDED.time_to_sl_min,
			time_to_tp1_min = EXCLUDED.time_to_tp1_min,
			time_to_tp2_min = EXCLUDED.time_to_tp2_min,
			time_to_tp3_min = EXCLUDED.time_to_tp3_min,
			quality = EXCLUDED.quality,
			coherent = EXCLUDED.coherent,
			analyzed_at = EXCLUDED.analyzed_at
	`

	_, err := s.pool.Exec(ctx, query,
		a.AlertID, a.BestROIPct, a.WorstROIPct, a.ROI4hPct, a.ROI24hPct,
		a.TimeToSLMin, a.TimeToTP1Min, a.TimeToTP2Min, a.TimeToTP3Min,
		string(a.Quality), a.Coherent, a.AnalyzedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert alert analysis: %w", err)
	}
	return nil
}

// GetByAlert retrieves the analysis. Returns ErrNotFound if absent.
func (s *AnalysisStore) GetByAlert(ctx context.Context, alertID int64) (*domain.AlertAnalysis, error) {
	query := `
		SELECT alert_id, best_roi_pct, worst_roi_pct, roi_4h_pct, roi_24h_pct,
		       time_to_sl_min, time_to_tp1_min, time_to_tp2_min, time_to_tp3_min,
		       quality, coherent, analyzed_at
		FROM alert_analyses
		WHERE alert_id = $1
	`

	row := s.pool.QueryRow(ctx, query, alertID)
	a, err := scanAnalysis(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get analysis by alert: %w", err)
	}
	return a, nil
}

// GetByTimeRange retrieves analyses written within [start, end] (inclusive).
func (s *AnalysisStore) GetByTimeRange(ctx context.Context, start, end int64) ([]*domain.AlertAnalysis, error) {
	query := `
		SELECT alert_id, best_roi_pct, worst_roi_pct, roi_4h_pct, roi_24h_pct,
		       time_to_sl_min, time_to_tp1_min, time_to_tp2_min, time_to_tp3_min,
		       quality, coherent, analyzed_at
		FROM alert_analyses
		WHERE analyzed_at >= $1 AND analyzed_at <= $2
		ORDER BY analyzed_at ASC
	`

	rows, err := s.pool.Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("get analyses by time range: %w", err)
	}
	defer rows.Close()

	var out []*domain.AlertAnalysis
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return nil, fmt.Errorf("scan analysis row: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate analysis rows: %w", err)
	}
	return out, nil
}

func scanAnalysis(row pgx.Row) (*domain.AlertAnalysis, error) {
	var a domain.AlertAnalysis
	var quality string

	err := row.Scan(
		&a.AlertID, &a.BestROIPct, &a.WorstROIPct, &a.ROI4hPct, &a.ROI24hPct,
		&a.TimeToSLMin, &a.TimeToTP1Min, &a.TimeToTP2Min, &a.TimeToTP3Min,
		&quality, &a.Coherent, &a.AnalyzedAt,
	)
	if err != nil {
		return nil, err
	}

	a.Quality = domain.PredictionQuality(quality)
	return &a, nil
}
