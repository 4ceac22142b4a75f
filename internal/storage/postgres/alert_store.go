package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"tokenscout/internal/domain"
	"tokenscout/internal/storage"
)

// AlertStore implements storage.AlertStore using PostgreSQL.
type AlertStore struct {
	pool *Pool
}

// NewAlertStore creates a new AlertStore.
func NewAlertStore(pool *Pool) *AlertStore {
	return &AlertStore{pool: pool}
}

// Compile-time interface check.
var _ storage.AlertStore = (*AlertStore)(nil)

const alertColumns = `
	id, token_address, token_name, network,
	entry_price, stop_loss_price, stop_loss_pct,
	tp1_price, tp1_pct, tp2_price, tp2_pct, tp3_price, tp3_pct,
	base_score, momentum_bonus, whale_pattern, whale_delta, whale_concentration,
	final_score, confidence, velocity, pump_type, signal_tier,
	snapshot_price, snapshot_liquidity,
	snapshot_volume_1h, snapshot_volume_6h, snapshot_volume_24h,
	snapshot_buys_1h, snapshot_sells_1h, snapshot_buyers_1h, snapshot_sellers_1h,
	snapshot_buys_24h, snapshot_sells_24h, snapshot_buyers_24h, snapshot_sellers_24h,
	snapshot_age_hours, snapshot_change_1h, snapshot_change_6h, snapshot_change_24h,
	snapshot_observed_at,
	condition, is_re_alert, prev_alert_id, re_alert_note,
	highest_price, lowest_price, is_closed, created_at
`

// Save inserts a new alert and returns its assigned id.
// Returns ErrDuplicateKey if (token_address, created_at) already exists.
func (s *AlertStore) Save(ctx context.Context, a *domain.Alert) (int64, error) {
	if a == nil || a.TokenAddress == "" || a.CreatedAt == 0 {
		return 0, storage.ErrInvalidInput
	}

	query := `
		INSERT INTO alerts (
			token_address, token_name, network,
			entry_price, stop_loss_price, stop_loss_pct,
			tp1_price, tp1_pct, tp2_price, tp2_pct, tp3_price, tp3_pct,
			base_score, momentum_bonus, whale_pattern, whale_delta, whale_concentration,
			final_score, confidence, velocity, pump_type, signal_tier,
			snapshot_price, snapshot_liquidity,
			snapshot_volume_1h, snapshot_volume_6h, snapshot_volume_24h,
			snapshot_buys_1h, snapshot_sells_1h, snapshot_buyers_1h, snapshot_sellers_1h,
			snapshot_buys_24h, snapshot_sells_24h, snapshot_buyers_24h, snapshot_sellers_24h,
			snapshot_age_hours, snapshot_change_1h, snapshot_change_6h, snapshot_change_24h,
			snapshot_observed_at,
			condition, is_re_alert, prev_alert_id, re_alert_note,
			highest_price, lowest_price, is_closed, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12,
			$13, $14, $15, $16, $17, $18, $19, $20, $21, $22,
			$23, $24, $25, $26, $27, $28, $29, $30, $31, $32, $33, $34, $35,
			$36, $37, $38, $39, $40,
			$41, $42, $43, $44, $45, $46, $47, $48
		)
		RETURNING id
	`

	var id int64
	err := s.pool.QueryRow(ctx, query,
		a.TokenAddress, a.TokenName, string(a.Network),
		a.EntryPrice, a.StopLossPrice, a.StopLossPct,
		a.TP1Price, a.TP1Pct, a.TP2Price, a.TP2Pct, a.TP3Price, a.TP3Pct,
		a.Score.BaseScore, a.Score.MomentumBonus,
		string(a.Score.Whale.Pattern), a.Score.Whale.Delta, string(a.Score.Whale.Concentration),
		a.Score.FinalScore, a.Score.Confidence, a.Score.Velocity,
		string(a.Score.PumpType), string(a.Score.Tier),
		a.Snapshot.PriceUSD, a.Snapshot.LiquidityUSD,
		a.Snapshot.Volume1h, a.Snapshot.Volume6h, a.Snapshot.Volume24h,
		a.Snapshot.Buys1h, a.Snapshot.Sells1h, a.Snapshot.Buyers1h, a.Snapshot.Sellers1h,
		a.Snapshot.Buys24h, a.Snapshot.Sells24h, a.Snapshot.Buyers24h, a.Snapshot.Sellers24h,
		a.Snapshot.AgeHours, a.Snapshot.PriceChange1h, a.Snapshot.PriceChange6h, a.Snapshot.PriceChange24h,
		a.Snapshot.ObservedAt,
		string(a.Condition), a.IsReAlert, a.PrevAlertID, a.ReAlertNote,
		a.HighestPrice, a.LowestPrice, a.IsClosed, a.CreatedAt,
	).Scan(&id)
	if err != nil {
		if isDuplicateKeyError(err) {
			return 0, storage.ErrDuplicateKey
		}
		return 0, fmt.Errorf("insert alert: %w", err)
	}
	return id, nil
}

// GetByID retrieves an alert by id. Returns ErrNotFound if not exists.
func (s *AlertStore) GetByID(ctx context.Context, id int64) (*domain.Alert, error) {
	query := `SELECT ` + alertColumns + ` FROM alerts WHERE id = $1`

	row := s.pool.QueryRow(ctx, query, id)
	a, err := scanAlert(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get alert by id: %w", err)
	}
	return a, nil
}

// GetLatestByToken retrieves the newest alert for a token on a network.
func (s *AlertStore) GetLatestByToken(ctx context.Context, network domain.Network, tokenAddress string) (*domain.Alert, error) {
	query := `
		SELECT ` + alertColumns + `
		FROM alerts
		WHERE network = $1 AND token_address = $2
		ORDER BY created_at DESC
		LIMIT 1
	`

	row := s.pool.QueryRow(ctx, query, string(network), tokenAddress)
	a, err := scanAlert(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get latest alert by token: %w", err)
	}
	return a, nil
}

// GetByToken retrieves all alerts for a token ordered by created_at ASC.
func (s *AlertStore) GetByToken(ctx context.Context, network domain.Network, tokenAddress string) ([]*domain.Alert, error) {
	query := `
		SELECT ` + alertColumns + `
		FROM alerts
		WHERE network = $1 AND token_address = $2
		ORDER BY created_at ASC
	`

	rows, err := s.pool.Query(ctx, query, string(network), tokenAddress)
	if err != nil {
		return nil, fmt.Errorf("get alerts by token: %w", err)
	}
	defer rows.Close()

	return scanAlerts(rows)
}

// GetOpen retrieves all alerts not yet closed, ordered by created_at ASC.
func (s *AlertStore) GetOpen(ctx context.Context) ([]*domain.Alert, error) {
	query := `
		SELECT ` + alertColumns + `
		FROM alerts
		WHERE NOT is_closed
		ORDER BY created_at ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get open alerts: %w", err)
	}
	defer rows.Close()

	return scanAlerts(rows)
}

// GetByTimeRange retrieves alerts created within [start, end] (inclusive).
func (s *AlertStore) GetByTimeRange(ctx context.Context, start, end int64) ([]*domain.Alert, error) {
	query := `
		SELECT ` + alertColumns + `
		FROM alerts
		WHERE created_at >= $1 AND created_at <= $2
		ORDER BY created_at ASC
	`

	rows, err := s.pool.Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("get alerts by time range: %w", err)
	}
	defer rows.Close()

	return scanAlerts(rows)
}

// UpdateExtremes raises highest_price / lowers lowest_price monotonically.
// GREATEST/LEAST make the update safe under concurrent writers.
func (s *AlertStore) UpdateExtremes(ctx context.Context, id int64, price float64) error {
	query := `
		UPDATE alerts
		SET highest_price = GREATEST(highest_price, $2),
		    lowest_price = LEAST(lowest_price, $2)
		WHERE id = $1
	`

	tag, err := s.pool.Exec(ctx, query, id, price)
	if err != nil {
		return fmt.Errorf("update alert extremes: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// Close marks an alert closed. Closing a closed alert is a no-op.
func (s *AlertStore) Close(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `UPDATE alerts SET is_closed = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("close alert: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// scanAlert scans a single row into an Alert.
func scanAlert(row pgx.Row) (*domain.Alert, error) {
	var a domain.Alert
	var network, whalePattern, whaleConc, pumpType, tier, condition string

	err := row.Scan(
		&a.ID, &a.TokenAddress, &a.TokenName, &network,
		&a.EntryPrice, &a.StopLossPrice, &a.StopLossPct,
		&a.TP1Price, &a.TP1Pct, &a.TP2Price, &a.TP2Pct, &a.TP3Price, &a.TP3Pct,
		&a.Score.BaseScore, &a.Score.MomentumBonus,
		&whalePattern, &a.Score.Whale.Delta, &whaleConc,
		&a.Score.FinalScore, &a.Score.Confidence, &a.Score.Velocity,
		&pumpType, &tier,
		&a.Snapshot.PriceUSD, &a.Snapshot.LiquidityUSD,
		&a.Snapshot.Volume1h, &a.Snapshot.Volume6h, &a.Snapshot.Volume24h,
		&a.Snapshot.Buys1h, &a.Snapshot.Sells1h, &a.Snapshot.Buyers1h, &a.Snapshot.Sellers1h,
		&a.Snapshot.Buys24h, &a.Snapshot.Sells24h, &a.Snapshot.Buyers24h, &a.Snapshot.Sellers24h,
		&a.Snapshot.AgeHours, &a.Snapshot.PriceChange1h, &a.Snapshot.PriceChange6h, &a.Snapshot.PriceChange24h,
		&a.Snapshot.ObservedAt,
		&condition, &a.IsReAlert, &a.PrevAlertID, &a.ReAlertNote,
		&a.HighestPrice, &a.LowestPrice, &a.IsClosed, &a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	a.Network = domain.Network(network)
	a.Score.Whale.Pattern = domain.WhalePattern(whalePattern)
	a.Score.Whale.Concentration = domain.Concentration(whaleConc)
	a.Score.PumpType = domain.PumpType(pumpType)
	a.Score.Tier = domain.SignalTier(tier)
	a.Condition = domain.MarketCondition(condition)
	a.Snapshot.Network = a.Network
	a.Snapshot.TokenAddress = a.TokenAddress
	a.Snapshot.TokenName = a.TokenName
	return &a, nil
}

// scanAlerts scans multiple rows into a slice of Alert.
func scanAlerts(rows pgx.Rows) ([]*domain.Alert, error) {
	var alerts []*domain.Alert

	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("scan alert row: %w", err)
		}
		alerts = append(alerts, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate alert rows: %w", err)
	}

	return alerts, nil
}
