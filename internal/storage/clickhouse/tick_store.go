package clickhouse

import (
	"context"
	"fmt"

	"tokenscout/internal/domain"
	"tokenscout/internal/storage"
)

// TickStore implements storage.TickStore using ClickHouse.
type TickStore struct {
	conn *Conn
}

// NewTickStore creates a new TickStore.
func NewTickStore(conn *Conn) *TickStore {
	return &TickStore{conn: conn}
}

// Compile-time interface check.
var _ storage.TickStore = (*TickStore)(nil)

// InsertBulk appends a batch of ticks. The table is append-only; duplicate
// observations are harmless and never rejected.
func (s *TickStore) InsertBulk(ctx context.Context, ticks []*domain.PriceTick) error {
	if len(ticks) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO price_ticks (
			alert_id, token_address, network, price, liquidity_usd, volume_24h, observed_at
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, tick := range ticks {
		err = batch.Append(
			uint64(tick.AlertID), tick.TokenAddress, string(tick.Network),
			tick.Price, tick.LiquidityUSD, tick.Volume24h, uint64(tick.ObservedAt),
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetByAlert retrieves all ticks for an alert, ordered by observed_at ASC.
func (s *TickStore) GetByAlert(ctx context.Context, alertID int64) ([]*domain.PriceTick, error) {
	query := `
		SELECT alert_id, token_address, network, price, liquidity_usd, volume_24h, observed_at
		FROM price_ticks
		WHERE alert_id = ?
		ORDER BY observed_at ASC
	`

	rows, err := s.conn.Query(ctx, query, uint64(alertID))
	if err != nil {
		return nil, fmt.Errorf("query by alert id: %w", err)
	}
	defer rows.Close()

	return scanTicks(rows)
}

// TrueHigh returns the maximum tick price seen for an alert. The tick stream
// catches spikes that land between scheduled checkpoints.
func (s *TickStore) TrueHigh(ctx context.Context, alertID int64) (float64, error) {
	query := `
		SELECT count(*), max(price) FROM price_ticks
		WHERE alert_id = ?
	`

	var count uint64
	var high float64
	err := s.conn.QueryRow(ctx, query, uint64(alertID)).Scan(&count, &high)
	if err != nil {
		return 0, fmt.Errorf("query true high: %w", err)
	}
	if count == 0 {
		return 0, storage.ErrNotFound
	}
	return high, nil
}

// scanTicks scans multiple rows.
func scanTicks(rows chRows) ([]*domain.PriceTick, error) {
	var ticks []*domain.PriceTick

	for rows.Next() {
		var t domain.PriceTick
		var alertID, observedAt uint64
		var network string

		err := rows.Scan(
			&alertID, &t.TokenAddress, &network,
			&t.Price, &t.LiquidityUSD, &t.Volume24h, &observedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan tick row: %w", err)
		}

		t.AlertID = int64(alertID)
		t.Network = domain.Network(network)
		t.ObservedAt = int64(observedAt)
		ticks = append(ticks, &t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tick rows: %w", err)
	}

	return ticks, nil
}
