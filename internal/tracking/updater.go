package tracking

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"tokenscout/internal/domain"
	"tokenscout/internal/marketdata"
	"tokenscout/internal/storage"
)

// Updater maintains the continuous (zero-horizon) view of open alerts
// between fixed fires: the running max/min on the alert row, the
// zero-horizon tracking point, and the raw tick timeseries.
type Updater struct {
	alerts storage.AlertStore
	points storage.TrackingStore
	ticks  storage.TickStore // nil disables the tick timeseries
	now    func() time.Time
}

// NewUpdater creates a continuous updater. ticks may be nil when no
// ClickHouse backend is configured.
func NewUpdater(alerts storage.AlertStore, points storage.TrackingStore, ticks storage.TickStore) *Updater {
	return &Updater{alerts: alerts, points: points, ticks: ticks, now: time.Now}
}

// Observe folds one scan-cycle snapshot into an open alert: extremes,
// zero-horizon point, raw tick.
func (u *Updater) Observe(ctx context.Context, a *domain.Alert, s *domain.PoolSnapshot) error {
	if a.IsClosed || s.PriceUSD <= 0 {
		return nil
	}
	return u.observe(ctx, a, s.PriceUSD, s.LiquidityUSD, s.Volume24h, s.ObservedAt)
}

// ObservePrice folds a bare price observation (live stream, no volume or
// liquidity context) into an open alert.
func (u *Updater) ObservePrice(ctx context.Context, a *domain.Alert, price float64, observedAt int64) error {
	if a.IsClosed || price <= 0 {
		return nil
	}
	return u.observe(ctx, a, price, 0, 0, observedAt)
}

func (u *Updater) observe(ctx context.Context, a *domain.Alert, price, liquidityUSD, volume24h float64, observedAt int64) error {
	if observedAt == 0 {
		observedAt = u.now().UnixMilli()
	}

	if err := u.alerts.UpdateExtremes(ctx, a.ID, price); err != nil {
		return fmt.Errorf("update extremes for alert %d: %w", a.ID, err)
	}

	p := buildPoint(a, domain.HorizonContinuous, price, observedAt)
	if err := u.points.Upsert(ctx, p); err != nil {
		return fmt.Errorf("upsert continuous point for alert %d: %w", a.ID, err)
	}

	if u.ticks != nil {
		tick := &domain.PriceTick{
			AlertID:      a.ID,
			TokenAddress: a.TokenAddress,
			Network:      a.Network,
			Price:        price,
			LiquidityUSD: liquidityUSD,
			Volume24h:    volume24h,
			ObservedAt:   observedAt,
		}
		if err := u.ticks.InsertBulk(ctx, []*domain.PriceTick{tick}); err != nil {
			// The timeseries is best-effort analytics data; the durable
			// tracking state above already succeeded.
			log.Warn().Err(err).Int64("alert_id", a.ID).Msg("tick append failed")
		}
	}

	return nil
}

// Consume drains a live price stream, resolving each update to its open
// alert via the poolAddress index and folding it in. Returns when the
// channel closes or the context ends.
func (u *Updater) Consume(ctx context.Context, updates <-chan marketdata.PriceUpdate, resolve func(network domain.Network, poolAddress string) *domain.Alert) {
	for {
		select {
		case <-ctx.Done():
			return
		case up, ok := <-updates:
			if !ok {
				return
			}
			a := resolve(up.Network, up.PoolAddress)
			if a == nil {
				continue
			}
			if err := u.ObservePrice(ctx, a, up.Price, up.ObservedAt); err != nil {
				log.Error().Err(err).
					Int64("alert_id", a.ID).
					Str("pool", up.PoolAddress).
					Msg("stream observation failed")
			}
		}
	}
}
