package tracking

import (
	"context"
	"testing"

	"tokenscout/internal/domain"
	"tokenscout/internal/marketdata"
	"tokenscout/internal/storage/memory"
)

func openAlert(t *testing.T, alerts *memory.AlertStore) *domain.Alert {
	t.Helper()
	a := &domain.Alert{
		TokenAddress:  "0xabc",
		TokenName:     "ABC",
		Network:       domain.NetworkBsc,
		EntryPrice:    1.00,
		StopLossPrice: 0.90,
		TP1Price:      1.07,
		TP2Price:      1.12,
		TP3Price:      1.20,
		HighestPrice:  1.00,
		LowestPrice:   1.00,
		CreatedAt:     1_700_000_000_000,
		Snapshot:      domain.PoolSnapshot{PoolAddress: "0xpool"},
	}
	id, err := alerts.Save(context.Background(), a)
	if err != nil {
		t.Fatalf("save alert: %v", err)
	}
	a.ID = id
	return a
}

func TestUpdater_ObserveMaintainsContinuousState(t *testing.T) {
	alerts := memory.NewAlertStore()
	points := memory.NewTrackingStore()
	ticks := memory.NewTickStore()
	u := NewUpdater(alerts, points, ticks)
	ctx := context.Background()
	a := openAlert(t, alerts)

	s := &domain.PoolSnapshot{
		PoolAddress:  "0xpool",
		PriceUSD:     1.09,
		LiquidityUSD: 150_000,
		Volume24h:    300_000,
		ObservedAt:   1_700_000_060_000,
	}
	if err := u.Observe(ctx, a, s); err != nil {
		t.Fatalf("Observe failed: %v", err)
	}

	updated, _ := alerts.GetByID(ctx, a.ID)
	if updated.HighestPrice != 1.09 {
		t.Errorf("highest: got %g, want 1.09", updated.HighestPrice)
	}

	p, err := points.GetByAlertHorizon(ctx, a.ID, domain.HorizonContinuous)
	if err != nil {
		t.Fatalf("continuous point missing: %v", err)
	}
	if p.Price != 1.09 || !p.TP1Hit || p.TP2Hit {
		t.Errorf("continuous point: price %g tp1 %v tp2 %v", p.Price, p.TP1Hit, p.TP2Hit)
	}

	got, err := ticks.GetByAlert(ctx, a.ID)
	if err != nil || len(got) != 1 {
		t.Fatalf("ticks: %d, err %v", len(got), err)
	}
	if got[0].Price != 1.09 || got[0].LiquidityUSD != 150_000 {
		t.Errorf("tick: %+v", got[0])
	}
}

func TestUpdater_ContinuousPointMergesAcrossCycles(t *testing.T) {
	alerts := memory.NewAlertStore()
	points := memory.NewTrackingStore()
	u := NewUpdater(alerts, points, nil)
	ctx := context.Background()
	a := openAlert(t, alerts)

	if err := u.ObservePrice(ctx, a, 1.15, 1_700_000_060_000); err != nil {
		t.Fatalf("first observe: %v", err)
	}
	a, _ = alerts.GetByID(ctx, a.ID)
	if err := u.ObservePrice(ctx, a, 1.02, 1_700_000_120_000); err != nil {
		t.Fatalf("second observe: %v", err)
	}

	p, err := points.GetByAlertHorizon(ctx, a.ID, domain.HorizonContinuous)
	if err != nil {
		t.Fatalf("continuous point missing: %v", err)
	}
	if p.Price != 1.02 {
		t.Errorf("latest price: got %g", p.Price)
	}
	if p.HighestPrice != 1.15 {
		t.Errorf("highest regressed: got %g, want 1.15", p.HighestPrice)
	}
	if !p.TP1Hit || !p.TP2Hit {
		t.Errorf("hit flags lost across cycles: tp1 %v tp2 %v", p.TP1Hit, p.TP2Hit)
	}
}

func TestUpdater_SkipsClosedAndZeroPrice(t *testing.T) {
	alerts := memory.NewAlertStore()
	points := memory.NewTrackingStore()
	u := NewUpdater(alerts, points, nil)
	ctx := context.Background()
	a := openAlert(t, alerts)

	if err := u.ObservePrice(ctx, a, 0, 0); err != nil {
		t.Fatalf("zero price observe: %v", err)
	}

	closed := *a
	closed.IsClosed = true
	if err := u.ObservePrice(ctx, &closed, 1.50, 0); err != nil {
		t.Fatalf("closed observe: %v", err)
	}

	if got, _ := points.GetByAlert(ctx, a.ID); len(got) != 0 {
		t.Errorf("points written for skipped observations: %d", len(got))
	}
	updated, _ := alerts.GetByID(ctx, a.ID)
	if updated.HighestPrice != 1.00 {
		t.Errorf("extremes moved for skipped observation: %g", updated.HighestPrice)
	}
}

func TestUpdater_ConsumeResolvesStreamUpdates(t *testing.T) {
	alerts := memory.NewAlertStore()
	points := memory.NewTrackingStore()
	u := NewUpdater(alerts, points, nil)
	ctx := context.Background()
	a := openAlert(t, alerts)

	updates := make(chan marketdata.PriceUpdate, 2)
	updates <- marketdata.PriceUpdate{
		Network: domain.NetworkBsc, PoolAddress: "0xpool", Price: 1.11, ObservedAt: 1_700_000_060_000,
	}
	updates <- marketdata.PriceUpdate{
		Network: domain.NetworkBsc, PoolAddress: "0xother", Price: 9.99, ObservedAt: 1_700_000_061_000,
	}
	close(updates)

	u.Consume(ctx, updates, func(_ domain.Network, pool string) *domain.Alert {
		if pool == "0xpool" {
			return a
		}
		return nil
	})

	p, err := points.GetByAlertHorizon(ctx, a.ID, domain.HorizonContinuous)
	if err != nil {
		t.Fatalf("continuous point missing: %v", err)
	}
	if p.Price != 1.11 {
		t.Errorf("price: got %g, want 1.11", p.Price)
	}
	updated, _ := alerts.GetByID(ctx, a.ID)
	if updated.HighestPrice != 1.11 {
		t.Errorf("highest: got %g, want 1.11", updated.HighestPrice)
	}
}
