package tracking

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"tokenscout/internal/domain"
	"tokenscout/internal/observability"
	"tokenscout/internal/storage"
	"tokenscout/internal/storage/memory"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

type stubPrices struct {
	prices []float64 // consumed in order; the last entry repeats
	errs   []error   // parallel to prices; nil means success
	calls  int
}

func (p *stubPrices) GetCurrentPrice(context.Context, domain.Network, string) (float64, error) {
	i := p.calls
	if i >= len(p.prices) {
		i = len(p.prices) - 1
	}
	p.calls++
	if i < len(p.errs) && p.errs[i] != nil {
		return 0, p.errs[i]
	}
	return p.prices[i], nil
}

type stubAnalyzer struct {
	analyzed []int64
}

func (a *stubAnalyzer) Analyze(_ context.Context, alertID int64) error {
	a.analyzed = append(a.analyzed, alertID)
	return nil
}

type schedHarness struct {
	sched    *Scheduler
	alerts   *memory.AlertStore
	points   *memory.TrackingStore
	prices   *stubPrices
	analyzer *stubAnalyzer
	clock    *fakeClock
}

func newSchedHarness(t *testing.T, prices *stubPrices, horizons []int) *schedHarness {
	t.Helper()
	h := &schedHarness{
		alerts:   memory.NewAlertStore(),
		points:   memory.NewTrackingStore(),
		prices:   prices,
		analyzer: &stubAnalyzer{},
		clock:    &fakeClock{t: time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)},
	}
	h.sched = NewScheduler(SchedulerOptions{
		Alerts:   h.alerts,
		Points:   h.points,
		Prices:   h.prices,
		Analyzer: h.analyzer,
		Horizons: horizons,
		Clock:    h.clock.now,
	})
	return h
}

// saveAlert persists a 1.00-entry alert with SL 0.90 and TPs at
// 1.07/1.12/1.20, created at the harness clock's current time.
func (h *schedHarness) saveAlert(t *testing.T) *domain.Alert {
	t.Helper()
	a := &domain.Alert{
		TokenAddress:  "0xabc",
		TokenName:     "ABC",
		Network:       domain.NetworkBsc,
		EntryPrice:    1.00,
		StopLossPrice: 0.90,
		StopLossPct:   -10,
		TP1Price:      1.07,
		TP1Pct:        7,
		TP2Price:      1.12,
		TP2Pct:        12,
		TP3Price:      1.20,
		TP3Pct:        20,
		HighestPrice:  1.00,
		LowestPrice:   1.00,
		CreatedAt:     h.clock.t.UnixMilli(),
		Snapshot:      domain.PoolSnapshot{PoolAddress: "0xpool"},
	}
	id, err := h.alerts.Save(context.Background(), a)
	if err != nil {
		t.Fatalf("save alert: %v", err)
	}
	a.ID = id
	return a
}

func TestScheduler_DrawdownAcrossHorizons(t *testing.T) {
	// Price drifts to 0.95 by the first sample, then 0.88 by the second,
	// crossing the 0.90 stop between them.
	prices := &stubPrices{prices: []float64{0.95, 0.88}}
	h := newSchedHarness(t, prices, []int{15, 60})
	ctx := context.Background()
	a := h.saveAlert(t)
	h.sched.Register(a)

	h.clock.advance(15 * time.Minute)
	h.sched.processDue(ctx)

	got, err := h.points.GetByAlert(ctx, a.ID)
	if err != nil || len(got) != 1 {
		t.Fatalf("after first horizon: %d points, err %v", len(got), err)
	}
	p15 := got[0]
	if p15.HorizonMinutes != 15 || p15.Price != 0.95 {
		t.Errorf("first point: horizon %d price %g", p15.HorizonMinutes, p15.Price)
	}
	if p15.SLHit || p15.TP1Hit {
		t.Errorf("first point hit flags set early: sl %v tp1 %v", p15.SLHit, p15.TP1Hit)
	}
	if math.Abs(p15.ROIPct-(-5)) > 1e-9 {
		t.Errorf("first point roi: got %g, want -5", p15.ROIPct)
	}
	if len(h.analyzer.analyzed) != 0 {
		t.Error("analyzer ran before the final horizon")
	}

	h.clock.advance(45 * time.Minute)
	h.sched.processDue(ctx)

	p60, err := h.points.GetByAlertHorizon(ctx, a.ID, 60)
	if err != nil {
		t.Fatalf("second point missing: %v", err)
	}
	if !p60.SLHit {
		t.Error("stop-loss hit not flagged at second horizon")
	}
	if p60.TP1Hit {
		t.Error("TP1 flagged on a losing path")
	}
	if p60.LowestPrice != 0.88 {
		t.Errorf("lowest: got %g, want 0.88", p60.LowestPrice)
	}

	if len(h.analyzer.analyzed) != 1 || h.analyzer.analyzed[0] != a.ID {
		t.Errorf("analyzer runs: got %v, want exactly [%d]", h.analyzer.analyzed, a.ID)
	}

	updated, _ := h.alerts.GetByID(ctx, a.ID)
	if updated.LowestPrice != 0.88 {
		t.Errorf("alert lowest not maintained: got %g", updated.LowestPrice)
	}
}

func TestScheduler_TargetTouchedBetweenHorizonsStillCounts(t *testing.T) {
	prices := &stubPrices{prices: []float64{1.02}}
	h := newSchedHarness(t, prices, []int{15})
	ctx := context.Background()
	a := h.saveAlert(t)
	h.sched.Register(a)

	// A spike to 1.10 was folded in by the continuous updater before the
	// horizon fired.
	if err := h.alerts.UpdateExtremes(ctx, a.ID, 1.10); err != nil {
		t.Fatalf("UpdateExtremes: %v", err)
	}

	h.clock.advance(15 * time.Minute)
	h.sched.processDue(ctx)

	p, err := h.points.GetByAlertHorizon(ctx, a.ID, 15)
	if err != nil {
		t.Fatalf("point missing: %v", err)
	}
	if !p.TP1Hit {
		t.Error("TP1 touch between horizons not flagged")
	}
	if p.TP2Hit {
		t.Error("TP2 flagged without a touch")
	}
	if p.Price != 1.02 {
		t.Errorf("sample price: got %g", p.Price)
	}
	if p.HighestPrice != 1.10 {
		t.Errorf("highest: got %g, want 1.10", p.HighestPrice)
	}
}

func TestScheduler_FetchFailureRetries(t *testing.T) {
	prices := &stubPrices{
		prices: []float64{0, 1.05},
		errs:   []error{errors.New("upstream 503"), nil},
	}
	h := newSchedHarness(t, prices, []int{15})
	ctx := context.Background()
	a := h.saveAlert(t)
	h.sched.Register(a)

	h.clock.advance(15 * time.Minute)
	h.sched.processDue(ctx)

	if _, err := h.points.GetByAlertHorizon(ctx, a.ID, 15); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("point written despite fetch failure: err %v", err)
	}

	h.clock.advance(retryDelay)
	h.sched.processDue(ctx)

	p, err := h.points.GetByAlertHorizon(ctx, a.ID, 15)
	if err != nil {
		t.Fatalf("point missing after retry: %v", err)
	}
	if p.Price != 1.05 {
		t.Errorf("retried sample price: got %g", p.Price)
	}
	if prices.calls != 2 {
		t.Errorf("price calls: got %d, want 2", prices.calls)
	}
}

func TestScheduler_FetchAbandonedAfterMaxRetries(t *testing.T) {
	prices := &stubPrices{
		prices: []float64{0},
		errs:   []error{errors.New("upstream down")},
	}
	h := newSchedHarness(t, prices, []int{15})
	ctx := context.Background()
	a := h.saveAlert(t)
	h.sched.Register(a)

	h.clock.advance(15 * time.Minute)
	for i := 0; i <= maxFetchRetries+1; i++ {
		h.sched.processDue(ctx)
		h.clock.advance(retryDelay)
	}

	if prices.calls != maxFetchRetries+1 {
		t.Errorf("price calls: got %d, want %d", prices.calls, maxFetchRetries+1)
	}
}

func TestScheduler_FireIncrementsHorizonCounter(t *testing.T) {
	fires := observability.DefaultMetrics.HorizonFires.WithLabelValues("15")
	before := testutil.ToFloat64(fires)

	prices := &stubPrices{prices: []float64{1.01}}
	h := newSchedHarness(t, prices, []int{15})
	a := h.saveAlert(t)
	h.sched.Register(a)
	h.clock.advance(15 * time.Minute)
	h.sched.processDue(context.Background())

	if got := testutil.ToFloat64(fires) - before; got != 1 {
		t.Errorf("horizon fire counter delta: got %v, want 1", got)
	}
}

func TestScheduler_TerminalAbandonmentStillAnalyzes(t *testing.T) {
	// The first horizon samples fine; the price API then goes down for
	// good. Abandoning the final horizon must not leave the alert open
	// forever, so the analyzer runs on what was collected.
	prices := &stubPrices{
		prices: []float64{0.95, 0},
		errs:   []error{nil, errors.New("upstream down")},
	}
	h := newSchedHarness(t, prices, []int{15, 60})
	ctx := context.Background()
	a := h.saveAlert(t)
	h.sched.Register(a)

	h.clock.advance(15 * time.Minute)
	h.sched.processDue(ctx)
	if len(h.analyzer.analyzed) != 0 {
		t.Fatalf("analyzer ran before the final horizon: %v", h.analyzer.analyzed)
	}

	h.clock.advance(45 * time.Minute)
	for i := 0; i <= maxFetchRetries+1; i++ {
		h.sched.processDue(ctx)
		h.clock.advance(retryDelay)
	}

	if len(h.analyzer.analyzed) != 1 || h.analyzer.analyzed[0] != a.ID {
		t.Fatalf("analyzer after terminal abandonment: got %v, want [%d]", h.analyzer.analyzed, a.ID)
	}
	got, err := h.points.GetByAlert(ctx, a.ID)
	if err != nil || len(got) != 1 {
		t.Fatalf("points after abandonment: %d, err %v", len(got), err)
	}
}

func TestScheduler_CancelDropsPendingFires(t *testing.T) {
	prices := &stubPrices{prices: []float64{1.05}}
	h := newSchedHarness(t, prices, []int{15, 60})
	ctx := context.Background()
	a := h.saveAlert(t)
	h.sched.Register(a)

	h.sched.Cancel(a.ID)
	h.clock.advance(2 * time.Hour)
	h.sched.processDue(ctx)

	if prices.calls != 0 {
		t.Errorf("cancelled alert still sampled: %d calls", prices.calls)
	}
	if got, _ := h.points.GetByAlert(ctx, a.ID); len(got) != 0 {
		t.Errorf("cancelled alert has %d points", len(got))
	}
}

func TestScheduler_ClosedAlertFireIsNoOp(t *testing.T) {
	prices := &stubPrices{prices: []float64{1.05}}
	h := newSchedHarness(t, prices, []int{15})
	ctx := context.Background()
	a := h.saveAlert(t)
	h.sched.Register(a)

	if err := h.alerts.Close(ctx, a.ID); err != nil {
		t.Fatalf("close alert: %v", err)
	}

	h.clock.advance(15 * time.Minute)
	h.sched.processDue(ctx)

	if prices.calls != 0 {
		t.Errorf("closed alert still sampled: %d calls", prices.calls)
	}
}

func TestScheduler_ResumeSkipsSampledHorizons(t *testing.T) {
	prices := &stubPrices{prices: []float64{1.05}}
	h := newSchedHarness(t, prices, []int{15, 60})
	ctx := context.Background()
	a := h.saveAlert(t)

	// The 15' sample survived a restart; only the 60' fire is owed.
	pre := buildPoint(a, 15, 0.98, h.clock.t.UnixMilli())
	if err := h.points.Upsert(ctx, pre); err != nil {
		t.Fatalf("seed point: %v", err)
	}

	if err := h.sched.Resume(ctx); err != nil {
		t.Fatalf("Resume failed: %v", err)
	}

	h.clock.advance(2 * time.Hour)
	h.sched.processDue(ctx)

	if prices.calls != 1 {
		t.Fatalf("price calls after resume: got %d, want 1", prices.calls)
	}
	got, _ := h.points.GetByAlert(ctx, a.ID)
	if len(got) != 2 {
		t.Fatalf("points after resume: got %d, want 2", len(got))
	}
	if p15, _ := h.points.GetByAlertHorizon(ctx, a.ID, 15); p15.Price != 0.98 {
		t.Errorf("pre-existing point resampled: price %g", p15.Price)
	}
}
