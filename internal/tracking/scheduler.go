// Package tracking samples alert prices after emission: fixed horizons
// driven by a single scheduler goroutine, plus a continuous updater fed by
// the scan loop and the live price stream.
package tracking

import (
	"container/heap"
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"tokenscout/internal/domain"
	"tokenscout/internal/observability"
	"tokenscout/internal/storage"
)

// PriceSource resolves the current price of a pool.
type PriceSource interface {
	GetCurrentPrice(ctx context.Context, network domain.Network, poolAddress string) (float64, error)
}

// Analyzer runs the final outcome classification for an alert. Must be
// idempotent; the scheduler may invoke it for an already-analyzed alert
// after a restart.
type Analyzer interface {
	Analyze(ctx context.Context, alertID int64) error
}

const (
	defaultFetchTimeout = 15 * time.Second
	retryDelay          = time.Minute
	maxFetchRetries     = 3
)

// task is one pending horizon fire.
type task struct {
	alertID        int64
	network        domain.Network
	poolAddress    string
	horizonMinutes int
	due            time.Time
	retries        int
}

// taskHeap orders tasks by due time.
type taskHeap []*task

func (h taskHeap) Len() int            { return len(h) }
func (h taskHeap) Less(i, j int) bool  { return h[i].due.Before(h[j].due) }
func (h taskHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *taskHeap) Push(x any)         { *h = append(*h, x.(*task)) }
func (h *taskHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return t
}

// SchedulerOptions configures a Scheduler.
type SchedulerOptions struct {
	Alerts   storage.AlertStore
	Points   storage.TrackingStore
	Prices   PriceSource
	Analyzer Analyzer

	// FetchTimeout bounds each price fetch. Zero uses the default.
	FetchTimeout time.Duration

	// Horizons overrides domain.TrackingHorizons, for tests.
	Horizons []int

	// Clock overrides time.Now, for tests.
	Clock func() time.Time
}

// Scheduler drives fixed-horizon price sampling from a single goroutine
// over a min-heap of due tasks. One heap entry per (alert, horizon); no
// goroutine-per-horizon.
type Scheduler struct {
	alerts   storage.AlertStore
	points   storage.TrackingStore
	prices   PriceSource
	analyzer Analyzer

	fetchTimeout time.Duration
	horizons     []int
	now          func() time.Time

	mu        sync.Mutex
	tasks     taskHeap
	cancelled map[int64]bool

	wake chan struct{}
	done chan struct{}
	wg   sync.WaitGroup
	once sync.Once
}

// NewScheduler creates a horizon scheduler. Call Start to begin firing.
func NewScheduler(opts SchedulerOptions) *Scheduler {
	s := &Scheduler{
		alerts:       opts.Alerts,
		points:       opts.Points,
		prices:       opts.Prices,
		analyzer:     opts.Analyzer,
		fetchTimeout: opts.FetchTimeout,
		horizons:     opts.Horizons,
		now:          opts.Clock,
		cancelled:    make(map[int64]bool),
		wake:         make(chan struct{}, 1),
		done:         make(chan struct{}),
	}
	if s.fetchTimeout <= 0 {
		s.fetchTimeout = defaultFetchTimeout
	}
	if len(s.horizons) == 0 {
		s.horizons = domain.TrackingHorizons
	}
	if s.now == nil {
		s.now = time.Now
	}
	heap.Init(&s.tasks)
	return s
}

// Register arms one task per horizon for a freshly persisted alert. Due
// times are anchored to the alert's creation time, so registration after a
// restart re-arms the original schedule.
func (s *Scheduler) Register(a *domain.Alert) {
	created := time.UnixMilli(a.CreatedAt)

	s.mu.Lock()
	delete(s.cancelled, a.ID)
	for _, h := range s.horizons {
		heap.Push(&s.tasks, &task{
			alertID:        a.ID,
			network:        a.Network,
			poolAddress:    a.Snapshot.PoolAddress,
			horizonMinutes: h,
			due:            created.Add(time.Duration(h) * time.Minute),
		})
	}
	s.mu.Unlock()

	s.signal()
}

// Cancel drops all pending fires for an alert. Tasks already in the heap
// are discarded lazily when they surface.
func (s *Scheduler) Cancel(alertID int64) {
	s.mu.Lock()
	s.cancelled[alertID] = true
	s.mu.Unlock()
}

// Resume re-arms tracking for every open alert, skipping horizons that
// already have a point. Overdue horizons fire on the next loop pass. Called
// once at startup before Start.
func (s *Scheduler) Resume(ctx context.Context) error {
	open, err := s.alerts.GetOpen(ctx)
	if err != nil {
		return err
	}

	for _, a := range open {
		existing, err := s.points.GetByAlert(ctx, a.ID)
		if err != nil {
			return err
		}
		have := make(map[int]bool, len(existing))
		for _, p := range existing {
			have[p.HorizonMinutes] = true
		}

		created := time.UnixMilli(a.CreatedAt)
		s.mu.Lock()
		for _, h := range s.horizons {
			if have[h] {
				continue
			}
			heap.Push(&s.tasks, &task{
				alertID:        a.ID,
				network:        a.Network,
				poolAddress:    a.Snapshot.PoolAddress,
				horizonMinutes: h,
				due:            created.Add(time.Duration(h) * time.Minute),
			})
		}
		s.mu.Unlock()
	}

	log.Info().Int("open_alerts", len(open)).Msg("tracking resumed")
	s.signal()
	return nil
}

// Start launches the scheduling loop.
func (s *Scheduler) Start(ctx context.Context) {
	s.wg.Add(1)
	go s.run(ctx)
}

// Close stops the loop and waits for an in-flight fire to finish.
func (s *Scheduler) Close() {
	s.once.Do(func() { close(s.done) })
	s.wg.Wait()
}

func (s *Scheduler) signal() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Scheduler) run(ctx context.Context) {
	defer s.wg.Done()

	timer := time.NewTimer(time.Hour)
	defer timer.Stop()

	for {
		s.processDue(ctx)

		wait := s.nextWait()
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(wait)

		select {
		case <-s.done:
			return
		case <-ctx.Done():
			return
		case <-s.wake:
		case <-timer.C:
		}
	}
}

// nextWait returns the time until the earliest pending task, or a long idle
// interval when the heap is empty.
func (s *Scheduler) nextWait() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.tasks) == 0 {
		return time.Hour
	}
	wait := s.tasks[0].due.Sub(s.now())
	if wait < 0 {
		return 0
	}
	return wait
}

// processDue pops and fires every task whose due time has passed.
func (s *Scheduler) processDue(ctx context.Context) {
	for {
		s.mu.Lock()
		if len(s.tasks) == 0 || s.tasks[0].due.After(s.now()) {
			s.mu.Unlock()
			return
		}
		t := heap.Pop(&s.tasks).(*task)
		dropped := s.cancelled[t.alertID]
		s.mu.Unlock()

		if dropped {
			continue
		}
		s.fire(ctx, t)
	}
}

// fire samples one horizon. Price-fetch failures requeue the task a bounded
// number of times; storage failures drop the point and rely on the upsert
// semantics of the next horizon for max/min continuity.
func (s *Scheduler) fire(ctx context.Context, t *task) {
	a, err := s.alerts.GetByID(ctx, t.alertID)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			log.Error().Err(err).Int64("alert_id", t.alertID).Msg("horizon fire: load alert failed")
		}
		return
	}
	if a.IsClosed {
		return
	}

	fetchCtx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	price, err := s.prices.GetCurrentPrice(fetchCtx, t.network, t.poolAddress)
	cancel()
	if err != nil {
		s.requeue(ctx, t, err)
		return
	}

	if err := s.alerts.UpdateExtremes(ctx, a.ID, price); err != nil {
		log.Error().Err(err).Int64("alert_id", a.ID).Msg("horizon fire: extremes update failed")
	}

	p := buildPoint(a, t.horizonMinutes, price, s.now().UnixMilli())
	if err := s.points.Upsert(ctx, p); err != nil {
		log.Error().Err(err).
			Int64("alert_id", a.ID).
			Int("horizon", t.horizonMinutes).
			Msg("horizon fire: point upsert failed")
		return
	}

	observability.RecordHorizonFire(strconv.Itoa(t.horizonMinutes))
	log.Debug().
		Int64("alert_id", a.ID).
		Int("horizon", t.horizonMinutes).
		Float64("price", price).
		Float64("roi_pct", p.ROIPct).
		Msg("horizon sampled")

	if t.horizonMinutes == s.finalHorizon() {
		if err := s.analyzer.Analyze(ctx, a.ID); err != nil {
			log.Error().Err(err).Int64("alert_id", a.ID).Msg("outcome analysis failed")
		}
		s.mu.Lock()
		delete(s.cancelled, a.ID)
		s.mu.Unlock()
	}
}

func (s *Scheduler) requeue(ctx context.Context, t *task, cause error) {
	if t.retries >= maxFetchRetries {
		log.Warn().Err(cause).
			Int64("alert_id", t.alertID).
			Int("horizon", t.horizonMinutes).
			Msg("horizon sample abandoned after retries")
		// The terminal horizon still closes the book: analyze whatever
		// was collected rather than leaving the alert open until a
		// restart resumes it.
		if t.horizonMinutes == s.finalHorizon() {
			if err := s.analyzer.Analyze(ctx, t.alertID); err != nil {
				log.Error().Err(err).Int64("alert_id", t.alertID).Msg("outcome analysis failed")
			}
			s.mu.Lock()
			delete(s.cancelled, t.alertID)
			s.mu.Unlock()
		}
		return
	}
	t.retries++
	t.due = s.now().Add(retryDelay)

	s.mu.Lock()
	heap.Push(&s.tasks, t)
	s.mu.Unlock()
	s.signal()
}

func (s *Scheduler) finalHorizon() int {
	max := 0
	for _, h := range s.horizons {
		if h > max {
			max = h
		}
	}
	return max
}

// buildPoint assembles the tracking point for a horizon sample. Hit flags
// derive from the running extremes so a target touched between horizons
// still counts; the store merges them monotonically on conflict.
func buildPoint(a *domain.Alert, horizonMinutes int, price float64, recordedAt int64) *domain.TrackingPoint {
	high := a.HighestPrice
	if price > high {
		high = price
	}
	low := a.LowestPrice
	if low == 0 || price < low {
		low = price
	}

	return &domain.TrackingPoint{
		AlertID:        a.ID,
		HorizonMinutes: horizonMinutes,
		Price:          price,
		ROIPct:         a.ROIPct(price),
		SLHit:          low <= a.StopLossPrice,
		TP1Hit:         high >= a.TP1Price,
		TP2Hit:         high >= a.TP2Price,
		TP3Hit:         high >= a.TP3Price,
		HighestPrice:   high,
		LowestPrice:    low,
		RecordedAt:     recordedAt,
	}
}
