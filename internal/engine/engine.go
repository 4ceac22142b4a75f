// Package engine implements alert emission: the last mile between a scored,
// filtered candidate and a persisted, announced, tracked alert.
//
// Ordering is strict: security veto, strategy tiering, re-alert gate,
// level construction, persist, then tracking registration and notification.
// A failed save never registers tracking; a failed notify never unwinds the
// persisted alert.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"tokenscout/internal/config"
	"tokenscout/internal/decision"
	"tokenscout/internal/domain"
	"tokenscout/internal/notify"
	"tokenscout/internal/observability"
	"tokenscout/internal/security"
	"tokenscout/internal/storage"
	"tokenscout/internal/strategy"
)

// Registrar schedules fixed-horizon tracking for a freshly persisted alert.
type Registrar interface {
	Register(a *domain.Alert)
}

// SecurityOracle is the token-security verdict source.
type SecurityOracle interface {
	CheckSecurity(ctx context.Context, network domain.Network, tokenAddress string) (*security.Result, error)
}

// Outcome is the per-candidate result of an emission attempt.
type Outcome string

const (
	OutcomeEmitted    Outcome = "EMITTED"
	OutcomeSuppressed Outcome = "SUPPRESSED"
	OutcomeVetoed     Outcome = "VETOED"
	OutcomeRejected   Outcome = "REJECTED"
	OutcomeDuplicate  Outcome = "DUPLICATE"
)

// Emission reports what happened to one candidate. Alert is set only for
// OutcomeEmitted.
type Emission struct {
	Outcome        Outcome
	Reason         string
	Alert          *domain.Alert
	Classification decision.Classification
}

// Options configures an Engine. Alerts, Registrar, Notifier, Gate and
// Classifier are required; Security may be nil when the veto is disabled.
type Options struct {
	Alerts     storage.AlertStore
	Registrar  Registrar
	Notifier   notify.Notifier
	Security   SecurityOracle
	Gate       *decision.Gate
	Classifier *decision.Classifier

	Networks    config.Networks
	SecurityCfg config.SecurityConfig

	// Watchlist reports whether a token carries the phantom
	// ULTRA_HIGH grade. Nil means no watchlist.
	Watchlist func(tokenAddress string) bool

	// Clock overrides time.Now, for tests.
	Clock func() time.Time
}

// Engine turns accepted candidates into alerts.
type Engine struct {
	alerts     storage.AlertStore
	registrar  Registrar
	notifier   notify.Notifier
	oracle     SecurityOracle
	gate       *decision.Gate
	classifier *decision.Classifier

	networks    config.Networks
	securityCfg config.SecurityConfig
	watchlist   func(tokenAddress string) bool
	now         func() time.Time
}

// New creates an emission engine.
func New(opts Options) *Engine {
	now := opts.Clock
	if now == nil {
		now = time.Now
	}
	return &Engine{
		alerts:      opts.Alerts,
		registrar:   opts.Registrar,
		notifier:    opts.Notifier,
		oracle:      opts.Security,
		gate:        opts.Gate,
		classifier:  opts.Classifier,
		networks:    opts.Networks,
		securityCfg: opts.SecurityCfg,
		watchlist:   opts.Watchlist,
		now:         now,
	}
}

// Process runs one candidate through the emission sequence. An error return
// means the attempt could not be decided (storage failure); every decided
// outcome, including rejections, comes back as an Emission.
func (e *Engine) Process(ctx context.Context, s *domain.PoolSnapshot, score domain.ScoreResult) (*Emission, error) {
	if vetoed, reason, err := e.securityVeto(ctx, s); err != nil {
		// Oracle unavailability is not a veto: the score floor only
		// applies to verdicts we actually obtained.
		log.Warn().Err(err).
			Str("network", string(s.Network)).
			Str("token", s.TokenAddress).
			Msg("security check unavailable, proceeding unchecked")
	} else if vetoed {
		return &Emission{Outcome: OutcomeVetoed, Reason: reason}, nil
	}

	if st, ok := strategy.ForNetwork(s.Network); ok {
		tr := st.Evaluate(s, score)
		if tr.Excluded {
			return &Emission{Outcome: OutcomeRejected, Reason: tr.Reason}, nil
		}
		score.Tier = tr.Tier
	}
	if e.watchlist != nil && e.watchlist(s.TokenAddress) {
		score.Tier = domain.TierUltraHigh
	}

	prev, err := e.alerts.GetLatestByToken(ctx, s.Network, s.TokenAddress)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("load alert history for %s: %w", s.TokenAddress, err)
		}
		prev = nil
	}

	ok, gateReason := e.gate.ShouldAlert(prev, s.PriceUSD, score.PumpType, e.now())
	if !ok {
		return &Emission{Outcome: OutcomeSuppressed, Reason: gateReason}, nil
	}

	cls := e.classifier.Classify(s, &score)

	alert, err := e.buildAlert(s, score, cls, prev)
	if err != nil {
		log.Error().Err(err).
			Str("network", string(s.Network)).
			Str("token", s.TokenAddress).
			Msg("candidate rejected: level construction failed")
		return &Emission{Outcome: OutcomeRejected, Reason: err.Error()}, nil
	}

	id, err := e.alerts.Save(ctx, alert)
	if err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			// Another worker won the (token, created_at) race; its emission
			// already owns tracking and notification.
			return &Emission{Outcome: OutcomeDuplicate, Reason: "alert already persisted"}, nil
		}
		return nil, fmt.Errorf("save alert for %s: %w", s.TokenAddress, err)
	}
	alert.ID = id

	e.registrar.Register(alert)

	if err := e.notifier.Notify(ctx, Payload(alert, cls, gateReason)); err != nil {
		observability.DefaultMetrics.NotificationFailures.Inc()
		log.Warn().Err(err).
			Int64("alert_id", id).
			Str("token", s.TokenAddress).
			Msg("notification failed, alert persisted and tracked")
	}

	log.Info().
		Int64("alert_id", id).
		Str("network", string(s.Network)).
		Str("token", s.TokenAddress).
		Float64("score", score.FinalScore).
		Str("tier", string(score.Tier)).
		Str("condition", cls.Condition.String()).
		Bool("re_alert", alert.IsReAlert).
		Str("reason", gateReason).
		Msg("alert emitted")

	return &Emission{
		Outcome:        OutcomeEmitted,
		Reason:         gateReason,
		Alert:          alert,
		Classification: cls,
	}, nil
}

// securityVeto runs the oracle when enabled. The bool is the veto decision;
// err reports oracle unavailability, which the caller treats as unchecked.
func (e *Engine) securityVeto(ctx context.Context, s *domain.PoolSnapshot) (bool, string, error) {
	if !e.securityCfg.Enabled || e.oracle == nil {
		return false, "", nil
	}
	res, err := e.oracle.CheckSecurity(ctx, s.Network, s.TokenAddress)
	if err != nil {
		return false, "", err
	}
	security.LogVerdict(s.Network, s.TokenAddress, res)
	if vetoed, reason := security.Veto(res, e.securityCfg.MinScore); vetoed {
		return true, reason, nil
	}
	return false, "", nil
}

// buildAlert assembles the durable alert from the snapshot and the gate
// context, and validates the level ordering before it may be persisted.
func (e *Engine) buildAlert(s *domain.PoolSnapshot, score domain.ScoreResult, cls decision.Classification, prev *domain.Alert) (*domain.Alert, error) {
	createdAt := s.ObservedAt
	if createdAt == 0 {
		createdAt = e.now().UnixMilli()
	}

	a := &domain.Alert{
		TokenAddress: s.TokenAddress,
		TokenName:    s.TokenName,
		Network:      s.Network,
		EntryPrice:   s.PriceUSD,
		Score:        score,
		Snapshot:     *s,
		Condition:    cls.Condition,
		HighestPrice: s.PriceUSD,
		LowestPrice:  s.PriceUSD,
		CreatedAt:    createdAt,
	}

	if prev != nil {
		a.IsReAlert = true
		prevID := prev.ID
		a.PrevAlertID = &prevID
		a.ReAlertNote = decision.FollowUpNote(prev, s.PriceUSD)
	}

	strategy.ApplyLevels(a, e.networks.For(s.Network).Levels, score.Tier)

	if err := a.ValidateLevels(); err != nil {
		return nil, err
	}
	return a, nil
}
