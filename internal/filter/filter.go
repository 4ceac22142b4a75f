// Package filter implements the ordered accept/reject pipeline over scored
// snapshots. Checks run in fixed precedence and every check's outcome is
// returned, so reporting callers can aggregate rejection reasons.
package filter

import (
	"fmt"

	"tokenscout/internal/config"
	"tokenscout/internal/domain"
)

// Check is the pass/fail outcome of one pipeline stage.
type Check struct {
	Name      string
	Threshold string
	Actual    string
	Pass      bool
}

// Result is the outcome of one pipeline pass.
type Result struct {
	Accepted bool
	Checks   []Check
}

// FailedChecks returns the names of failed checks, in pipeline order.
func (r *Result) FailedChecks() []string {
	var names []string
	for _, c := range r.Checks {
		if !c.Pass {
			names = append(names, c.Name)
		}
	}
	return names
}

// Pipeline evaluates snapshots against per-network thresholds in two passes:
// Screen before the score exists, Confirm once it does.
type Pipeline struct {
	networks  config.Networks
	watchlist func(tokenAddress string) bool

	// Global age ceiling in hours; tokens older than this are already
	// discovered and out of scope.
	maxAgeHours float64
}

// NewPipeline creates a filter pipeline. watchlist may be nil.
func NewPipeline(networks config.Networks, watchlist func(string) bool) *Pipeline {
	if watchlist == nil {
		watchlist = func(string) bool { return false }
	}
	return &Pipeline{
		networks:    networks,
		watchlist:   watchlist,
		maxAgeHours: 168,
	}
}

// Screen is the first pass: everything that can be decided without a score.
// Order: whale veto, velocity floor, pump type, age policy, liquidity band.
func (p *Pipeline) Screen(s *domain.PoolSnapshot, score *domain.ScoreResult) *Result {
	nc := p.networks.For(s.Network)
	res := &Result{Accepted: true}

	res.add(Check{
		Name:      "whale_veto",
		Threshold: "pattern != WHALE_SELLING",
		Actual:    score.Whale.Pattern.String(),
		Pass:      score.Whale.Pattern != domain.WhaleSelling,
	})

	velocityPass := score.Velocity >= nc.MinVelocity || p.watchlist(s.TokenAddress)
	res.add(Check{
		Name:      "velocity_floor",
		Threshold: fmt.Sprintf(">= %.1f %%/h", nc.MinVelocity),
		Actual:    fmt.Sprintf("%.1f %%/h", score.Velocity),
		Pass:      velocityPass,
	})

	res.add(Check{
		Name:      "pump_type",
		Threshold: "not SLOW/STAGNANT/STABLE",
		Actual:    score.PumpType.String(),
		Pass:      !score.PumpType.IsSlowMover(),
	})

	res.add(p.ageCheck(s, score))

	res.add(Check{
		Name:      "liquidity_band",
		Threshold: fmt.Sprintf("[%.0f, %.0f] USD", nc.Liquidity.Min, nc.Liquidity.Max),
		Actual:    fmt.Sprintf("%.0f USD", s.LiquidityUSD),
		Pass:      nc.Liquidity.Contains(s.LiquidityUSD),
	})

	return res
}

// ageCheck applies the age policy: a hard ceiling, an embryonic zone needing
// elevated velocity, and the 12-24h danger zone needing elevated velocity
// here plus an elevated score in Confirm.
func (p *Pipeline) ageCheck(s *domain.PoolSnapshot, score *domain.ScoreResult) Check {
	c := Check{
		Name:   "age_policy",
		Actual: fmt.Sprintf("%.1fh, vel %.1f", s.AgeHours, score.Velocity),
	}
	switch {
	case s.AgeHours > p.maxAgeHours:
		c.Threshold = fmt.Sprintf("<= %.0fh", p.maxAgeHours)
		c.Pass = false
	case s.AgeHours < 3:
		c.Threshold = "age < 3h needs velocity >= 30"
		c.Pass = score.Velocity >= 30
	case s.AgeHours >= 12 && s.AgeHours < 24:
		c.Threshold = "danger zone needs velocity >= 30"
		c.Pass = score.Velocity >= 30
	default:
		c.Threshold = fmt.Sprintf("<= %.0fh", p.maxAgeHours)
		c.Pass = true
	}
	return c
}

// Confirm is the second pass, run once scoring context is complete: the
// per-network score floor, the danger-zone score bar, and final sanity on
// volume, transactions and flow shape.
func (p *Pipeline) Confirm(s *domain.PoolSnapshot, score *domain.ScoreResult) *Result {
	nc := p.networks.For(s.Network)
	res := &Result{Accepted: true}

	res.add(Check{
		Name:      "score_floor",
		Threshold: fmt.Sprintf(">= %.0f", nc.MinScore),
		Actual:    fmt.Sprintf("%.1f", score.FinalScore),
		Pass:      score.FinalScore >= nc.MinScore,
	})

	if s.AgeHours >= 12 && s.AgeHours < 24 {
		res.add(Check{
			Name:      "danger_zone_score",
			Threshold: ">= 80",
			Actual:    fmt.Sprintf("%.1f", score.FinalScore),
			Pass:      score.FinalScore >= 80,
		})
	}

	res.add(Check{
		Name:      "min_volume",
		Threshold: fmt.Sprintf(">= %.0f USD", nc.MinVolume),
		Actual:    fmt.Sprintf("%.0f USD", s.Volume24h),
		Pass:      s.Volume24h >= nc.MinVolume,
	})

	res.add(Check{
		Name:      "min_txns",
		Threshold: fmt.Sprintf(">= %d", nc.MinTxns),
		Actual:    fmt.Sprintf("%d", s.TotalTxns24h()),
		Pass:      s.TotalTxns24h() >= nc.MinTxns,
	})

	res.add(Check{
		Name:      "vol_liq_ratio",
		Threshold: ">= 0.5",
		Actual:    fmt.Sprintf("%.2f", s.VolLiqRatio()),
		Pass:      s.VolLiqRatio() >= 0.5,
	})

	ratio := s.BuySellRatio24h()
	res.add(Check{
		Name:      "buy_sell_shape",
		Threshold: "0.2 <= ratio <= 5",
		Actual:    fmt.Sprintf("%.2f", ratio),
		Pass:      ratio >= 0.2 && ratio <= 5,
	})

	return res
}

func (r *Result) add(c Check) {
	r.Checks = append(r.Checks, c)
	if !c.Pass {
		r.Accepted = false
	}
}
