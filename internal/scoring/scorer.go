// Package scoring computes the composite opportunity score for pool
// snapshots. Every function is pure: same snapshot in, same score out.
package scoring

import (
	"tokenscout/internal/config"
	"tokenscout/internal/domain"
)

// Scorer combines base score, momentum bonus and whale adjustment into a
// final 0-100 score using per-network configuration.
type Scorer struct {
	networks config.Networks
}

// NewScorer creates a Scorer over a per-network heuristic table.
func NewScorer(networks config.Networks) *Scorer {
	return &Scorer{networks: networks}
}

// Score produces the full ScoreResult for one snapshot. It never fails:
// malformed numeric fields degrade the score instead of aborting.
func (sc *Scorer) Score(s *domain.PoolSnapshot) domain.ScoreResult {
	nc := sc.networks.For(s.Network)

	base := BaseScore(s, nc)
	momentum := MomentumBonus(s)
	whale := AnalyzeWhales(s)
	velocity := Velocity(s)

	final := clamp(base+momentum+whale.Delta, 0, 100)
	if s.LiquidityUSD <= 0 {
		final = 0
	}

	return domain.ScoreResult{
		BaseScore:     base,
		MomentumBonus: momentum,
		Whale:         whale,
		FinalScore:    final,
		Confidence:    Confidence(s),
		Velocity:      velocity,
		PumpType:      ClassifyPump(velocity),
	}
}
