// Package strategy holds the optional per-network signal overlays. Only
// networks with enough historical signal quality get one; everything else
// runs on the plain score.
package strategy

import (
	"tokenscout/internal/domain"
)

// TierResult is the outcome of a network strategy evaluation.
type TierResult struct {
	// Excluded marks the candidate as untradeable for this network's
	// playbook regardless of score. Reason names the exclusion.
	Excluded bool
	Reason   string

	// AdjustedScore augments the 0-100 score for tiering only; it never
	// replaces the score stored on the alert.
	AdjustedScore float64
	Tier          domain.SignalTier
}

// Strategy re-scores a snapshot for tier assignment on one network.
type Strategy interface {
	// Evaluate grades the snapshot. Must be pure.
	Evaluate(s *domain.PoolSnapshot, score domain.ScoreResult) TierResult

	// Network returns the network this strategy applies to.
	Network() domain.Network
}

// registry lists every network with a dedicated strategy.
var registry = map[domain.Network]Strategy{
	domain.NetworkEth:    &EthStrategy{},
	domain.NetworkSolana: &SolanaStrategy{},
}

// ForNetwork resolves the strategy for a network. The second return is
// false when the network runs without an overlay.
func ForNetwork(network domain.Network) (Strategy, bool) {
	s, ok := registry[network]
	return s, ok
}

// volumeAccelerating reports whether the 1h volume rate projects above the
// trailing 24h volume by the given factor.
func volumeAccelerating(s *domain.PoolSnapshot, factor float64) bool {
	if s.Volume24h <= 0 {
		return false
	}
	return s.Volume1h*24 > s.Volume24h*factor
}
