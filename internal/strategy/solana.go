package strategy

import "tokenscout/internal/domain"

// SolanaStrategy grades solana candidates. Solana pumps burn out fast, so
// anything already moving hard is excluded rather than chased.
type SolanaStrategy struct{}

// Compile-time interface check.
var _ Strategy = (*SolanaStrategy)(nil)

// Network returns the network this strategy applies to.
func (st *SolanaStrategy) Network() domain.Network {
	return domain.NetworkSolana
}

// Evaluate applies the solana exclusions and tier bands.
func (st *SolanaStrategy) Evaluate(s *domain.PoolSnapshot, score domain.ScoreResult) TierResult {
	switch {
	case score.PumpType == domain.PumpParabolic:
		return TierResult{Excluded: true, Reason: "parabolic pump already ran"}
	case score.Velocity > 20:
		return TierResult{Excluded: true, Reason: "velocity above 20 %/h, entry too late"}
	case s.BuySellRatio1h() < 1.0:
		return TierResult{Excluded: true, Reason: "1h sell flow dominates"}
	case s.TotalTxns24h() < 200:
		return TierResult{Excluded: true, Reason: "dead-zone transaction count"}
	}

	adjusted := score.FinalScore
	if volumeAccelerating(s, 1.5) {
		adjusted += 5
	}
	if score.Whale.Pattern == domain.DistributedBuying {
		adjusted += 5
	}
	if s.LiquidityUSD >= 50_000 && s.LiquidityUSD <= 500_000 {
		adjusted += 3
	}

	return TierResult{
		AdjustedScore: adjusted,
		Tier:          st.tierFor(adjusted, score),
	}
}

func (st *SolanaStrategy) tierFor(adjusted float64, score domain.ScoreResult) domain.SignalTier {
	switch {
	case adjusted >= 90 && score.Whale.Pattern == domain.DistributedBuying:
		return domain.TierAPlusPlus
	case adjusted >= 85:
		return domain.TierAPlus
	case adjusted >= 78:
		return domain.TierA
	case adjusted >= 70:
		return domain.TierB
	default:
		return domain.TierNone
	}
}
