package strategy

import "tokenscout/internal/domain"

// EthStrategy grades eth candidates. Gas costs make small positions
// pointless, so the liquidity floor is higher than the filter's.
type EthStrategy struct{}

// Compile-time interface check.
var _ Strategy = (*EthStrategy)(nil)

// Network returns the network this strategy applies to.
func (st *EthStrategy) Network() domain.Network {
	return domain.NetworkEth
}

// Evaluate applies the eth exclusions and tier bands.
func (st *EthStrategy) Evaluate(s *domain.PoolSnapshot, score domain.ScoreResult) TierResult {
	switch {
	case score.PumpType == domain.PumpParabolic:
		return TierResult{Excluded: true, Reason: "parabolic pump already ran"}
	case s.BuySellRatio1h() < 0.8:
		return TierResult{Excluded: true, Reason: "1h sell flow dominates"}
	case s.LiquidityUSD < 100_000:
		return TierResult{Excluded: true, Reason: "liquidity below eth playbook floor"}
	}

	adjusted := score.FinalScore
	accel := volumeAccelerating(s, 1.5)
	if s.LiquidityUSD >= 100_000 && s.LiquidityUSD <= 200_000 {
		adjusted += 5
	}
	if accel {
		adjusted += 4
	}
	if s.AgeHours >= 48 && s.AgeHours <= 72 {
		adjusted += 3
	}

	return TierResult{
		AdjustedScore: adjusted,
		Tier:          st.tierFor(adjusted, accel),
	}
}

func (st *EthStrategy) tierFor(adjusted float64, accel bool) domain.SignalTier {
	switch {
	case adjusted >= 92 && accel:
		return domain.TierAPlusPlus
	case adjusted >= 86:
		return domain.TierAPlus
	case adjusted >= 80:
		return domain.TierA
	case adjusted >= 72:
		return domain.TierB
	default:
		return domain.TierNone
	}
}
