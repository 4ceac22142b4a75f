package scoring

import (
	"tokenscout/internal/config"
	"tokenscout/internal/domain"
)

// BaseScore computes the additive base score for a snapshot, clamped to
// [0, 100]. Zero liquidity short-circuits to 0: a pool with no liquidity
// carries no signal at all. Missing or negative fields contribute nothing
// rather than failing.
func BaseScore(s *domain.PoolSnapshot, nc config.NetworkConfig) float64 {
	if s.LiquidityUSD <= 0 {
		return 0
	}

	score := nc.ReputationBonus
	if nc.SweetSpotBonus > 0 && nc.SweetSpot.Contains(s.LiquidityUSD) {
		score += nc.SweetSpotBonus
	}

	score += liquidityTierBonus(s.LiquidityUSD)
	score += volumeTierBonus(s.Volume24h)
	score += ageTierBonus(s.AgeHours)
	score += volLiqRatioBonus(s.VolLiqRatio(), s.Volume24h)
	score += buySellBalanceBonus(s.BuySellRatio24h())
	score += crashPenalty(s.PriceChange24h)
	score += sellPressurePenalty(s.SellPressure24h())

	return clamp(score, 0, 100)
}

// liquidityTierBonus rewards mid-size pools most: the 100k-500k range is
// where new tokens still have room to move but rugs get expensive.
func liquidityTierBonus(liq float64) float64 {
	switch {
	case liq >= 1_000_000:
		return 15
	case liq >= 500_000:
		return 20
	case liq >= 200_000:
		return 25
	case liq >= 100_000:
		return 25
	case liq >= 50_000:
		return 15
	default:
		return 0
	}
}

func volumeTierBonus(vol float64) float64 {
	switch {
	case vol >= 1_000_000:
		return 20
	case vol >= 500_000:
		return 15
	case vol >= 200_000:
		return 10
	case vol >= 100_000:
		return 5
	default:
		return 0
	}
}

// ageTierBonus peaks at 48-72h and penalizes the 12-24h danger zone where
// initial pump liquidity historically gets pulled.
func ageTierBonus(ageHours float64) float64 {
	var bonus float64
	switch {
	case ageHours >= 48 && ageHours <= 72:
		bonus = 25
	case (ageHours >= 24 && ageHours < 48) || (ageHours > 72 && ageHours <= 96):
		bonus = 20
	case ageHours >= 6 && ageHours < 24:
		bonus = 15
	case ageHours >= 0 && ageHours < 6:
		bonus = 8
	case ageHours > 96 && ageHours <= 168:
		bonus = 10
	}
	if ageHours >= 12 && ageHours < 24 {
		bonus -= 15
	}
	return bonus
}

func volLiqRatioBonus(ratio, vol float64) float64 {
	var bonus float64
	switch {
	case ratio >= 0.5 && ratio <= 1.5:
		bonus = 15
	case (ratio >= 0.3 && ratio < 0.5) || (ratio > 1.5 && ratio <= 2.0):
		bonus = 10
	case ratio > 2.0:
		if vol > 2_000_000 {
			bonus = 12
		} else {
			bonus = 5
		}
	}
	if ratio > 3.0 {
		bonus -= 10
	}
	return bonus
}

func buySellBalanceBonus(ratio float64) float64 {
	switch {
	case ratio >= 0.6 && ratio <= 1.4:
		return 15
	case (ratio >= 0.4 && ratio < 0.6) || (ratio > 1.4 && ratio <= 2.0):
		return 10
	default:
		return 5
	}
}

func crashPenalty(change24h float64) float64 {
	switch {
	case change24h < -40:
		return -35
	case change24h < -30:
		return -25
	case change24h < -20:
		return -15
	case change24h < -10:
		return -8
	default:
		return 0
	}
}

func sellPressurePenalty(sellFraction float64) float64 {
	switch {
	case sellFraction > 0.70:
		return -25
	case sellFraction > 0.65:
		return -20
	case sellFraction > 0.60:
		return -12
	default:
		return 0
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
