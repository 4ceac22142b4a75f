package scoring

import "tokenscout/internal/domain"

// MomentumBonus computes the short-horizon momentum adjustment, clamped to
// [-20, +30]. A positive 1h tick riding a deeply negative 24h trend is a
// dead-cat bounce and is penalized, not rewarded.
func MomentumBonus(s *domain.PoolSnapshot) float64 {
	bonus := velocityTierBonus(Velocity(s))
	bonus += priceAccelerationBonus(s.PriceChange1h, s.PriceChange24h)
	bonus += volumeSpikeBonus(s)
	bonus += buyPressureShiftBonus(s)

	// Deep downtrends cap how much momentum can claw back.
	switch {
	case s.PriceChange24h < -30:
		bonus = min(bonus, 10)
	case s.PriceChange24h < -20:
		bonus = min(bonus, 15)
	}

	return clamp(bonus, -20, 30)
}

func velocityTierBonus(velocity float64) float64 {
	switch {
	case velocity >= 100:
		return 20
	case velocity >= 50:
		return 18
	case velocity >= 20:
		return 15
	case velocity >= 10:
		return 10
	case velocity >= 5:
		return 5
	default:
		return -5
	}
}

func priceAccelerationBonus(p1h, p24h float64) float64 {
	// Dead-cat bounce: small 1h green candle on a >20% 24h dump.
	if p1h > 0 && p1h < 10 && p24h < -20 {
		return -10
	}
	switch {
	case p1h >= 10:
		return 10
	case p1h >= 5:
		return 7
	case p1h >= 2:
		return 3
	default:
		return 0
	}
}

// volumeSpikeBonus extrapolates the 1h transaction rate to 24h and compares
// against actual 24h activity. A spike with rising price is accumulation;
// the same spike with a falling price is a panic-sell signature.
func volumeSpikeBonus(s *domain.PoolSnapshot) float64 {
	txns1h := s.Buys1h + s.Sells1h
	txns24h := s.TotalTxns24h()
	if txns1h == 0 || txns24h == 0 {
		return 0
	}

	projected := float64(txns1h) * 24
	switch {
	case projected > float64(txns24h)*1.5:
		switch {
		case s.PriceChange1h > 3:
			return 10
		case s.PriceChange1h > 0:
			return 5
		case s.PriceChange1h < -5:
			return -10
		default:
			return 0
		}
	case projected > float64(txns24h)*1.2:
		if s.PriceChange1h > 0 {
			return 5
		}
	}
	return 0
}

func buyPressureShiftBonus(s *domain.PoolSnapshot) float64 {
	r1h := s.BuySellRatio1h()
	r24h := s.BuySellRatio24h()

	if r1h < 0.5 && r24h < 0.5 {
		return -5
	}
	switch {
	case r1h >= 1.2:
		return 10
	case r1h >= 1.0:
		return 8
	case r1h >= 0.8:
		return 5
	default:
		return 0
	}
}
