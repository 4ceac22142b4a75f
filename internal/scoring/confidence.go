package scoring

import "tokenscout/internal/domain"

// Confidence grades how much the data behind a score can be trusted,
// independent of the score itself. Thin liquidity, very young tokens and
// low transaction counts all discount it. Range 0..100.
func Confidence(s *domain.PoolSnapshot) float64 {
	conf := 100.0

	switch {
	case s.LiquidityUSD < 25_000:
		conf -= 40
	case s.LiquidityUSD < 50_000:
		conf -= 25
	case s.LiquidityUSD < 100_000:
		conf -= 10
	}

	switch {
	case s.AgeHours < 1:
		conf -= 30
	case s.AgeHours < 6:
		conf -= 15
	case s.AgeHours < 12:
		conf -= 5
	}

	txns := s.TotalTxns24h()
	switch {
	case txns < 50:
		conf -= 25
	case txns < 150:
		conf -= 10
	}

	if s.Volume24h < 10_000 {
		conf -= 15
	}

	return clamp(conf, 0, 100)
}
