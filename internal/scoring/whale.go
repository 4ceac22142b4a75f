package scoring

import "tokenscout/internal/domain"

// AnalyzeWhales classifies 1h buyer/seller concentration into a whale
// pattern and score delta. High sells-per-seller is the strongest bearish
// signal a snapshot can carry; distributed buying across many wallets is
// the strongest bullish one.
func AnalyzeWhales(s *domain.PoolSnapshot) domain.WhaleAssessment {
	out := domain.WhaleAssessment{
		Pattern:       domain.WhalePatternNormal,
		Concentration: ConcentrationFor(s),
	}

	avgBuys := perWallet(s.Buys1h, s.Buyers1h)
	avgSells := perWallet(s.Sells1h, s.Sellers1h)

	switch {
	case avgSells > 15:
		out.Pattern = domain.WhaleSelling
		out.Delta = -30
	case avgSells > 10:
		out.Pattern = domain.WhaleSelling
		out.Delta = -25
	case avgSells > 5 && s.Sellers1h > 0 && s.Sellers1h < 50:
		out.Pattern = domain.WhaleSelling
		out.Delta = -15
	case avgBuys > 15:
		out.Pattern = domain.WhaleManipulation
		out.Delta = -20
	case avgBuys > 10:
		out.Pattern = domain.WhaleManipulation
		out.Delta = -15
	case s.Buyers1h > 15 && float64(s.Buyers1h) > 1.5*float64(s.Sellers1h):
		out.Pattern = domain.DistributedBuying
		out.Delta = 15
	case s.Buyers1h > 10 && float64(s.Buyers1h) > 1.2*float64(s.Sellers1h):
		out.Pattern = domain.DistributedBuying
		out.Delta = 10
	case s.Sellers1h > 0 && float64(s.Sellers1h) > 1.3*float64(s.Buyers1h):
		out.Pattern = domain.DistributedSelling
		out.Delta = -10
	}

	// 24h concentration check stacks on top of the 1h pattern.
	if perWallet(s.Buys24h, s.Buyers24h) > 8 {
		out.Delta -= 8
		out.Concentration = domain.ConcentrationHigh
	}

	return out
}

// ConcentrationFor grades 24h wallet concentration.
func ConcentrationFor(s *domain.PoolSnapshot) domain.Concentration {
	avg := perWallet(s.TotalTxns24h(), s.Buyers24h+s.Sellers24h)
	switch {
	case avg > 8:
		return domain.ConcentrationHigh
	case avg > 3:
		return domain.ConcentrationNormal
	default:
		return domain.ConcentrationLow
	}
}

func perWallet(txns, wallets int) float64 {
	if wallets <= 0 {
		return 0
	}
	return float64(txns) / float64(wallets)
}
