package domain

// PoolSnapshot is one normalized observation of a pool, produced by the
// market-data collector once per scan cycle. Immutable after construction.
type PoolSnapshot struct {
	Network      Network
	TokenAddress string
	TokenName    string
	TokenSymbol  string
	PoolAddress  string

	PriceUSD     float64
	LiquidityUSD float64
	Volume1h     float64
	Volume6h     float64
	Volume24h    float64

	Buys1h    int
	Sells1h   int
	Buyers1h  int
	Sellers1h int

	Buys24h    int
	Sells24h   int
	Buyers24h  int
	Sellers24h int

	AgeHours float64

	PriceChange1h  float64 // percent
	PriceChange6h  float64 // percent
	PriceChange24h float64 // percent

	ObservedAt int64 // Unix timestamp in milliseconds
}

// TotalTxns24h returns buys+sells over the last 24h.
func (s *PoolSnapshot) TotalTxns24h() int {
	return s.Buys24h + s.Sells24h
}

// BuySellRatio24h returns buys/sells over 24h. Zero sells yields the buy
// count itself so that pure-buy pools still rank as extreme.
func (s *PoolSnapshot) BuySellRatio24h() float64 {
	if s.Sells24h == 0 {
		return float64(s.Buys24h)
	}
	return float64(s.Buys24h) / float64(s.Sells24h)
}

// BuySellRatio1h returns buys/sells over 1h with the same zero handling.
func (s *PoolSnapshot) BuySellRatio1h() float64 {
	if s.Sells1h == 0 {
		return float64(s.Buys1h)
	}
	return float64(s.Buys1h) / float64(s.Sells1h)
}

// VolLiqRatio returns volume24h / liquidity, or 0 when liquidity is 0.
func (s *PoolSnapshot) VolLiqRatio() float64 {
	if s.LiquidityUSD <= 0 {
		return 0
	}
	return s.Volume24h / s.LiquidityUSD
}

// SellPressure24h returns the fraction of 24h transactions that are sells.
func (s *PoolSnapshot) SellPressure24h() float64 {
	total := s.TotalTxns24h()
	if total == 0 {
		return 0
	}
	return float64(s.Sells24h) / float64(total)
}
