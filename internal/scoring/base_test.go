package scoring

import (
	"testing"

	"tokenscout/internal/config"
	"tokenscout/internal/domain"
)

func ethConfig() config.NetworkConfig {
	return config.DefaultNetworks()[domain.NetworkEth]
}

// Jackpot-zone snapshot: eth pool in the 100k-200k liquidity sweet spot,
// mature age band, healthy volume and balanced flow.
func jackpotSnapshot() *domain.PoolSnapshot {
	return &domain.PoolSnapshot{
		Network:        domain.NetworkEth,
		TokenAddress:   "0x1111111111111111111111111111111111111111",
		PriceUSD:       0.5,
		LiquidityUSD:   150_000,
		Volume24h:      600_000,
		AgeHours:       50,
		PriceChange24h: 10,
		Buys24h:        450,
		Sells24h:       550,
		Buyers24h:      300,
		Sellers24h:     320,
	}
}

func TestBaseScore_JackpotZoneTerms(t *testing.T) {
	s := jackpotSnapshot()
	nc := ethConfig()

	// Each additive term recomputed independently.
	if nc.ReputationBonus != 35 {
		t.Errorf("eth reputation bonus: got %v, want 35", nc.ReputationBonus)
	}
	if !nc.SweetSpot.Contains(s.LiquidityUSD) || nc.SweetSpotBonus != 15 {
		t.Errorf("150k should sit in eth sweet spot with bonus 15, got %v", nc.SweetSpotBonus)
	}
	if got := liquidityTierBonus(s.LiquidityUSD); got != 25 {
		t.Errorf("liquidity tier bonus: got %v, want 25", got)
	}
	if got := volumeTierBonus(s.Volume24h); got != 15 {
		t.Errorf("volume tier bonus: got %v, want 15", got)
	}
	if got := ageTierBonus(s.AgeHours); got != 25 {
		t.Errorf("age tier bonus: got %v, want 25", got)
	}
	// vol/liq = 4.0: +5 for high ratio with sub-2M volume, -10 for ratio > 3.
	if got := volLiqRatioBonus(s.VolLiqRatio(), s.Volume24h); got != -5 {
		t.Errorf("vol/liq ratio bonus: got %v, want -5", got)
	}
	if got := buySellBalanceBonus(s.BuySellRatio24h()); got != 15 {
		t.Errorf("buy/sell balance bonus: got %v, want 15", got)
	}
	if got := crashPenalty(s.PriceChange24h); got != 0 {
		t.Errorf("crash penalty: got %v, want 0", got)
	}
	// 550/1000 = 55% sells, below the 60% penalty floor.
	if got := sellPressurePenalty(s.SellPressure24h()); got != 0 {
		t.Errorf("sell pressure penalty: got %v, want 0", got)
	}

	// Raw sum 35+15+25+15+25-5+15 = 125, clamped to 100.
	if got := BaseScore(s, nc); got != 100 {
		t.Errorf("BaseScore: got %v, want 100", got)
	}
}

func TestBaseScore_ZeroLiquidity(t *testing.T) {
	s := jackpotSnapshot()
	s.LiquidityUSD = 0

	if got := BaseScore(s, ethConfig()); got != 0 {
		t.Errorf("zero liquidity must score 0, got %v", got)
	}
}

func TestBaseScore_Bounds(t *testing.T) {
	cases := []struct {
		name string
		mod  func(*domain.PoolSnapshot)
	}{
		{"jackpot", func(*domain.PoolSnapshot) {}},
		{"crash", func(s *domain.PoolSnapshot) { s.PriceChange24h = -60 }},
		{"dump", func(s *domain.PoolSnapshot) {
			s.Buys24h, s.Sells24h = 50, 950
			s.PriceChange24h = -45
			s.AgeHours = 15
		}},
		{"dust", func(s *domain.PoolSnapshot) {
			s.LiquidityUSD = 100
			s.Volume24h = 10
			s.Buys24h, s.Sells24h = 0, 0
		}},
		{"negative fields", func(s *domain.PoolSnapshot) {
			s.Volume24h = -1
			s.AgeHours = -5
			s.PriceChange24h = -999
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := jackpotSnapshot()
			tc.mod(s)
			got := BaseScore(s, ethConfig())
			if got < 0 || got > 100 {
				t.Errorf("BaseScore out of [0,100]: %v", got)
			}
		})
	}
}

func TestAgeTierBonus_DangerZone(t *testing.T) {
	// 12-24h gets the 6-24h tier bonus minus the danger penalty.
	if got := ageTierBonus(18); got != 0 {
		t.Errorf("danger zone age bonus: got %v, want 0 (15 - 15)", got)
	}
	if got := ageTierBonus(30); got != 20 {
		t.Errorf("24-48h age bonus: got %v, want 20", got)
	}
}

func TestSellPressurePenalty_Tiers(t *testing.T) {
	cases := []struct {
		fraction float64
		want     float64
	}{
		{0.75, -25},
		{0.68, -20},
		{0.62, -12},
		{0.55, 0},
	}
	for _, tc := range cases {
		if got := sellPressurePenalty(tc.fraction); got != tc.want {
			t.Errorf("sellPressurePenalty(%v): got %v, want %v", tc.fraction, got, tc.want)
		}
	}
}
