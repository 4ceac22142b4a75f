package scoring

import (
	"testing"

	"tokenscout/internal/domain"
)

func TestAnalyzeWhales_Selling(t *testing.T) {
	// 320 sells across 20 sellers = 16 per wallet.
	s := &domain.PoolSnapshot{
		Sells1h: 320, Sellers1h: 20,
		Buys1h: 40, Buyers1h: 30,
	}
	got := AnalyzeWhales(s)
	if got.Pattern != domain.WhaleSelling {
		t.Fatalf("pattern: got %s, want WHALE_SELLING", got.Pattern)
	}
	if got.Delta != -30 {
		t.Errorf("delta: got %v, want -30", got.Delta)
	}
}

func TestAnalyzeWhales_Manipulation(t *testing.T) {
	s := &domain.PoolSnapshot{
		Buys1h: 120, Buyers1h: 10, // 12 buys per buyer
		Sells1h: 20, Sellers1h: 15,
	}
	got := AnalyzeWhales(s)
	if got.Pattern != domain.WhaleManipulation {
		t.Fatalf("pattern: got %s, want WHALE_MANIPULATION", got.Pattern)
	}
	if got.Delta != -15 {
		t.Errorf("delta: got %v, want -15", got.Delta)
	}
}

func TestAnalyzeWhales_DistributedBuying(t *testing.T) {
	s := &domain.PoolSnapshot{
		Buys1h: 60, Buyers1h: 40,
		Sells1h: 25, Sellers1h: 20,
	}
	got := AnalyzeWhales(s)
	if got.Pattern != domain.DistributedBuying {
		t.Fatalf("pattern: got %s, want DISTRIBUTED_BUYING", got.Pattern)
	}
	if got.Delta != 15 {
		t.Errorf("delta: got %v, want +15", got.Delta)
	}
}

func TestAnalyzeWhales_Normal(t *testing.T) {
	s := &domain.PoolSnapshot{
		Buys1h: 30, Buyers1h: 25,
		Sells1h: 28, Sellers1h: 24,
	}
	got := AnalyzeWhales(s)
	if got.Pattern != domain.WhalePatternNormal {
		t.Errorf("pattern: got %s, want NORMAL", got.Pattern)
	}
	if got.Delta != 0 {
		t.Errorf("delta: got %v, want 0", got.Delta)
	}
}

func TestAnalyzeWhales_24hConcentrationStacks(t *testing.T) {
	s := &domain.PoolSnapshot{
		Buys1h: 30, Buyers1h: 25,
		Sells1h: 28, Sellers1h: 24,
		Buys24h: 900, Buyers24h: 100, // 9 per wallet
	}
	got := AnalyzeWhales(s)
	if got.Delta != -8 {
		t.Errorf("delta with 24h concentration: got %v, want -8", got.Delta)
	}
	if got.Concentration != domain.ConcentrationHigh {
		t.Errorf("concentration: got %s, want HIGH", got.Concentration)
	}
}
