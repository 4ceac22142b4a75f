package scoring

import (
	"testing"

	"tokenscout/internal/domain"
)

func TestMomentumBonus_Bounds(t *testing.T) {
	cases := []*domain.PoolSnapshot{
		{PriceChange1h: 150, PriceChange24h: 300, Buys1h: 500, Sells1h: 100, Buyers1h: 200, Sellers1h: 50, Buys24h: 1000, Sells24h: 400},
		{PriceChange1h: -50, PriceChange24h: -80, Buys1h: 5, Sells1h: 200, Buyers1h: 3, Sellers1h: 80, Buys24h: 100, Sells24h: 900},
		{},
	}
	for i, s := range cases {
		got := MomentumBonus(s)
		if got < -20 || got > 30 {
			t.Errorf("case %d: MomentumBonus out of [-20,30]: %v", i, got)
		}
	}
}

func TestMomentumBonus_DeadCatBounce(t *testing.T) {
	// Small green 1h candle on a -25% day is penalized, not rewarded.
	if got := priceAccelerationBonus(5, -25); got != -10 {
		t.Errorf("dead-cat bounce: got %v, want -10", got)
	}
	// The same 1h move on a flat day earns the acceleration bonus.
	if got := priceAccelerationBonus(5, 0); got != 7 {
		t.Errorf("clean acceleration: got %v, want 7", got)
	}
}

func TestMomentumBonus_DeepDowntrendCap(t *testing.T) {
	s := &domain.PoolSnapshot{
		PriceChange1h:  60, // very rapid
		PriceChange24h: -35,
		Buys1h:         300, Sells1h: 50,
		Buyers1h: 150, Sellers1h: 40,
		Buys24h: 500, Sells24h: 400,
	}
	if got := MomentumBonus(s); got > 10 {
		t.Errorf("bonus on -35%% day must cap at 10, got %v", got)
	}

	s.PriceChange24h = -25
	if got := MomentumBonus(s); got > 15 {
		t.Errorf("bonus on -25%% day must cap at 15, got %v", got)
	}
}

func TestVolumeSpikeBonus_PanicSell(t *testing.T) {
	// 1h rate projects to 2x the 24h activity while price falls hard.
	s := &domain.PoolSnapshot{
		Buys1h: 20, Sells1h: 80,
		Buys24h: 500, Sells24h: 700,
		PriceChange1h: -8,
	}
	if got := volumeSpikeBonus(s); got != -10 {
		t.Errorf("panic-sell spike: got %v, want -10", got)
	}

	s.PriceChange1h = 4
	if got := volumeSpikeBonus(s); got != 10 {
		t.Errorf("accumulation spike: got %v, want 10", got)
	}
}

func TestVelocityTierBonus(t *testing.T) {
	cases := []struct {
		velocity float64
		want     float64
	}{
		{120, 20},
		{60, 18},
		{25, 15},
		{12, 10},
		{6, 5},
		{2, -5},
	}
	for _, tc := range cases {
		if got := velocityTierBonus(tc.velocity); got != tc.want {
			t.Errorf("velocityTierBonus(%v): got %v, want %v", tc.velocity, got, tc.want)
		}
	}
}
