package strategy

import (
	"tokenscout/internal/config"
	"tokenscout/internal/domain"
)

// tpMultiplier widens or narrows take-profit targets by tier. Stop-loss is
// never loosened: sizing absorbs conviction, the stop does not.
func tpMultiplier(tier domain.SignalTier) float64 {
	switch tier {
	case domain.TierAPlusPlus:
		return 1.2
	case domain.TierB:
		return 0.8
	default:
		return 1.0
	}
}

// ApplyLevels computes the absolute SL/TP prices on an alert from its entry
// price, the network level percents and the signal tier.
func ApplyLevels(a *domain.Alert, lv config.Levels, tier domain.SignalTier) {
	mult := tpMultiplier(tier)

	a.StopLossPct = lv.StopLossPct
	a.TP1Pct = lv.TP1Pct * mult
	a.TP2Pct = lv.TP2Pct * mult
	a.TP3Pct = lv.TP3Pct * mult

	a.StopLossPrice = a.EntryPrice * (1 + a.StopLossPct/100)
	a.TP1Price = a.EntryPrice * (1 + a.TP1Pct/100)
	a.TP2Price = a.EntryPrice * (1 + a.TP2Pct/100)
	a.TP3Price = a.EntryPrice * (1 + a.TP3Pct/100)
}
