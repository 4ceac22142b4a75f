package domain

// PumpType coarsely classifies price-movement shape from velocity.
type PumpType string

const (
	PumpParabolic PumpType = "PARABOLIC"
	PumpVeryRapid PumpType = "VERY_RAPID"
	PumpRapid     PumpType = "RAPID"
	PumpNormal    PumpType = "NORMAL"
	PumpSlow      PumpType = "SLOW"
	PumpStagnant  PumpType = "STAGNANT"
	PumpStable    PumpType = "STABLE"
)

// String returns the string representation of PumpType.
func (p PumpType) String() string {
	return string(p)
}

// IsSlowMover reports whether this pump type belongs to the historically
// loss-making slow classifications rejected by the filter pipeline.
func (p PumpType) IsSlowMover() bool {
	return p == PumpSlow || p == PumpStagnant || p == PumpStable
}

// SignalTier is the per-network strategy grade. Empty means no tier assigned.
type SignalTier string

const (
	TierAPlusPlus SignalTier = "A++"
	TierAPlus     SignalTier = "A+"
	TierA         SignalTier = "A"
	TierB         SignalTier = "B"
	TierNone      SignalTier = ""

	// TierUltraHigh is the phantom grade for watchlist tokens. It is
	// assigned by the emission engine, not by a network strategy.
	TierUltraHigh SignalTier = "ULTRA_HIGH"
)

// PositionSizePct returns position sizing for the tier as a percent of the
// base position unit.
func (t SignalTier) PositionSizePct() float64 {
	switch t {
	case TierAPlusPlus:
		return 125
	case TierAPlus, TierUltraHigh:
		return 100
	case TierA:
		return 75
	case TierB:
		return 50
	default:
		return 0
	}
}

// MarketCondition is the advisory market-state classification on an alert.
type MarketCondition string

const (
	ConditionBuy  MarketCondition = "BUY"
	ConditionWait MarketCondition = "WAIT"
	ConditionExit MarketCondition = "EXIT"
)

// String returns the string representation of MarketCondition.
func (c MarketCondition) String() string {
	return string(c)
}
