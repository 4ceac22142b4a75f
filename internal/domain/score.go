package domain

// ScoreResult is the composite opportunity score for one snapshot.
// Recomputed every cycle; embedded into an Alert at emission time.
type ScoreResult struct {
	BaseScore     float64 // 0..100
	MomentumBonus float64 // -20..+30
	Whale         WhaleAssessment
	FinalScore    float64 // clamp(base+momentum+whale, 0, 100)

	// Confidence discounts the score when the underlying data is thin
	// (low liquidity, very young token, few transactions). 0..100.
	Confidence float64

	Velocity float64  // percent price change per hour
	PumpType PumpType // derived from Velocity

	// Tier is set when a network strategy exists for the snapshot's
	// network, or forced to ULTRA_HIGH for watchlist tokens; it augments
	// sizing, never the 0-100 score.
	Tier SignalTier
}
