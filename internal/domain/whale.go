package domain

// WhalePattern classifies trade concentration among unique wallets.
type WhalePattern string

const (
	WhaleManipulation   WhalePattern = "WHALE_MANIPULATION"
	WhaleSelling        WhalePattern = "WHALE_SELLING"
	DistributedBuying   WhalePattern = "DISTRIBUTED_BUYING"
	DistributedSelling  WhalePattern = "DISTRIBUTED_SELLING"
	WhalePatternNormal  WhalePattern = "NORMAL"
)

// String returns the string representation of WhalePattern.
func (p WhalePattern) String() string {
	return string(p)
}

// IsValid checks if the pattern is a known value.
func (p WhalePattern) IsValid() bool {
	switch p {
	case WhaleManipulation, WhaleSelling, DistributedBuying, DistributedSelling, WhalePatternNormal:
		return true
	}
	return false
}

// Concentration grades how concentrated 24h activity is among wallets.
type Concentration string

const (
	ConcentrationLow    Concentration = "LOW"
	ConcentrationNormal Concentration = "NORMAL"
	ConcentrationHigh   Concentration = "HIGH"
)

// WhaleAssessment is the whale-analysis output attached to a score.
type WhaleAssessment struct {
	Pattern       WhalePattern
	Delta         float64 // score adjustment, negative for selling patterns
	Concentration Concentration
}
