package domain

// PredictionQuality labels how well an alert's targets played out.
type PredictionQuality string

const (
	QualityExcellent PredictionQuality = "EXCELLENT" // TP3 reached
	QualityVeryGood  PredictionQuality = "VERY_GOOD" // TP2 reached
	QualityGood      PredictionQuality = "GOOD"      // TP1 reached
	QualityNeutral   PredictionQuality = "NEUTRAL"   // nothing touched
	QualityPoor      PredictionQuality = "POOR"      // SL touched, no TP
)

// String returns the string representation of PredictionQuality.
func (q PredictionQuality) String() string {
	return string(q)
}

// AlertAnalysis is the terminal outcome classification for one alert,
// produced once the 24h horizon fires. One row per alert; re-analysis
// overwrites. Corresponds to alert_analyses table in PostgreSQL.
type AlertAnalysis struct {
	AlertID int64

	BestROIPct  float64
	WorstROIPct float64
	ROI4hPct    float64
	ROI24hPct   float64

	// Minutes from alert creation to first touch; nil when never touched.
	TimeToSLMin  *int
	TimeToTP1Min *int
	TimeToTP2Min *int
	TimeToTP3Min *int

	Quality  PredictionQuality
	Coherent bool // high score correlated with profit (or low score with none)

	AnalyzedAt int64 // Unix timestamp in milliseconds
}
