package reporting

import "time"

// Report is the performance summary over a window of alerts.
type Report struct {
	// Metadata
	GeneratedAt time.Time
	WindowStart int64 // Unix ms
	WindowEnd   int64 // Unix ms

	Summary Summary

	// Per-network breakdown (sorted by network)
	Networks []NetworkRow

	// Score-decile breakdown: does a higher score actually earn more?
	ScoreDeciles []DecileRow

	// Per-alert outcome rows (sorted by created_at), the CSV payload.
	Outcomes []OutcomeRow
}

// Summary aggregates the whole window. Hit rates are fractions of analyzed
// alerts, not of all alerts.
type Summary struct {
	TotalAlerts int
	ReAlerts    int
	Analyzed    int
	StillOpen   int

	TP1Hits int
	TP2Hits int
	TP3Hits int
	SLHits  int

	TP1Rate float64
	TP2Rate float64
	TP3Rate float64
	SLRate  float64

	CoherentRate float64

	AvgBestROIPct float64
	Avg4hROIPct   float64
	Avg24hROIPct  float64

	// True-high stats from the raw tick timeseries; zero when no tick
	// store is configured.
	AvgTrueHighROIPct float64
	TrueHighSampled   int
}

// NetworkRow is the per-network slice of the summary.
type NetworkRow struct {
	Network     string
	Alerts      int
	Analyzed    int
	TP1Rate     float64
	SLRate      float64
	Avg4hROIPct float64
}

// DecileRow buckets analyzed alerts by emission score.
type DecileRow struct {
	Label        string // e.g. "70-79"
	Alerts       int
	TP1Rate      float64
	Avg4hROIPct  float64
	CoherentRate float64
}

// OutcomeRow is one analyzed alert.
type OutcomeRow struct {
	AlertID      int64
	TokenName    string
	TokenAddress string
	Network      string
	CreatedAt    int64
	Score        float64
	Quality      string
	BestROIPct   float64
	WorstROIPct  float64
	ROI4hPct     float64
	ROI24hPct    float64
	Coherent     bool

	// TrueHighROIPct is the tick-timeseries maximum against entry; nil when
	// no ticks were recorded for the alert.
	TrueHighROIPct *float64
}
