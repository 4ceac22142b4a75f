package domain

// Fixed tracking horizons in minutes. HorizonContinuous is the synthetic
// zero-offset point maintained by the continuous updater between fixed fires.
const (
	HorizonContinuous = 0
	Horizon15m        = 15
	Horizon1h         = 60
	Horizon4h         = 240
	Horizon24h        = 1440
)

// TrackingHorizons lists the fixed sample offsets registered per alert.
var TrackingHorizons = []int{Horizon15m, Horizon1h, Horizon4h, Horizon24h}

// TrackingPoint is one price sample for an alert at a fixed horizon.
// At most one row per (alert_id, horizon_minutes); upsert semantics.
// Corresponds to tracking_points table in PostgreSQL.
type TrackingPoint struct {
	AlertID        int64
	HorizonMinutes int
	Price          float64
	ROIPct         float64

	SLHit  bool
	TP1Hit bool
	TP2Hit bool
	TP3Hit bool

	// Running extremes for the alert at the time of this sample.
	// Highest never decreases and lowest never increases across upserts.
	HighestPrice float64
	LowestPrice  float64

	RecordedAt int64 // Unix timestamp in milliseconds
}

// PriceTick is a raw continuous observation appended to the timeseries
// store for backtest-grade true-high analysis. No uniqueness constraint.
type PriceTick struct {
	AlertID      int64
	TokenAddress string
	Network      Network
	Price        float64
	LiquidityUSD float64
	Volume24h    float64
	ObservedAt   int64 // Unix timestamp in milliseconds
}
