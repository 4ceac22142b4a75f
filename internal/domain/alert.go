package domain

import "fmt"

// Alert is the central durable entity, one per emission decision.
// Append-only: never mutated after creation except for the denormalized
// highest/lowest price fields and the closed flag, owned by the tracker.
// Corresponds to alerts table in PostgreSQL.
type Alert struct {
	ID           int64 // BIGSERIAL, 0 until saved
	TokenAddress string
	TokenName    string
	Network      Network

	EntryPrice    float64
	StopLossPrice float64
	StopLossPct   float64 // negative percent below entry
	TP1Price      float64
	TP1Pct        float64
	TP2Price      float64
	TP2Pct        float64
	TP3Price      float64
	TP3Pct        float64

	Score    ScoreResult
	Snapshot PoolSnapshot

	Condition MarketCondition

	IsReAlert    bool
	PrevAlertID  *int64 // set on re-alerts
	ReAlertNote  string // e.g. NEW_LEVELS / SECURE_HOLD / EXIT on re-alerts

	HighestPrice float64 // running max, monotonic non-decreasing
	LowestPrice  float64 // running min, monotonic non-increasing
	IsClosed     bool

	CreatedAt int64 // Unix timestamp in milliseconds
}

// ValidateLevels enforces the strict price-level ordering required before
// an alert may be persisted.
func (a *Alert) ValidateLevels() error {
	if a.EntryPrice <= 0 {
		return fmt.Errorf("entry price must be positive, got %g", a.EntryPrice)
	}
	if !(a.StopLossPrice < a.EntryPrice &&
		a.EntryPrice < a.TP1Price &&
		a.TP1Price < a.TP2Price &&
		a.TP2Price < a.TP3Price) {
		return fmt.Errorf("levels out of order: sl=%g entry=%g tp1=%g tp2=%g tp3=%g",
			a.StopLossPrice, a.EntryPrice, a.TP1Price, a.TP2Price, a.TP3Price)
	}
	return nil
}

// ROIPct returns percent return of price against the entry price.
func (a *Alert) ROIPct(price float64) float64 {
	if a.EntryPrice <= 0 {
		return 0
	}
	return (price - a.EntryPrice) / a.EntryPrice * 100
}
