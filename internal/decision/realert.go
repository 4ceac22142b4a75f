package decision

import (
	"fmt"
	"time"

	"tokenscout/internal/config"
	"tokenscout/internal/domain"
)

// Re-alert gate reasons attached to accepted emissions.
const (
	ReasonFirstAlert  = "first alert"
	ReasonTP1Reached  = "TP1 reached"
	ReasonPriceMoved  = "price moved"
	ReasonTimeElapsed = "re-alert interval elapsed"
	ReasonParabolic   = "parabolic override"
	ReasonSuppressed  = "suppressed"
)

// Gate decides whether a token that passed filtering gets a new alert.
// Suppression is the default; the durable alert history is the only state,
// so a process restart cannot reset the anti-spam clock.
type Gate struct {
	cfg config.ReAlertConfig
}

// NewGate creates a re-alert gate with the given policy.
func NewGate(cfg config.ReAlertConfig) *Gate {
	return &Gate{cfg: cfg}
}

// ShouldAlert reports whether an alert should be emitted for a token given
// its most recent prior alert (nil when the token has no history), the
// current price, and this cycle's pump classification.
//
// A first alert always fires. A re-alert fires when at least one holds:
// the prior alert's running max reached its TP1 within tolerance, the price
// moved beyond the configured percentage from the prior entry in either
// direction, the minimum interval elapsed, or the pump is parabolic.
func (g *Gate) ShouldAlert(prev *domain.Alert, currentPrice float64, pump domain.PumpType, now time.Time) (bool, string) {
	if prev == nil {
		return true, ReasonFirstAlert
	}

	if pump == domain.PumpParabolic {
		return true, ReasonParabolic
	}

	// (a) running max reached prior TP1 within tolerance
	tp1Floor := prev.TP1Price * (1 - g.cfg.TP1TolerancePct/100)
	if prev.TP1Price > 0 && prev.HighestPrice >= tp1Floor {
		return true, ReasonTP1Reached
	}

	// (b) price moved beyond the threshold from prior entry, either direction
	if prev.EntryPrice > 0 && currentPrice > 0 {
		movePct := (currentPrice - prev.EntryPrice) / prev.EntryPrice * 100
		if movePct >= g.cfg.MovePct || movePct <= -g.cfg.MovePct {
			return true, fmt.Sprintf("%s %+.1f%%", ReasonPriceMoved, movePct)
		}
	}

	// (c) minimum interval elapsed since the prior alert
	elapsed := now.Sub(time.UnixMilli(prev.CreatedAt))
	if elapsed >= g.cfg.MinInterval {
		return true, ReasonTimeElapsed
	}

	return false, ReasonSuppressed
}

// Re-alert follow-up notes persisted on accepted re-alerts.
const (
	NoteNewLevels  = "NEW_LEVELS"  // prior TP1 cleared, levels recomputed
	NoteSecureHold = "SECURE_HOLD" // in profit below TP1, hold position
	NoteExit       = "EXIT"        // below prior stop territory
)

// FollowUpNote classifies what an accepted re-alert means for a holder of
// the prior alert.
func FollowUpNote(prev *domain.Alert, currentPrice float64) string {
	if prev == nil || prev.EntryPrice <= 0 || currentPrice <= 0 {
		return ""
	}
	switch {
	case currentPrice >= prev.TP1Price && prev.TP1Price > 0:
		return NoteNewLevels
	case currentPrice <= prev.StopLossPrice && prev.StopLossPrice > 0:
		return NoteExit
	default:
		return NoteSecureHold
	}
}
