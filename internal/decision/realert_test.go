package decision

import (
	"strings"
	"testing"
	"time"

	"tokenscout/internal/config"
	"tokenscout/internal/domain"
)

func testGate() *Gate {
	return NewGate(config.ReAlertConfig{
		TP1TolerancePct: 0.5,
		MovePct:         5,
		MinInterval:     4 * time.Hour,
	})
}

func priorAlert(createdAt time.Time) *domain.Alert {
	return &domain.Alert{
		ID:           1,
		TokenAddress: "0xabc",
		Network:      domain.NetworkEth,
		EntryPrice:   1.00,
		TP1Price:     1.05,
		HighestPrice: 1.00,
		LowestPrice:  1.00,
		CreatedAt:    createdAt.UnixMilli(),
	}
}

func TestShouldAlert_FirstAlertAlwaysFires(t *testing.T) {
	gate := testGate()

	ok, reason := gate.ShouldAlert(nil, 1.00, domain.PumpNormal, time.Now())
	if !ok {
		t.Fatal("first alert must always fire")
	}
	if reason != ReasonFirstAlert {
		t.Errorf("reason: got %q, want %q", reason, ReasonFirstAlert)
	}
}

func TestShouldAlert_TP1ReachedWithinTolerance(t *testing.T) {
	gate := testGate()
	now := time.Now()

	// entry=$1.00, tp1=$1.05; 20 minutes later running max reached $1.051.
	prev := priorAlert(now.Add(-20 * time.Minute))
	prev.HighestPrice = 1.051

	ok, reason := gate.ShouldAlert(prev, 1.00, domain.PumpNormal, now)
	if !ok {
		t.Fatal("expected re-alert when running max reached TP1")
	}
	if reason != ReasonTP1Reached {
		t.Errorf("reason: got %q, want %q", reason, ReasonTP1Reached)
	}

	// Tolerance: 1.045 is within 0.5% of TP1 1.05.
	prev.HighestPrice = 1.0448
	if ok, _ := gate.ShouldAlert(prev, 1.00, domain.PumpNormal, now); !ok {
		t.Error("expected re-alert with running max just inside tolerance")
	}

	prev.HighestPrice = 1.0440
	if ok, _ := gate.ShouldAlert(prev, 1.00, domain.PumpNormal, now); ok {
		t.Error("expected suppression with running max outside tolerance")
	}
}

func TestShouldAlert_PriceMoveEitherDirection(t *testing.T) {
	gate := testGate()
	now := time.Now()
	prev := priorAlert(now.Add(-30 * time.Minute))

	ok, reason := gate.ShouldAlert(prev, 1.06, domain.PumpNormal, now)
	if !ok {
		t.Error("expected re-alert on +6% move")
	}
	if !strings.HasPrefix(reason, ReasonPriceMoved) {
		t.Errorf("reason: got %q", reason)
	}

	if ok, _ := gate.ShouldAlert(prev, 0.94, domain.PumpNormal, now); !ok {
		t.Error("expected re-alert on -6% move")
	}

	if ok, _ := gate.ShouldAlert(prev, 1.04, domain.PumpNormal, now); ok {
		t.Error("expected suppression on +4% move")
	}
}

func TestShouldAlert_IntervalElapsed(t *testing.T) {
	gate := testGate()
	now := time.Now()

	prev := priorAlert(now.Add(-5 * time.Hour))
	ok, reason := gate.ShouldAlert(prev, 1.00, domain.PumpNormal, now)
	if !ok {
		t.Error("expected re-alert after interval elapsed")
	}
	if reason != ReasonTimeElapsed {
		t.Errorf("reason: got %q, want %q", reason, ReasonTimeElapsed)
	}
}

func TestShouldAlert_ParabolicOverride(t *testing.T) {
	gate := testGate()
	now := time.Now()

	// Nothing else qualifies, but a parabolic pump fires anyway.
	prev := priorAlert(now.Add(-10 * time.Minute))
	ok, reason := gate.ShouldAlert(prev, 1.003, domain.PumpParabolic, now)
	if !ok {
		t.Fatal("parabolic pump must override suppression")
	}
	if reason != ReasonParabolic {
		t.Errorf("reason: got %q, want %q", reason, ReasonParabolic)
	}
}

func TestShouldAlert_AntiSpamDefault(t *testing.T) {
	gate := testGate()
	now := time.Now()

	// Price within 1% of prior entry, <1h elapsed, non-parabolic: suppress.
	prev := priorAlert(now.Add(-40 * time.Minute))
	ok, reason := gate.ShouldAlert(prev, 1.009, domain.PumpNormal, now)
	if ok {
		t.Fatal("expected suppression")
	}
	if reason != ReasonSuppressed {
		t.Errorf("reason: got %q, want %q", reason, ReasonSuppressed)
	}
}

func TestFollowUpNote(t *testing.T) {
	prev := &domain.Alert{
		EntryPrice:    1.00,
		StopLossPrice: 0.85,
		TP1Price:      1.08,
	}

	tests := []struct {
		price float64
		want  string
	}{
		{1.10, NoteNewLevels},
		{1.08, NoteNewLevels},
		{1.03, NoteSecureHold},
		{0.95, NoteSecureHold},
		{0.85, NoteExit},
		{0.70, NoteExit},
		{0, ""},
	}
	for _, tt := range tests {
		if got := FollowUpNote(prev, tt.price); got != tt.want {
			t.Errorf("FollowUpNote(%.2f): got %q, want %q", tt.price, got, tt.want)
		}
	}

	if got := FollowUpNote(nil, 1.0); got != "" {
		t.Errorf("nil prior alert: got %q, want empty", got)
	}
}

func TestShouldAlert_ZeroPriceIsNotAMove(t *testing.T) {
	gate := testGate()
	now := time.Now()

	// A missing price from the oracle must not read as a -100% move.
	prev := priorAlert(now.Add(-10 * time.Minute))
	if ok, _ := gate.ShouldAlert(prev, 0, domain.PumpNormal, now); ok {
		t.Error("zero price must not trigger a price-move re-alert")
	}
}
