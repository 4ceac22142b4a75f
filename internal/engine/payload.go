package engine

import (
	"fmt"
	"strconv"
	"strings"

	"tokenscout/internal/decision"
	"tokenscout/internal/domain"
)

// Payload renders the notification text for an emitted alert. The sink
// treats it as opaque; emission success never depends on its content.
func Payload(a *domain.Alert, cls decision.Classification, reason string) string {
	var b strings.Builder

	header := "NEW ALERT"
	if a.IsReAlert {
		header = "RE-ALERT"
	}
	fmt.Fprintf(&b, "*%s* — %s (%s)\n", header, a.TokenName, a.Network)
	fmt.Fprintf(&b, "`%s`\n\n", a.TokenAddress)

	fmt.Fprintf(&b, "Score: %.1f", a.Score.FinalScore)
	if a.Score.Tier != domain.TierNone {
		fmt.Fprintf(&b, " | Tier %s (size %.0f%%)", a.Score.Tier, a.Score.Tier.PositionSizePct())
	}
	fmt.Fprintf(&b, " | %s %.1f%%/h\n", a.Score.PumpType, a.Score.Velocity)
	fmt.Fprintf(&b, "Condition: *%s*\n\n", a.Condition)

	fmt.Fprintf(&b, "Entry: %s\n", fmtPrice(a.EntryPrice))
	fmt.Fprintf(&b, "SL:  %s (%.1f%%)\n", fmtPrice(a.StopLossPrice), a.StopLossPct)
	fmt.Fprintf(&b, "TP1: %s (+%.1f%%)\n", fmtPrice(a.TP1Price), a.TP1Pct)
	fmt.Fprintf(&b, "TP2: %s (+%.1f%%)\n", fmtPrice(a.TP2Price), a.TP2Pct)
	fmt.Fprintf(&b, "TP3: %s (+%.1f%%)\n", fmtPrice(a.TP3Price), a.TP3Pct)

	if a.IsReAlert && a.ReAlertNote != "" {
		fmt.Fprintf(&b, "\nFollow-up: %s (%s)\n", a.ReAlertNote, reason)
	}

	writeReasons(&b, "Bullish", cls.Bullish)
	writeReasons(&b, "Bearish", cls.Bearish)
	writeReasons(&b, "Neutral", cls.Neutral)

	return b.String()
}

func writeReasons(b *strings.Builder, label string, reasons []string) {
	if len(reasons) == 0 {
		return
	}
	fmt.Fprintf(b, "\n%s:\n", label)
	for _, r := range reasons {
		fmt.Fprintf(b, "  - %s\n", r)
	}
}

// fmtPrice prints a USD price without float noise; micro-cap prices need
// the full fractional part.
func fmtPrice(p float64) string {
	return "$" + strconv.FormatFloat(p, 'f', -1, 64)
}
