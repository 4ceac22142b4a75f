package reporting

import (
	"fmt"
	"io"
	"time"

	"github.com/olekukonko/tablewriter"
)

// RenderTables writes the report as console tables.
func RenderTables(w io.Writer, r *Report) {
	fmt.Fprintf(w, "\nPERFORMANCE REPORT  %s\n", r.GeneratedAt.Format(time.RFC3339))
	fmt.Fprintf(w, "Window: %s — %s\n\n",
		time.UnixMilli(r.WindowStart).UTC().Format("2006-01-02 15:04"),
		time.UnixMilli(r.WindowEnd).UTC().Format("2006-01-02 15:04"))

	s := r.Summary
	fmt.Fprintf(w, "Alerts: %d (%d re-alerts, %d still open), analyzed: %d\n",
		s.TotalAlerts, s.ReAlerts, s.StillOpen, s.Analyzed)
	fmt.Fprintf(w, "Hit rates: TP1 %.0f%%  TP2 %.0f%%  TP3 %.0f%%  SL %.0f%%  |  coherent %.0f%%\n",
		s.TP1Rate*100, s.TP2Rate*100, s.TP3Rate*100, s.SLRate*100, s.CoherentRate*100)
	fmt.Fprintf(w, "Avg ROI: best %+.1f%%  4h %+.1f%%  24h %+.1f%%\n",
		s.AvgBestROIPct, s.Avg4hROIPct, s.Avg24hROIPct)
	if s.TrueHighSampled > 0 {
		fmt.Fprintf(w, "True high (ticks, %d alerts): avg %+.1f%%\n", s.TrueHighSampled, s.AvgTrueHighROIPct)
	}

	if len(r.Networks) > 0 {
		fmt.Fprintln(w)
		table := tablewriter.NewWriter(w)
		table.Header("Network", "Alerts", "Analyzed", "TP1 rate", "SL rate", "Avg 4h ROI")
		for _, row := range r.Networks {
			table.Append(
				row.Network,
				fmt.Sprintf("%d", row.Alerts),
				fmt.Sprintf("%d", row.Analyzed),
				fmt.Sprintf("%.0f%%", row.TP1Rate*100),
				fmt.Sprintf("%.0f%%", row.SLRate*100),
				fmt.Sprintf("%+.1f%%", row.Avg4hROIPct),
			)
		}
		table.Render()
	}

	if len(r.ScoreDeciles) > 0 {
		fmt.Fprintln(w)
		table := tablewriter.NewWriter(w)
		table.Header("Score", "Alerts", "TP1 rate", "Avg 4h ROI", "Coherent")
		for _, row := range r.ScoreDeciles {
			table.Append(
				row.Label,
				fmt.Sprintf("%d", row.Alerts),
				fmt.Sprintf("%.0f%%", row.TP1Rate*100),
				fmt.Sprintf("%+.1f%%", row.Avg4hROIPct),
				fmt.Sprintf("%.0f%%", row.CoherentRate*100),
			)
		}
		table.Render()
	}

	if len(r.Outcomes) > 0 {
		fmt.Fprintln(w)
		table := tablewriter.NewWriter(w)
		table.Header("ID", "Token", "Network", "Score", "Quality", "Best", "4h", "24h", "True high")
		for _, row := range r.Outcomes {
			trueHigh := "-"
			if row.TrueHighROIPct != nil {
				trueHigh = fmt.Sprintf("%+.1f%%", *row.TrueHighROIPct)
			}
			table.Append(
				fmt.Sprintf("%d", row.AlertID),
				row.TokenName,
				row.Network,
				fmt.Sprintf("%.0f", row.Score),
				row.Quality,
				fmt.Sprintf("%+.1f%%", row.BestROIPct),
				fmt.Sprintf("%+.1f%%", row.ROI4hPct),
				fmt.Sprintf("%+.1f%%", row.ROI24hPct),
				trueHigh,
			)
		}
		table.Render()
	}
}
