package reporting

import (
	"fmt"
	"strings"
)

// RenderCSV renders per-alert outcome rows as a CSV string.
func RenderCSV(outcomes []OutcomeRow) string {
	var sb strings.Builder

	// Header
	sb.WriteString("alert_id,token_name,token_address,network,created_at,score,quality,")
	sb.WriteString("best_roi_pct,worst_roi_pct,roi_4h_pct,roi_24h_pct,coherent,true_high_roi_pct\n")

	// Rows
	for _, o := range outcomes {
		trueHigh := ""
		if o.TrueHighROIPct != nil {
			trueHigh = fmt.Sprintf("%.6f", *o.TrueHighROIPct)
		}
		sb.WriteString(fmt.Sprintf("%d,%s,%s,%s,%d,%.2f,%s,%.6f,%.6f,%.6f,%.6f,%t,%s\n",
			o.AlertID,
			o.TokenName,
			o.TokenAddress,
			o.Network,
			o.CreatedAt,
			o.Score,
			o.Quality,
			o.BestROIPct,
			o.WorstROIPct,
			o.ROI4hPct,
			o.ROI24hPct,
			o.Coherent,
			trueHigh,
		))
	}

	return sb.String()
}
