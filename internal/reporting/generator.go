package reporting

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"tokenscout/internal/domain"
	"tokenscout/internal/storage"
)

// Generator produces performance reports from stored alerts, outcome
// analyses and the raw tick timeseries.
type Generator struct {
	alertStore    storage.AlertStore
	analysisStore storage.AnalysisStore
	tickStore     storage.TickStore // nil disables true-high stats
	now           func() time.Time  // Injectable clock for deterministic output
}

// NewGenerator creates a report generator. tickStore may be nil.
func NewGenerator(alerts storage.AlertStore, analyses storage.AnalysisStore, ticks storage.TickStore) *Generator {
	return &Generator{
		alertStore:    alerts,
		analysisStore: analyses,
		tickStore:     ticks,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate produces the report for alerts created within [start, end] ms.
func (g *Generator) Generate(ctx context.Context, start, end int64) (*Report, error) {
	alerts, err := g.alertStore.GetByTimeRange(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("load alerts: %w", err)
	}

	outcomes, analyses, err := g.collectOutcomes(ctx, alerts)
	if err != nil {
		return nil, err
	}

	return &Report{
		GeneratedAt:  g.now(),
		WindowStart:  start,
		WindowEnd:    end,
		Summary:      g.summarize(alerts, analyses, outcomes),
		Networks:     g.networkRows(alerts, analyses),
		ScoreDeciles: g.decileRows(alerts, analyses),
		Outcomes:     outcomes,
	}, nil
}

// collectOutcomes joins each alert to its analysis and tick high. Alerts
// without an analysis (still tracking) are skipped in the outcome rows.
func (g *Generator) collectOutcomes(ctx context.Context, alerts []*domain.Alert) ([]OutcomeRow, map[int64]*domain.AlertAnalysis, error) {
	analyses := make(map[int64]*domain.AlertAnalysis, len(alerts))
	var rows []OutcomeRow

	for _, a := range alerts {
		an, err := g.analysisStore.GetByAlert(ctx, a.ID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				continue
			}
			return nil, nil, fmt.Errorf("load analysis for alert %d: %w", a.ID, err)
		}
		analyses[a.ID] = an

		row := OutcomeRow{
			AlertID:      a.ID,
			TokenName:    a.TokenName,
			TokenAddress: a.TokenAddress,
			Network:      string(a.Network),
			CreatedAt:    a.CreatedAt,
			Score:        a.Score.FinalScore,
			Quality:      an.Quality.String(),
			BestROIPct:   an.BestROIPct,
			WorstROIPct:  an.WorstROIPct,
			ROI4hPct:     an.ROI4hPct,
			ROI24hPct:    an.ROI24hPct,
			Coherent:     an.Coherent,
		}

		if g.tickStore != nil {
			high, err := g.tickStore.TrueHigh(ctx, a.ID)
			if err == nil {
				roi := a.ROIPct(high)
				row.TrueHighROIPct = &roi
			} else if !errors.Is(err, storage.ErrNotFound) {
				return nil, nil, fmt.Errorf("load true high for alert %d: %w", a.ID, err)
			}
		}

		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].CreatedAt != rows[j].CreatedAt {
			return rows[i].CreatedAt < rows[j].CreatedAt
		}
		return rows[i].AlertID < rows[j].AlertID
	})

	return rows, analyses, nil
}

func (g *Generator) summarize(alerts []*domain.Alert, analyses map[int64]*domain.AlertAnalysis, outcomes []OutcomeRow) Summary {
	s := Summary{TotalAlerts: len(alerts)}

	for _, a := range alerts {
		if a.IsReAlert {
			s.ReAlerts++
		}
		if !a.IsClosed {
			s.StillOpen++
		}
	}

	coherent := 0
	var bestSum, roi4hSum, roi24hSum float64
	for _, an := range analyses {
		s.Analyzed++
		if an.TimeToTP1Min != nil {
			s.TP1Hits++
		}
		if an.TimeToTP2Min != nil {
			s.TP2Hits++
		}
		if an.TimeToTP3Min != nil {
			s.TP3Hits++
		}
		if an.TimeToSLMin != nil {
			s.SLHits++
		}
		if an.Coherent {
			coherent++
		}
		bestSum += an.BestROIPct
		roi4hSum += an.ROI4hPct
		roi24hSum += an.ROI24hPct
	}

	if s.Analyzed > 0 {
		n := float64(s.Analyzed)
		s.TP1Rate = float64(s.TP1Hits) / n
		s.TP2Rate = float64(s.TP2Hits) / n
		s.TP3Rate = float64(s.TP3Hits) / n
		s.SLRate = float64(s.SLHits) / n
		s.CoherentRate = float64(coherent) / n
		s.AvgBestROIPct = bestSum / n
		s.Avg4hROIPct = roi4hSum / n
		s.Avg24hROIPct = roi24hSum / n
	}

	var highSum float64
	for _, row := range outcomes {
		if row.TrueHighROIPct != nil {
			s.TrueHighSampled++
			highSum += *row.TrueHighROIPct
		}
	}
	if s.TrueHighSampled > 0 {
		s.AvgTrueHighROIPct = highSum / float64(s.TrueHighSampled)
	}

	return s
}

func (g *Generator) networkRows(alerts []*domain.Alert, analyses map[int64]*domain.AlertAnalysis) []NetworkRow {
	type acc struct {
		alerts, analyzed, tp1, sl int
		roi4hSum                  float64
	}
	groups := make(map[string]*acc)

	for _, a := range alerts {
		net := string(a.Network)
		if groups[net] == nil {
			groups[net] = &acc{}
		}
		grp := groups[net]
		grp.alerts++

		an := analyses[a.ID]
		if an == nil {
			continue
		}
		grp.analyzed++
		if an.TimeToTP1Min != nil {
			grp.tp1++
		}
		if an.TimeToSLMin != nil {
			grp.sl++
		}
		grp.roi4hSum += an.ROI4hPct
	}

	var rows []NetworkRow
	for net, grp := range groups {
		row := NetworkRow{Network: net, Alerts: grp.alerts, Analyzed: grp.analyzed}
		if grp.analyzed > 0 {
			n := float64(grp.analyzed)
			row.TP1Rate = float64(grp.tp1) / n
			row.SLRate = float64(grp.sl) / n
			row.Avg4hROIPct = grp.roi4hSum / n
		}
		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].Network < rows[j].Network })
	return rows
}

// decileRows buckets analyzed alerts by emission score in steps of ten.
// Empty buckets are omitted.
func (g *Generator) decileRows(alerts []*domain.Alert, analyses map[int64]*domain.AlertAnalysis) []DecileRow {
	type acc struct {
		alerts, tp1, coherent int
		roi4hSum              float64
	}
	buckets := make(map[int]*acc)

	for _, a := range alerts {
		an := analyses[a.ID]
		if an == nil {
			continue
		}
		d := int(a.Score.FinalScore) / 10 * 10
		if d > 90 {
			d = 90
		}
		if buckets[d] == nil {
			buckets[d] = &acc{}
		}
		b := buckets[d]
		b.alerts++
		if an.TimeToTP1Min != nil {
			b.tp1++
		}
		if an.Coherent {
			b.coherent++
		}
		b.roi4hSum += an.ROI4hPct
	}

	var deciles []int
	for d := range buckets {
		deciles = append(deciles, d)
	}
	sort.Ints(deciles)

	var rows []DecileRow
	for _, d := range deciles {
		b := buckets[d]
		n := float64(b.alerts)
		rows = append(rows, DecileRow{
			Label:        fmt.Sprintf("%d-%d", d, d+9),
			Alerts:       b.alerts,
			TP1Rate:      float64(b.tp1) / n,
			Avg4hROIPct:  b.roi4hSum / n,
			CoherentRate: float64(b.coherent) / n,
		})
	}
	return rows
}
