// Package analysis classifies the terminal outcome of a tracked alert once
// its final horizon has fired.
package analysis

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"tokenscout/internal/domain"
	"tokenscout/internal/observability"
	"tokenscout/internal/storage"
)

// Analyzer derives the outcome record for an alert from its tracking points
// and closes the alert. Idempotent: re-running overwrites the same row.
type Analyzer struct {
	alerts   storage.AlertStore
	points   storage.TrackingStore
	analyses storage.AnalysisStore
	now      func() time.Time
}

// New creates an outcome analyzer.
func New(alerts storage.AlertStore, points storage.TrackingStore, analyses storage.AnalysisStore) *Analyzer {
	return &Analyzer{alerts: alerts, points: points, analyses: analyses, now: time.Now}
}

// Analyze computes and persists the outcome for one alert, then closes it.
func (an *Analyzer) Analyze(ctx context.Context, alertID int64) error {
	a, err := an.alerts.GetByID(ctx, alertID)
	if err != nil {
		return fmt.Errorf("load alert %d: %w", alertID, err)
	}
	points, err := an.points.GetByAlert(ctx, alertID)
	if err != nil {
		return fmt.Errorf("load tracking points for alert %d: %w", alertID, err)
	}

	res := derive(a, points, an.now().UnixMilli())
	if err := an.analyses.Upsert(ctx, res); err != nil {
		return fmt.Errorf("persist analysis for alert %d: %w", alertID, err)
	}
	if err := an.alerts.Close(ctx, alertID); err != nil {
		return fmt.Errorf("close alert %d: %w", alertID, err)
	}

	observability.RecordOutcome(res.Quality.String())
	log.Info().
		Int64("alert_id", alertID).
		Str("quality", res.Quality.String()).
		Float64("best_roi_pct", res.BestROIPct).
		Float64("roi_24h_pct", res.ROI24hPct).
		Bool("coherent", res.Coherent).
		Msg("alert outcome classified")
	return nil
}

// derive folds the horizon samples into the terminal record. Points arrive
// ordered by horizon ascending; the continuous point, when present, only
// contributes to the ROI extremes.
func derive(a *domain.Alert, points []*domain.TrackingPoint, analyzedAt int64) *domain.AlertAnalysis {
	res := &domain.AlertAnalysis{
		AlertID:    a.ID,
		AnalyzedAt: analyzedAt,
	}

	first := true
	for _, p := range points {
		roi := a.ROIPct(p.Price)
		high := a.ROIPct(p.HighestPrice)
		low := a.ROIPct(p.LowestPrice)

		if first {
			res.BestROIPct = high
			res.WorstROIPct = low
			first = false
		} else {
			if high > res.BestROIPct {
				res.BestROIPct = high
			}
			if low < res.WorstROIPct {
				res.WorstROIPct = low
			}
		}

		switch p.HorizonMinutes {
		case domain.Horizon4h:
			res.ROI4hPct = roi
		case domain.Horizon24h:
			res.ROI24hPct = roi
		}

		if p.HorizonMinutes == domain.HorizonContinuous {
			continue
		}
		if p.SLHit && res.TimeToSLMin == nil {
			res.TimeToSLMin = minutes(p.HorizonMinutes)
		}
		if p.TP1Hit && res.TimeToTP1Min == nil {
			res.TimeToTP1Min = minutes(p.HorizonMinutes)
		}
		if p.TP2Hit && res.TimeToTP2Min == nil {
			res.TimeToTP2Min = minutes(p.HorizonMinutes)
		}
		if p.TP3Hit && res.TimeToTP3Min == nil {
			res.TimeToTP3Min = minutes(p.HorizonMinutes)
		}
	}

	res.Quality = quality(res)
	res.Coherent = coherent(a.Score.FinalScore, res.ROI4hPct)
	return res
}

// quality grades the outcome by the highest target reached. A stop touch
// only downgrades when no target was reached at all.
func quality(res *domain.AlertAnalysis) domain.PredictionQuality {
	switch {
	case res.TimeToTP3Min != nil:
		return domain.QualityExcellent
	case res.TimeToTP2Min != nil:
		return domain.QualityVeryGood
	case res.TimeToTP1Min != nil:
		return domain.QualityGood
	case res.TimeToSLMin != nil:
		return domain.QualityPoor
	default:
		return domain.QualityNeutral
	}
}

// coherent reports whether the emission score agreed with the 4h outcome:
// a high score should profit and a low score should not.
func coherent(finalScore, roi4hPct float64) bool {
	profitable := roi4hPct > 5
	if finalScore >= 70 {
		return profitable
	}
	return !profitable
}

func minutes(m int) *int {
	v := m
	return &v
}
