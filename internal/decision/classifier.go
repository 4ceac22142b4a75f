package decision

import (
	"fmt"

	"tokenscout/internal/domain"
)

// Volume signal tags produced by multi-timeframe comparison.
const (
	SignalVolumeAccel1h = "VOLUME_ACCELERATING_1H"
	SignalVolumeAccel6h = "VOLUME_ACCELERATING_6H"
	SignalVolumeFading  = "VOLUME_FADING"
)

// Classification is advisory metadata attached to an alert. It never gates
// whether the alert is stored.
type Classification struct {
	Condition domain.MarketCondition
	Bullish   []string
	Bearish   []string
	Neutral   []string
}

// Classifier aggregates score, volume, price-confluence, pressure and
// liquidity evidence into a BUY/WAIT/EXIT call.
type Classifier struct{}

// NewClassifier creates a market-condition classifier.
func NewClassifier() *Classifier {
	return &Classifier{}
}

// Classify weighs bullish against bearish evidence. Critical bearish
// patterns force EXIT regardless of score; a high score with broad bullish
// support and at most one bearish signal forces BUY; WAIT is the default.
func (c *Classifier) Classify(s *domain.PoolSnapshot, score *domain.ScoreResult) Classification {
	var out Classification
	critical := false

	// Score tier
	switch {
	case score.FinalScore >= 80:
		out.Bullish = append(out.Bullish, fmt.Sprintf("score %0.f (strong)", score.FinalScore))
	case score.FinalScore >= 65:
		out.Neutral = append(out.Neutral, fmt.Sprintf("score %0.f", score.FinalScore))
	default:
		out.Bearish = append(out.Bearish, fmt.Sprintf("score %0.f (weak)", score.FinalScore))
	}

	// Whale evidence
	switch score.Whale.Pattern {
	case domain.WhaleSelling:
		out.Bearish = append(out.Bearish, "whale selling")
		critical = true
	case domain.WhaleManipulation:
		out.Bearish = append(out.Bearish, "whale manipulation")
		if score.Whale.Concentration == domain.ConcentrationHigh {
			critical = true
		}
	case domain.DistributedBuying:
		out.Bullish = append(out.Bullish, "distributed buying")
	case domain.DistributedSelling:
		out.Bearish = append(out.Bearish, "distributed selling")
	}

	// Multi-timeframe volume signals
	for _, sig := range VolumeSignals(s) {
		if sig == SignalVolumeFading {
			out.Bearish = append(out.Bearish, "volume fading")
		} else {
			out.Bullish = append(out.Bullish, sig)
		}
	}

	// Multi-timeframe price confluence
	p1, p6, p24 := s.PriceChange1h, s.PriceChange6h, s.PriceChange24h
	switch {
	case p1 > 0 && p6 > 0 && p24 > 0:
		out.Bullish = append(out.Bullish, "all timeframes positive")
	case p1 > 0 && p1 < 10 && p24 < -20:
		// Dead-cat bounce: small 1h uptick inside a deep 24h downtrend.
		out.Bearish = append(out.Bearish, "dead-cat bounce")
		critical = true
	case p1 < 0 && p1 > -5 && p24 > 20:
		// Healthy pullback within an uptrend.
		out.Neutral = append(out.Neutral, "healthy pullback")
	case p24 < -30:
		out.Bearish = append(out.Bearish, "deep 24h downtrend")
		critical = true
	case p1 < 0 && p6 < 0 && p24 < 0:
		out.Bearish = append(out.Bearish, "all timeframes negative")
	}

	// Buy/sell pressure shift: 1h ratio against the 24h baseline.
	r1h := s.BuySellRatio1h()
	r24h := s.BuySellRatio24h()
	switch {
	case r24h > 0 && r1h > r24h*1.3:
		out.Bullish = append(out.Bullish, "buy pressure rising")
	case r24h > 0 && r1h < r24h*0.7 && r1h > 0:
		out.Bearish = append(out.Bearish, "buy pressure fading")
	}
	if sp := s.SellPressure24h(); sp > 0.70 {
		out.Bearish = append(out.Bearish, "heavy sell pressure")
		critical = true
	}

	// Liquidity tier
	switch {
	case s.LiquidityUSD >= 100_000:
		out.Bullish = append(out.Bullish, "deep liquidity")
	case s.LiquidityUSD < 20_000:
		out.Bearish = append(out.Bearish, "thin liquidity")
	}

	// Age
	switch {
	case s.AgeHours >= 48 && s.AgeHours <= 96:
		out.Bullish = append(out.Bullish, "mature age window")
	case s.AgeHours < 3:
		out.Bearish = append(out.Bearish, "very young pool")
	}

	out.Condition = resolve(score.FinalScore, len(out.Bullish), len(out.Bearish), critical)
	return out
}

// resolve applies the precedence rules over the weighted counts.
func resolve(finalScore float64, bullish, bearish int, critical bool) domain.MarketCondition {
	if critical {
		return domain.ConditionExit
	}
	if finalScore >= 70 && bullish >= 3 && bearish <= 1 {
		return domain.ConditionBuy
	}
	if bearish >= bullish+3 {
		return domain.ConditionExit
	}
	if bullish > bearish && finalScore >= 60 {
		return domain.ConditionBuy
	}
	return domain.ConditionWait
}

// VolumeSignals compares trading volume across timeframes. The 1h and 6h
// windows are projected to 24h rates before comparison.
func VolumeSignals(s *domain.PoolSnapshot) []string {
	var signals []string
	if s.Volume6h > 0 && s.Volume1h*6 > s.Volume6h*1.3 {
		signals = append(signals, SignalVolumeAccel1h)
	}
	if s.Volume24h > 0 && s.Volume6h*4 > s.Volume24h*1.3 {
		signals = append(signals, SignalVolumeAccel6h)
	}
	if s.Volume6h > 0 && s.Volume1h*6 < s.Volume6h*0.5 {
		signals = append(signals, SignalVolumeFading)
	}
	return signals
}
