package scoring

import "tokenscout/internal/domain"

// Velocity returns the percent-per-hour price velocity for a snapshot.
// The 1h change window is one hour wide, so the 1h percentage is already
// a per-hour rate; this is the single velocity definition used everywhere.
func Velocity(s *domain.PoolSnapshot) float64 {
	return s.PriceChange1h
}

// VelocitySince returns percent rise per hour between a reference price and
// the current price over elapsedHours. Used to classify movement since a
// prior alert. Returns 0 for non-positive inputs.
func VelocitySince(refPrice, curPrice, elapsedHours float64) float64 {
	if refPrice <= 0 || elapsedHours <= 0 {
		return 0
	}
	risePct := (curPrice - refPrice) / refPrice * 100
	return risePct / elapsedHours
}

// ClassifyPump maps a velocity to a coarse pump type.
func ClassifyPump(velocity float64) domain.PumpType {
	switch {
	case velocity > 100:
		return domain.PumpParabolic
	case velocity > 50:
		return domain.PumpVeryRapid
	case velocity > 20:
		return domain.PumpRapid
	case velocity > 5:
		return domain.PumpNormal
	case velocity > 1:
		return domain.PumpSlow
	case velocity > 0.1:
		return domain.PumpStagnant
	default:
		return domain.PumpStable
	}
}
