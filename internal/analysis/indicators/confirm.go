package indicators

import (
	"flagscan/internal/models"
)

// ConfirmationGate answers whether a bullish candidate at a given bar
// index is confirmed: momentum above 50 and close strictly above the
// moving average, both computed once over the full series.
//
// The gate fails closed: an out-of-range index, an unfilled moving
// average window, or a series too short for either indicator all
// answer false rather than erroring. A short series is a legitimate
// input for which no candidate can ever be confirmed.
type ConfirmationGate struct {
	closes   []float64
	momentum []float64
	ma       []float64
	maPeriod int
}

// NewConfirmationGate computes the momentum and moving average series
// for bars once, for repeated per-candidate checks.
func NewConfirmationGate(bars []models.PriceBar, momentumPeriod, maPeriod int) (*ConfirmationGate, error) {
	if momentumPeriod <= 0 || maPeriod <= 0 {
		return nil, ErrInvalidPeriod
	}

	gate := &ConfirmationGate{
		closes:   closePrices(bars),
		maPeriod: maPeriod,
	}

	momentum, err := NewMomentum(momentumPeriod).Calculate(bars)
	if err == nil {
		gate.momentum = momentum
	} else if err != ErrInsufficientData {
		return nil, err
	}

	ma, err := NewSMA(maPeriod).Calculate(bars)
	if err == nil {
		gate.ma = ma
	} else if err != ErrInsufficientData {
		return nil, err
	}

	return gate, nil
}

// BullishConfirmed reports whether the bar at idx passes the bullish
// confirmation filter.
func (g *ConfirmationGate) BullishConfirmed(idx int) bool {
	if idx < 0 || idx >= len(g.closes) {
		return false
	}
	if g.momentum == nil || g.ma == nil {
		return false
	}
	if idx < g.maPeriod-1 {
		return false
	}
	return g.momentum[idx] > 50 && g.closes[idx] > g.ma[idx]
}

// BearishConfirmed is the mirrored filter for bearish candidates:
// momentum below 50 and close strictly below the moving average. Off
// by default in detection; exists so the symmetric variant can be
// exercised without code changes.
func (g *ConfirmationGate) BearishConfirmed(idx int) bool {
	if idx < 0 || idx >= len(g.closes) {
		return false
	}
	if g.momentum == nil || g.ma == nil {
		return false
	}
	if idx < g.maPeriod-1 {
		return false
	}
	return g.momentum[idx] < 50 && g.closes[idx] < g.ma[idx]
}
