package indicators

import (
	"fmt"

	"flagscan/internal/models"
)

// Momentum is a bounded 0-100 oscillator over a rolling window: the
// simple mean of positive close deltas against the simple mean of the
// magnitude of negative deltas, mapped into 0-100.
//
// Indices whose window is not yet filled read 0, and a window with a
// zero average loss also reads 0. Callers get a fully defined series
// and never see NaN; a 0 reads as strongly bearish, which matters for
// the confirmation gate near the start of a series.
type Momentum struct {
	period int
}

// NewMomentum creates a new Momentum oscillator.
func NewMomentum(period int) *Momentum {
	return &Momentum{period: period}
}

func (m *Momentum) Name() string {
	return fmt.Sprintf("MOM_%d", m.period)
}

func (m *Momentum) Period() int {
	return m.period
}

func (m *Momentum) Calculate(bars []models.PriceBar) ([]float64, error) {
	if m.period <= 0 {
		return nil, ErrInvalidPeriod
	}
	if len(bars) < m.period+1 {
		return nil, ErrInsufficientData
	}

	n := len(bars)
	result := make([]float64, n)
	closes := closePrices(bars)

	// gains[0] and losses[0] stay 0: the first bar has no delta, and
	// the zero placeholder participates in the first full window.
	gains := make([]float64, n)
	losses := make([]float64, n)
	for i := 1; i < n; i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			gains[i] = change
		} else {
			losses[i] = -change
		}
	}

	for i := m.period - 1; i < n; i++ {
		avgGain := mean(gains[i-m.period+1 : i+1])
		avgLoss := mean(losses[i-m.period+1 : i+1])
		if avgLoss == 0 {
			continue
		}
		rs := avgGain / avgLoss
		result[i] = 100 - (100 / (1 + rs))
	}

	return result, nil
}
