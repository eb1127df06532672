package indicators

import (
	"math"
	"testing"
	"time"

	"flagscan/internal/models"
)

func barsFromCloses(closes []float64) []models.PriceBar {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]models.PriceBar, len(closes))
	for i, c := range closes {
		bars[i] = models.PriceBar{
			Date:  base.AddDate(0, 0, i),
			Open:  c,
			High:  c,
			Low:   c,
			Close: c,
		}
	}
	return bars
}

func TestMomentumErrors(t *testing.T) {
	bars := barsFromCloses([]float64{10, 11, 12})

	if _, err := NewMomentum(0).Calculate(bars); err != ErrInvalidPeriod {
		t.Errorf("Expected ErrInvalidPeriod for period 0, got %v", err)
	}
	if _, err := NewMomentum(14).Calculate(bars); err != ErrInsufficientData {
		t.Errorf("Expected ErrInsufficientData for short series, got %v", err)
	}
}

func TestMomentumKnownValues(t *testing.T) {
	bars := barsFromCloses([]float64{10, 11, 12, 11, 12})

	values, err := NewMomentum(3).Calculate(bars)
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}

	// First full window has no losses so it coerces to 0; the two
	// later windows both average 2/3 gain against 1/3 loss.
	want := []float64{0, 0, 0, 100.0 * 2 / 3, 100.0 * 2 / 3}
	if len(values) != len(want) {
		t.Fatalf("Expected %d values, got %d", len(want), len(values))
	}
	for i := range want {
		if math.Abs(values[i]-want[i]) > 1e-9 {
			t.Errorf("Value %d: expected %.6f, got %.6f", i, want[i], values[i])
		}
	}
}

func TestMomentumZeroLossCoercion(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}

	values, err := NewMomentum(14).Calculate(barsFromCloses(closes))
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}
	for i, v := range values {
		if v != 0 {
			t.Errorf("Value %d: expected 0 for a lossless window, got %.6f", i, v)
		}
	}
}

func TestSMAKnownValues(t *testing.T) {
	values, err := NewSMA(3).Calculate(barsFromCloses([]float64{10, 11, 12, 13}))
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}

	want := []float64{0, 0, 11, 12}
	for i := range want {
		if math.Abs(values[i]-want[i]) > 1e-9 {
			t.Errorf("Value %d: expected %.2f, got %.2f", i, want[i], values[i])
		}
	}
}

func TestSMAErrors(t *testing.T) {
	bars := barsFromCloses([]float64{10, 11})

	if _, err := NewSMA(0).Calculate(bars); err != ErrInvalidPeriod {
		t.Errorf("Expected ErrInvalidPeriod for period 0, got %v", err)
	}
	if _, err := NewSMA(5).Calculate(bars); err != ErrInsufficientData {
		t.Errorf("Expected ErrInsufficientData for short series, got %v", err)
	}
}

func TestGateConfirmsUptrendWithPullbacks(t *testing.T) {
	// Rising one point per day with a small dip every tenth bar, so
	// momentum windows carry some losses and read high rather than
	// coercing to zero.
	closes := make([]float64, 60)
	closes[0] = 100
	for i := 1; i < len(closes); i++ {
		if i%10 == 0 {
			closes[i] = closes[i-1] - 0.5
		} else {
			closes[i] = closes[i-1] + 1
		}
	}

	gate, err := NewConfirmationGate(barsFromCloses(closes), 14, 50)
	if err != nil {
		t.Fatalf("NewConfirmationGate failed: %v", err)
	}

	if !gate.BullishConfirmed(59) {
		t.Error("Expected bullish confirmation at the end of a pullback uptrend")
	}
	if gate.BearishConfirmed(59) {
		t.Error("Uptrend should not confirm bearish")
	}
}

func TestGateLosslessUptrendNotConfirmed(t *testing.T) {
	// With no down days every momentum window coerces to 0, which
	// reads strongly bearish and blocks bullish confirmation even in
	// a clean uptrend.
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}

	gate, err := NewConfirmationGate(barsFromCloses(closes), 14, 50)
	if err != nil {
		t.Fatalf("NewConfirmationGate failed: %v", err)
	}

	if gate.BullishConfirmed(59) {
		t.Error("Lossless uptrend must not be bullish confirmed")
	}
	if gate.BearishConfirmed(59) {
		t.Error("Close above the moving average must not confirm bearish")
	}
}

func TestGateFailsClosedOnShortSeries(t *testing.T) {
	gate, err := NewConfirmationGate(barsFromCloses([]float64{10, 11, 12}), 14, 50)
	if err != nil {
		t.Fatalf("NewConfirmationGate failed: %v", err)
	}

	for i := 0; i < 3; i++ {
		if gate.BullishConfirmed(i) || gate.BearishConfirmed(i) {
			t.Errorf("Index %d confirmed on a series too short for either indicator", i)
		}
	}
}

func TestGateRejectsInvalidPeriods(t *testing.T) {
	bars := barsFromCloses([]float64{10, 11, 12})

	if _, err := NewConfirmationGate(bars, 0, 50); err != ErrInvalidPeriod {
		t.Errorf("Expected ErrInvalidPeriod for momentum period 0, got %v", err)
	}
	if _, err := NewConfirmationGate(bars, 14, 0); err != ErrInvalidPeriod {
		t.Errorf("Expected ErrInvalidPeriod for MA period 0, got %v", err)
	}
}
