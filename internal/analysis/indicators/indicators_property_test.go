package indicators

import (
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"flagscan/internal/models"
)

// barGen generates valid daily bars with realistic OHLC values.
func barGen() gopter.Gen {
	return gen.Struct(reflect.TypeOf(models.PriceBar{}), map[string]gopter.Gen{
		"Date":  gen.TimeRange(time.Now().Add(-365*24*time.Hour), time.Hour),
		"Open":  gen.Float64Range(100.0, 1000.0),
		"High":  gen.Float64Range(100.0, 1000.0),
		"Low":   gen.Float64Range(100.0, 1000.0),
		"Close": gen.Float64Range(100.0, 1000.0),
	}).Map(func(b models.PriceBar) models.PriceBar {
		if b.Open <= 0 {
			b.Open = 100.0
		}
		if b.Close <= 0 {
			b.Close = 100.0
		}
		// Enforce High >= max(Open, Close) and Low <= min(Open, Close)
		b.High = math.Max(b.High, math.Max(b.Open, b.Close))
		b.Low = math.Min(b.Low, math.Min(b.Open, b.Close))
		if b.Low <= 0 {
			b.Low = math.Min(b.Open, b.Close)
		}
		if b.Low > b.High {
			b.Low, b.High = b.High, b.Low
		}
		return b
	})
}

// barSliceGen generates an ordered slice of valid bars.
func barSliceGen(minLen, maxLen int) gopter.Gen {
	return gen.SliceOfN(maxLen, barGen()).Map(func(bars []models.PriceBar) []models.PriceBar {
		if len(bars) < minLen {
			for len(bars) < minLen {
				bars = append(bars, bars[len(bars)-1])
			}
		}
		base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		for i := range bars {
			bars[i].Date = base.AddDate(0, 0, i)
			if bars[i].Open <= 0 {
				bars[i].Open = 100.0
			}
			if bars[i].Close <= 0 {
				bars[i].Close = 100.0
			}
			bars[i].High = math.Max(bars[i].High, math.Max(bars[i].Open, bars[i].Close))
			bars[i].Low = math.Min(bars[i].Low, math.Min(bars[i].Open, bars[i].Close))
			if bars[i].Low <= 0 {
				bars[i].Low = math.Min(bars[i].Open, bars[i].Close)
			}
			if bars[i].Low > bars[i].High {
				bars[i].Low, bars[i].High = bars[i].High, bars[i].Low
			}
		}
		return bars
	})
}

func TestProperty_MomentumWithinBounds(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("momentum values are within [0, 100]", prop.ForAll(
		func(bars []models.PriceBar) bool {
			m := NewMomentum(14)
			values, err := m.Calculate(bars)
			if err != nil {
				// Insufficient data is acceptable
				return true
			}

			for _, v := range values {
				if v < 0 || v > 100 {
					return false
				}
			}
			return true
		},
		barSliceGen(20, 100),
	))

	properties.TestingRun(t)
}

func TestProperty_MomentumZeroBeforeWindow(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("momentum is zero before the first full window", prop.ForAll(
		func(bars []models.PriceBar) bool {
			m := NewMomentum(14)
			values, err := m.Calculate(bars)
			if err != nil {
				return true
			}

			for i := 0; i < m.Period()-1 && i < len(values); i++ {
				if values[i] != 0 {
					return false
				}
			}
			return true
		},
		barSliceGen(20, 100),
	))

	properties.TestingRun(t)
}

func TestProperty_SMAIsAverageOfCloses(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("SMA is the arithmetic mean of closes over the period", prop.ForAll(
		func(bars []models.PriceBar) bool {
			period := 10
			sma := NewSMA(period)
			values, err := sma.Calculate(bars)
			if err != nil {
				return true
			}

			closes := closePrices(bars)

			for i := period - 1; i < len(values); i++ {
				expectedMean := mean(closes[i-period+1 : i+1])
				if math.Abs(values[i]-expectedMean) > 0.0001 {
					return false
				}
			}
			return true
		},
		barSliceGen(15, 50),
	))

	properties.TestingRun(t)
}

func TestProperty_SMAWithinPriceRange(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("SMA stays within the min and max close of its window", prop.ForAll(
		func(bars []models.PriceBar) bool {
			period := 10
			sma := NewSMA(period)
			values, err := sma.Calculate(bars)
			if err != nil {
				return true
			}

			closes := closePrices(bars)

			for i := period - 1; i < len(values); i++ {
				lo, hi := closes[i], closes[i]
				for _, c := range closes[i-period+1 : i+1] {
					lo = math.Min(lo, c)
					hi = math.Max(hi, c)
				}
				if values[i] < lo-0.0001 || values[i] > hi+0.0001 {
					return false
				}
			}
			return true
		},
		barSliceGen(15, 50),
	))

	properties.TestingRun(t)
}

func TestProperty_GateFailsClosedOutOfRange(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("gate rejects out-of-range indices", prop.ForAll(
		func(bars []models.PriceBar) bool {
			gate, err := NewConfirmationGate(bars, 14, 50)
			if err != nil {
				return true
			}

			return !gate.BullishConfirmed(-1) &&
				!gate.BullishConfirmed(len(bars)) &&
				!gate.BearishConfirmed(-1) &&
				!gate.BearishConfirmed(len(bars))
		},
		barSliceGen(20, 120),
	))

	properties.TestingRun(t)
}

func TestProperty_GateDirectionsMutuallyExclusive(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("an index is never both bullish and bearish confirmed", prop.ForAll(
		func(bars []models.PriceBar) bool {
			gate, err := NewConfirmationGate(bars, 14, 50)
			if err != nil {
				return true
			}

			for i := range bars {
				if gate.BullishConfirmed(i) && gate.BearishConfirmed(i) {
					return false
				}
			}
			return true
		},
		barSliceGen(60, 120),
	))

	properties.TestingRun(t)
}
