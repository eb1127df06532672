package indicators

import (
	"fmt"

	"flagscan/internal/models"
)

// SMA calculates Simple Moving Average. Positions before the first
// full window are 0 and must be treated as undefined by callers.
type SMA struct {
	period int
}

// NewSMA creates a new SMA indicator.
func NewSMA(period int) *SMA {
	return &SMA{period: period}
}

func (s *SMA) Name() string {
	return fmt.Sprintf("SMA_%d", s.period)
}

func (s *SMA) Period() int {
	return s.period
}

func (s *SMA) Calculate(bars []models.PriceBar) ([]float64, error) {
	if s.period <= 0 {
		return nil, ErrInvalidPeriod
	}
	if len(bars) < s.period {
		return nil, ErrInsufficientData
	}

	result := make([]float64, len(bars))
	closes := closePrices(bars)

	for i := s.period - 1; i < len(bars); i++ {
		result[i] = mean(closes[i-s.period+1 : i+1])
	}

	return result, nil
}
