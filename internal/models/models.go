// Package models provides domain models for the flag scanner.
package models

import (
	"time"

	apperrors "flagscan/internal/errors"
)

// PriceBar represents one trading day of OHLC data. Bars are immutable
// once ingested; a scan consumes the full ordered sequence.
type PriceBar struct {
	Date  time.Time
	Open  float64
	High  float64
	Low   float64
	Close float64
}

// ValidateSeries checks a bar sequence before analysis: non-empty,
// strictly ascending unique dates, all prices positive. Detection and
// evaluation fail fast on the first violation rather than producing
// nonsensical ratios downstream.
func ValidateSeries(bars []PriceBar) error {
	if len(bars) == 0 {
		return apperrors.ErrEmptySeries
	}
	for i, bar := range bars {
		if bar.Open <= 0 {
			return apperrors.NewSeriesError(i, "open", "must be positive", apperrors.ErrNonPositivePrice)
		}
		if bar.High <= 0 {
			return apperrors.NewSeriesError(i, "high", "must be positive", apperrors.ErrNonPositivePrice)
		}
		if bar.Low <= 0 {
			return apperrors.NewSeriesError(i, "low", "must be positive", apperrors.ErrNonPositivePrice)
		}
		if bar.Close <= 0 {
			return apperrors.NewSeriesError(i, "close", "must be positive", apperrors.ErrNonPositivePrice)
		}
		if i > 0 && !bars[i-1].Date.Before(bar.Date) {
			return apperrors.NewSeriesError(i, "date", "must be after previous bar", apperrors.ErrUnorderedSeries)
		}
	}
	return nil
}

// Closes extracts the close series from a bar sequence.
func Closes(bars []PriceBar) []float64 {
	closes := make([]float64, len(bars))
	for i, bar := range bars {
		closes[i] = bar.Close
	}
	return closes
}
