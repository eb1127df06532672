// Package analysis provides the shared types for flag pattern detection
// and forward-outcome evaluation.
package analysis

import (
	"time"

	"flagscan/internal/models"
)

// Indicator defines the interface for technical indicators.
type Indicator interface {
	Name() string
	Calculate(bars []models.PriceBar) ([]float64, error)
	Period() int
}

// PatternDetector defines the interface for pattern detection.
type PatternDetector interface {
	Name() string
	Detect(bars []models.PriceBar) ([]PatternRecord, error)
}

// Direction represents the directional bias of a detected pattern.
type Direction string

const (
	Bullish Direction = "bullish"
	Bearish Direction = "bearish"
)

// PatternRecord represents one detected flag formation. Records are
// immutable; the evaluator consumes them without mutation. The three
// dates satisfy PoleStart < FlagStart < FlagEnd by construction.
type PatternRecord struct {
	PoleStart             time.Time
	FlagStart             time.Time
	FlagEnd               time.Time
	PoleChangePct         float64
	ConsolidationRangePct float64
	Direction             Direction
}

// OutcomeRecord is a PatternRecord enriched with its forward-looking
// result over a fixed horizon.
type OutcomeRecord struct {
	Pattern          PatternRecord
	ForwardChangePct float64
	Success          bool
	HorizonDays      int
	SuccessThreshold float64
}

// OutcomeSummary aggregates evaluated outcomes per direction. Rates are
// 0 when the corresponding valid count is 0.
type OutcomeSummary struct {
	BullishSuccessRate float64
	BearishSuccessRate float64
	BullishValidCount  int
	BullishSuccesses   int
	BearishValidCount  int
	BearishSuccesses   int
	TotalGainPct       float64
	Records            []OutcomeRecord
}
