// Package outcome evaluates detected patterns against forward returns.
package outcome

import (
	"flagscan/internal/analysis"
	apperrors "flagscan/internal/errors"
	"flagscan/internal/models"
)

// Horizons lists the supported forward-return horizons, in days.
var Horizons = []int{1, 7, 14, 21, 30}

// DefaultSuccessThreshold is the minimum fractional forward move
// counted as a success. Slightly above zero so a true-zero move never
// counts as a bullish success while still entering the denominator.
const DefaultSuccessThreshold = 0.0001

// Evaluator classifies each pattern's forward return as success or
// failure per its directional bias and aggregates per-direction rates.
type Evaluator struct {
	horizonDays      int
	successThreshold float64
}

// NewEvaluator creates an evaluator for one of the supported horizons.
func NewEvaluator(horizonDays int, successThreshold float64) (*Evaluator, error) {
	valid := false
	for _, h := range Horizons {
		if h == horizonDays {
			valid = true
			break
		}
	}
	if !valid {
		return nil, apperrors.ErrInvalidHorizon
	}
	if successThreshold <= 0 {
		return nil, apperrors.ErrInvalidThreshold
	}
	return &Evaluator{
		horizonDays:      horizonDays,
		successThreshold: successThreshold,
	}, nil
}

// Evaluate computes one OutcomeRecord per pattern that has a forward
// observation, in input order. Patterns whose flag end is missing from
// the series, or whose forward bar falls at or beyond the series end,
// are silently dropped: they enter neither the records nor either
// denominator. Bullish succeeds iff the forward change is at least the
// threshold; bearish iff it is at most the negated threshold. An empty
// pattern list is a normal terminal state and short-circuits to an
// empty summary.
func (e *Evaluator) Evaluate(bars []models.PriceBar, patterns []analysis.PatternRecord) (*analysis.OutcomeSummary, error) {
	summary := &analysis.OutcomeSummary{Records: []analysis.OutcomeRecord{}}
	if len(patterns) == 0 {
		return summary, nil
	}
	if err := models.ValidateSeries(bars); err != nil {
		return nil, err
	}

	index := make(map[int64]int, len(bars))
	for i, bar := range bars {
		index[bar.Date.Unix()] = i
	}

	for _, p := range patterns {
		flagEndIdx, ok := index[p.FlagEnd.Unix()]
		if !ok {
			continue
		}
		forwardIdx := flagEndIdx + e.horizonDays
		if forwardIdx >= len(bars) {
			continue
		}

		change := (bars[forwardIdx].Close - bars[flagEndIdx].Close) / bars[flagEndIdx].Close

		var success bool
		switch p.Direction {
		case analysis.Bullish:
			success = change >= e.successThreshold
			summary.BullishValidCount++
			if success {
				summary.BullishSuccesses++
			}
		case analysis.Bearish:
			success = change <= -e.successThreshold
			summary.BearishValidCount++
			if success {
				summary.BearishSuccesses++
			}
		}

		summary.TotalGainPct += change
		summary.Records = append(summary.Records, analysis.OutcomeRecord{
			Pattern:          p,
			ForwardChangePct: change,
			Success:          success,
			HorizonDays:      e.horizonDays,
			SuccessThreshold: e.successThreshold,
		})
	}

	if summary.BullishValidCount > 0 {
		summary.BullishSuccessRate = float64(summary.BullishSuccesses) / float64(summary.BullishValidCount)
	}
	if summary.BearishValidCount > 0 {
		summary.BearishSuccessRate = float64(summary.BearishSuccesses) / float64(summary.BearishValidCount)
	}

	return summary, nil
}
