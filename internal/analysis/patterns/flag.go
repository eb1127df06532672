// Package patterns provides flag chart pattern detection.
package patterns

import (
	"flagscan/internal/analysis"
	"flagscan/internal/analysis/indicators"
	"flagscan/internal/models"
)

// Config holds the tunable parameters of the flag detector. All
// detection behavior is driven by these explicit parameters; the
// detector never reads ambient configuration.
type Config struct {
	PoleBars          int     // lookback for the pole move
	PoleThreshold     float64 // minimum fractional pole move
	FlagThreshold     float64 // maximum fractional consolidation range
	ConsolidationDays int     // consolidation window length
	MomentumPeriod    int     // oscillator period for confirmation
	MAPeriod          int     // moving average window for confirmation
	ConfirmBullish    bool    // apply the confirmation filter to bullish candidates
	ConfirmBearish    bool    // apply the mirrored filter to bearish candidates
}

// DefaultConfig returns the standard detection parameters. Bearish
// candidates carry no confirmation filter by default; the asymmetry is
// intentional and kept switchable per direction.
func DefaultConfig() Config {
	return Config{
		PoleBars:          10,
		PoleThreshold:     0.015, // 1.5% move over the pole window
		FlagThreshold:     0.025, // 2.5% consolidation range
		ConsolidationDays: 10,
		MomentumPeriod:    14,
		MAPeriod:          50,
		ConfirmBullish:    true,
		ConfirmBearish:    false,
	}
}

// FlagDetector detects pole+flag formations in a daily bar series.
type FlagDetector struct {
	cfg Config
}

// NewFlagDetector creates a flag detector with default parameters.
func NewFlagDetector() *FlagDetector {
	return NewFlagDetectorWithConfig(DefaultConfig())
}

// NewFlagDetectorWithConfig creates a flag detector with the given
// parameters.
func NewFlagDetectorWithConfig(cfg Config) *FlagDetector {
	return &FlagDetector{cfg: cfg}
}

func (d *FlagDetector) Name() string {
	return "FlagDetector"
}

// Detect scans the series once and returns every qualifying formation
// in scan order. Overlapping and adjacent detections are all emitted;
// the evaluator aggregates over raw detections and nothing here
// collapses them. Detection is a pure function of (bars, config):
// repeated calls yield identical results.
//
// A malformed series is an error. A series too short to anchor any
// candidate yields zero patterns, which is a normal terminal state.
func (d *FlagDetector) Detect(bars []models.PriceBar) ([]analysis.PatternRecord, error) {
	if err := models.ValidateSeries(bars); err != nil {
		return nil, err
	}

	var records []analysis.PatternRecord
	if len(bars) < d.cfg.PoleBars+d.cfg.ConsolidationDays+2 {
		return records, nil
	}

	gate, err := indicators.NewConfirmationGate(bars, d.cfg.MomentumPeriod, d.cfg.MAPeriod)
	if err != nil {
		return nil, err
	}

	// The first poleBars bars cannot anchor a candidate (no pole
	// window behind them) and neither can the last consolidationDays+1
	// bars (no room for the flag window ahead).
	for i := d.cfg.PoleBars; i < len(bars)-d.cfg.ConsolidationDays-1; i++ {
		poleStart := i - d.cfg.PoleBars
		priceChange := (bars[i].Close - bars[poleStart].Close) / bars[poleStart].Close
		if abs(priceChange) <= d.cfg.PoleThreshold {
			continue
		}

		flagEnd := i + d.cfg.ConsolidationDays
		rangePct := consolidationRange(bars[i:flagEnd])
		if rangePct >= d.cfg.FlagThreshold {
			continue
		}

		slope := leastSquaresSlope(models.Closes(bars[i:flagEnd]))

		var direction analysis.Direction
		if priceChange > 0 {
			// Bullish flags drift flat to down and need confirmation.
			if slope > 0 {
				continue
			}
			if d.cfg.ConfirmBullish && !gate.BullishConfirmed(flagEnd) {
				continue
			}
			direction = analysis.Bullish
		} else {
			if slope <= 0 {
				continue
			}
			if d.cfg.ConfirmBearish && !gate.BearishConfirmed(flagEnd) {
				continue
			}
			direction = analysis.Bearish
		}

		records = append(records, analysis.PatternRecord{
			PoleStart:             bars[poleStart].Date,
			FlagStart:             bars[i].Date,
			FlagEnd:               bars[flagEnd].Date,
			PoleChangePct:         priceChange,
			ConsolidationRangePct: rangePct,
			Direction:             direction,
		})
	}

	return records, nil
}

// consolidationRange computes (maxHigh - minLow) / minLow over the
// window. The series validation guarantees a positive minLow.
func consolidationRange(window []models.PriceBar) float64 {
	maxHigh := window[0].High
	minLow := window[0].Low
	for _, bar := range window[1:] {
		if bar.High > maxHigh {
			maxHigh = bar.High
		}
		if bar.Low < minLow {
			minLow = bar.Low
		}
	}
	return (maxHigh - minLow) / minLow
}

// leastSquaresSlope fits a first-degree least-squares line to values
// against their position index and returns its slope.
func leastSquaresSlope(values []float64) float64 {
	n := float64(len(values))
	if n < 2 {
		return 0
	}

	xMean := (n - 1) / 2
	var yMean float64
	for _, v := range values {
		yMean += v
	}
	yMean /= n

	var num, den float64
	for i, v := range values {
		dx := float64(i) - xMean
		num += dx * (v - yMean)
		den += dx * dx
	}
	return num / den
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
