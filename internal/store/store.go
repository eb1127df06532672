// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"time"

	"flagscan/internal/analysis"
	"flagscan/internal/models"
)

// DataStore defines the interface for data persistence.
type DataStore interface {
	// Bars
	SaveBars(ctx context.Context, symbol string, bars []models.PriceBar) error
	GetBars(ctx context.Context, symbol string, from, to time.Time) ([]models.PriceBar, error)
	GetBarsFreshness(ctx context.Context, symbol string) (time.Time, error)

	// Scan runs
	SaveScanRun(ctx context.Context, run *ScanRun) (int64, error)
	GetScanRuns(ctx context.Context, filter RunFilter) ([]ScanRun, error)
	GetRunPatterns(ctx context.Context, runID int64) ([]analysis.PatternRecord, error)
	GetRunOutcomes(ctx context.Context, runID int64) ([]analysis.OutcomeRecord, error)

	// Sync
	GetLastSync(dataType string) time.Time
	SetLastSync(dataType string, t time.Time) error

	// Lifecycle
	Close() error
}

// ScanRun records one detection+evaluation pass: the parameters it ran
// with, the detections, and the aggregated outcome summary. Persisted
// runs make past scans reproducible and exportable.
type ScanRun struct {
	ID                int64
	Symbol            string
	RunAt             time.Time
	PoleBars          int
	PoleThreshold     float64
	FlagThreshold     float64
	ConsolidationDays int
	HorizonDays       int
	SuccessThreshold  float64
	Patterns          []analysis.PatternRecord
	Summary           *analysis.OutcomeSummary
}

// RunFilter represents filters for querying scan runs.
type RunFilter struct {
	Symbol    string
	StartDate time.Time
	EndDate   time.Time
	Limit     int
}
