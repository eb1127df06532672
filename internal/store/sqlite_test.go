package store

import (
	"context"
	"math"
	"path/filepath"
	"testing"
	"time"

	"flagscan/internal/analysis"
	"flagscan/internal/models"
)

func testStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testBars(n int) []models.PriceBar {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]models.PriceBar, n)
	for i := range bars {
		price := 100 + float64(i)
		bars[i] = models.PriceBar{
			Date:  base.AddDate(0, 0, i),
			Open:  price,
			High:  price + 1,
			Low:   price - 1,
			Close: price + 0.5,
		}
	}
	return bars
}

func TestSaveAndGetBars(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	bars := testBars(5)

	if err := s.SaveBars(ctx, "^GSPC", bars); err != nil {
		t.Fatalf("SaveBars failed: %v", err)
	}

	got, err := s.GetBars(ctx, "^GSPC", bars[0].Date, bars[len(bars)-1].Date)
	if err != nil {
		t.Fatalf("GetBars failed: %v", err)
	}

	if len(got) != len(bars) {
		t.Fatalf("Expected %d bars, got %d", len(bars), len(got))
	}
	for i := range bars {
		if !got[i].Date.Equal(bars[i].Date) || got[i].Close != bars[i].Close {
			t.Errorf("Bar %d mismatch: %+v vs %+v", i, got[i], bars[i])
		}
	}
}

func TestSaveBarsIsIdempotent(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	bars := testBars(3)

	for i := 0; i < 2; i++ {
		if err := s.SaveBars(ctx, "^GSPC", bars); err != nil {
			t.Fatalf("SaveBars failed: %v", err)
		}
	}

	got, err := s.GetBars(ctx, "^GSPC", bars[0].Date, bars[len(bars)-1].Date)
	if err != nil {
		t.Fatalf("GetBars failed: %v", err)
	}
	if len(got) != 3 {
		t.Errorf("Re-saving must replace, not duplicate: got %d bars", len(got))
	}
}

func TestGetBarsSymbolIsolation(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	bars := testBars(3)

	if err := s.SaveBars(ctx, "^GSPC", bars); err != nil {
		t.Fatalf("SaveBars failed: %v", err)
	}

	got, err := s.GetBars(ctx, "AAPL", bars[0].Date, bars[len(bars)-1].Date)
	if err != nil {
		t.Fatalf("GetBars failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Expected no bars for another symbol, got %d", len(got))
	}
}

func TestGetBarsFreshness(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	bars := testBars(3)

	fresh, err := s.GetBarsFreshness(ctx, "^GSPC")
	if err != nil {
		t.Fatalf("GetBarsFreshness failed: %v", err)
	}
	if !fresh.IsZero() {
		t.Errorf("Expected zero freshness for empty store, got %s", fresh)
	}

	if err := s.SaveBars(ctx, "^GSPC", bars); err != nil {
		t.Fatalf("SaveBars failed: %v", err)
	}

	fresh, err = s.GetBarsFreshness(ctx, "^GSPC")
	if err != nil {
		t.Fatalf("GetBarsFreshness failed: %v", err)
	}
	if !fresh.Equal(bars[2].Date) {
		t.Errorf("Expected freshness %s, got %s", bars[2].Date, fresh)
	}
}

func testRun(symbol string) *ScanRun {
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	pattern := analysis.PatternRecord{
		PoleStart:             base,
		FlagStart:             base.AddDate(0, 0, 10),
		FlagEnd:               base.AddDate(0, 0, 20),
		PoleChangePct:         0.031,
		ConsolidationRangePct: 0.012,
		Direction:             analysis.Bullish,
	}
	return &ScanRun{
		Symbol:            symbol,
		RunAt:             time.Date(2024, 4, 1, 12, 0, 0, 0, time.UTC),
		PoleBars:          10,
		PoleThreshold:     0.015,
		FlagThreshold:     0.025,
		ConsolidationDays: 10,
		HorizonDays:       7,
		SuccessThreshold:  0.0001,
		Patterns:          []analysis.PatternRecord{pattern},
		Summary: &analysis.OutcomeSummary{
			BullishSuccessRate: 1.0,
			BullishValidCount:  1,
			BullishSuccesses:   1,
			TotalGainPct:       0.018,
			Records: []analysis.OutcomeRecord{{
				Pattern:          pattern,
				ForwardChangePct: 0.018,
				Success:          true,
				HorizonDays:      7,
				SuccessThreshold: 0.0001,
			}},
		},
	}
}

func TestSaveScanRunRoundTrip(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	run := testRun("^GSPC")
	runID, err := s.SaveScanRun(ctx, run)
	if err != nil {
		t.Fatalf("SaveScanRun failed: %v", err)
	}
	if runID == 0 || run.ID != runID {
		t.Errorf("Expected a non-zero run ID set on the run, got %d/%d", runID, run.ID)
	}

	runs, err := s.GetScanRuns(ctx, RunFilter{Symbol: "^GSPC"})
	if err != nil {
		t.Fatalf("GetScanRuns failed: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("Expected 1 run, got %d", len(runs))
	}

	got := runs[0]
	if got.HorizonDays != 7 || got.ConsolidationDays != 10 {
		t.Errorf("Run parameters mismatch: %+v", got)
	}
	if got.Summary == nil || got.Summary.BullishSuccessRate != 1.0 {
		t.Errorf("Run summary mismatch: %+v", got.Summary)
	}

	patterns, err := s.GetRunPatterns(ctx, runID)
	if err != nil {
		t.Fatalf("GetRunPatterns failed: %v", err)
	}
	if len(patterns) != 1 {
		t.Fatalf("Expected 1 pattern, got %d", len(patterns))
	}
	if patterns[0].Direction != analysis.Bullish {
		t.Errorf("Expected bullish direction, got %s", patterns[0].Direction)
	}
	if math.Abs(patterns[0].PoleChangePct-0.031) > 1e-9 {
		t.Errorf("Pole change mismatch: %.6f", patterns[0].PoleChangePct)
	}

	outcomes, err := s.GetRunOutcomes(ctx, runID)
	if err != nil {
		t.Fatalf("GetRunOutcomes failed: %v", err)
	}
	if len(outcomes) != 1 {
		t.Fatalf("Expected 1 outcome, got %d", len(outcomes))
	}
	if !outcomes[0].Success || outcomes[0].HorizonDays != 7 {
		t.Errorf("Outcome mismatch: %+v", outcomes[0])
	}
}

func TestSaveScanRunRequiresSummary(t *testing.T) {
	s := testStore(t)

	run := testRun("^GSPC")
	run.Summary = nil
	if _, err := s.SaveScanRun(context.Background(), run); err == nil {
		t.Error("Expected an error for a run without summary")
	}
}

func TestGetScanRunsFilters(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	for _, symbol := range []string{"^GSPC", "^GSPC", "AAPL"} {
		if _, err := s.SaveScanRun(ctx, testRun(symbol)); err != nil {
			t.Fatalf("SaveScanRun failed: %v", err)
		}
	}

	runs, err := s.GetScanRuns(ctx, RunFilter{Symbol: "^GSPC"})
	if err != nil {
		t.Fatalf("GetScanRuns failed: %v", err)
	}
	if len(runs) != 2 {
		t.Errorf("Expected 2 runs for ^GSPC, got %d", len(runs))
	}

	runs, err = s.GetScanRuns(ctx, RunFilter{Limit: 1})
	if err != nil {
		t.Fatalf("GetScanRuns failed: %v", err)
	}
	if len(runs) != 1 {
		t.Errorf("Expected limit 1 to apply, got %d runs", len(runs))
	}
}

func TestSyncStatus(t *testing.T) {
	s := testStore(t)

	if last := s.GetLastSync("bars:^GSPC"); !last.IsZero() {
		t.Errorf("Expected zero last sync, got %s", last)
	}

	now := time.Now().UTC().Truncate(time.Second)
	if err := s.SetLastSync("bars:^GSPC", now); err != nil {
		t.Fatalf("SetLastSync failed: %v", err)
	}

	if last := s.GetLastSync("bars:^GSPC"); !last.Equal(now) {
		t.Errorf("Expected last sync %s, got %s", now, last)
	}
}
