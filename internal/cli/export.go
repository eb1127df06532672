package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"flagscan/internal/export"
	"flagscan/internal/store"
)

func newExportCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a saved run as CSV and/or PNG",
		Long: `Export the outcome records of a saved scan run to CSV, and render the
close series with pole/flag overlays to PNG. Defaults to the most
recent run for the configured symbol.`,
		Example: `  flagscan export --csv results.csv
  flagscan export --run 3 --png chart.png
  flagscan export --csv out/results.csv --png out/chart.png`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			csvPath, _ := cmd.Flags().GetString("csv")
			pngPath, _ := cmd.Flags().GetString("png")
			if csvPath == "" && pngPath == "" {
				return fmt.Errorf("at least one of --csv or --png must be provided")
			}

			if app.Store == nil {
				output.Error("Store not available")
				return fmt.Errorf("store not available")
			}

			symbol, _ := cmd.Flags().GetString("symbol")
			if symbol == "" {
				symbol = app.Config.Data.Symbol
			}

			runID, _ := cmd.Flags().GetInt64("run")
			run, err := findRun(ctx, app, symbol, runID)
			if err != nil {
				output.Error("%v", err)
				return err
			}

			if csvPath != "" {
				records, err := app.Store.GetRunOutcomes(ctx, run.ID)
				if err != nil {
					output.Error("Failed to load outcomes: %v", err)
					return err
				}
				if err := export.WriteOutcomesCSV(csvPath, records); err != nil {
					output.Error("CSV export failed: %v", err)
					return err
				}
				app.Logger.Info().Str("path", csvPath).Int("records", len(records)).Msg("CSV exported")
				color.Green("✓ CSV written to %s (%d records)", csvPath, len(records))
			}

			if pngPath != "" {
				bars, err := app.Store.GetBars(ctx, run.Symbol, time.Time{}, time.Now())
				if err != nil {
					output.Error("Failed to load bars: %v", err)
					return err
				}
				if len(bars) == 0 {
					output.Error("No stored bars for %s", run.Symbol)
					return fmt.Errorf("no data for %s", run.Symbol)
				}
				recs, err := app.Store.GetRunPatterns(ctx, run.ID)
				if err != nil {
					output.Error("Failed to load patterns: %v", err)
					return err
				}
				if err := export.WriteChartPNG(pngPath, bars, recs); err != nil {
					output.Error("PNG export failed: %v", err)
					return err
				}
				app.Logger.Info().Str("path", pngPath).Int("patterns", len(recs)).Msg("Chart exported")
				color.Green("✓ Chart written to %s (%d patterns)", pngPath, len(recs))
			}

			return nil
		},
	}

	cmd.Flags().Int64("run", 0, "run ID to export (0 = most recent)")
	cmd.Flags().String("symbol", "", "symbol whose latest run to export (default from config)")
	cmd.Flags().String("csv", "", "path for CSV export")
	cmd.Flags().String("png", "", "path for PNG chart export")
	return cmd
}

func findRun(ctx context.Context, app *App, symbol string, runID int64) (*store.ScanRun, error) {
	if runID > 0 {
		runs, err := app.Store.GetScanRuns(ctx, store.RunFilter{})
		if err != nil {
			return nil, fmt.Errorf("failed to load runs: %w", err)
		}
		for i := range runs {
			if runs[i].ID == runID {
				return &runs[i], nil
			}
		}
		return nil, fmt.Errorf("run #%d not found", runID)
	}

	runs, err := app.Store.GetScanRuns(ctx, store.RunFilter{Symbol: symbol, Limit: 1})
	if err != nil {
		return nil, fmt.Errorf("failed to load runs: %w", err)
	}
	if len(runs) == 0 {
		return nil, fmt.Errorf("no saved runs for %s; use 'flagscan scan --save'", symbol)
	}
	return &runs[0], nil
}
