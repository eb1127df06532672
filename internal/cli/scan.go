package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"flagscan/internal/analysis"
	"flagscan/internal/analysis/outcome"
	"flagscan/internal/analysis/patterns"
	"flagscan/internal/logging"
	"flagscan/internal/store"
)

// ScanResult is the JSON shape of a scan.
type ScanResult struct {
	Symbol             string    `json:"symbol"`
	Bars               int       `json:"bars"`
	Patterns           int       `json:"patterns"`
	BullishPatterns    int       `json:"bullish_patterns"`
	BearishPatterns    int       `json:"bearish_patterns"`
	HorizonDays        int       `json:"horizon_days"`
	BullishSuccessRate float64   `json:"bullish_success_rate"`
	BearishSuccessRate float64   `json:"bearish_success_rate"`
	BullishValid       int       `json:"bullish_valid"`
	BearishValid       int       `json:"bearish_valid"`
	TotalGainPct       float64   `json:"total_gain_pct"`
	RunID              int64     `json:"run_id,omitempty"`
	RunAt              time.Time `json:"run_at"`
}

func newScanCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [symbol]",
		Short: "Detect flag patterns and evaluate outcomes",
		Long: `Scan the stored daily series for pole+flag formations, evaluate each
detection against its forward return over the configured horizon, and
report per-direction success rates.`,
		Example: `  flagscan scan
  flagscan scan ^GSPC --horizon 14
  flagscan scan --pole-threshold 0.02 --save`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			symbol := app.Config.Data.Symbol
			if len(args) > 0 {
				symbol = args[0]
			}

			if app.Store == nil {
				output.Error("Store not available")
				return fmt.Errorf("store not available")
			}

			bars, err := app.Store.GetBars(ctx, symbol, time.Time{}, time.Now())
			if err != nil {
				output.Error("Failed to load bars: %v", err)
				return err
			}
			if len(bars) == 0 {
				output.Error("No stored bars for %s. Run 'flagscan fetch' first.", symbol)
				return fmt.Errorf("no data for %s", symbol)
			}

			detectCfg := detectionConfig(app, cmd)
			horizon, _ := cmd.Flags().GetInt("horizon")
			if !cmd.Flags().Changed("horizon") {
				horizon = app.Config.Evaluation.HorizonDays
			}
			threshold, _ := cmd.Flags().GetFloat64("threshold")
			if !cmd.Flags().Changed("threshold") {
				threshold = app.Config.Evaluation.SuccessThreshold
			}

			detector := patterns.NewFlagDetectorWithConfig(detectCfg)
			detected, err := detector.Detect(bars)
			if err != nil {
				output.Error("Detection failed: %v", err)
				return err
			}

			bullish, bearish := 0, 0
			for _, p := range detected {
				if p.Direction == analysis.Bullish {
					bullish++
				} else {
					bearish++
				}
			}
			logging.LogScan(app.Logger, symbol, len(bars), bullish, bearish)

			evaluator, err := outcome.NewEvaluator(horizon, threshold)
			if err != nil {
				output.Error("Invalid evaluation parameters: %v", err)
				return err
			}
			summary, err := evaluator.Evaluate(bars, detected)
			if err != nil {
				output.Error("Evaluation failed: %v", err)
				return err
			}
			logging.LogEvaluation(app.Logger, symbol, horizon, len(summary.Records),
				summary.BullishSuccessRate, summary.BearishSuccessRate)

			result := ScanResult{
				Symbol:             symbol,
				Bars:               len(bars),
				Patterns:           len(detected),
				BullishPatterns:    bullish,
				BearishPatterns:    bearish,
				HorizonDays:        horizon,
				BullishSuccessRate: summary.BullishSuccessRate,
				BearishSuccessRate: summary.BearishSuccessRate,
				BullishValid:       summary.BullishValidCount,
				BearishValid:       summary.BearishValidCount,
				TotalGainPct:       summary.TotalGainPct,
				RunAt:              time.Now(),
			}

			save, _ := cmd.Flags().GetBool("save")
			if save {
				run := &store.ScanRun{
					Symbol:            symbol,
					RunAt:             result.RunAt,
					PoleBars:          detectCfg.PoleBars,
					PoleThreshold:     detectCfg.PoleThreshold,
					FlagThreshold:     detectCfg.FlagThreshold,
					ConsolidationDays: detectCfg.ConsolidationDays,
					HorizonDays:       horizon,
					SuccessThreshold:  threshold,
					Patterns:          detected,
					Summary:           summary,
				}
				runID, err := app.Store.SaveScanRun(ctx, run)
				if err != nil {
					output.Error("Failed to save run: %v", err)
					return err
				}
				result.RunID = runID
			}

			if output.IsJSON() {
				return output.JSON(result)
			}

			displayScanResult(output, result, summary, cmd)
			return nil
		},
	}

	cmd.Flags().Int("pole-bars", 10, "pole lookback in bars")
	cmd.Flags().Float64("pole-threshold", 0.015, "minimum fractional pole move")
	cmd.Flags().Float64("flag-threshold", 0.025, "maximum fractional consolidation range")
	cmd.Flags().Int("consolidation-days", 10, "consolidation window length")
	cmd.Flags().Bool("no-confirm-bullish", false, "disable the bullish confirmation filter")
	cmd.Flags().Bool("confirm-bearish", false, "apply the mirrored confirmation to bearish candidates")
	cmd.Flags().Int("horizon", 7, "forward horizon in days (1, 7, 14, 21, 30)")
	cmd.Flags().Float64("threshold", outcome.DefaultSuccessThreshold, "success threshold as fractional move")
	cmd.Flags().Bool("save", false, "persist the run to the local database")
	cmd.Flags().Int("limit", 15, "number of detail rows to display")
	return cmd
}

// detectionConfig merges config-file parameters with flag overrides.
func detectionConfig(app *App, cmd *cobra.Command) patterns.Config {
	cfg := patterns.Config{
		PoleBars:          app.Config.Detection.PoleBars,
		PoleThreshold:     app.Config.Detection.PoleThreshold,
		FlagThreshold:     app.Config.Detection.FlagThreshold,
		ConsolidationDays: app.Config.Detection.ConsolidationDays,
		MomentumPeriod:    app.Config.Detection.MomentumPeriod,
		MAPeriod:          app.Config.Detection.MAPeriod,
		ConfirmBullish:    app.Config.Detection.ConfirmBullish,
		ConfirmBearish:    app.Config.Detection.ConfirmBearish,
	}

	if cmd.Flags().Changed("pole-bars") {
		cfg.PoleBars, _ = cmd.Flags().GetInt("pole-bars")
	}
	if cmd.Flags().Changed("pole-threshold") {
		cfg.PoleThreshold, _ = cmd.Flags().GetFloat64("pole-threshold")
	}
	if cmd.Flags().Changed("flag-threshold") {
		cfg.FlagThreshold, _ = cmd.Flags().GetFloat64("flag-threshold")
	}
	if cmd.Flags().Changed("consolidation-days") {
		cfg.ConsolidationDays, _ = cmd.Flags().GetInt("consolidation-days")
	}
	if noConfirm, _ := cmd.Flags().GetBool("no-confirm-bullish"); noConfirm {
		cfg.ConfirmBullish = false
	}
	if confirmBearish, _ := cmd.Flags().GetBool("confirm-bearish"); confirmBearish {
		cfg.ConfirmBearish = true
	}
	return cfg
}

func displayScanResult(output *Output, result ScanResult, summary *analysis.OutcomeSummary, cmd *cobra.Command) {
	color.Cyan("🚩 Flag Scan - %s", result.Symbol)
	output.Printf("  Bars scanned:   %d\n", result.Bars)
	output.Printf("  Detections:     %d (%s / %s)\n", result.Patterns,
		output.Green(fmt.Sprintf("%d bullish", result.BullishPatterns)),
		output.Red(fmt.Sprintf("%d bearish", result.BearishPatterns)))
	output.Println()

	output.Box(fmt.Sprintf("Success Rates (D+%d)", result.HorizonDays), []string{
		fmt.Sprintf("Bullish: %s  (%d/%d)", FormatRate(result.BullishSuccessRate),
			summary.BullishSuccesses, summary.BullishValidCount),
		fmt.Sprintf("Bearish: %s  (%d/%d)", FormatRate(result.BearishSuccessRate),
			summary.BearishSuccesses, summary.BearishValidCount),
		fmt.Sprintf("Total forward change: %s", FormatPercent(result.TotalGainPct*100)),
	})

	if len(summary.Records) == 0 {
		output.Dim("No patterns with a forward observation.")
		return
	}

	limit, _ := cmd.Flags().GetInt("limit")
	if limit <= 0 || limit > len(summary.Records) {
		limit = len(summary.Records)
	}

	output.Println()
	table := NewTable(output, "POLE START", "FLAG START", "FLAG END", "DIRECTION", "POLE %", "RANGE %", fmt.Sprintf("D+%d %%", result.HorizonDays), "SUCCESS")
	for _, o := range summary.Records[:limit] {
		successCell := output.Red("✗")
		if o.Success {
			successCell = output.Green("✓")
		}
		table.AddRow(
			FormatDate(o.Pattern.PoleStart),
			FormatDate(o.Pattern.FlagStart),
			FormatDate(o.Pattern.FlagEnd),
			output.DirectionTag(string(o.Pattern.Direction)),
			FormatPercent(o.Pattern.PoleChangePct*100),
			fmt.Sprintf("%.2f%%", o.Pattern.ConsolidationRangePct*100),
			output.FormatChange(o.ForwardChangePct),
			successCell,
		)
	}
	table.Render()

	if limit < len(summary.Records) {
		output.Dim("… and %d more (use --limit or export to CSV)", len(summary.Records)-limit)
	}

	if result.RunID > 0 {
		output.Println()
		color.Green("✓ Run #%d saved", result.RunID)
	}
}
