package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"flagscan/internal/logging"
	"flagscan/internal/models"
)

func newFetchCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch [symbol]",
		Short: "Fetch and store daily bars",
		Long: `Fetch daily OHLC bars from Yahoo Finance for the configured index
symbol (or the given one) and store them locally for scanning.`,
		Example: `  flagscan fetch
  flagscan fetch ^GSPC --years 10`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
			defer cancel()
			ctx = logging.WithLogger(ctx, app.Logger)

			symbol := app.Config.Data.Symbol
			if len(args) > 0 {
				symbol = args[0]
			}
			years, _ := cmd.Flags().GetInt("years")
			if !cmd.Flags().Changed("years") {
				years = app.Config.Data.Years
			}

			if app.Store == nil {
				output.Error("Store not available")
				return fmt.Errorf("store not available")
			}

			output.Info("Fetching %d year(s) of daily bars for %s...", years, symbol)

			start := time.Now()
			bars, err := app.Fetcher.FetchDailyBars(ctx, symbol, years)
			logging.LogFetch(app.Logger, symbol, len(bars), time.Since(start), err)
			if err != nil {
				output.Error("Fetch failed: %v", err)
				return err
			}

			if err := models.ValidateSeries(bars); err != nil {
				output.Error("Fetched series is malformed: %v", err)
				return err
			}

			if err := app.Store.SaveBars(ctx, symbol, bars); err != nil {
				output.Error("Failed to store bars: %v", err)
				return err
			}
			if err := app.Store.SetLastSync("bars:"+symbol, time.Now()); err != nil {
				app.Logger.Warn().Err(err).Msg("Failed to record sync time")
			}

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"symbol": symbol,
					"years":  years,
					"bars":   len(bars),
					"from":   bars[0].Date.Format("2006-01-02"),
					"to":     bars[len(bars)-1].Date.Format("2006-01-02"),
				})
			}

			color.Cyan("📈 %s", symbol)
			output.Printf("  Bars stored:  %d\n", len(bars))
			output.Printf("  First bar:    %s\n", FormatDate(bars[0].Date))
			output.Printf("  Last bar:     %s\n", FormatDate(bars[len(bars)-1].Date))
			output.Printf("  Last close:   %s\n", FormatPrice(bars[len(bars)-1].Close))
			color.Green("✓ Fetch complete")
			return nil
		},
	}

	cmd.Flags().Int("years", 5, "years of history to fetch (1-20)")
	return cmd
}
