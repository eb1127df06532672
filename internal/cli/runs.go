package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"flagscan/internal/store"
)

func newRunsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List saved scan runs",
		Long:  "List previously saved scan runs with their parameters and success rates.",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if app.Store == nil {
				output.Error("Store not available")
				return fmt.Errorf("store not available")
			}

			symbol, _ := cmd.Flags().GetString("symbol")
			limit, _ := cmd.Flags().GetInt("limit")

			runs, err := app.Store.GetScanRuns(ctx, store.RunFilter{
				Symbol: symbol,
				Limit:  limit,
			})
			if err != nil {
				output.Error("Failed to load runs: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(runs)
			}

			if len(runs) == 0 {
				output.Dim("No saved runs. Use 'flagscan scan --save'.")
				return nil
			}

			table := NewTable(output, "ID", "SYMBOL", "RUN AT", "HORIZON", "PATTERNS", "BULL RATE", "BEAR RATE", "TOTAL %")
			for _, run := range runs {
				table.AddRow(
					fmt.Sprintf("%d", run.ID),
					run.Symbol,
					FormatDateTime(run.RunAt),
					fmt.Sprintf("D+%d", run.HorizonDays),
					fmt.Sprintf("%d", run.Summary.BullishValidCount+run.Summary.BearishValidCount),
					FormatRate(run.Summary.BullishSuccessRate),
					FormatRate(run.Summary.BearishSuccessRate),
					output.FormatChange(run.Summary.TotalGainPct),
				)
			}
			table.Render()
			return nil
		},
	}

	cmd.Flags().String("symbol", "", "filter by symbol")
	cmd.Flags().Int("limit", 20, "maximum runs to list")
	return cmd
}
