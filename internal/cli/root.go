// Package cli provides the command-line interface for the flag scanner.
package cli

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"flagscan/internal/config"
	"flagscan/internal/fetch"
	"flagscan/internal/logging"
	"flagscan/internal/store"
)

// Version information
const (
	Version   = "0.1.0"
	BuildDate = "2025-03-08"
)

// App holds the application dependencies.
type App struct {
	Config  *config.Config
	Logger  zerolog.Logger
	Store   store.DataStore
	Fetcher fetch.Fetcher
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	app := &App{
		Config:  cfg,
		Logger:  logger,
		Fetcher: fetch.NewRetryingFetcher(fetch.NewYahooFetcher()),
	}

	// Initialize SQLite store
	dataStore, err := store.NewSQLiteStore(cfg.Data.DBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to initialize store, some features may be unavailable")
	} else {
		app.Store = dataStore
		logger.Debug().Msg("SQLite store initialized")
	}

	rootCmd := &cobra.Command{
		Use:   "flagscan",
		Short: "Flagscan - flag chart pattern scanner",
		Long: `Flagscan detects flag chart patterns (a sharp pole move followed by a
tight consolidation) in a daily index series and estimates how often
detected patterns resolved in their direction over a forward horizon.

Use 'flagscan help <command>' for more information about a command.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Handle debug flag
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				logging.SetDebugLevel()
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/flagscan)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(app))
	rootCmd.AddCommand(newFetchCmd(app))
	rootCmd.AddCommand(newScanCmd(app))
	rootCmd.AddCommand(newRunsCmd(app))
	rootCmd.AddCommand(newExportCmd(app))

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{
					"version":    Version,
					"build_date": BuildDate,
				})
			} else {
				output.Printf("Flagscan v%s\n", Version)
				output.Dim("Build date: %s", BuildDate)
			}
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "View and manage application configuration.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(app.Config)
			}
			showConfig(output, app.Config)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration directory path",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{"path": config.DefaultConfigDir()})
			} else {
				output.Println(config.DefaultConfigDir())
			}
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration files",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := app.Config.Validate(); err != nil {
				output.Error("Configuration validation failed: %v", err)
				return err
			}
			if output.IsJSON() {
				output.JSON(map[string]bool{"valid": true})
			} else {
				output.Success("✓ Configuration is valid")
			}
			return nil
		},
	})

	return cmd
}

func showConfig(output *Output, cfg *config.Config) {
	output.Bold("Data Configuration")
	output.Printf("  Symbol:          %s\n", cfg.Data.Symbol)
	output.Printf("  Years:           %d\n", cfg.Data.Years)
	output.Printf("  Database:        %s\n", cfg.Data.DBPath)
	output.Println()

	output.Bold("Detection Configuration")
	output.Printf("  Pole Bars:       %d\n", cfg.Detection.PoleBars)
	output.Printf("  Pole Threshold:  %.4f\n", cfg.Detection.PoleThreshold)
	output.Printf("  Flag Threshold:  %.4f\n", cfg.Detection.FlagThreshold)
	output.Printf("  Consolidation:   %d bars\n", cfg.Detection.ConsolidationDays)
	output.Printf("  Momentum Period: %d\n", cfg.Detection.MomentumPeriod)
	output.Printf("  MA Period:       %d\n", cfg.Detection.MAPeriod)
	output.Printf("  Confirm Bullish: %v\n", cfg.Detection.ConfirmBullish)
	output.Printf("  Confirm Bearish: %v\n", cfg.Detection.ConfirmBearish)
	output.Println()

	output.Bold("Evaluation Configuration")
	output.Printf("  Horizon:         %d days\n", cfg.Evaluation.HorizonDays)
	output.Printf("  Threshold:       %.4f\n", cfg.Evaluation.SuccessThreshold)
}
