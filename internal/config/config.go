// Package config provides configuration management for the flag scanner.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Data       DataConfig       `mapstructure:"data"`
	Detection  DetectionConfig  `mapstructure:"detection"`
	Evaluation EvaluationConfig `mapstructure:"evaluation"`
	UI         UIConfig         `mapstructure:"ui"`
}

// DataConfig holds market data configuration.
type DataConfig struct {
	Symbol string `mapstructure:"symbol"`  // index symbol, e.g. ^GSPC
	Years  int    `mapstructure:"years"`   // years of history to fetch (1-20)
	DBPath string `mapstructure:"db_path"` // SQLite database location
}

// DetectionConfig holds pattern detection parameters.
type DetectionConfig struct {
	PoleBars          int     `mapstructure:"pole_bars"`
	PoleThreshold     float64 `mapstructure:"pole_threshold"`
	FlagThreshold     float64 `mapstructure:"flag_threshold"`
	ConsolidationDays int     `mapstructure:"consolidation_days"`
	MomentumPeriod    int     `mapstructure:"momentum_period"`
	MAPeriod          int     `mapstructure:"ma_period"`
	ConfirmBullish    bool    `mapstructure:"confirm_bullish"`
	ConfirmBearish    bool    `mapstructure:"confirm_bearish"`
}

// EvaluationConfig holds outcome evaluation parameters.
type EvaluationConfig struct {
	HorizonDays      int     `mapstructure:"horizon_days"`
	SuccessThreshold float64 `mapstructure:"success_threshold"`
}

// UIConfig holds UI-related configuration.
type UIConfig struct {
	ColorEnabled bool   `mapstructure:"color_enabled"`
	DateFormat   string `mapstructure:"date_format"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/flagscan"
	}
	return filepath.Join(home, ".config", "flagscan")
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	cfg := &Config{}

	if err := loadConfigFile(configDir, "config", cfg); err != nil {
		return nil, fmt.Errorf("loading config.toml: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func loadConfigFile(configDir, name string, target interface{}) error {
	v := viper.New()
	v.SetConfigName(name)
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	setDefaults(v, configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found, create template
			return createTemplateConfig(configDir, name)
		}
		return err
	}

	return v.Unmarshal(target)
}

func setDefaults(v *viper.Viper, configDir string) {
	v.SetDefault("data.symbol", "^GSPC")
	v.SetDefault("data.years", 5)
	v.SetDefault("data.db_path", filepath.Join(configDir, "flagscan.db"))

	v.SetDefault("detection.pole_bars", 10)
	v.SetDefault("detection.pole_threshold", 0.015)
	v.SetDefault("detection.flag_threshold", 0.025)
	v.SetDefault("detection.consolidation_days", 10)
	v.SetDefault("detection.momentum_period", 14)
	v.SetDefault("detection.ma_period", 50)
	v.SetDefault("detection.confirm_bullish", true)
	v.SetDefault("detection.confirm_bearish", false)

	v.SetDefault("evaluation.horizon_days", 7)
	v.SetDefault("evaluation.success_threshold", 0.0001)

	v.SetDefault("ui.color_enabled", true)
	v.SetDefault("ui.date_format", "2006-01-02")
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("FLAGSCAN_SYMBOL"); v != "" {
		cfg.Data.Symbol = v
	}
	if v := os.Getenv("FLAGSCAN_DB_PATH"); v != "" {
		cfg.Data.DBPath = v
	}
	if v := os.Getenv("FLAGSCAN_YEARS"); v != "" {
		if years, err := strconv.Atoi(v); err == nil {
			cfg.Data.Years = years
		}
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Data.Symbol == "" {
		return fmt.Errorf("data.symbol must not be empty")
	}
	if c.Data.Years < 1 || c.Data.Years > 20 {
		return fmt.Errorf("data.years must be between 1 and 20")
	}

	if c.Detection.PoleBars <= 0 {
		return fmt.Errorf("detection.pole_bars must be positive")
	}
	if c.Detection.PoleThreshold <= 0 {
		return fmt.Errorf("detection.pole_threshold must be positive")
	}
	if c.Detection.FlagThreshold <= 0 {
		return fmt.Errorf("detection.flag_threshold must be positive")
	}
	if c.Detection.ConsolidationDays <= 0 {
		return fmt.Errorf("detection.consolidation_days must be positive")
	}
	if c.Detection.MomentumPeriod <= 0 {
		return fmt.Errorf("detection.momentum_period must be positive")
	}
	if c.Detection.MAPeriod <= 0 {
		return fmt.Errorf("detection.ma_period must be positive")
	}

	validHorizon := false
	for _, h := range []int{1, 7, 14, 21, 30} {
		if c.Evaluation.HorizonDays == h {
			validHorizon = true
			break
		}
	}
	if !validHorizon {
		return fmt.Errorf("evaluation.horizon_days must be one of 1, 7, 14, 21, 30")
	}
	if c.Evaluation.SuccessThreshold <= 0 {
		return fmt.Errorf("evaluation.success_threshold must be positive")
	}

	return nil
}
