package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const configTemplate = `# Flagscan Configuration

[data]
# Index symbol to analyze
symbol = "^GSPC"
# Years of history to fetch (1-20)
years = 5
# SQLite database location (empty = <config dir>/flagscan.db)
#db_path = ""

[detection]
# Pole lookback in bars
pole_bars = 10
# Minimum fractional pole move
pole_threshold = 0.015
# Maximum fractional consolidation range
flag_threshold = 0.025
# Consolidation window length in bars
consolidation_days = 10
# Momentum oscillator period
momentum_period = 14
# Moving average window
ma_period = 50
# Apply momentum/MA confirmation to bullish candidates
confirm_bullish = true
# Apply the mirrored confirmation to bearish candidates
confirm_bearish = false

[evaluation]
# Forward horizon in bars: 1, 7, 14, 21 or 30
horizon_days = 7
# Minimum fractional forward move counted as success
success_threshold = 0.0001

[ui]
# Enable colored output
color_enabled = true
# Date format
date_format = "2006-01-02"
`

func createTemplateConfig(configDir, name string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, name+".toml")
	if err := os.WriteFile(path, []byte(configTemplate), 0644); err != nil {
		return fmt.Errorf("writing config template: %w", err)
	}

	return fmt.Errorf("config file not found, created template at %s", path)
}
