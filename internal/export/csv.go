// Package export serializes scan results to CSV and PNG.
package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"flagscan/internal/analysis"
)

// DateFormat is the layout used for exported dates.
const DateFormat = "2006-01-02"

// outcomeRow is the delimited form of one evaluated pattern.
type outcomeRow struct {
	PoleStart        string `csv:"pole_start"`
	FlagStart        string `csv:"flag_start"`
	FlagEnd          string `csv:"flag_end"`
	Direction        string `csv:"direction"`
	PoleChangePct    string `csv:"pole_change_pct"`
	ConsolidationPct string `csv:"consolidation_range_pct"`
	ForwardChangePct string `csv:"forward_change_pct"`
	Success          bool   `csv:"success"`
	HorizonDays      int    `csv:"horizon_days"`
	ThresholdPct     string `csv:"threshold_pct"`
}

// WriteOutcomesCSV writes one row per outcome record. Dates are
// human-readable and percentages carry two decimals; the raw
// fractional values stay in the store.
func WriteOutcomesCSV(path string, records []analysis.OutcomeRecord) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	rows := make([]*outcomeRow, 0, len(records))
	for _, o := range records {
		rows = append(rows, &outcomeRow{
			PoleStart:        o.Pattern.PoleStart.Format(DateFormat),
			FlagStart:        o.Pattern.FlagStart.Format(DateFormat),
			FlagEnd:          o.Pattern.FlagEnd.Format(DateFormat),
			Direction:        string(o.Pattern.Direction),
			PoleChangePct:    formatPct(o.Pattern.PoleChangePct),
			ConsolidationPct: formatPct(o.Pattern.ConsolidationRangePct),
			ForwardChangePct: formatPct(o.ForwardChangePct),
			Success:          o.Success,
			HorizonDays:      o.HorizonDays,
			ThresholdPct:     fmt.Sprintf("%.4f", o.SuccessThreshold*100),
		})
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return gocsv.MarshalFile(&rows, file)
}

func formatPct(v float64) string {
	return fmt.Sprintf("%.2f", v*100)
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
