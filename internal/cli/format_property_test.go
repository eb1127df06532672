// Package cli provides the command-line interface for the flag scanner.
package cli

import (
	"math"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// For any finite value, FormatPercent should:
// 1. End with %
// 2. Carry a + sign only for positive values
// 3. Preserve the numeric value to two decimals when parsed back
func TestProperty_PercentFormatting(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("FormatPercent produces a signed parseable percentage", prop.ForAll(
		func(value float64) bool {
			if math.IsNaN(value) || math.IsInf(value, 0) {
				return true
			}

			formatted := FormatPercent(value)

			if !strings.HasSuffix(formatted, "%") {
				t.Logf("Expected %% suffix for %f, got %s", value, formatted)
				return false
			}
			if value > 0 && !strings.HasPrefix(formatted, "+") {
				t.Logf("Expected + prefix for %f, got %s", value, formatted)
				return false
			}
			if value < 0 && !strings.HasPrefix(formatted, "-") {
				t.Logf("Expected - prefix for %f, got %s", value, formatted)
				return false
			}

			numPart := strings.TrimSuffix(strings.TrimPrefix(formatted, "+"), "%")
			parsed, err := strconv.ParseFloat(numPart, 64)
			if err != nil {
				t.Logf("Unparseable number in %s: %v", formatted, err)
				return false
			}
			return math.Abs(parsed-value) <= 0.005+1e-9
		},
		gen.Float64Range(-1000, 1000),
	))

	properties.TestingRun(t)
}

func TestProperty_RateFormatting(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("FormatRate maps [0,1] into a 0-100 percentage", prop.ForAll(
		func(rate float64) bool {
			formatted := FormatRate(rate)

			numPart := strings.TrimSuffix(formatted, "%")
			parsed, err := strconv.ParseFloat(numPart, 64)
			if err != nil {
				t.Logf("Unparseable rate in %s: %v", formatted, err)
				return false
			}
			return parsed >= 0 && parsed <= 100 && math.Abs(parsed-rate*100) <= 0.05+1e-9
		},
		gen.Float64Range(0, 1),
	))

	properties.TestingRun(t)
}

func TestFormatPrice(t *testing.T) {
	tests := []struct {
		price float64
		want  string
	}{
		{5234.18, "5234.18"},
		{10, "10.00"},
		{9.9999, "10.0000"},
		{0.1234, "0.1234"},
	}
	for _, tt := range tests {
		if got := FormatPrice(tt.price); got != tt.want {
			t.Errorf("FormatPrice(%f): expected %s, got %s", tt.price, tt.want, got)
		}
	}
}

func TestFormatDate(t *testing.T) {
	d := time.Date(2024, 3, 8, 15, 30, 0, 0, time.UTC)
	if got := FormatDate(d); got != "2024-03-08" {
		t.Errorf("Expected 2024-03-08, got %s", got)
	}
	if got := FormatDate(time.Time{}); got != "-" {
		t.Errorf("Expected - for zero time, got %s", got)
	}
	if got := FormatDateTime(d); got != "2024-03-08 15:30" {
		t.Errorf("Expected 2024-03-08 15:30, got %s", got)
	}
}
