package export

import (
	"math"
	"os"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"

	"flagscan/internal/analysis"
	"flagscan/internal/models"
)

// maxChartPoints bounds the close line so multi-year exports stay
// quick to render; pattern overlays are never downsampled.
const maxChartPoints = 1500

// WriteChartPNG renders the close series with a two-point segment per
// pattern: pole start to flag start, then flag start to flag end.
func WriteChartPNG(path string, bars []models.PriceBar, patterns []analysis.PatternRecord) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	closeByDate := make(map[int64]float64, len(bars))
	for _, b := range bars {
		closeByDate[b.Date.Unix()] = b.Close
	}

	sampled := downsampleBars(bars, maxChartPoints)
	x := make([]time.Time, len(sampled))
	y := make([]float64, len(sampled))
	for i, b := range sampled {
		x[i] = b.Date
		y[i] = b.Close
	}

	series := []chart.Series{
		chart.TimeSeries{
			Name:    "Close",
			XValues: x,
			YValues: y,
		},
	}

	for _, p := range patterns {
		poleStart, ok1 := closeByDate[p.PoleStart.Unix()]
		flagStart, ok2 := closeByDate[p.FlagStart.Unix()]
		flagEnd, ok3 := closeByDate[p.FlagEnd.Unix()]
		if !ok1 || !ok2 || !ok3 {
			continue
		}

		poleColor := chart.ColorGreen
		if p.Direction == analysis.Bearish {
			poleColor = chart.ColorRed
		}

		series = append(series,
			chart.TimeSeries{
				XValues: []time.Time{p.PoleStart, p.FlagStart},
				YValues: []float64{poleStart, flagStart},
				Style: chart.Style{
					StrokeColor: poleColor,
					StrokeWidth: 2.5,
				},
			},
			chart.TimeSeries{
				XValues: []time.Time{p.FlagStart, p.FlagEnd},
				YValues: []float64{flagStart, flagEnd},
				Style: chart.Style{
					StrokeColor: chart.ColorOrange,
					StrokeWidth: 2.5,
				},
			},
		)
	}

	graph := chart.Chart{
		Width:  1280,
		Height: 720,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatter,
		},
		YAxis: chart.YAxis{
			Name: "Close",
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return graph.Render(chart.PNG, file)
}

func downsampleBars(bars []models.PriceBar, max int) []models.PriceBar {
	if max <= 0 || len(bars) <= max {
		return bars
	}

	result := make([]models.PriceBar, 0, max)
	step := float64(len(bars)-1) / float64(max-1)
	for i := 0; i < max; i++ {
		idx := int(math.Round(step * float64(i)))
		if idx >= len(bars) {
			idx = len(bars) - 1
		}
		result = append(result, bars[idx])
	}
	return result
}
