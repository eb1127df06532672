// Package fetch retrieves historical daily bars from Yahoo Finance.
package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	apperrors "flagscan/internal/errors"
	"flagscan/internal/models"
)

const defaultBaseURL = "https://query1.finance.yahoo.com"

// Fetcher retrieves a daily bar series for a symbol.
type Fetcher interface {
	Name() string
	FetchDailyBars(ctx context.Context, symbol string, years int) ([]models.PriceBar, error)
}

// YahooFetcher implements Fetcher using the Yahoo Finance public chart API.
type YahooFetcher struct {
	Client    *http.Client
	BaseURL   string
	SymbolMap map[string]string // maps friendly names to Yahoo tickers
}

// NewYahooFetcher creates a new Yahoo Finance fetcher.
func NewYahooFetcher() *YahooFetcher {
	return &YahooFetcher{
		Client: &http.Client{
			Timeout: 30 * time.Second,
		},
		BaseURL: defaultBaseURL,
		SymbolMap: map[string]string{
			"SPX500": "^GSPC",
			"SPX":    "^GSPC",
			"SP500":  "^GSPC",
		},
	}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

func (f *YahooFetcher) yahooSymbol(symbol string) string {
	if mapped, ok := f.SymbolMap[symbol]; ok {
		return mapped
	}
	return symbol
}

// yahooChart is the response structure from Yahoo Finance chart API.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open  []interface{} `json:"open"`
					High  []interface{} `json:"high"`
					Low   []interface{} `json:"low"`
					Close []interface{} `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func toFloat(v interface{}) float64 {
	if v == nil {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	default:
		return 0
	}
}

func (f *YahooFetcher) fetchChart(ctx context.Context, symbol, interval, rng string) ([]models.PriceBar, error) {
	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=%s&range=%s",
		f.BaseURL, url.PathEscape(f.yahooSymbol(symbol)), interval, rng)

	req, err := http.NewRequestWithContext(ctx, "GET", u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, apperrors.Wrap(err, "yahoo fetch")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.Wrap(err, "yahoo read body")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("yahoo: status %d, body: %s", resp.StatusCode, string(body))
	}

	var chart yahooChart
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, apperrors.Wrap(err, "yahoo decode")
	}
	if chart.Chart.Error != nil {
		return nil, apperrors.NewDataError("chart", symbol, chart.Chart.Error.Description, apperrors.ErrFetchFailed)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Timestamp) == 0 {
		return nil, apperrors.NewDataError("chart", symbol, "no data returned", apperrors.ErrDataNotFound)
	}

	result := chart.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, apperrors.NewDataError("chart", symbol, "no quote data", apperrors.ErrDataNotFound)
	}
	quote := result.Indicators.Quote[0]
	bars := make([]models.PriceBar, 0, len(result.Timestamp))

	for i, ts := range result.Timestamp {
		if i >= len(quote.Open) || i >= len(quote.High) || i >= len(quote.Low) || i >= len(quote.Close) {
			break
		}
		o := toFloat(quote.Open[i])
		h := toFloat(quote.High[i])
		l := toFloat(quote.Low[i])
		c := toFloat(quote.Close[i])
		if o == 0 && h == 0 && l == 0 && c == 0 {
			continue // skip null bars (holidays etc.)
		}
		bars = append(bars, models.PriceBar{
			Date:  time.Unix(ts, 0).UTC(),
			Open:  o,
			High:  h,
			Low:   l,
			Close: c,
		})
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	return bars, nil
}

// FetchDailyBars retrieves daily bars covering the requested number of
// years of history (1-20) and trims to the requested span.
func (f *YahooFetcher) FetchDailyBars(ctx context.Context, symbol string, years int) ([]models.PriceBar, error) {
	if years < 1 || years > 20 {
		return nil, apperrors.NewValidationError("years", years, "must be between 1 and 20")
	}

	// Yahoo only accepts fixed range tokens for the daily interval.
	rng := "max"
	switch {
	case years <= 1:
		rng = "1y"
	case years <= 2:
		rng = "2y"
	case years <= 5:
		rng = "5y"
	case years <= 10:
		rng = "10y"
	}

	bars, err := f.fetchChart(ctx, symbol, "1d", rng)
	if err != nil {
		return nil, err
	}

	cutoff := time.Now().UTC().AddDate(-years, 0, 0)
	for i, b := range bars {
		if !b.Date.Before(cutoff) {
			bars = bars[i:]
			break
		}
	}

	return bars, nil
}
