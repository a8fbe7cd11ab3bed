package alphavantage

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strconv"

	"resty.dev/v3"

	"marketfetch/internal/barfile"
	"marketfetch/internal/fetcher"
)

// DefaultBaseURL is the production AlphaVantage query endpoint
const DefaultBaseURL = "https://www.alphavantage.co/query"

// DailyResponse represents the AlphaVantage TIME_SERIES_DAILY response.
// The API reports failures with a 200 status and one of the message fields set.
type DailyResponse struct {
	ErrorMessage string                `json:"Error Message"`
	Note         string                `json:"Note"`
	Information  string                `json:"Information"`
	TimeSeries   map[string]DailyEntry `json:"Time Series (Daily)"`
}

// DailyEntry is one day of the series; AlphaVantage encodes every number as a string
type DailyEntry struct {
	Open   string `json:"1. open"`
	High   string `json:"2. high"`
	Low    string `json:"3. low"`
	Close  string `json:"4. close"`
	Volume string `json:"5. volume"`
}

// DailySeriesFetcher fetches daily price bars from AlphaVantage
type DailySeriesFetcher struct {
	apiKey string
	client *resty.Client
}

// NewDailySeriesFetcher creates a daily series fetcher using client, whose base
// URL must point at the query endpoint
func NewDailySeriesFetcher(apiKey string, client *resty.Client) *DailySeriesFetcher {
	return &DailySeriesFetcher{
		apiKey: apiKey,
		client: client,
	}
}

// Fetch retrieves the daily bars for symbol sorted by date, oldest first
func (f *DailySeriesFetcher) Fetch(ctx context.Context, symbol string) ([]barfile.Bar, error) {
	var result DailyResponse

	resp, err := f.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"apikey":   f.apiKey,
			"function": "TIME_SERIES_DAILY",
			"symbol":   symbol,
		}).
		SetResult(&result).
		Get("")

	if err != nil {
		return nil, fetcher.NewNetworkError(fetcher.StripURL(err))
	}

	if !resp.IsSuccess() {
		return nil, fetcher.ClassifyHTTPError(resp.StatusCode())
	}

	switch {
	case result.ErrorMessage != "":
		return nil, fetcher.NewValidationError(fmt.Sprintf("alphavantage rejected %s: %s", symbol, result.ErrorMessage))
	case result.Note != "":
		return nil, &fetcher.FetchError{Type: fetcher.ErrorTypeRateLimit, Message: result.Note}
	case result.Information != "":
		return nil, &fetcher.FetchError{Type: fetcher.ErrorTypeClient, Message: result.Information}
	case len(result.TimeSeries) == 0:
		return nil, fetcher.NewValidationError(fmt.Sprintf("time series not found in response for %s", symbol))
	}

	bars := make([]barfile.Bar, 0, len(result.TimeSeries))
	for date, entry := range result.TimeSeries {
		bar, err := entry.bar(date)
		if err != nil {
			return nil, fetcher.NewValidationError(fmt.Sprintf("bad bar for %s on %s: %v", symbol, date, err))
		}
		bars = append(bars, bar)
	}

	slices.SortFunc(bars, func(a, b barfile.Bar) int {
		return cmp.Compare(a.Date, b.Date)
	})

	return bars, nil
}

func (e DailyEntry) bar(date string) (barfile.Bar, error) {
	b := barfile.Bar{Date: date}
	fields := []struct {
		name string
		raw  string
		dst  *float64
	}{
		{"open", e.Open, &b.Open},
		{"high", e.High, &b.High},
		{"low", e.Low, &b.Low},
		{"close", e.Close, &b.Close},
		{"volume", e.Volume, &b.Volume},
	}

	for _, f := range fields {
		v, err := strconv.ParseFloat(f.raw, 64)
		if err != nil {
			return barfile.Bar{}, fmt.Errorf("failed to parse %s %q", f.name, f.raw)
		}
		*f.dst = v
	}
	return b, nil
}
