package marketdata

import (
	"context"
	"strings"
	"time"

	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/shopspring/decimal"
)

// yahooChart is replaced in tests.
var yahooChart = fetchYahooChart

// YahooOptions configures the Yahoo Finance provider.
type YahooOptions struct {
	// SymbolSuffix is appended to bare symbols, ".NS" for NSE listings.
	SymbolSuffix string
	Now          func() time.Time
}

// Yahoo fetches daily bars from the Yahoo Finance chart API.
type Yahoo struct {
	suffix string
	now    func() time.Time
}

func NewYahoo(opts YahooOptions) *Yahoo {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Yahoo{suffix: opts.SymbolSuffix, now: now}
}

func (y *Yahoo) Name() string  { return ProviderYahoo }
func (y *Yahoo) Label() string { return "Yahoo Finance" }

func (y *Yahoo) Fetch(ctx context.Context, symbol string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	ticker := y.ticker(symbol)
	start, end := historyWindow(y.now())
	bars, err := yahooChart(ticker, start, end)
	if err != nil {
		return "", err
	}
	return encodeBars(ticker, bars)
}

func (y *Yahoo) ticker(symbol string) string {
	ticker := strings.ToUpper(strings.TrimSpace(symbol))
	if y.suffix == "" || strings.Contains(ticker, ".") {
		return ticker
	}
	return ticker + y.suffix
}

func fetchYahooChart(ticker string, start, end time.Time) ([]Bar, error) {
	iter := chart.Get(&chart.Params{
		Symbol:   ticker,
		Start:    datetime.New(&start),
		End:      datetime.New(&end),
		Interval: datetime.OneDay,
	})

	var bars []Bar
	for iter.Next() {
		bar := iter.Bar()
		bars = append(bars, Bar{
			Timestamp: time.Unix(int64(bar.Timestamp), 0).UTC().Format(time.RFC3339),
			Open:      bar.Open,
			High:      bar.High,
			Low:       bar.Low,
			Close:     bar.Close,
			Volume:    decimal.NewFromInt(int64(bar.Volume)),
		})
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return bars, nil
}
