package marketdata

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	kiteconnect "github.com/zerodha/gokiteconnect/v4"
)

// kiteClient is the part of the Kite Connect client this provider uses.
type kiteClient interface {
	SetAccessToken(accessToken string)
	GetInstrumentsByExchange(exchange string) (kiteconnect.Instruments, error)
	GetHistoricalData(instrumentToken int, interval string, fromDate time.Time, toDate time.Time, continuous bool, OI bool) ([]kiteconnect.HistoricalData, error)
}

// KiteOptions configures the Zerodha Kite Connect provider.
type KiteOptions struct {
	APIKey      string
	AccessToken string
	Exchange    string
	Timeout     time.Duration
	Now         func() time.Time
}

// Kite fetches daily candles from Kite Connect.
type Kite struct {
	apiKey      string
	accessToken string
	exchange    string
	timeout     time.Duration
	now         func() time.Time
	newClient   func(apiKey string, timeout time.Duration) kiteClient
}

func NewKite(opts KiteOptions) *Kite {
	exchange := opts.Exchange
	if exchange == "" {
		exchange = "NSE"
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Kite{
		apiKey:      opts.APIKey,
		accessToken: opts.AccessToken,
		exchange:    exchange,
		timeout:     defaultTimeout(opts.Timeout),
		now:         now,
		newClient:   newKiteConnectClient,
	}
}

func newKiteConnectClient(apiKey string, timeout time.Duration) kiteClient {
	kc := kiteconnect.New(apiKey)
	kc.SetHTTPClient(&http.Client{Timeout: timeout})
	return kc
}

func (k *Kite) Name() string  { return ProviderKite }
func (k *Kite) Label() string { return "Kite Connect" }

// Fetch resolves the instrument token on every call and returns daily candles.
func (k *Kite) Fetch(ctx context.Context, symbol string) (string, error) {
	if k.apiKey == "" || k.accessToken == "" {
		return "", &NotInitializedError{Client: k.Label()}
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	kc := k.newClient(k.apiKey, k.timeout)
	kc.SetAccessToken(k.accessToken)

	instruments, err := kc.GetInstrumentsByExchange(k.exchange)
	if err != nil {
		return "", fmt.Errorf("list %s instruments: %w", k.exchange, err)
	}
	tradingSymbol := strings.ToUpper(strings.TrimSpace(symbol))
	token := 0
	for _, inst := range instruments {
		if inst.Tradingsymbol == tradingSymbol {
			token = inst.InstrumentToken
			break
		}
	}
	if token == 0 {
		return "", fmt.Errorf("instrument %s not found on %s", tradingSymbol, k.exchange)
	}

	from, to := historyWindow(k.now())
	candles, err := kc.GetHistoricalData(token, "day", from, to, false, false)
	if err != nil {
		return "", err
	}
	bars := make([]Bar, 0, len(candles))
	for _, c := range candles {
		bars = append(bars, Bar{
			Timestamp: c.Date.Format(time.RFC3339),
			Open:      decimal.NewFromFloat(c.Open),
			High:      decimal.NewFromFloat(c.High),
			Low:       decimal.NewFromFloat(c.Low),
			Close:     decimal.NewFromFloat(c.Close),
			Volume:    decimal.NewFromInt(int64(c.Volume)),
		})
	}
	return encodeBars(tradingSymbol, bars)
}
