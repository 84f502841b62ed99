package marketdata

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
)

const trueDataTimeLayout = "060102T15:04:05"

// TrueDataOptions configures the TrueData history REST API.
type TrueDataOptions struct {
	Username   string
	Password   string
	AuthURL    string
	HistoryURL string
	Timeout    time.Duration
	Now        func() time.Time
}

// TrueData fetches daily bars after a password-grant login.
type TrueData struct {
	client     *resty.Client
	username   string
	password   string
	authURL    string
	historyURL string
	now        func() time.Time
}

// NewTrueData builds a single-attempt TrueData client.
func NewTrueData(opts TrueDataOptions) *TrueData {
	authURL := opts.AuthURL
	if authURL == "" {
		authURL = "https://auth.truedata.in/token"
	}
	historyURL := strings.TrimRight(opts.HistoryURL, "/")
	if historyURL == "" {
		historyURL = "https://history.truedata.in"
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &TrueData{
		client:     resty.New().SetTimeout(defaultTimeout(opts.Timeout)),
		username:   opts.Username,
		password:   opts.Password,
		authURL:    authURL,
		historyURL: historyURL,
		now:        now,
	}
}

func (t *TrueData) Name() string  { return ProviderTrueData }
func (t *TrueData) Label() string { return "TrueData" }

type trueDataToken struct {
	AccessToken string `json:"access_token"`
	Error       string `json:"error"`
	Description string `json:"error_description"`
}

type trueDataBarsResponse struct {
	Status  string              `json:"status"`
	Message string              `json:"message"`
	Records [][]json.RawMessage `json:"Records"`
}

// Fetch logs in and returns one month of daily bars as JSON.
func (t *TrueData) Fetch(ctx context.Context, symbol string) (string, error) {
	if t.username == "" || t.password == "" {
		return "", &NotInitializedError{Client: t.Label()}
	}
	token, err := t.login(ctx)
	if err != nil {
		return "", &NotInitializedError{Client: t.Label(), Err: err}
	}

	from, to := historyWindow(t.now())
	resp, err := t.client.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetQueryParams(map[string]string{
			"symbol":   strings.ToUpper(symbol),
			"from":     from.Format(trueDataTimeLayout),
			"to":       to.Format(trueDataTimeLayout),
			"response": "json",
			"interval": "1day",
		}).
		Get(t.historyURL + "/getbars")
	if err != nil {
		return "", err
	}
	if resp.IsError() {
		return "", fmt.Errorf("history request returned status %d", resp.StatusCode())
	}

	bars, err := parseTrueDataBars(resp.Body())
	if err != nil {
		return "", err
	}
	return encodeBars(symbol, bars)
}

func (t *TrueData) login(ctx context.Context) (string, error) {
	var token trueDataToken
	resp, err := t.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"username":   t.username,
			"password":   t.password,
			"grant_type": "password",
		}).
		SetResult(&token).
		SetError(&token).
		Post(t.authURL)
	if err != nil {
		return "", err
	}
	if resp.IsError() {
		if token.Description != "" {
			return "", fmt.Errorf("login rejected: %s", token.Description)
		}
		return "", fmt.Errorf("login returned status %d", resp.StatusCode())
	}
	if token.AccessToken == "" {
		return "", errors.New("login returned no access token")
	}
	return token.AccessToken, nil
}

func parseTrueDataBars(body []byte) ([]Bar, error) {
	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()
	var payload trueDataBarsResponse
	if err := decoder.Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode bars: %w", err)
	}
	if !strings.EqualFold(payload.Status, "success") {
		message := payload.Message
		if message == "" {
			message = payload.Status
		}
		return nil, fmt.Errorf("history request failed: %s", message)
	}

	bars := make([]Bar, 0, len(payload.Records))
	for i, record := range payload.Records {
		bar, err := parseTrueDataRecord(record)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		bars = append(bars, bar)
	}
	return bars, nil
}

// parseTrueDataRecord reads [timestamp, open, high, low, close, volume, oi?].
func parseTrueDataRecord(record []json.RawMessage) (Bar, error) {
	if len(record) < 6 {
		return Bar{}, fmt.Errorf("expected at least 6 fields, got %d", len(record))
	}
	var bar Bar
	if err := json.Unmarshal(record[0], &bar.Timestamp); err != nil {
		return Bar{}, fmt.Errorf("timestamp: %w", err)
	}
	fields := []*decimal.Decimal{&bar.Open, &bar.High, &bar.Low, &bar.Close, &bar.Volume}
	for i, target := range fields {
		value, err := decimal.NewFromString(string(record[i+1]))
		if err != nil {
			return Bar{}, fmt.Errorf("field %d: %w", i+1, err)
		}
		*target = value
	}
	if len(record) > 6 {
		oi, err := decimal.NewFromString(string(record[6]))
		if err != nil {
			return Bar{}, fmt.Errorf("open interest: %w", err)
		}
		bar.OpenInterest = &oi
	}
	return bar, nil
}
