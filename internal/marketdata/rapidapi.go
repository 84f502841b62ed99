package marketdata

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
)

// RapidAPIOptions configures the Indian Stock Exchange API on RapidAPI.
type RapidAPIOptions struct {
	APIKey  string
	Host    string
	BaseURL string
	Timeout time.Duration
}

// RapidAPI returns the raw historical_data body for a stock name.
type RapidAPI struct {
	client *resty.Client
	apiKey string
	host   string
}

// NewRapidAPI builds a single-attempt RapidAPI client.
func NewRapidAPI(opts RapidAPIOptions) *RapidAPI {
	host := opts.Host
	if host == "" {
		host = "indian-stock-exchange-api2.p.rapidapi.com"
	}
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = "https://" + host
	}
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(defaultTimeout(opts.Timeout))
	return &RapidAPI{client: client, apiKey: opts.APIKey, host: host}
}

func (r *RapidAPI) Name() string  { return ProviderRapidAPI }
func (r *RapidAPI) Label() string { return "RapidAPI" }

// Fetch returns the response body verbatim, whatever the status code.
func (r *RapidAPI) Fetch(ctx context.Context, symbol string) (string, error) {
	resp, err := r.client.R().
		SetContext(ctx).
		SetHeader("x-rapidapi-key", r.apiKey).
		SetHeader("x-rapidapi-host", r.host).
		SetQueryParams(map[string]string{
			"stock_name": symbol,
			"period":     "1m",
			"filter":     "price",
		}).
		Get("/historical_data")
	if err != nil {
		return "", err
	}
	return string(resp.Body()), nil
}

func defaultTimeout(v time.Duration) time.Duration {
	if v <= 0 {
		return 30 * time.Second
	}
	return v
}
