// Package marketdata fetches historical price data from pluggable providers
// and reports every outcome, including failures, as text.
package marketdata

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/yogeshkd786/stock-mkt-llm-app/internal/trace"
)

// Provider tags accepted by Service.Fetch.
const (
	ProviderRapidAPI = "rapidapi"
	ProviderTrueData = "truedata"
	ProviderYahoo    = "yahoo"
	ProviderKite     = "kite"
)

const historyWindowMonths = 1

// Provider fetches one month of daily history for a symbol.
type Provider interface {
	// Name is the tag callers select the provider by.
	Name() string
	// Label is the human-readable source name used in error text.
	Label() string
	Fetch(ctx context.Context, symbol string) (string, error)
}

// NotInitializedError reports missing or rejected provider credentials.
type NotInitializedError struct {
	Client string
	Err    error
}

func (e *NotInitializedError) Error() string {
	return fmt.Sprintf("%s client is not initialized. Please check your credentials.", e.Client)
}

func (e *NotInitializedError) Unwrap() error {
	return e.Err
}

// Service dispatches fetches to registered providers by tag.
type Service struct {
	providers map[string]Provider
	logger    *slog.Logger
}

// NewService registers providers under their tags.
func NewService(logger *slog.Logger, providers ...Provider) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{providers: make(map[string]Provider, len(providers)), logger: logger}
	for _, p := range providers {
		s.providers[p.Name()] = p
	}
	return s
}

// Fetch returns provider data for symbol, or a human-readable failure text.
// Unknown tags yield "Unknown data provider: <tag>".
func (s *Service) Fetch(ctx context.Context, symbol, provider string) string {
	s.logger.InfoContext(ctx, "fetching financial data", "symbol", symbol, "provider", provider)

	p, ok := s.providers[provider]
	if !ok {
		return fmt.Sprintf("Unknown data provider: %s", provider)
	}

	ctx, span := trace.StartSpan(ctx, "marketdata.Fetch",
		attribute.String("symbol", symbol),
		attribute.String("provider", provider),
	)
	defer span.End()

	start := time.Now()
	data, err := p.Fetch(ctx, symbol)
	if err != nil {
		trace.RecordError(span, err)
		var notInit *NotInitializedError
		if errors.As(err, &notInit) {
			if notInit.Err != nil {
				s.logger.WarnContext(ctx, "data provider client failed to initialize", "provider", provider, "err", notInit.Err)
			}
			return notInit.Error()
		}
		s.logger.WarnContext(ctx, "financial data fetch failed",
			"symbol", symbol,
			"provider", provider,
			"duration_ms", time.Since(start).Milliseconds(),
			"err", err,
		)
		return fmt.Sprintf("Error fetching data from %s: %v", p.Label(), err)
	}

	s.logger.DebugContext(ctx, "financial data fetched",
		"symbol", symbol,
		"provider", provider,
		"bytes", len(data),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return data
}

// Providers returns the registered tags.
func (s *Service) Providers() []string {
	names := make([]string, 0, len(s.providers))
	for name := range s.providers {
		names = append(names, name)
	}
	return names
}

func historyWindow(now time.Time) (time.Time, time.Time) {
	return now.AddDate(0, -historyWindowMonths, 0), now
}
