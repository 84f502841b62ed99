// Package search runs free-text web searches for news and sentiment context.
package search

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/yogeshkd786/stock-mkt-llm-app/internal/trace"
)

// Backend names accepted by Options.Backend.
const (
	BackendSerpAPI    = "serpapi"
	BackendGoogleNews = "googlenews"
)

const noResultText = "No good search result found"

type backend interface {
	name() string
	description() string
	search(ctx context.Context, query string) (string, error)
}

// Options selects and configures the search backend.
type Options struct {
	Backend           string
	SerpAPIKey        string
	SerpAPIBaseURL    string
	GoogleNewsBaseURL string
	Timeout           time.Duration
	Logger            *slog.Logger
}

// Client executes searches against one backend. It is safe for concurrent use.
type Client struct {
	backend backend
	logger  *slog.Logger
}

// New builds a Client. SerpAPI without an API key falls back to Google News.
func New(opts Options) (*Client, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	name := strings.ToLower(strings.TrimSpace(opts.Backend))
	if name == "" {
		name = BackendSerpAPI
	}
	if name == BackendSerpAPI && opts.SerpAPIKey == "" {
		logger.Warn("SERPAPI_API_KEY is not set, falling back to Google News search")
		name = BackendGoogleNews
	}

	var b backend
	switch name {
	case BackendSerpAPI:
		b = newSerpAPI(opts.SerpAPIKey, opts.SerpAPIBaseURL, opts.Timeout)
	case BackendGoogleNews:
		b = newGoogleNews(opts.GoogleNewsBaseURL, opts.Timeout)
	default:
		return nil, fmt.Errorf("unknown search backend: %s", opts.Backend)
	}
	return &Client{backend: b, logger: logger}, nil
}

// Name is the tool name the model sees.
func (c *Client) Name() string { return c.backend.name() }

func (c *Client) Description() string { return c.backend.description() }

// Search returns a plain-text summary of the results for query.
func (c *Client) Search(ctx context.Context, query string) (string, error) {
	c.logger.InfoContext(ctx, "executing web search", "backend", c.backend.name(), "query", query)

	ctx, span := trace.StartSpan(ctx, "search.Search",
		attribute.String("backend", c.backend.name()),
		attribute.String("query", query),
	)
	defer span.End()

	start := time.Now()
	result, err := c.backend.search(ctx, query)
	if err != nil {
		trace.RecordError(span, err)
		c.logger.WarnContext(ctx, "web search failed",
			"backend", c.backend.name(),
			"duration_ms", time.Since(start).Milliseconds(),
			"err", err,
		)
		return "", err
	}
	c.logger.DebugContext(ctx, "web search completed",
		"backend", c.backend.name(),
		"bytes", len(result),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return result, nil
}

func timeoutOrDefault(timeout time.Duration) time.Duration {
	if timeout <= 0 {
		return 30 * time.Second
	}
	return timeout
}
