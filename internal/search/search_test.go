package search

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func TestNewSelectsBackend(t *testing.T) {
	client, err := New(Options{Backend: "serpapi", SerpAPIKey: "key", Logger: discardLogger()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if client.Name() != "SerpAPISearch" {
		t.Fatalf("expected SerpAPISearch, got %s", client.Name())
	}
	if !strings.Contains(client.Description(), "SerpAPI") {
		t.Fatalf("unexpected description %q", client.Description())
	}

	client, err = New(Options{Backend: "googlenews", Logger: discardLogger()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if client.Name() != "GoogleNewsSearch" {
		t.Fatalf("expected GoogleNewsSearch, got %s", client.Name())
	}

	if _, err := New(Options{Backend: "bing"}); err == nil {
		t.Fatalf("expected unknown backend error")
	}
}

func TestNewFallsBackWithoutSerpAPIKey(t *testing.T) {
	var logs bytes.Buffer
	client, err := New(Options{Backend: "", Logger: slog.New(slog.NewTextHandler(&logs, nil))})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if client.Name() != "GoogleNewsSearch" {
		t.Fatalf("expected fallback to Google News, got %s", client.Name())
	}
	if !strings.Contains(logs.String(), "falling back") {
		t.Fatalf("expected fallback warning, got %s", logs.String())
	}
}

func TestSearchLogsBeforeExecuting(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"answer_box":{"answer":"42"}}`))
	}))
	defer server.Close()

	var logs bytes.Buffer
	client, err := New(Options{
		Backend:        BackendSerpAPI,
		SerpAPIKey:     "key",
		SerpAPIBaseURL: server.URL,
		Logger:         slog.New(slog.NewTextHandler(&logs, nil)),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got, err := client.Search(context.Background(), "TCS news")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if got != "42" {
		t.Fatalf("unexpected result %q", got)
	}
	if !strings.Contains(logs.String(), "executing web search") || !strings.Contains(logs.String(), `query="TCS news"`) {
		t.Fatalf("expected search log line, got %s", logs.String())
	}
}
