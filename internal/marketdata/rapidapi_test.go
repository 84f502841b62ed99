package marketdata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestRapidAPIFetch(t *testing.T) {
	var gotPath, gotStock, gotPeriod, gotFilter, gotKey, gotHost string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotStock = r.URL.Query().Get("stock_name")
		gotPeriod = r.URL.Query().Get("period")
		gotFilter = r.URL.Query().Get("filter")
		gotKey = r.Header.Get("x-rapidapi-key")
		gotHost = r.Header.Get("x-rapidapi-host")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"datasets":[{"metric":"Price"}]}` + "\n"))
	}))
	defer server.Close()

	provider := NewRapidAPI(RapidAPIOptions{APIKey: "secret", Host: "example.rapidapi.com", BaseURL: server.URL})
	body, err := provider.Fetch(context.Background(), "M&M")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if body != `{"datasets":[{"metric":"Price"}]}`+"\n" {
		t.Fatalf("expected verbatim body, got %q", body)
	}
	if gotPath != "/historical_data" || gotStock != "M&M" || gotPeriod != "1m" || gotFilter != "price" {
		t.Fatalf("unexpected request path=%s stock=%s period=%s filter=%s", gotPath, gotStock, gotPeriod, gotFilter)
	}
	if gotKey != "secret" || gotHost != "example.rapidapi.com" {
		t.Fatalf("unexpected headers key=%q host=%q", gotKey, gotHost)
	}
}

func TestRapidAPIReturnsErrorBodies(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"message":"You are not subscribed to this API."}`))
	}))
	defer server.Close()

	provider := NewRapidAPI(RapidAPIOptions{APIKey: "k", BaseURL: server.URL})
	body, err := provider.Fetch(context.Background(), "TCS")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if !strings.Contains(body, "not subscribed") {
		t.Fatalf("expected upstream body, got %q", body)
	}
}

func TestRapidAPITransportFailureText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	provider := NewRapidAPI(RapidAPIOptions{APIKey: "k", BaseURL: url, Timeout: time.Second})
	svc := NewService(nil, provider)
	got := svc.Fetch(context.Background(), "TCS", ProviderRapidAPI)
	if !strings.HasPrefix(got, "Error fetching data from RapidAPI: ") {
		t.Fatalf("unexpected text %q", got)
	}
}
