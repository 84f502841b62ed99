package marketdata

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

type trueDataServer struct {
	*httptest.Server
	loginStatus int
	barsBody    string
	lastQuery   map[string]string
	lastAuth    string
	logins      int
}

func newTrueDataServer(t *testing.T) *trueDataServer {
	t.Helper()
	s := &trueDataServer{loginStatus: http.StatusOK}
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		s.logins++
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		if s.loginStatus != http.StatusOK || r.FormValue("grant_type") != "password" || r.FormValue("username") != "user" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant","error_description":"The user name or password is incorrect."}`))
			return
		}
		_, _ = w.Write([]byte(`{"access_token":"tok-123","token_type":"bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/getbars", func(w http.ResponseWriter, r *http.Request) {
		s.lastAuth = r.Header.Get("Authorization")
		s.lastQuery = map[string]string{}
		for key := range r.URL.Query() {
			s.lastQuery[key] = r.URL.Query().Get(key)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(s.barsBody))
	})
	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)
	return s
}

func (s *trueDataServer) provider(username, password string) *TrueData {
	return NewTrueData(TrueDataOptions{
		Username:   username,
		Password:   password,
		AuthURL:    s.URL + "/token",
		HistoryURL: s.URL,
		Now: func() time.Time {
			return time.Date(2024, 3, 15, 15, 30, 0, 0, time.UTC)
		},
	})
}

func TestTrueDataFetch(t *testing.T) {
	server := newTrueDataServer(t)
	server.barsBody = `{"status":"Success","Records":[["2024-02-15T00:00:00",2900.05,2950.1,2890,2945.55,1234567,0],["2024-02-16T00:00:00",2945.55,2960,2930.25,2958.3,987654]]}`

	body, err := server.provider("user", "pass").Fetch(context.Background(), "reliance")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	if server.lastAuth != "Bearer tok-123" {
		t.Fatalf("unexpected auth header %q", server.lastAuth)
	}
	if server.lastQuery["symbol"] != "RELIANCE" || server.lastQuery["interval"] != "1day" || server.lastQuery["response"] != "json" {
		t.Fatalf("unexpected query %v", server.lastQuery)
	}
	if server.lastQuery["from"] != "240215T15:30:00" || server.lastQuery["to"] != "240315T15:30:00" {
		t.Fatalf("expected one month window, got from=%s to=%s", server.lastQuery["from"], server.lastQuery["to"])
	}

	var decoded struct {
		Symbol string           `json:"symbol"`
		Bars   []map[string]any `json:"bars"`
	}
	if err := json.Unmarshal([]byte(body), &decoded); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if decoded.Symbol != "reliance" || len(decoded.Bars) != 2 {
		t.Fatalf("unexpected payload %s", body)
	}
	if decoded.Bars[0]["close"] != "2945.55" || decoded.Bars[0]["oi"] != "0" {
		t.Fatalf("expected exact decimals, got %v", decoded.Bars[0])
	}
	if _, ok := decoded.Bars[1]["oi"]; ok {
		t.Fatalf("expected oi omitted when absent, got %v", decoded.Bars[1])
	}
}

func TestTrueDataMissingCredentials(t *testing.T) {
	server := newTrueDataServer(t)
	svc := NewService(nil, server.provider("", ""))

	got := svc.Fetch(context.Background(), "TCS", ProviderTrueData)
	if got != "TrueData client is not initialized. Please check your credentials." {
		t.Fatalf("unexpected text %q", got)
	}
	if server.logins != 0 {
		t.Fatalf("expected no login attempt, got %d", server.logins)
	}
}

func TestTrueDataLoginRejected(t *testing.T) {
	server := newTrueDataServer(t)
	server.loginStatus = http.StatusBadRequest
	svc := NewService(nil, server.provider("user", "wrong"))

	got := svc.Fetch(context.Background(), "TCS", ProviderTrueData)
	if got != "TrueData client is not initialized. Please check your credentials." {
		t.Fatalf("unexpected text %q", got)
	}
}

func TestTrueDataHistoryFailure(t *testing.T) {
	server := newTrueDataServer(t)
	server.barsBody = `{"status":"Failed","message":"Symbol not found"}`
	svc := NewService(nil, server.provider("user", "pass"))

	got := svc.Fetch(context.Background(), "NOPE", ProviderTrueData)
	if got != "Error fetching data from TrueData: history request failed: Symbol not found" {
		t.Fatalf("unexpected text %q", got)
	}
}

func TestParseTrueDataRecordErrors(t *testing.T) {
	cases := []string{
		`["2024-01-01T00:00:00",1,2,3]`,
		`[20240101,1,2,3,4,5]`,
		`["2024-01-01T00:00:00","x",2,3,4,5]`,
	}
	for _, input := range cases {
		var record []json.RawMessage
		if err := json.Unmarshal([]byte(input), &record); err != nil {
			t.Fatalf("unmarshal %s: %v", input, err)
		}
		if _, err := parseTrueDataRecord(record); err == nil {
			t.Fatalf("expected error for %s", input)
		}
	}
	if _, err := parseTrueDataBars([]byte("not json")); err == nil || !strings.Contains(err.Error(), "decode bars") {
		t.Fatalf("expected decode error, got %v", err)
	}
}
