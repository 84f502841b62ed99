package marketdata

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

type stubProvider struct {
	name  string
	label string
	data  string
	err   error
	calls int
}

func (s *stubProvider) Name() string  { return s.name }
func (s *stubProvider) Label() string { return s.label }

func (s *stubProvider) Fetch(_ context.Context, _ string) (string, error) {
	s.calls++
	return s.data, s.err
}

func newTestLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestServiceUnknownProvider(t *testing.T) {
	var logs bytes.Buffer
	stub := &stubProvider{name: "rapidapi", label: "RapidAPI", data: "ok"}
	svc := NewService(newTestLogger(&logs), stub)

	got := svc.Fetch(context.Background(), "TCS", "bloomberg")
	if got != "Unknown data provider: bloomberg" {
		t.Fatalf("unexpected text %q", got)
	}
	if stub.calls != 0 {
		t.Fatalf("expected no provider call, got %d", stub.calls)
	}
	if !strings.Contains(logs.String(), "fetching financial data") || !strings.Contains(logs.String(), "provider=bloomberg") {
		t.Fatalf("expected diagnostic line, got %s", logs.String())
	}
}

func TestServiceSuccessAndFailureText(t *testing.T) {
	var logs bytes.Buffer
	ok := &stubProvider{name: "rapidapi", label: "RapidAPI", data: `{"raw":true}`}
	failing := &stubProvider{name: "truedata", label: "TrueData", err: errors.New("connection reset")}
	locked := &stubProvider{name: "kite", label: "Kite Connect", err: &NotInitializedError{Client: "Kite Connect"}}
	svc := NewService(newTestLogger(&logs), ok, failing, locked)

	if got := svc.Fetch(context.Background(), "TCS", "rapidapi"); got != `{"raw":true}` {
		t.Fatalf("expected verbatim data, got %q", got)
	}
	if got := svc.Fetch(context.Background(), "TCS", "truedata"); got != "Error fetching data from TrueData: connection reset" {
		t.Fatalf("unexpected failure text %q", got)
	}
	if got := svc.Fetch(context.Background(), "TCS", "kite"); got != "Kite Connect client is not initialized. Please check your credentials." {
		t.Fatalf("unexpected credentials text %q", got)
	}
	if len(svc.Providers()) != 3 {
		t.Fatalf("expected 3 providers, got %v", svc.Providers())
	}
}

func TestNotInitializedErrorUnwrap(t *testing.T) {
	cause := errors.New("bad password")
	err := error(&NotInitializedError{Client: "TrueData", Err: cause})
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause to unwrap")
	}
	if err.Error() != "TrueData client is not initialized. Please check your credentials." {
		t.Fatalf("unexpected message %q", err.Error())
	}
}
