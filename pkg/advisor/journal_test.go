package advisor

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func TestJournalRecordsAnalyses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "analyses.db")
	reasoner := &fakeReasoner{answer: "Strong BUY signal"}
	core := setupTestCore(t, &fakeMarket{}, &fakeSearch{}, reasoner, path)
	if !core.JournalEnabled() {
		t.Fatalf("expected journal enabled")
	}

	ctx := context.Background()
	core.Analyze(ctx, AnalysisRequest{Strategy: "value", Params: map[string]any{"symbol": "TCS"}, Provider: "truedata"})
	reasoner.err = errors.New("model unavailable")
	core.Analyze(ctx, AnalysisRequest{Strategy: "momentum", Params: map[string]any{"symbol": "INFY"}})
	core.Analyze(ctx, AnalysisRequest{Strategy: "momentum", Params: map[string]any{}})

	records, err := core.ListAnalyses(ctx, 10, 0)
	if err != nil {
		t.Fatalf("ListAnalyses: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}

	newest := records[0]
	if newest.Error == nil || *newest.Error != "Stock symbol not found in parameters." {
		t.Fatalf("expected missing symbol record first, got %+v", newest)
	}
	if newest.Symbol != "" || newest.Provider != DefaultProvider {
		t.Fatalf("unexpected newest record %+v", newest)
	}

	failed := records[1]
	if failed.Error == nil || *failed.Error != "model unavailable" || failed.Recommendation != nil {
		t.Fatalf("unexpected failed record %+v", failed)
	}

	ok := records[2]
	if ok.Recommendation == nil || *ok.Recommendation != "BUY" {
		t.Fatalf("unexpected success record %+v", ok)
	}
	if ok.Justification == nil || *ok.Justification != "Strong BUY signal" {
		t.Fatalf("expected justification, got %+v", ok)
	}
	if ok.Symbol != "TCS" || ok.Provider != "truedata" || ok.Parameters["symbol"] != "TCS" {
		t.Fatalf("unexpected success fields %+v", ok)
	}
	if ok.ID == "" || ok.CreatedAt == "" {
		t.Fatalf("expected id and timestamp, got %+v", ok)
	}

	page, err := core.ListAnalyses(ctx, 1, 1)
	if err != nil {
		t.Fatalf("ListAnalyses page: %v", err)
	}
	if len(page) != 1 || page[0].ID != failed.ID {
		t.Fatalf("unexpected page %+v", page)
	}
}

func TestJournalDisabled(t *testing.T) {
	core := setupTestCore(t, &fakeMarket{}, &fakeSearch{}, &fakeReasoner{answer: "HOLD"}, "")
	if core.JournalEnabled() {
		t.Fatalf("expected journal disabled")
	}
	_, err := core.ListAnalyses(context.Background(), 10, 0)
	if !IsErrorCode(err, ErrCodeJournalDisabled) {
		t.Fatalf("expected journal disabled error, got %v", err)
	}
}

func TestJournalClosedDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "analyses.db")
	core := setupTestCore(t, &fakeMarket{}, &fakeSearch{}, &fakeReasoner{answer: "SELL"}, path)
	if err := core.db.Close(); err != nil {
		t.Fatalf("close db: %v", err)
	}

	resp := core.Analyze(context.Background(), AnalysisRequest{Strategy: "s", Params: map[string]any{"symbol": "X"}})
	if resp.Recommendation != RecommendationSell {
		t.Fatalf("journal failure must not change the response, got %+v", resp)
	}
	if _, err := core.ListAnalyses(context.Background(), 10, 0); !IsErrorCode(err, ErrCodeDatabase) {
		t.Fatalf("expected database error, got %v", err)
	}
}
