package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/yogeshkd786/stock-mkt-llm-app/pkg/advisor"
)

func TestWriteErrorResponse(t *testing.T) {
	t.Run("structured error", func(t *testing.T) {
		rr := httptest.NewRecorder()
		writeErrorResponse(rr, advisor.NewError(advisor.ErrCodeJournalDisabled, "analysis journal is disabled"))

		if rr.Code != http.StatusNotFound {
			t.Fatalf("expected status 404, got %d", rr.Code)
		}
		var resp map[string]string
		if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if resp["error"] != "analysis journal is disabled" {
			t.Fatalf("unexpected body %v", resp)
		}
	})

	t.Run("plain error", func(t *testing.T) {
		rr := httptest.NewRecorder()
		writeErrorResponse(rr, errors.New("boom"))
		if rr.Code != http.StatusInternalServerError {
			t.Fatalf("expected status 500, got %d", rr.Code)
		}
	})
}

func TestMapErrorCodeToHTTPStatus(t *testing.T) {
	cases := map[advisor.ErrorCode]int{
		advisor.ErrCodeInvalidInput:    http.StatusBadRequest,
		advisor.ErrCodeJournalDisabled: http.StatusNotFound,
		advisor.ErrCodeReasoning:       http.StatusBadGateway,
		advisor.ErrCodeDatabase:        http.StatusInternalServerError,
		advisor.ErrCodeSchema:          http.StatusInternalServerError,
		advisor.ErrorCode("UNKNOWN"):   http.StatusInternalServerError,
	}
	for code, want := range cases {
		if got := mapErrorCodeToHTTPStatus(code); got != want {
			t.Fatalf("%s: expected %d, got %d", code, want, got)
		}
	}
}
