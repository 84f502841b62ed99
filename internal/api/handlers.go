package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/yogeshkd786/stock-mkt-llm-app/pkg/advisor"
)

const missingStrategyOrParams = "Missing strategy or parameters"

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// getStrategies returns the strategy library document as stored.
func (h *handler) getStrategies(w http.ResponseWriter, r *http.Request) {
	raw, err := h.core.StrategySchema()
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to load strategy schema", "err", err)
		writeError(w, http.StatusInternalServerError, advisor.ErrorMessage(err))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(raw)
}

// analyze answers 200 with the engine result even when it carries an error.
func (h *handler) analyze(w http.ResponseWriter, r *http.Request) {
	var payload analyzePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, missingStrategyOrParams)
		return
	}
	if err := h.validate.Struct(payload); err != nil {
		writeError(w, http.StatusBadRequest, missingStrategyOrParams)
		return
	}

	result := h.core.Analyze(r.Context(), advisor.AnalysisRequest{
		Strategy: payload.Strategy,
		Params:   payload.Params,
		Provider: payload.Provider,
	})
	if result.Failed() {
		if setter, ok := w.(errorMessageSetter); ok {
			setter.SetErrorMessage(result.Error)
		}
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *handler) getAnalyses(w http.ResponseWriter, r *http.Request) {
	limit, offset := normalizeLimitOffset(
		parseIntDefault(r.URL.Query().Get("limit"), 50),
		parseIntDefault(r.URL.Query().Get("offset"), 0),
	)
	records, err := h.core.ListAnalyses(r.Context(), limit, offset)
	if err != nil {
		writeErrorResponse(w, err)
		return
	}
	if records == nil {
		records = []advisor.AnalysisRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

func parseIntDefault(value string, fallback int) int {
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func normalizeLimitOffset(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 500 {
		limit = 500
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
