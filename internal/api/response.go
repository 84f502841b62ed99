package api

import (
	"errors"
	"net/http"

	"github.com/yogeshkd786/stock-mkt-llm-app/pkg/advisor"
)

// writeErrorResponse writes {"error": message} with the status mapped from a
// structured error code.
func writeErrorResponse(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	var advErr *advisor.Error
	if errors.As(err, &advErr) {
		status = mapErrorCodeToHTTPStatus(advErr.Code)
	}
	writeError(w, status, advisor.ErrorMessage(err))
}

// mapErrorCodeToHTTPStatus maps business error codes to HTTP status codes.
func mapErrorCodeToHTTPStatus(code advisor.ErrorCode) int {
	switch code {
	case advisor.ErrCodeInvalidInput:
		return http.StatusBadRequest
	case advisor.ErrCodeJournalDisabled:
		return http.StatusNotFound
	case advisor.ErrCodeReasoning:
		return http.StatusBadGateway
	case advisor.ErrCodeDatabase, advisor.ErrCodeSchema, advisor.ErrCodeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
