package advisor

import "encoding/json"

// DefaultProvider is used when a request names no data provider.
const DefaultProvider = "rapidapi"

// Recommendation is the classified outcome of an analysis.
type Recommendation string

const (
	RecommendationBuy  Recommendation = "BUY"
	RecommendationSell Recommendation = "SELL"
	RecommendationHold Recommendation = "HOLD"
)

// AnalysisRequest is one strategy evaluation for a symbol.
type AnalysisRequest struct {
	Strategy string         `json:"strategy"`
	Params   map[string]any `json:"params"`
	Provider string         `json:"provider,omitempty"`
}

// AnalysisResponse is either a full result or a single Error.
type AnalysisResponse struct {
	Strategy       string         `json:"strategy"`
	Parameters     map[string]any `json:"parameters"`
	Provider       string         `json:"provider"`
	Recommendation Recommendation `json:"recommendation"`
	Justification  string         `json:"justification"`
	Error          string         `json:"error,omitempty"`
}

// Failed reports whether the response carries an error.
func (r AnalysisResponse) Failed() bool {
	return r.Error != ""
}

// MarshalJSON writes {"error": ...} for a failed response and all five
// result fields otherwise, even when they are empty.
func (r AnalysisResponse) MarshalJSON() ([]byte, error) {
	if r.Failed() {
		return json.Marshal(struct {
			Error string `json:"error"`
		}{Error: r.Error})
	}
	type result AnalysisResponse
	return json.Marshal(result(r))
}

// AnalysisRecord is a journaled analysis.
type AnalysisRecord struct {
	ID             string         `json:"id"`
	Strategy       string         `json:"strategy"`
	Symbol         string         `json:"symbol"`
	Provider       string         `json:"provider"`
	Parameters     map[string]any `json:"parameters"`
	Recommendation *string        `json:"recommendation,omitempty"`
	Justification  *string        `json:"justification,omitempty"`
	Error          *string        `json:"error,omitempty"`
	DurationMS     int64          `json:"duration_ms"`
	CreatedAt      string         `json:"created_at"`
}

// Strategy describes one entry of the strategy library.
type Strategy struct {
	Name   string         `json:"name"`
	Intent string         `json:"intent"`
	Inputs map[string]any `json:"inputs"`
}

// StrategyLibrary is the decoded strategy schema document.
type StrategyLibrary struct {
	Strategies []Strategy `json:"strategy_library"`
}
