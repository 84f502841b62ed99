package api

// analyzePayload is the body of POST /api/analyze.
type analyzePayload struct {
	Strategy string         `json:"strategy" validate:"required"`
	Params   map[string]any `json:"params" validate:"required,min=1"`
	Provider string         `json:"provider"`
}
