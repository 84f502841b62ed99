package advisor

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/yogeshkd786/stock-mkt-llm-app/internal/trace"
)

// ErrSymbolMissing is returned when params carry no usable symbol.
var ErrSymbolMissing = NewError(ErrCodeInvalidInput, "Stock symbol not found in parameters.")

// Analyze evaluates a strategy for the symbol in req.Params. Every failure is
// reported through the Error field of the response.
func (c *Core) Analyze(ctx context.Context, req AnalysisRequest) AnalysisResponse {
	start := time.Now()
	provider := req.Provider
	if provider == "" {
		provider = DefaultProvider
	}

	ctx, span := trace.StartSpan(ctx, "advisor.Analyze",
		attribute.String("strategy", req.Strategy),
		attribute.String("provider", provider),
	)
	defer span.End()

	c.logger.InfoContext(ctx, "analysis started",
		"strategy", req.Strategy,
		"params", req.Params,
		"provider", provider,
	)

	resp, err := c.analyze(ctx, req.Strategy, req.Params, provider)
	duration := time.Since(start)
	if err != nil {
		trace.RecordError(span, err)
		c.logger.ErrorContext(ctx, "analysis failed",
			"strategy", req.Strategy,
			"provider", provider,
			"duration_ms", duration.Milliseconds(),
			"err", err,
		)
		resp = AnalysisResponse{Error: ErrorMessage(err)}
	} else {
		span.SetAttributes(attribute.String("recommendation", string(resp.Recommendation)))
		c.logger.InfoContext(ctx, "analysis completed",
			"strategy", req.Strategy,
			"provider", provider,
			"recommendation", resp.Recommendation,
			"duration_ms", duration.Milliseconds(),
		)
	}

	c.recordAnalysis(ctx, req, provider, resp, duration)
	return resp
}

func (c *Core) analyze(ctx context.Context, strategy string, params map[string]any, provider string) (AnalysisResponse, error) {
	symbol, ok := SymbolFrom(params)
	if !ok {
		return AnalysisResponse{}, ErrSymbolMissing
	}

	input, err := buildInstruction(ctx, strategy, params, provider, c.search.Name())
	if err != nil {
		return AnalysisResponse{}, WrapError(ErrCodeInternal, err.Error(), err)
	}

	text, err := c.reasoner.Reason(ctx, input, c.buildTools(symbol, provider))
	if err != nil {
		return AnalysisResponse{}, WrapError(ErrCodeReasoning, err.Error(), err)
	}

	return AnalysisResponse{
		Strategy:       strategy,
		Parameters:     params,
		Provider:       provider,
		Recommendation: Classify(text),
		Justification:  text,
	}, nil
}

// Classify maps model output to a recommendation. BUY wins over SELL when
// both appear; neither yields HOLD.
func Classify(text string) Recommendation {
	upper := strings.ToUpper(text)
	switch {
	case strings.Contains(upper, string(RecommendationBuy)):
		return RecommendationBuy
	case strings.Contains(upper, string(RecommendationSell)):
		return RecommendationSell
	default:
		return RecommendationHold
	}
}

// SymbolFrom extracts a non-empty symbol from params. Numeric symbols such
// as BSE scrip codes are rendered without a fractional part.
func SymbolFrom(params map[string]any) (string, bool) {
	switch v := params["symbol"].(type) {
	case string:
		return v, v != ""
	case float64:
		if v == 0 {
			return "", false
		}
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case json.Number:
		if f, err := v.Float64(); err != nil || f == 0 {
			return "", false
		}
		return v.String(), true
	case int:
		if v == 0 {
			return "", false
		}
		return strconv.Itoa(v), true
	case int64:
		if v == 0 {
			return "", false
		}
		return strconv.FormatInt(v, 10), true
	default:
		return "", false
	}
}
