package advisor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"
)

// FinancialDataToolName is the tool the model calls for price history.
const FinancialDataToolName = "GetFinancialData"

// financialDataTool returns provider data for the symbol under analysis.
// Its input is ignored.
type financialDataTool struct {
	market   MarketData
	symbol   string
	provider string
}

func (t *financialDataTool) Info(_ context.Context) (*schema.ToolInfo, error) {
	return &schema.ToolInfo{
		Name: FinancialDataToolName,
		Desc: fmt.Sprintf("Useful for getting real-time or historical financial data for the specified stock symbol from the %s provider.", t.provider),
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"input": {
				Type: "string",
				Desc: "Optional note; the symbol is already fixed for this analysis",
			},
		}),
	}, nil
}

func (t *financialDataTool) InvokableRun(ctx context.Context, _ string, _ ...tool.Option) (string, error) {
	return t.market.Fetch(ctx, t.symbol, t.provider), nil
}

// searchTool forwards a query to the configured search backend.
type searchTool struct {
	search Searcher
}

type searchInput struct {
	Query string `json:"query"`
}

func (t *searchTool) Info(_ context.Context) (*schema.ToolInfo, error) {
	return &schema.ToolInfo{
		Name: t.search.Name(),
		Desc: t.search.Description(),
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"query": {
				Type:     "string",
				Desc:     "The search query",
				Required: true,
			},
		}),
	}, nil
}

func (t *searchTool) InvokableRun(ctx context.Context, argumentsInJSON string, _ ...tool.Option) (string, error) {
	query := parseSearchQuery(argumentsInJSON)
	if query == "" {
		return "Search query is empty.", nil
	}
	result, err := t.search.Search(ctx, query)
	if err != nil {
		return fmt.Sprintf("Search failed: %v", err), nil
	}
	return result, nil
}

// parseSearchQuery accepts {"query": "..."} or a bare string.
func parseSearchQuery(arguments string) string {
	trimmed := strings.TrimSpace(arguments)
	var input searchInput
	if err := json.Unmarshal([]byte(trimmed), &input); err == nil {
		return strings.TrimSpace(input.Query)
	}
	var bare string
	if err := json.Unmarshal([]byte(trimmed), &bare); err == nil {
		return strings.TrimSpace(bare)
	}
	return trimmed
}

func (c *Core) buildTools(symbol, provider string) []tool.BaseTool {
	return []tool.BaseTool{
		&financialDataTool{market: c.market, symbol: symbol, provider: provider},
		&searchTool{search: c.search},
	}
}
