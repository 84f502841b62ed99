package advisor

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
)

const instructionTemplate = `Analyze the stock(s) based on the following investment strategy using the {provider} data provider:

Strategy: {strategy}
Parameters: {parameters}

Act as an expert financial analyst and follow these steps:
1. Use the '{data_tool}' tool to fetch the latest financial data for the stock(s).
2. Use the '{search_tool}' tool to find recent news, market sentiment and relevant geopolitical events.
3. Synthesize the financial data with the qualitative information from your web search.
4. Based on your analysis, give a clear recommendation (BUY, SELL, or HOLD).
5. Give a concise justification for your recommendation, referencing the data and news you found.

Begin your analysis now.`

var instructionPrompt = prompt.FromMessages(schema.FString, schema.UserMessage(instructionTemplate))

// buildInstruction renders the analysis instruction for the reasoning loop.
func buildInstruction(ctx context.Context, strategy string, params map[string]any, provider, searchTool string) ([]*schema.Message, error) {
	encoded, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("encode parameters: %w", err)
	}
	return instructionPrompt.Format(ctx, map[string]any{
		"provider":    provider,
		"strategy":    strategy,
		"parameters":  string(encoded),
		"data_tool":   FinancialDataToolName,
		"search_tool": searchTool,
	})
}
