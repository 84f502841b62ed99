package main

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/yogeshkd786/stock-mkt-llm-app/pkg/advisor"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	labelStyle = lipgloss.NewStyle().Faint(true)
	errorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	boxStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1).
			Width(88)

	recommendationStyles = map[advisor.Recommendation]lipgloss.Style{
		advisor.RecommendationBuy:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10")),
		advisor.RecommendationSell: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
		advisor.RecommendationHold: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11")),
	}
)

func renderAnalysis(result advisor.AnalysisResponse) string {
	if result.Failed() {
		return errorStyle.Render("Error: ") + result.Error
	}

	params, _ := json.Marshal(result.Parameters)
	style, ok := recommendationStyles[result.Recommendation]
	if !ok {
		style = titleStyle
	}

	lines := []string{
		titleStyle.Render("Strategy analysis"),
		labelStyle.Render("Strategy:       ") + result.Strategy,
		labelStyle.Render("Parameters:     ") + string(params),
		labelStyle.Render("Provider:       ") + result.Provider,
		labelStyle.Render("Recommendation: ") + style.Render(string(result.Recommendation)),
		"",
		boxStyle.Render(strings.TrimSpace(result.Justification)),
	}
	return strings.Join(lines, "\n")
}

func renderStrategies(strategies []advisor.Strategy) string {
	if len(strategies) == 0 {
		return labelStyle.Render("No strategies defined.")
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("%d strategies", len(strategies))))
	for _, s := range strategies {
		b.WriteString("\n\n")
		b.WriteString(titleStyle.Render(s.Name))
		if s.Intent != "" {
			b.WriteString("\n  ")
			b.WriteString(s.Intent)
		}
		keys := make([]string, 0, len(s.Inputs))
		for key := range s.Inputs {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		if len(keys) > 0 {
			b.WriteString("\n  ")
			b.WriteString(labelStyle.Render("inputs: ") + strings.Join(keys, ", "))
		}
	}
	return b.String()
}
