package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yogeshkd786/stock-mkt-llm-app/pkg/advisor"
)

// newRootCmd creates the root command. Without a subcommand it serves HTTP.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "stock-advisor",
		Short: "LLM-driven stock strategy advisor",
		Long: `stock-advisor evaluates a named trading strategy for a stock symbol.
It gathers price history and web news through tools and asks a language model
for a BUY, SELL or HOLD recommendation with justification.`,
		SilenceUsage: true,
		RunE:         runServe,
	}

	rootCmd.PersistentFlags().String("data-dir", "", "Directory for logs and the analysis journal")
	rootCmd.PersistentFlags().String("host", "127.0.0.1", "Host to bind the server to")
	rootCmd.PersistentFlags().Int("port", 8000, "Port to run the server on")
	rootCmd.PersistentFlags().String("web-dir", "", "Directory holding the static page (optional)")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newAnalyzeCmd())
	rootCmd.AddCommand(newStrategiesCmd())
	rootCmd.AddCommand(newVersionCmd())
	return rootCmd
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and static page",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctx := context.Background()
	a, err := newApp(ctx, cfg, os.Stdout)
	if err != nil {
		return err
	}
	defer a.close(ctx)
	return serve(a)
}

func newAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Run one strategy analysis and print the recommendation",
		Example: `  stock-advisor analyze --strategy sma_crossover --symbol TCS --param short_window=20 --param long_window=50
  stock-advisor analyze --strategy rsi_reversal --symbol INFY --provider truedata --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			strategy, _ := cmd.Flags().GetString("strategy")
			symbol, _ := cmd.Flags().GetString("symbol")
			rawParams, _ := cmd.Flags().GetStringArray("param")
			provider, _ := cmd.Flags().GetString("provider")
			asJSON, _ := cmd.Flags().GetBool("json")

			params, err := parseParams(rawParams)
			if err != nil {
				return err
			}
			params["symbol"] = symbol

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			// stdout carries only the result so --json output stays parseable.
			a, err := newApp(ctx, cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.close(ctx)

			result := a.core.Analyze(ctx, advisor.AnalysisRequest{
				Strategy: strategy,
				Params:   params,
				Provider: provider,
			})
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(result); err != nil {
					return err
				}
			} else {
				fmt.Fprintln(out, renderAnalysis(result))
			}
			if result.Failed() {
				return fmt.Errorf("analysis failed: %s", result.Error)
			}
			return nil
		},
	}

	cmd.Flags().String("strategy", "", "Strategy identifier from the strategy library")
	cmd.Flags().String("symbol", "", "Stock symbol to analyze")
	cmd.Flags().StringArray("param", nil, "Additional strategy parameter as key=value (repeatable)")
	cmd.Flags().String("provider", "", "Data provider: rapidapi, truedata, yahoo or kite (default rapidapi)")
	cmd.Flags().Bool("json", false, "Print the raw JSON response")
	_ = cmd.MarkFlagRequired("strategy")
	_ = cmd.MarkFlagRequired("symbol")
	return cmd
}

func newStrategiesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "strategies",
		Short: "List the strategies in the strategy library",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, _ := cmd.Flags().GetString("schema")
			raw, err := advisor.LoadStrategySchema(path)
			if err != nil {
				return err
			}
			strategies, err := advisor.DecodeStrategies(raw)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderStrategies(strategies))
			return nil
		},
	}
	defaultPath := os.Getenv("STRATEGY_SCHEMA_PATH")
	if defaultPath == "" {
		defaultPath = filepath.Join("config", "strategy_schema.json")
	}
	cmd.Flags().String("schema", defaultPath, "Path to the strategy library document")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "stock-advisor %s\n", version)
		},
	}
}

// parseParams turns key=value pairs into typed strategy parameters.
// NaN and Inf stay strings since they have no JSON form.
func parseParams(pairs []string) (map[string]any, error) {
	params := make(map[string]any, len(pairs)+1)
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --param %q, expected key=value", pair)
		}
		params[key] = parseParamValue(strings.TrimSpace(value))
	}
	return params, nil
}

func parseParamValue(value string) any {
	if i, err := strconv.ParseInt(value, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(value, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return f
	}
	if b, err := strconv.ParseBool(value); err == nil {
		return b
	}
	return value
}
