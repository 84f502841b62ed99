package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/yogeshkd786/stock-mkt-llm-app/internal/config"
	"github.com/yogeshkd786/stock-mkt-llm-app/internal/llm"
	"github.com/yogeshkd786/stock-mkt-llm-app/internal/logging"
	"github.com/yogeshkd786/stock-mkt-llm-app/internal/marketdata"
	"github.com/yogeshkd786/stock-mkt-llm-app/internal/search"
	"github.com/yogeshkd786/stock-mkt-llm-app/internal/trace"
	"github.com/yogeshkd786/stock-mkt-llm-app/pkg/advisor"
)

var version = "dev"

// app holds the process-wide dependencies shared by all requests.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	writer *logging.DailyWriter
	core   *advisor.Core
}

// loadConfig reads configuration and applies command-line overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	flags := cmd.Flags()
	if flags.Changed("data-dir") {
		cfg.DataDir, _ = flags.GetString("data-dir")
	}
	if flags.Changed("host") {
		cfg.Host, _ = flags.GetString("host")
	}
	if flags.Changed("port") {
		cfg.Port, _ = flags.GetInt("port")
	}
	if flags.Changed("web-dir") {
		cfg.WebDir, _ = flags.GetString("web-dir")
	}
	return cfg, nil
}

// newApp builds the logger, tracer and advisor core from cfg. Console log
// lines go to logOut.
func newApp(ctx context.Context, cfg *config.Config, logOut io.Writer) (*app, error) {
	dataDir, err := cfg.ResolveDataDir()
	if err != nil {
		return nil, fmt.Errorf("resolve data directory: %w", err)
	}
	logger, writer, err := logging.NewLogger(filepath.Join(dataDir, "logs"), logging.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		Stdout: logOut,
	})
	if err != nil {
		return nil, fmt.Errorf("initialize logger: %w", err)
	}
	a := &app{cfg: cfg, logger: logger, writer: writer}

	if err := trace.Init(trace.Options{Enabled: cfg.TracingEnabled, Version: version}); err != nil {
		logger.Warn("tracing disabled", "err", err)
	}

	market := marketdata.NewService(logger,
		marketdata.NewRapidAPI(marketdata.RapidAPIOptions{
			APIKey:  cfg.RapidAPIKey,
			Host:    cfg.RapidAPIHost,
			BaseURL: cfg.RapidAPIBaseURL,
			Timeout: cfg.HTTPTimeout,
		}),
		marketdata.NewTrueData(marketdata.TrueDataOptions{
			Username:   cfg.TrueDataUsername,
			Password:   cfg.TrueDataPassword,
			AuthURL:    cfg.TrueDataAuthURL,
			HistoryURL: cfg.TrueDataHistoryURL,
			Timeout:    cfg.HTTPTimeout,
		}),
		marketdata.NewYahoo(marketdata.YahooOptions{SymbolSuffix: cfg.YahooSymbolSuffix}),
		marketdata.NewKite(marketdata.KiteOptions{
			APIKey:      cfg.KiteAPIKey,
			AccessToken: cfg.KiteAccessToken,
			Timeout:     cfg.HTTPTimeout,
		}),
	)

	searcher, err := search.New(search.Options{
		Backend:           cfg.SearchBackend,
		SerpAPIKey:        cfg.SerpAPIKey,
		SerpAPIBaseURL:    cfg.SerpAPIBaseURL,
		GoogleNewsBaseURL: cfg.GoogleNewsBaseURL,
		Timeout:           cfg.HTTPTimeout,
		Logger:            logger,
	})
	if err != nil {
		a.close(ctx)
		return nil, err
	}

	chatModel, err := llm.NewChatModel(ctx, llm.ModelOptions{
		Provider:    cfg.LLMProvider,
		Model:       cfg.LLMModel,
		APIKey:      cfg.LLMAPIKey(),
		BaseURL:     cfg.LLMBaseURL,
		Temperature: cfg.LLMTemperature,
		Timeout:     cfg.HTTPTimeout,
	})
	if err != nil {
		a.close(ctx)
		return nil, err
	}
	agent, err := llm.NewAgent(chatModel, llm.AgentOptions{MaxSteps: cfg.AgentMaxSteps, Logger: logger})
	if err != nil {
		a.close(ctx)
		return nil, err
	}

	journalPath := ""
	if cfg.AnalysisJournal {
		if journalPath, err = cfg.JournalPath(); err != nil {
			a.close(ctx)
			return nil, fmt.Errorf("resolve journal path: %w", err)
		}
	}

	core, err := advisor.New(advisor.Options{
		Market:             market,
		Search:             searcher,
		Reasoner:           agent,
		Logger:             logger,
		StrategySchemaPath: cfg.StrategySchemaPath,
		JournalPath:        journalPath,
	})
	if err != nil {
		a.close(ctx)
		return nil, fmt.Errorf("initialize advisor: %w", err)
	}
	a.core = core

	logger.Info("advisor initialized",
		"llm_provider", cfg.LLMProvider,
		"llm_model", cfg.LLMModel,
		"search", searcher.Name(),
		"providers", market.Providers(),
		"journal", journalPath != "",
		"tracing", trace.Enabled(),
	)
	return a, nil
}

func (a *app) close(ctx context.Context) {
	if a.core != nil {
		if err := a.core.Close(); err != nil {
			a.logger.Error("failed to close core", "err", err)
		}
	}
	if err := trace.Shutdown(ctx); err != nil {
		a.logger.Error("failed to flush traces", "err", err)
	}
	if a.writer != nil {
		if err := a.writer.Close(); err != nil {
			a.logger.Error("failed to close log writer", "err", err)
		}
	}
}
