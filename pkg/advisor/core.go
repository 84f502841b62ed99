package advisor

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"
	_ "modernc.org/sqlite"
)

// MarketData fetches price history for a symbol from a named provider.
// Failures are reported in the returned text.
type MarketData interface {
	Fetch(ctx context.Context, symbol, provider string) string
}

// Searcher runs a free-text web search.
type Searcher interface {
	Name() string
	Description() string
	Search(ctx context.Context, query string) (string, error)
}

// Reasoner drives a tool-using language model until it produces a final answer.
type Reasoner interface {
	Reason(ctx context.Context, input []*schema.Message, tools []tool.BaseTool) (string, error)
}

// Options controls Core initialization.
type Options struct {
	Market   MarketData
	Search   Searcher
	Reasoner Reasoner
	Logger   *slog.Logger
	// StrategySchemaPath points at the strategy library document.
	StrategySchemaPath string
	// JournalPath enables the sqlite analysis journal when set.
	JournalPath string
}

// Core runs strategy analyses.
type Core struct {
	market     MarketData
	search     Searcher
	reasoner   Reasoner
	logger     *slog.Logger
	schemaPath string
	db         *sql.DB
}

// New initializes a Core using the provided options.
func New(opts Options) (*Core, error) {
	if opts.Market == nil {
		return nil, errors.New("market data provider is required")
	}
	if opts.Search == nil {
		return nil, errors.New("searcher is required")
	}
	if opts.Reasoner == nil {
		return nil, errors.New("reasoner is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	core := &Core{
		market:     opts.Market,
		search:     opts.Search,
		reasoner:   opts.Reasoner,
		logger:     logger,
		schemaPath: opts.StrategySchemaPath,
	}

	if opts.JournalPath != "" {
		db, err := openJournal(opts.JournalPath, logger)
		if err != nil {
			return nil, err
		}
		core.db = db
	}
	return core, nil
}

func openJournal(path string, logger *slog.Logger) (*sql.DB, error) {
	cleanPath := filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(cleanPath), 0o755); err != nil {
		return nil, fmt.Errorf("create journal dir: %w", err)
	}

	db, err := sql.Open("sqlite", cleanPath)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		logger.Warn("pragma busy_timeout failed", "err", err)
	}

	if err := initJournal(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init journal: %w", err)
	}
	return db, nil
}

// Close releases journal resources.
func (c *Core) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// JournalEnabled reports whether analyses are being recorded.
func (c *Core) JournalEnabled() bool {
	return c != nil && c.db != nil
}
