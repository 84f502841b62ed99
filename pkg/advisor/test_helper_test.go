package advisor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"
)

type fetchCall struct {
	symbol   string
	provider string
}

type fakeMarket struct {
	mu     sync.Mutex
	result string
	calls  []fetchCall
}

func (f *fakeMarket) Fetch(_ context.Context, symbol, provider string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, fetchCall{symbol: symbol, provider: provider})
	return f.result
}

func (f *fakeMarket) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeSearch struct {
	mu      sync.Mutex
	result  string
	err     error
	queries []string
}

func (f *fakeSearch) Name() string        { return "SerpAPISearch" }
func (f *fakeSearch) Description() string { return "Searches the web" }

func (f *fakeSearch) Search(_ context.Context, query string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, query)
	if f.err != nil {
		return "", f.err
	}
	return f.result, nil
}

func (f *fakeSearch) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queries)
}

// fakeReasoner optionally calls every tool once before answering.
type fakeReasoner struct {
	answer     string
	err        error
	callTools  bool
	toolArgs   map[string]string
	calls      int
	input      []*schema.Message
	toolNames  []string
	toolOutput map[string]string
}

func (f *fakeReasoner) Reason(ctx context.Context, input []*schema.Message, tools []tool.BaseTool) (string, error) {
	f.calls++
	f.input = input
	f.toolOutput = map[string]string{}
	for _, t := range tools {
		info, err := t.Info(ctx)
		if err != nil {
			return "", err
		}
		f.toolNames = append(f.toolNames, info.Name)
		if !f.callTools {
			continue
		}
		invokable, ok := t.(tool.InvokableTool)
		if !ok {
			return "", errors.New("tool is not invokable")
		}
		args := f.toolArgs[info.Name]
		if args == "" {
			args = "{}"
		}
		out, err := invokable.InvokableRun(ctx, args)
		if err != nil {
			return "", err
		}
		f.toolOutput[info.Name] = out
	}
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}

func (f *fakeReasoner) instruction() string {
	if len(f.input) == 0 {
		return ""
	}
	return f.input[0].Content
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupTestCore(t *testing.T, market *fakeMarket, search *fakeSearch, reasoner *fakeReasoner, journalPath string) *Core {
	t.Helper()
	core, err := New(Options{
		Market:      market,
		Search:      search,
		Reasoner:    reasoner,
		Logger:      discardLogger(),
		JournalPath: journalPath,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = core.Close() })
	return core
}
