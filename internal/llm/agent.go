package llm

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/flow/agent"
	"github.com/cloudwego/eino/flow/agent/react"
	"github.com/cloudwego/eino/schema"
	"go.opentelemetry.io/otel/attribute"

	"github.com/yogeshkd786/stock-mkt-llm-app/internal/trace"
)

const defaultMaxSteps = 30

// AgentOptions configures the reasoning loop.
type AgentOptions struct {
	MaxSteps int
	Logger   *slog.Logger
}

// Agent runs a ReAct loop over a shared chat model. A fresh loop is built
// per call so concurrent analyses never share tool bindings.
type Agent struct {
	model    model.ToolCallingChatModel
	maxSteps int
	logger   *slog.Logger
}

func NewAgent(chatModel model.ToolCallingChatModel, opts AgentOptions) (*Agent, error) {
	if chatModel == nil {
		return nil, errors.New("chat model is required")
	}
	maxSteps := opts.MaxSteps
	if maxSteps <= 0 {
		maxSteps = defaultMaxSteps
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Agent{model: chatModel, maxSteps: maxSteps, logger: logger}, nil
}

// Reason sends input to the model, executes the tool calls it requests and
// returns the content of its final answer.
func (a *Agent) Reason(ctx context.Context, input []*schema.Message, tools []tool.BaseTool) (string, error) {
	ctx, span := trace.StartSpan(ctx, "llm.Reason",
		attribute.Int("tools", len(tools)),
		attribute.Int("max_steps", a.maxSteps),
	)
	defer span.End()

	ra, err := react.NewAgent(ctx, &react.AgentConfig{
		ToolCallingModel: a.model,
		ToolsConfig:      compose.ToolsNodeConfig{Tools: tools},
		MaxStep:          a.maxSteps,
	})
	if err != nil {
		trace.RecordError(span, err)
		return "", err
	}

	start := time.Now()
	handler := &logHandler{logger: a.logger}
	out, err := ra.Generate(ctx, input, agent.WithComposeOptions(compose.WithCallbacks(handler)))
	if err != nil {
		trace.RecordError(span, err)
		a.logger.WarnContext(ctx, "agent run failed",
			"model_calls", atomic.LoadInt64(&handler.modelCalls),
			"duration_ms", time.Since(start).Milliseconds(),
			"err", err,
		)
		return "", err
	}
	a.logger.InfoContext(ctx, "agent run completed",
		"model_calls", atomic.LoadInt64(&handler.modelCalls),
		"tool_calls", atomic.LoadInt64(&handler.toolCalls),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	if out == nil {
		return "", nil
	}
	return out.Content, nil
}
