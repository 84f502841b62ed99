package llm

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"
)

const maxLoggedToolOutput = 512

// logHandler logs model and tool events of one agent run.
type logHandler struct {
	logger     *slog.Logger
	modelCalls int64
	toolCalls  int64
}

var _ callbacks.Handler = (*logHandler)(nil)

func (h *logHandler) OnStart(ctx context.Context, info *callbacks.RunInfo, input callbacks.CallbackInput) context.Context {
	if info == nil {
		return ctx
	}
	switch info.Component {
	case components.ComponentOfChatModel:
		atomic.AddInt64(&h.modelCalls, 1)
		if in := model.ConvCallbackInput(input); in != nil {
			h.logger.DebugContext(ctx, "model call started", "model", info.Name, "messages", len(in.Messages))
		}
	case components.ComponentOfTool:
		atomic.AddInt64(&h.toolCalls, 1)
		args := ""
		if in := tool.ConvCallbackInput(input); in != nil {
			args = in.ArgumentsInJSON
		}
		h.logger.InfoContext(ctx, "tool call started", "tool", info.Name, "arguments", args)
	}
	return ctx
}

func (h *logHandler) OnEnd(ctx context.Context, info *callbacks.RunInfo, output callbacks.CallbackOutput) context.Context {
	if info == nil {
		return ctx
	}
	switch info.Component {
	case components.ComponentOfChatModel:
		out := model.ConvCallbackOutput(output)
		if out == nil || out.Message == nil {
			return ctx
		}
		attrs := []any{"model", info.Name, "tool_calls", len(out.Message.ToolCalls)}
		if out.TokenUsage != nil {
			attrs = append(attrs, "total_tokens", out.TokenUsage.TotalTokens)
		}
		h.logger.DebugContext(ctx, "model call completed", attrs...)
	case components.ComponentOfTool:
		response := ""
		if out := tool.ConvCallbackOutput(output); out != nil {
			response = out.Response
		}
		h.logger.InfoContext(ctx, "tool call completed", "tool", info.Name, "output", truncate(response, maxLoggedToolOutput))
	}
	return ctx
}

func (h *logHandler) OnError(ctx context.Context, info *callbacks.RunInfo, err error) context.Context {
	name := ""
	component := ""
	if info != nil {
		name = info.Name
		component = string(info.Component)
	}
	h.logger.WarnContext(ctx, "agent component failed", "component", component, "name", name, "err", err)
	return ctx
}

func (h *logHandler) OnStartWithStreamInput(ctx context.Context, _ *callbacks.RunInfo,
	input *schema.StreamReader[callbacks.CallbackInput]) context.Context {
	input.Close()
	return ctx
}

func (h *logHandler) OnEndWithStreamOutput(ctx context.Context, _ *callbacks.RunInfo,
	output *schema.StreamReader[callbacks.CallbackOutput]) context.Context {
	output.Close()
	return ctx
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
