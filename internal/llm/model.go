// Package llm builds the tool-calling chat models and the reasoning agent
// that drives them.
package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/deepseek"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
)

// Providers accepted by ModelOptions.Provider.
const (
	ProviderGemini   = "gemini"
	ProviderOpenAI   = "openai"
	ProviderDeepSeek = "deepseek"
)

// ModelOptions selects and configures a chat model.
type ModelOptions struct {
	Provider    string
	Model       string
	APIKey      string
	BaseURL     string
	Temperature float32
	Timeout     time.Duration
}

// NewChatModel constructs the chat model for the selected provider. The
// returned model is safe for concurrent use.
func NewChatModel(ctx context.Context, opts ModelOptions) (model.ToolCallingChatModel, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, fmt.Errorf("%s api key is required", opts.Provider)
	}

	switch strings.ToLower(strings.TrimSpace(opts.Provider)) {
	case "", ProviderGemini:
		return NewGeminiChatModel(ctx, GeminiOptions{
			APIKey:      opts.APIKey,
			Model:       opts.Model,
			BaseURL:     opts.BaseURL,
			Temperature: opts.Temperature,
		})
	case ProviderOpenAI:
		temperature := opts.Temperature
		cm, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
			APIKey:      opts.APIKey,
			BaseURL:     opts.BaseURL,
			Model:       modelOrDefault(opts.Model, "gpt-4o-mini"),
			Temperature: &temperature,
			Timeout:     opts.Timeout,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create OpenAI model: %w", err)
		}
		return cm, nil
	case ProviderDeepSeek:
		cm, err := deepseek.NewChatModel(ctx, &deepseek.ChatModelConfig{
			APIKey:      opts.APIKey,
			BaseURL:     opts.BaseURL,
			Model:       modelOrDefault(opts.Model, "deepseek-chat"),
			Temperature: opts.Temperature,
			MaxTokens:   4096,
			Timeout:     opts.Timeout,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create DeepSeek model: %w", err)
		}
		return cm, nil
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", opts.Provider)
	}
}

// modelOrDefault ignores Gemini model names carried over from the default
// configuration when another provider is selected.
func modelOrDefault(name, fallback string) string {
	name = strings.TrimSpace(name)
	if name == "" || strings.HasPrefix(strings.ToLower(name), "gemini") {
		return fallback
	}
	return name
}
