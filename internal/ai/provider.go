package ai

import (
	"context"
	"fmt"

	"github.com/KHY90/cartpilot-backend/internal/config"
)

// New constructs the LLMProvider named by cfg.Provider ("gemini" or
// "openai"). Config validation already rejects any other value (see
// config.Load), so the default branch here is unreachable in practice.
func New(ctx context.Context, cfg config.AIConfig) (LLMProvider, error) {
	switch cfg.Provider {
	case "gemini":
		return NewGeminiProvider(ctx, cfg.GeminiKey, cfg.GeminiModel)
	case "openai":
		return NewOpenAIProvider(cfg.OpenAIKey, cfg.OpenAIModel), nil
	default:
		return nil, fmt.Errorf("ai: unknown provider %q", cfg.Provider)
	}
}
