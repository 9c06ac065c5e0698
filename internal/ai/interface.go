// Package ai wraps the generative-text providers behind one
// provider-agnostic contract: a list of role-tagged messages and a small set
// of generation options go in, a raw text reply comes out. Everything
// downstream (analyzer, mode agents) is responsible for parsing that reply;
// this package's job ends at "here is what the model said".
package ai

import (
	"context"

	"github.com/KHY90/cartpilot-backend/internal/domain"
)

// GenerateOptions controls a single generation call. Model, when empty,
// falls back to the provider's configured default.
type GenerateOptions struct {
	Model       string
	Temperature float64
	JSONMode    bool
}

// LLMProvider is the contract every generative-text backend implements.
// Swapping Gemini for OpenAI (or back) is a matter of changing which
// implementation Provider constructs — nothing above this interface cares.
type LLMProvider interface {
	Generate(ctx context.Context, messages []domain.Message, opts GenerateOptions) (string, error)
}
