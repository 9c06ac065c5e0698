package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/KHY90/cartpilot-backend/internal/apperr"
	"github.com/KHY90/cartpilot-backend/internal/domain"
)

// GeminiProvider implements LLMProvider using Google's Gemini models.
type GeminiProvider struct {
	client       *genai.Client
	defaultModel string
}

// NewGeminiProvider initializes a new Gemini client. apiKey and defaultModel
// come from config.AIConfig's GeminiKey/GeminiModel.
func NewGeminiProvider(ctx context.Context, apiKey, defaultModel string) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiProvider{client: client, defaultModel: defaultModel}, nil
}

// Close releases the underlying connection.
func (p *GeminiProvider) Close() error {
	return p.client.Close()
}

// Generate implements LLMProvider. Gemini has no native per-turn "assistant"
// role distinct from the model's own output, so a system message becomes a
// SystemInstruction and the remaining turns are folded into one content
// block in order, role-tagged, the way a transcript reads.
func (p *GeminiProvider) Generate(ctx context.Context, messages []domain.Message, opts GenerateOptions) (string, error) {
	modelName := opts.Model
	if modelName == "" {
		modelName = p.defaultModel
	}
	model := p.client.GenerativeModel(modelName)
	model.SetTemperature(float32(opts.Temperature))
	if opts.JSONMode {
		model.ResponseMIMEType = "application/json"
	}

	var system strings.Builder
	var turns strings.Builder
	for _, m := range messages {
		if m.Role == domain.RoleSystem {
			system.WriteString(m.Content)
			system.WriteString("\n")
			continue
		}
		fmt.Fprintf(&turns, "[%s] %s\n", m.Role, m.Content)
	}
	if system.Len() > 0 {
		model.SystemInstruction = genai.NewUserContent(genai.Text(system.String()))
	}

	resp, err := model.GenerateContent(ctx, genai.Text(turns.String()))
	if err != nil {
		return "", mapGeminiErr(err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", apperr.New(apperr.KindModelResponseInvalid, "gemini returned no candidates")
	}

	var out strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			out.WriteString(string(txt))
		}
	}
	return out.String(), nil
}

// mapGeminiErr translates a googleapi.Error's HTTP status into the shared
// apperr taxonomy, the same mapping internal/catalog applies to Naver's
// responses.
func mapGeminiErr(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch gerr.Code {
		case 401, 403:
			return apperr.Wrap(apperr.KindUpstreamAuth, "gemini auth failed", err)
		case 429:
			return apperr.Wrap(apperr.KindUpstreamRateLimited, "gemini rate limited", err)
		case 504:
			return apperr.Wrap(apperr.KindDeadlineExceeded, "gemini request timed out", err)
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return apperr.Wrap(apperr.KindDeadlineExceeded, "gemini request timed out", err)
	}
	return apperr.Wrap(apperr.KindUpstreamUnavailable, "gemini generation error", err)
}
