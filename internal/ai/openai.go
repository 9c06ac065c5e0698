package ai

import (
	"context"
	"errors"

	openai "github.com/sashabaranov/go-openai"

	"github.com/KHY90/cartpilot-backend/internal/apperr"
	"github.com/KHY90/cartpilot-backend/internal/domain"
)

// OpenAIProvider implements LLMProvider using an OpenAI-compatible chat
// completions API via sashabaranov/go-openai.
type OpenAIProvider struct {
	client       *openai.Client
	defaultModel string
}

func NewOpenAIProvider(apiKey, defaultModel string) *OpenAIProvider {
	return &OpenAIProvider{client: openai.NewClient(apiKey), defaultModel: defaultModel}
}

var roleToOpenAI = map[domain.MessageRole]string{
	domain.RoleSystem:    openai.ChatMessageRoleSystem,
	domain.RoleUser:      openai.ChatMessageRoleUser,
	domain.RoleAssistant: openai.ChatMessageRoleAssistant,
}

// Generate implements LLMProvider, mapping each domain.Message straight onto
// a chat completion message — OpenAI's chat API is already role-native, so
// no folding is needed the way Gemini requires.
func (p *OpenAIProvider) Generate(ctx context.Context, messages []domain.Message, opts GenerateOptions) (string, error) {
	model := opts.Model
	if model == "" {
		model = p.defaultModel
	}

	chatMessages := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		role, ok := roleToOpenAI[m.Role]
		if !ok {
			role = openai.ChatMessageRoleUser
		}
		chatMessages = append(chatMessages, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}

	req := openai.ChatCompletionRequest{
		Model:       model,
		Messages:    chatMessages,
		Temperature: float32(opts.Temperature),
	}
	if opts.JSONMode {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject}
	}

	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", mapOpenAIErr(err)
	}
	if len(resp.Choices) == 0 {
		return "", apperr.New(apperr.KindModelResponseInvalid, "openai returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// mapOpenAIErr translates a go-openai APIError's HTTP status into the
// shared apperr taxonomy, mirroring mapGeminiErr.
func mapOpenAIErr(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case 401, 403:
			return apperr.Wrap(apperr.KindUpstreamAuth, "openai auth failed", err)
		case 429:
			return apperr.Wrap(apperr.KindUpstreamRateLimited, "openai rate limited", err)
		case 504:
			return apperr.Wrap(apperr.KindDeadlineExceeded, "openai request timed out", err)
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return apperr.Wrap(apperr.KindDeadlineExceeded, "openai request timed out", err)
	}
	return apperr.Wrap(apperr.KindUpstreamUnavailable, "openai generation error", err)
}
