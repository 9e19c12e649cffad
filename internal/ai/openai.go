package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIProvider implements IntentExtractor and Consultant on the OpenAI chat completions API.
type OpenAIProvider struct {
	client openai.Client
	model  string
}

func NewOpenAIProvider(apiKey, model string) *OpenAIProvider {
	return &OpenAIProvider{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}
}

func (p *OpenAIProvider) Extract(ctx context.Context, history []Message, today time.Time, budget float64) (*Intent, error) {
	text, err := p.complete(ctx, "You reply with a single JSON object and nothing else.", buildExtractionPrompt(history, today, budget))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtractionDegraded, err)
	}
	return parseIntent(text)
}

func (p *OpenAIProvider) Answer(ctx context.Context, question, hotelsContext string) (string, error) {
	text, err := p.complete(ctx, "You are a concise, friendly hotel concierge.", buildConsultantPrompt(question, hotelsContext))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func (p *OpenAIProvider) complete(ctx context.Context, system, user string) (string, error) {
	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(p.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai: chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai: API returned empty choices array")
	}
	return resp.Choices[0].Message.Content, nil
}
