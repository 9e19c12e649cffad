package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiProvider implements IntentExtractor and Consultant on Google's Gemini models.
type GeminiProvider struct {
	client  *genai.Client
	extract *genai.GenerativeModel
	consult *genai.GenerativeModel
}

func NewGeminiProvider(ctx context.Context, apiKey, modelName string) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	// Extraction is JSON only and near-deterministic.
	extract := client.GenerativeModel(modelName)
	extract.ResponseMIMEType = "application/json"
	extract.SetTemperature(0.1)

	consult := client.GenerativeModel(modelName)
	consult.SetTemperature(0.5)
	consult.SetMaxOutputTokens(400)

	return &GeminiProvider{client: client, extract: extract, consult: consult}, nil
}

func (p *GeminiProvider) Close() {
	p.client.Close()
}

func (p *GeminiProvider) Extract(ctx context.Context, history []Message, today time.Time, budget float64) (*Intent, error) {
	text, err := p.generate(ctx, p.extract, buildExtractionPrompt(history, today, budget))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtractionDegraded, err)
	}
	return parseIntent(text)
}

func (p *GeminiProvider) Answer(ctx context.Context, question, hotelsContext string) (string, error) {
	text, err := p.generate(ctx, p.consult, buildConsultantPrompt(question, hotelsContext))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func (p *GeminiProvider) generate(ctx context.Context, model *genai.GenerativeModel, prompt string) (string, error) {
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini generation error: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("no response candidates from Gemini")
	}

	var out strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			out.WriteString(string(txt))
		}
	}
	return out.String(), nil
}
