package ai

import (
	"context"
	"errors"
	"time"
)

// ErrExtractionDegraded marks a failed or malformed extraction; callers continue without an intent.
var ErrExtractionDegraded = errors.New("intent extraction degraded")

// IntentExtractor turns the conversation so far into a structured intent for the latest user message.
// Implementations are interchangeable (Gemini, OpenAI, rule based).
type IntentExtractor interface {
	Extract(ctx context.Context, history []Message, today time.Time, budget float64) (*Intent, error)
}

// Consultant answers free-text questions about the hotels currently on screen.
type Consultant interface {
	Answer(ctx context.Context, question, hotelsContext string) (string, error)
}
