package ai

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"
)

// Live provider checks; skipped unless a key is exported.

func liveHistory() []Message {
	return []Message{
		{Role: RoleAssistant, Content: "Tell me which **City** you'd like to stay in."},
		{Role: RoleUser, Content: "Hotels in Lisbon for 2 guests"},
	}
}

func checkLiveIntent(t *testing.T, intent *Intent) {
	t.Helper()
	if intent.Destination == nil || !strings.EqualFold(*intent.Destination, "lisbon") {
		t.Errorf("destination = %v", intent.Destination)
	}
	if intent.Guests == nil || *intent.Guests != 2 {
		t.Errorf("guests = %v", intent.Guests)
	}
}

func TestGeminiProvider_Live(t *testing.T) {
	key := strings.TrimSpace(os.Getenv("CONCIERGE_AI_GEMINI_KEY"))
	if key == "" {
		t.Skip("CONCIERGE_AI_GEMINI_KEY not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	p, err := NewGeminiProvider(ctx, key, "gemini-2.0-flash")
	if err != nil {
		t.Fatalf("NewGeminiProvider: %v", err)
	}
	defer p.Close()

	intent, err := p.Extract(ctx, liveHistory(), time.Now(), 0)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	checkLiveIntent(t, intent)
}

func TestOpenAIProvider_Live(t *testing.T) {
	key := strings.TrimSpace(os.Getenv("CONCIERGE_AI_OPENAI_KEY"))
	if key == "" {
		t.Skip("CONCIERGE_AI_OPENAI_KEY not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	intent, err := NewOpenAIProvider(key, "gpt-4o-mini").Extract(ctx, liveHistory(), time.Now(), 0)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	checkLiveIntent(t, intent)
}
