package ai

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// transcriptLimit bounds how much history is sent to the model.
const transcriptLimit = 12

func buildExtractionPrompt(history []Message, today time.Time, budget float64) string {
	budgetText := "NOT SET"
	if budget > 0 {
		budgetText = fmt.Sprintf("%.2f", budget)
	}

	return fmt.Sprintf(`Role: You extract hotel-booking intent for a travel concierge chat.
Context:
- Today: %s
- Current budget: %s

Read the conversation and return ONE JSON object describing ONLY the LAST user message.
Omit a field (or use null) when the last message does not mention it. Never repeat values from earlier turns.

Fields:
- "destination": city the user wants to stay in, as written.
- "show_more": true when the user asks for more / other hotel options.
- "different_city": true when the user wants a different city without naming one.
- "info_query": the user's question about a hotel on the list (amenities, location, reviews).
- "budget_direction": "down" for cheaper / more affordable, "up" for premium / luxury / nicer.
- "check_in", "check_out": dates as YYYY-MM-DD. Resolve relative dates against Today.
- "guests": number of guests. "rooms": number of rooms.
- "budget": explicit total budget amount as a number (no currency symbol).
- "currency": ISO 4217 code when the user names or implies a currency (€ -> EUR, £ -> GBP).
- "rejected": true when the user declines the hotel or offer just shown ("no", "not that one").

RULES:
1. A bare number or ordinal ("2", "the second one") answering a numbered hotel list is a SELECTION: return {}.
2. A bare number answering "how many guests" is "guests"; answering a budget question is "budget".
3. "yes", "ok", "book it" confirming a booking: return {}.
4. Do not invent dates, cities or amounts.

Conversation:
%s

Return only JSON.`, today.Format(time.DateOnly), budgetText, renderTranscript(history))
}

func buildConsultantPrompt(question, hotelsContext string) string {
	if strings.TrimSpace(hotelsContext) == "" {
		hotelsContext = "No hotels are currently shown."
	}
	return fmt.Sprintf(`Role: You are a friendly hotel concierge. Answer the guest's question in at most 4 sentences.
Use only the hotel facts below and general knowledge of the city. If a fact is unknown, say so honestly.
Do not ask whether they want to book; that prompt is added separately.

Hotels on screen:
%s

Question: %s`, hotelsContext, question)
}

func renderTranscript(history []Message) string {
	if len(history) > transcriptLimit {
		history = history[len(history)-transcriptLimit:]
	}
	var b strings.Builder
	for _, m := range history {
		role := "User"
		if m.Role == RoleAssistant {
			role = "Assistant"
		}
		fmt.Fprintf(&b, "%s: %s\n", role, m.Content)
	}
	return strings.TrimSpace(b.String())
}

// parseIntent decodes model output, tolerating markdown fences around the JSON.
func parseIntent(raw string) (*Intent, error) {
	cleaned := cleanJSONString(raw)
	if cleaned == "" {
		return nil, fmt.Errorf("%w: empty model response", ErrExtractionDegraded)
	}
	var intent Intent
	if err := json.Unmarshal([]byte(cleaned), &intent); err != nil {
		return nil, fmt.Errorf("%w: parse JSON response: %v (raw: %s)", ErrExtractionDegraded, err, cleaned)
	}
	intent.Normalize()
	return &intent, nil
}

func cleanJSONString(input string) string {
	input = strings.TrimSpace(input)
	input = strings.TrimPrefix(input, "```json")
	input = strings.TrimPrefix(input, "```")
	input = strings.TrimSuffix(input, "```")
	return strings.TrimSpace(input)
}
