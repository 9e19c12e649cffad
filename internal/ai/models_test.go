package ai

import "testing"

func TestParseIntent(t *testing.T) {
	raw := "```json\n{\"destination\": \"kotor\", \"show_more\": false, \"budget_direction\": \"cheaper\", \"check_in\": \"2026-13-40\", \"guests\": 0, \"currency\": \"eur\", \"info_query\": \"\"}\n```"

	intent, err := parseIntent(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if intent.Destination == nil || *intent.Destination != "kotor" {
		t.Errorf("destination = %v", intent.Destination)
	}
	if intent.ShowMore != nil {
		t.Error("false flag should normalise to absent")
	}
	if intent.BudgetDirection == nil || *intent.BudgetDirection != "down" {
		t.Errorf("direction = %v", intent.BudgetDirection)
	}
	if intent.CheckIn != nil {
		t.Error("invalid date should be dropped")
	}
	if intent.Guests != nil {
		t.Error("zero guests should be dropped")
	}
	if intent.Currency == nil || *intent.Currency != "EUR" {
		t.Errorf("currency = %v", intent.Currency)
	}
	if intent.InfoQuery != nil {
		t.Error("empty info query should be dropped")
	}
}

func TestParseIntentMalformed(t *testing.T) {
	if _, err := parseIntent("not json"); err == nil {
		t.Fatal("expected error")
	}
	if _, err := parseIntent("   "); err == nil {
		t.Fatal("expected error for empty response")
	}
}

func TestHasActionableField(t *testing.T) {
	var empty Intent
	if empty.HasActionableField() {
		t.Error("empty intent reported actionable")
	}
	g := 2
	if !(&Intent{Guests: &g}).HasActionableField() {
		t.Error("guests should be actionable")
	}
}
