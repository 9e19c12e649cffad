package ai

import (
	"context"
	"testing"
	"time"
)

func extractFrom(t *testing.T, prev, msg string) *Intent {
	t.Helper()
	var history []Message
	if prev != "" {
		history = append(history, Message{Role: RoleAssistant, Content: prev})
	}
	history = append(history, Message{Role: RoleUser, Content: msg})
	intent, err := RuleExtractor{}.Extract(context.Background(), history, time.Now(), 0)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	return intent
}

func TestRuleExtractor_FullRequest(t *testing.T) {
	intent := extractFrom(t, "", "Hotels in Kotor from 2026-03-10 to 2026-03-13 for 2 guests, budget €600")

	if intent.Destination == nil || *intent.Destination != "Kotor" {
		t.Fatalf("destination = %v", intent.Destination)
	}
	if intent.CheckIn == nil || *intent.CheckIn != "2026-03-10" {
		t.Errorf("check-in = %v", intent.CheckIn)
	}
	if intent.CheckOut == nil || *intent.CheckOut != "2026-03-13" {
		t.Errorf("check-out = %v", intent.CheckOut)
	}
	if intent.Guests == nil || *intent.Guests != 2 {
		t.Errorf("guests = %v", intent.Guests)
	}
	if intent.Budget == nil || *intent.Budget != 600 {
		t.Errorf("budget = %v", intent.Budget)
	}
	if intent.Currency == nil || *intent.Currency != "EUR" {
		t.Errorf("currency = %v", intent.Currency)
	}
}

func TestRuleExtractor_BareSelectionIsEmpty(t *testing.T) {
	intent := extractFrom(t, "1. Hotel A\n2. Hotel B\nReply with a number to pick a hotel.", "2")
	if intent.HasActionableField() {
		t.Fatalf("expected no fields for a bare selection, got %+v", intent)
	}
}

func TestRuleExtractor_ContextualNumbers(t *testing.T) {
	guests := extractFrom(t, "How many guests will be staying?", "3")
	if guests.Guests == nil || *guests.Guests != 3 || guests.Budget != nil {
		t.Errorf("guests reply: %+v", guests)
	}

	budget := extractFrom(t, "What's your total budget for the stay?", "450")
	if budget.Budget == nil || *budget.Budget != 450 || budget.Guests != nil {
		t.Errorf("budget reply: %+v", budget)
	}
}

func TestRuleExtractor_Flags(t *testing.T) {
	cases := []struct {
		name  string
		msg   string
		check func(*Intent) bool
	}{
		{"cheaper", "something cheaper please", func(i *Intent) bool { return i.BudgetDirection != nil && *i.BudgetDirection == "down" }},
		{"premium", "show me luxury places", func(i *Intent) bool { return i.BudgetDirection != nil && *i.BudgetDirection == "up" }},
		{"more", "show more", func(i *Intent) bool { return i.WantsMore() }},
		{"other city", "let's try a different city", func(i *Intent) bool { return i.WantsDifferentCity() && i.Destination == nil }},
		{"reject", "no, not that one", func(i *Intent) bool { return i.IsRejection() }},
		{"currency only", "show prices in gbp", func(i *Intent) bool { return i.Currency != nil && *i.Currency == "GBP" && i.Budget == nil }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := extractFrom(t, "", tc.msg); !tc.check(got) {
				t.Errorf("unexpected intent for %q: %+v", tc.msg, got)
			}
		})
	}
}

func TestRuleExtractor_InfoQueryDoesNotMoveDestination(t *testing.T) {
	prev := "1. Hotel Splendid\nReply with a number to pick a hotel."
	intent := extractFrom(t, prev, "Is Hotel Splendid close to Old Town?")
	if intent.InfoQuery == nil {
		t.Fatal("expected info query")
	}
	if intent.Destination != nil {
		t.Errorf("destination should stay unset, got %q", *intent.Destination)
	}
}

func TestRuleExtractor_CityReply(t *testing.T) {
	prev := "Welcome! Which **City** are you visiting?"
	if got := extractFrom(t, prev, "Lisbon"); got.Destination == nil || *got.Destination != "Lisbon" {
		t.Errorf("destination = %v", got.Destination)
	}
	for _, msg := range []string{"you pick", "anywhere", "surprise me", "recommend one"} {
		if got := extractFrom(t, prev, msg); got.Destination != nil {
			t.Errorf("%q should not set a destination, got %q", msg, *got.Destination)
		}
	}
}
