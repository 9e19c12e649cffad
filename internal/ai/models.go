package ai

import (
	"strings"
	"time"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one entry of the conversation history.
// ID is assigned once when the message enters a thread's history.
type Message struct {
	ID      string `json:"id,omitempty"`
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Intent captures the structured output of an extractor for a single turn.
// Every field is optional: nil means "not mentioned this turn", never "false".
type Intent struct {
	Destination   *string `json:"destination,omitempty"`
	ShowMore      *bool   `json:"show_more,omitempty"`
	DifferentCity *bool   `json:"different_city,omitempty"`

	// InfoQuery is a question about a specific hotel or the visible list.
	InfoQuery *string `json:"info_query,omitempty"`

	// BudgetDirection is "down" (cheaper) or "up" (premium).
	BudgetDirection *string `json:"budget_direction,omitempty"`

	CheckIn  *string  `json:"check_in,omitempty"`
	CheckOut *string  `json:"check_out,omitempty"`
	Guests   *int     `json:"guests,omitempty"`
	Rooms    *int     `json:"rooms,omitempty"`
	Budget   *float64 `json:"budget,omitempty"`
	Currency *string  `json:"currency,omitempty"`
	Rejected *bool    `json:"rejected,omitempty"`
}

// Normalize drops values that carry no information (empty strings, false flags,
// non-positive numbers, malformed dates) so that presence checks are reliable.
func (i *Intent) Normalize() {
	i.Destination = trimmed(i.Destination)
	i.InfoQuery = trimmed(i.InfoQuery)
	i.ShowMore = truthy(i.ShowMore)
	i.DifferentCity = truthy(i.DifferentCity)
	i.Rejected = truthy(i.Rejected)

	if d := trimmed(i.BudgetDirection); d != nil {
		switch strings.ToLower(*d) {
		case "down", "lower", "cheaper":
			i.BudgetDirection = strPtr("down")
		case "up", "higher", "premium":
			i.BudgetDirection = strPtr("up")
		default:
			i.BudgetDirection = nil
		}
	} else {
		i.BudgetDirection = nil
	}

	i.CheckIn = validDate(i.CheckIn)
	i.CheckOut = validDate(i.CheckOut)

	if i.Guests != nil && *i.Guests <= 0 {
		i.Guests = nil
	}
	if i.Rooms != nil && *i.Rooms <= 0 {
		i.Rooms = nil
	}
	if i.Budget != nil && *i.Budget <= 0 {
		i.Budget = nil
	}
	if c := trimmed(i.Currency); c != nil && len(*c) >= 3 && len(*c) <= 4 {
		i.Currency = strPtr(strings.ToUpper(*c))
	} else {
		i.Currency = nil
	}
}

// HasActionableField reports whether the extractor produced anything at all.
func (i *Intent) HasActionableField() bool {
	if i == nil {
		return false
	}
	return i.Destination != nil || i.ShowMore != nil || i.DifferentCity != nil ||
		i.InfoQuery != nil || i.BudgetDirection != nil || i.CheckIn != nil ||
		i.CheckOut != nil || i.Guests != nil || i.Rooms != nil || i.Budget != nil ||
		i.Currency != nil || i.Rejected != nil
}

func (i *Intent) WantsMore() bool          { return i.ShowMore != nil && *i.ShowMore }
func (i *Intent) WantsDifferentCity() bool { return i.DifferentCity != nil && *i.DifferentCity }
func (i *Intent) IsRejection() bool        { return i.Rejected != nil && *i.Rejected }

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" || strings.EqualFold(v, "null") || strings.EqualFold(v, "none") {
		return nil
	}
	return &v
}

func truthy(b *bool) *bool {
	if b == nil || !*b {
		return nil
	}
	return b
}

func validDate(s *string) *string {
	s = trimmed(s)
	if s == nil {
		return nil
	}
	if _, err := time.Parse(time.DateOnly, *s); err != nil {
		return nil
	}
	return s
}

func strPtr(s string) *string { return &s }
