package room

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"concierge/internal/modules/hotel"
)

// Generate derives the two tiers for an offer.
func Generate(o hotel.Offer) []Option {
	return []Option{
		{Type: TypeStandard, Price: o.TotalPrice, Note: "best value"},
		{Type: TypeSuite, Price: roundCents(o.TotalPrice * SuiteMultiplier), Note: "more space and a separate living area"},
	}
}

var (
	firstRe  = regexp.MustCompile(`^\s*(?:#|option\s+|room\s+|number\s+)?1\s*[.!]?\s*$|\b(first|1st)\b`)
	secondRe = regexp.MustCompile(`^\s*(?:#|option\s+|room\s+|number\s+)?2\s*[.!]?\s*$|\b(second|2nd)\b`)
	suiteRe  = regexp.MustCompile(`\bsuite\b`)
	stdRe    = regexp.MustCompile(`\bstandard\b`)
)

// Match resolves a reply to one of the options. It returns ErrInvalidSelection when
// the reply names neither tier; that is a re-prompt, never a cancellation.
func Match(message string, options []Option) (Option, error) {
	if len(options) == 0 {
		return Option{}, ErrInvalidSelection
	}
	msg := strings.ToLower(strings.TrimSpace(message))

	idx := -1
	switch {
	case suiteRe.MatchString(msg) && !stdRe.MatchString(msg):
		idx = indexOf(options, TypeSuite)
	case stdRe.MatchString(msg) && !suiteRe.MatchString(msg):
		idx = indexOf(options, TypeStandard)
	case firstRe.MatchString(msg) && !secondRe.MatchString(msg):
		idx = 0
	case secondRe.MatchString(msg) && !firstRe.MatchString(msg):
		idx = 1
	}
	if idx < 0 || idx >= len(options) {
		return Option{}, ErrInvalidSelection
	}
	return options[idx], nil
}

// Format lists the options for hotelName with currency glyph and two decimals.
func Format(hotelName string, options []Option, symbol string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Excellent choice! For **%s**, please pick a room:\n\n", hotelName)
	for i, o := range options {
		fmt.Fprintf(&b, "%d. **%s** · %s (%s)\n", i+1, o.Type, hotel.Money(symbol, o.Price), o.Note)
	}
	b.WriteString("\nReply **1** or **2** to continue.")
	return b.String()
}

// Reprompt is shown when a reply matches neither tier.
func Reprompt(options []Option, symbol string) string {
	parts := make([]string, len(options))
	for i, o := range options {
		parts[i] = fmt.Sprintf("**%d** for %s (%s)", i+1, o.Type, hotel.Money(symbol, o.Price))
	}
	return "Sorry, I didn't catch which room you'd like. Please reply " + strings.Join(parts, " or ") + "."
}

func indexOf(options []Option, typ string) int {
	for i, o := range options {
		if o.Type == typ {
			return i
		}
	}
	return -1
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
