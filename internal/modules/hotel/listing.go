package hotel

import (
	"fmt"
	"math"
	"strings"
)

// Money renders an amount with its currency glyph and two decimals.
func Money(symbol string, amount float64) string {
	if symbol == "" {
		symbol = "$"
	}
	return fmt.Sprintf("%s%.2f", symbol, amount)
}

func stars(class float64) string {
	n := int(math.Round(class))
	if n <= 0 {
		return "unrated"
	}
	return strings.Repeat("⭐", n)
}

// OfferLine renders one numbered listing line.
func OfferLine(n int, o Offer, symbol string) string {
	line := fmt.Sprintf("%d. **%s** %s · %s total (%s/night)", n, o.Name, stars(o.StarClass), Money(symbol, o.TotalPrice), Money(symbol, o.NightlyPrice))
	if o.ReviewScore > 0 {
		line += fmt.Sprintf(" · reviews %.1f/10", o.ReviewScore)
	}
	return line
}

// OfferList renders a page of offers numbered from 1.
func OfferList(offers []Offer, symbol string) string {
	lines := make([]string, len(offers))
	for i, o := range offers {
		lines[i] = OfferLine(i+1, o, symbol)
	}
	return strings.Join(lines, "\n")
}

func guestsLabel(n int) string {
	if n == 1 {
		return "1 guest"
	}
	return fmt.Sprintf("%d guests", n)
}

func listingMessage(q Query, p *Page) string {
	header := fmt.Sprintf("🔎 Hotels in **%s** · %s → %s · %s", q.City, q.CheckIn, q.CheckOut, guestsLabel(q.Guests))

	switch {
	case p.Unavailable && p.Total == 0:
		return fmt.Sprintf("%s\n\n😔 No hotels found right now. The hotel search is not responding, so please try again in a moment or say \"reset\" to start over.", header)
	case p.Total == 0:
		return fmt.Sprintf("%s\n\n😔 No hotels found in %s for these dates. Try other dates, or say \"different city\" or \"reset\".", header, q.City)
	case p.Exhausted:
		return fmt.Sprintf("That's all %d hotels I found in %s, you've seen every one. Say \"reset\" to start over, or \"cheaper\" / \"premium\" to shift the price range and I'll search again.", p.Total, q.City)
	}

	var intro string
	first := p.Cursor + 1
	last := p.Cursor + len(p.Offers)
	if p.MatchedBudget {
		intro = fmt.Sprintf("Showing %d–%d of %d within %s:", first, last, p.Total, Money(q.Symbol, q.Budget))
	} else {
		intro = fmt.Sprintf("Nothing comes in at %s or less for the whole stay, so here are the most affordable options instead (%d–%d of %d):", Money(q.Symbol, q.Budget), first, last, p.Total)
	}

	outro := "Reply with a number to pick a hotel, say \"next\" for more options, \"cheaper\" or \"premium\" to shift the price range, or ask me anything about these hotels."
	return fmt.Sprintf("%s\n%s\n\n%s\n\n%s", header, intro, OfferList(p.Offers, q.Symbol), outro)
}
