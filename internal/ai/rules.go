package ai

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// RuleExtractor is a keyword and pattern based IntentExtractor. It needs no network
// access and is the default when no model key is configured.
type RuleExtractor struct{}

var (
	dateRe       = regexp.MustCompile(`\b(\d{4}-\d{2}-\d{2})\b`)
	guestsRe     = regexp.MustCompile(`\b(\d{1,2})\s*(?:guests?|people|persons?|adults?|pax|travell?ers)\b`)
	roomsRe      = regexp.MustCompile(`\b(\d{1,2})\s*rooms?\b`)
	symbolRe     = regexp.MustCompile(`([$€£¥₹])\s*(\d[\d,]*(?:\.\d+)?)`)
	amountRe     = regexp.MustCompile(`\b(\d[\d,]*(?:\.\d+)?)\s*(usd|usdc|eur|gbp|jpy|inr|aud|cad|chf|cny|thb|aed|sgd|mxn|brl|zar|try|dollars?|euros?|pounds?|yen|rupees?)\b`)
	budgetRe     = regexp.MustCompile(`\b(?:budget(?:\s+(?:of|is))?|under|max(?:imum)?|up to|below|less than)\s*:?\s*(\d[\d,]*(?:\.\d+)?)\b`)
	currencyRe   = regexp.MustCompile(`\b(?:in|pay in|prices? in|currency)\s+(usd|usdc|eur|gbp|jpy|inr|aud|cad|chf|cny|thb|aed|sgd|mxn|brl|zar|try|dollars|euros|pounds|yen|rupees)\b`)
	bareNumRe    = regexp.MustCompile(`^\s*(\d[\d,]*(?:\.\d+)?)\s*$`)
	destRe       = regexp.MustCompile(`\b(?i:hotels?\s+in|stay(?:ing)?\s+in|going\s+to|travel(?:l)?ing\s+to|trip\s+to|visit(?:ing)?|heading\s+to|fly(?:ing)?\s+to|in|to)\s+([A-Z][\p{L}'.-]*(?:\s+[A-Z][\p{L}'.-]*){0,2})`)
	moreRe       = regexp.MustCompile(`\b(show (?:me )?more|more (?:options|hotels)|see more|other options|any others)\b`)
	otherCityRe  = regexp.MustCompile(`\b(different city|another city|other city|somewhere else|change (?:the )?city|another destination)\b`)
	cheaperRe    = regexp.MustCompile(`\b(cheaper|less expensive|more affordable|lower (?:the )?budget|too expensive|budget options?)\b`)
	premiumRe    = regexp.MustCompile(`\b(premium|luxury|luxurious|more expensive|fancier|upscale|higher (?:the )?budget|nicer)\b`)
	rejectRe     = regexp.MustCompile(`^(no|nope|nah|not that one|not this one|none of (?:these|them)|neither|no thanks|i don'?t like (?:it|that one))\b`)
	delegationRe = regexp.MustCompile(`\b(you pick|you choose|surprise|anywhere|recommend\w*|next|more|yes|ok|okay)\b`)
	questionRe   = regexp.MustCompile(`^(tell me|what|does|do they|is there|is it|are there|how|which|where|can you tell|any info)\b`)
)

var currencyWords = map[string]string{
	"dollar": "USD", "dollars": "USD", "euro": "EUR", "euros": "EUR",
	"pound": "GBP", "pounds": "GBP", "yen": "JPY", "rupee": "INR", "rupees": "INR",
}

var currencySymbols = map[string]string{"$": "USD", "€": "EUR", "£": "GBP", "¥": "JPY", "₹": "INR"}

// words that follow "in"/"to" but never name a city
var destStopwords = map[string]bool{
	"The": true, "A": true, "My": true, "Our": true, "Usd": true, "Eur": true, "Gbp": true,
	"I": true, "Me": true, "It": true, "Book": true, "Check": true, "Stay": true,
}

func (RuleExtractor) Extract(_ context.Context, history []Message, _ time.Time, _ float64) (*Intent, error) {
	raw, prev := lastExchange(history)
	intent := &Intent{}
	if strings.TrimSpace(raw) == "" {
		return intent, nil
	}
	msg := strings.ToLower(strings.TrimSpace(raw))
	prevLower := strings.ToLower(prev)

	if rejectRe.MatchString(msg) {
		intent.Rejected = boolPtr(true)
	}
	if moreRe.MatchString(msg) {
		intent.ShowMore = boolPtr(true)
	}
	if otherCityRe.MatchString(msg) {
		intent.DifferentCity = boolPtr(true)
	}
	switch {
	case cheaperRe.MatchString(msg):
		intent.BudgetDirection = strPtr("down")
	case premiumRe.MatchString(msg):
		intent.BudgetDirection = strPtr("up")
	}

	rest := extractDates(msg, intent)
	rest = extractParty(rest, intent)
	extractMoney(rest, prevLower, intent)

	if intent.Guests == nil && intent.Budget == nil && askedFor(prevLower, "guests") {
		if m := bareNumRe.FindStringSubmatch(msg); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				intent.Guests = &n
			}
		}
	}

	if listedHotels(prevLower) && (strings.HasSuffix(msg, "?") || questionRe.MatchString(msg)) {
		intent.InfoQuery = strPtr(strings.TrimSpace(raw))
	} else if d := extractDestination(raw, prevLower); d != "" {
		intent.Destination = &d
	}

	intent.Normalize()
	return intent, nil
}

func lastExchange(history []Message) (user, assistant string) {
	i := len(history) - 1
	for ; i >= 0; i-- {
		if history[i].Role == RoleUser {
			user = history[i].Content
			break
		}
	}
	for j := i - 1; j >= 0; j-- {
		if history[j].Role == RoleAssistant {
			return user, history[j].Content
		}
	}
	return user, ""
}

func extractDates(msg string, intent *Intent) string {
	dates := dateRe.FindAllString(msg, 2)
	switch len(dates) {
	case 0:
	case 1:
		if strings.Contains(msg, "check-out") || strings.Contains(msg, "checkout") || strings.Contains(msg, "check out") || strings.Contains(msg, "leave") {
			intent.CheckOut = strPtr(dates[0])
		} else {
			intent.CheckIn = strPtr(dates[0])
		}
	default:
		intent.CheckIn = strPtr(dates[0])
		intent.CheckOut = strPtr(dates[1])
	}
	return dateRe.ReplaceAllString(msg, " ")
}

func extractParty(msg string, intent *Intent) string {
	if m := guestsRe.FindStringSubmatch(msg); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			intent.Guests = &n
		}
	} else if strings.Contains(msg, "just me") || strings.Contains(msg, "solo") || strings.Contains(msg, "alone") {
		intent.Guests = intPtr(1)
	} else if strings.Contains(msg, "couple") || strings.Contains(msg, "two of us") {
		intent.Guests = intPtr(2)
	}
	if m := roomsRe.FindStringSubmatch(msg); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			intent.Rooms = &n
		}
	}
	msg = guestsRe.ReplaceAllString(msg, " ")
	return roomsRe.ReplaceAllString(msg, " ")
}

func extractMoney(msg, prev string, intent *Intent) {
	if m := symbolRe.FindStringSubmatch(msg); m != nil {
		intent.Budget = parseAmount(m[2])
		intent.Currency = strPtr(currencySymbols[m[1]])
	} else if m := amountRe.FindStringSubmatch(msg); m != nil {
		intent.Budget = parseAmount(m[1])
		intent.Currency = strPtr(currencyCode(m[2]))
	} else if m := budgetRe.FindStringSubmatch(msg); m != nil {
		intent.Budget = parseAmount(m[1])
	} else if askedFor(prev, "budget") && !askedFor(prev, "guests") {
		if m := bareNumRe.FindStringSubmatch(msg); m != nil {
			intent.Budget = parseAmount(m[1])
		}
	}
	if intent.Currency == nil {
		if m := currencyRe.FindStringSubmatch(msg); m != nil {
			intent.Currency = strPtr(currencyCode(m[1]))
		}
	}
}

func extractDestination(raw, prev string) string {
	for _, m := range destRe.FindAllStringSubmatch(raw, -1) {
		city := strings.TrimRight(m[1], ".!?,")
		first := strings.Fields(city)[0]
		if destStopwords[first] {
			continue
		}
		return city
	}
	// a short reply to the city question is the city itself
	if askedFor(prev, "city") {
		reply := strings.TrimSpace(strings.TrimRight(raw, ".!"))
		words := strings.Fields(reply)
		if len(words) > 0 && len(words) <= 3 && !strings.ContainsAny(reply, "0123456789?") {
			lower := strings.ToLower(reply)
			if rejectRe.MatchString(lower) || otherCityRe.MatchString(lower) || delegationRe.MatchString(lower) {
				return ""
			}
			return reply
		}
	}
	return ""
}

func askedFor(prev, field string) bool {
	switch field {
	case "guests":
		return strings.Contains(prev, "how many guests")
	case "budget":
		return strings.Contains(prev, "total budget")
	case "city":
		return strings.Contains(prev, "which city") || strings.Contains(prev, "**city**")
	}
	return false
}

func listedHotels(prev string) bool {
	return strings.Contains(prev, "reply with a number") || strings.Contains(prev, "would you like to book")
}

func currencyCode(word string) string {
	if code, ok := currencyWords[word]; ok {
		return code
	}
	return strings.ToUpper(word)
}

func parseAmount(s string) *float64 {
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil || v <= 0 {
		return nil
	}
	return &v
}

func boolPtr(b bool) *bool { return &b }
func intPtr(n int) *int    { return &n }
