package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"concierge/internal/ai"
	"concierge/internal/modules/currency"
	"concierge/internal/modules/session"
)

// turn carries the working set of a single Concierge.Turn call.
type turn struct {
	c      *Concierge
	st     *session.State
	raw    string
	intent *ai.Intent

	// set by the guards and merges, read by routing
	done         bool
	datesChanged bool
	confirmed    bool
	reopened     bool
	answeredInfo bool
	guard, route string
	replies      []string
}

func (t *turn) say(msg string) {
	if msg != "" {
		t.replies = append(t.replies, msg)
	}
}

// guard is one precedence rule. apply reports whether the rule fired; a rule that
// declines lets the next one try.
type guard struct {
	name  string
	apply func(t *turn) bool
}

// guards run in order and the first that fires wins.
var guards = []guard{
	{"info", (*turn).guardInfo},
	{"rejection", (*turn).guardRejection},
	{"selection", (*turn).guardSelection},
	{"budget_change", (*turn).guardBudgetChange},
	{"pagination", (*turn).guardPagination},
	{"city_change", (*turn).guardCityChange},
}

func (t *turn) run(ctx context.Context) {
	if resetRe.MatchString(t.raw) {
		t.st.Reset()
		t.guard, t.route = "reset", "welcome"
		t.say(welcomeMessage)
		return
	}

	t.intent = t.c.extract(ctx, t.st)

	for _, g := range guards {
		if g.apply(t) {
			t.guard = g.name
			break
		}
	}
	if t.done {
		return
	}

	t.mergeFields()
	t.confirmationGate()
	t.backfillCheckOut()
	t.routeTurn(ctx)
}

func (t *turn) guardInfo() bool {
	if t.intent.InfoQuery == nil {
		return false
	}
	t.st.InfoRequest = *t.intent.InfoQuery
	return true
}

func (t *turn) guardRejection() bool {
	if !t.intent.IsRejection() || len(t.st.Hotels) == 0 {
		return false
	}
	t.st.ClearSelection()
	t.st.DiscussedHotel = -1
	t.route = "relist"
	t.say(relistMessage(t.st))
	t.done = true
	return true
}

func (t *turn) guardSelection() bool {
	st := t.st
	if len(st.Hotels) == 0 || (st.SelectedHotel != nil && len(st.RoomOptions) > 0) || t.intent.HasActionableField() {
		return false
	}
	idx := selectionIndex(t.raw)
	if idx < 0 && st.DiscussedHotel >= 0 && bareYesRe.MatchString(t.raw) {
		idx = st.DiscussedHotel
	}
	return idx >= 0 && st.SelectHotel(idx)
}

// selectionIndex maps "2", "#2", "option 2" or "second" to a zero-based index, or -1.
func selectionIndex(msg string) int {
	if m := selectNumRe.FindStringSubmatch(msg); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil && n >= 1 && n <= maxSelectable {
			return n - 1
		}
		return -1
	}
	if m := ordinalRe.FindStringSubmatch(msg); m != nil {
		return ordinals[strings.ToLower(m[1])]
	}
	return -1
}

func (t *turn) guardBudgetChange() bool {
	if t.intent.BudgetDirection == nil || t.st.BudgetMax <= 0 {
		return false
	}
	switch *t.intent.BudgetDirection {
	case "down":
		t.st.BudgetMax *= 0.75
	case "up":
		t.st.BudgetMax *= 1.5
	default:
		return false
	}
	t.st.ClearResults()
	return true
}

func (t *turn) guardPagination() bool {
	st := t.st
	if !t.intent.WantsMore() && !(nextRe.MatchString(t.raw) && len(st.Hotels) > 0 && !t.intent.WantsDifferentCity()) {
		return false
	}
	st.NextPage()
	return true
}

func (t *turn) guardCityChange() bool {
	st := t.st
	extracted := t.intent.Destination != nil
	switch {
	case t.intent.WantsDifferentCity() && !extracted:
	case st.Destination == "" && !extracted && delegateRe.MatchString(t.raw):
	default:
		return false
	}

	city := t.nextCity()
	if city == "" {
		t.route = "cities_exhausted"
		t.say(citiesExhausted)
		t.done = true
		return true
	}
	st.Destination = city
	st.SuggestedCities = append(st.SuggestedCities, city)
	st.ClearResults()
	t.say(citySuggestion(city))
	return true
}

func (t *turn) nextCity() string {
	for _, city := range t.c.cities {
		if t.st.Suggested(city) || strings.EqualFold(city, t.st.Destination) {
			continue
		}
		return city
	}
	return ""
}

func (t *turn) mergeFields() {
	in, st := t.intent, t.st
	// quotes were priced for the old party size and currency; dates alone keep the
	// selection so the gate can reopen room selection
	requote := false

	if in.Destination != nil {
		// a Caser is stateful, so each merge gets its own
		city := cases.Title(language.Und).String(strings.TrimSpace(*in.Destination))
		if !strings.EqualFold(city, st.Destination) {
			st.ClearResults()
		}
		st.Destination = city
	}
	if in.CheckIn != nil && *in.CheckIn != st.CheckIn {
		st.CheckIn = *in.CheckIn
		t.datesChanged = true
	}
	if in.CheckOut != nil && *in.CheckOut != st.CheckOut {
		st.CheckOut = *in.CheckOut
		t.datesChanged = true
	}
	if in.Guests != nil && *in.Guests != st.Guests {
		st.Guests = *in.Guests
		requote = true
	}
	if in.Rooms != nil && *in.Rooms != st.Rooms {
		st.Rooms = *in.Rooms
		requote = true
	}
	if in.Currency != nil && *in.Currency != st.Currency {
		st.Currency = *in.Currency
		st.CurrencySymbol = currency.Symbol(st.Currency)
		requote = true
	}
	if in.Budget != nil && in.BudgetDirection == nil && *in.Budget != st.BudgetMax {
		st.BudgetMax = *in.Budget
		requote = true
	}
	switch {
	case requote:
		st.ClearResults()
	case t.datesChanged && st.SelectedHotel == nil:
		st.ClearPage()
	}
}

func (t *turn) confirmationGate() {
	st := t.st
	if !st.WaitingForBookingConfirmation {
		return
	}
	switch {
	case t.datesChanged:
		st.ReopenRoomSelection()
		t.reopened = true
		t.backfillCheckOut()
		t.say(reopenNotice(st))
	case affirms(t.raw):
		t.confirmed = true
	default:
		st.CancelConfirmation()
		t.say(cancelNotice)
	}
}

// backfillCheckOut fills a missing check-out, or one not after check-in, with check-in + 2 days.
func (t *turn) backfillCheckOut() {
	st := t.st
	if st.CheckIn == "" {
		return
	}
	in, err := time.Parse(time.DateOnly, st.CheckIn)
	if err != nil {
		return
	}
	if st.CheckOut != "" {
		out, err := time.Parse(time.DateOnly, st.CheckOut)
		if err == nil && out.After(in) {
			return
		}
	}
	st.CheckOut = in.AddDate(0, 0, 2).Format(time.DateOnly)
}
