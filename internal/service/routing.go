package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"concierge/internal/ai"
	"concierge/internal/modules/booking"
	"concierge/internal/modules/hotel"
	"concierge/internal/modules/room"
	"concierge/internal/modules/session"
)

func (t *turn) routeTurn(ctx context.Context) {
	st := t.st
	switch {
	case st.InfoRequest != "":
		t.route = "info"
		t.answerInfo(ctx)
	case st.FinalStatus == session.StatusBooked:
		t.route = "booked"
		t.say(bookedSummary(st))
	case !st.RequirementsComplete():
		t.route = "collect"
		t.say(collectPrompt(st))
	case st.SelectedHotel != nil && st.FinalRoomType == "":
		t.route = "rooms"
		t.chooseRoom(ctx)
	case st.FinalRoomType != "" && st.WaitingForBookingConfirmation && t.confirmed:
		t.route = "book"
		t.book(ctx)
	case st.FinalRoomType != "":
		t.route = "await_confirmation"
		t.say(awaitPrompt(st))
	case len(st.Hotels) == 0:
		t.route = "search"
		t.search(ctx)
	default:
		t.route = "pick_hotel"
		t.say(fallbackPrompt(st))
	}
}

func (t *turn) answerInfo(ctx context.Context) {
	st, c := t.st, t.c
	question := st.InfoRequest
	facts := hotelsContext(st)

	callCtx, cancel := context.WithTimeout(ctx, c.aiTimeout)
	answer, err := c.consultant.Answer(callCtx, question, facts)
	cancel()
	if err != nil || strings.TrimSpace(answer) == "" {
		c.log.Warn("consultant unavailable, using listing facts", zap.String("thread_id", st.ThreadID), zap.Error(err))
		answer, _ = ai.TemplateConsultant{}.Answer(ctx, question, facts)
	}

	st.InfoRequest = ""
	st.DiscussedHotel = discussedHotel(question, st.Hotels)
	t.answeredInfo = true

	switch {
	case st.DiscussedHotel >= 0:
		t.say(answer + "\n\n" + bookingPrompt(st.Hotels[st.DiscussedHotel].Name))
	case st.SelectedHotel != nil:
		t.say(answer + "\n\n" + selectedBookingPrompt(st.SelectedHotel.Name))
	case len(st.Hotels) > 0:
		t.say(answer + "\n\n" + infoPickHint)
	default:
		t.say(answer)
	}
}

func hotelsContext(st *session.State) string {
	if len(st.Hotels) == 0 {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "City: %s. Dates: %s to %s. Guests: %d.\n", st.Destination, st.CheckIn, st.CheckOut, st.Guests)
	b.WriteString(hotel.OfferList(st.Hotels, st.CurrencySymbol))
	if st.SelectedHotel != nil {
		fmt.Fprintf(&b, "\nCurrently selected: %s.", st.SelectedHotel.Name)
	}
	return b.String()
}

// discussedHotel finds the page index a question refers to, by name or by "hotel N".
func discussedHotel(question string, offers []hotel.Offer) int {
	q := strings.ToLower(question)
	for i, o := range offers {
		name := strings.ToLower(o.Name)
		if name != "" && strings.Contains(q, name) {
			return i
		}
	}
	for i, o := range offers {
		short := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(o.Name, "Hotel "), "The ")))
		if len(short) >= 4 && strings.Contains(q, short) {
			return i
		}
	}
	if m := hotelRefRe.FindStringSubmatch(question); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n >= 1 && n <= len(offers) {
			return n - 1
		}
	}
	return -1
}

func (t *turn) chooseRoom(ctx context.Context) {
	st := t.st
	if len(st.RoomOptions) == 0 {
		st.OfferRooms(room.Generate(*st.SelectedHotel))
		t.say(room.Format(st.SelectedHotel.Name, st.RoomOptions, st.CurrencySymbol))
		return
	}
	if t.reopened {
		t.say(room.Format(st.SelectedHotel.Name, st.RoomOptions, st.CurrencySymbol))
		return
	}

	if bareYesRe.MatchString(t.raw) {
		t.say(room.Format(st.SelectedHotel.Name, st.RoomOptions, st.CurrencySymbol))
		return
	}
	opt, err := room.Match(t.raw, st.RoomOptions)
	if err != nil {
		t.say(room.Reprompt(st.RoomOptions, st.CurrencySymbol))
		return
	}
	rate := t.c.rates.Rate(ctx, st.Currency)
	st.FinalizeRoom(opt, opt.Price*rate)
	t.say(confirmPrompt(st, rate))
}

func (t *turn) book(ctx context.Context) {
	st, c := t.st, t.c
	b, err := c.bookings.Submit(ctx, booking.Request{
		ThreadID:    st.ThreadID,
		Description: fmt.Sprintf("%s - %s", st.SelectedHotel.Name, st.FinalRoomType),
		Destination: st.Destination,
		USDTotal:    st.FinalTotalPriceUSD,
	})
	switch {
	case errors.Is(err, booking.ErrSpendLimit):
		c.log.Info("booking above spend limit", zap.String("thread_id", st.ThreadID), zap.Float64("usd_total", st.FinalTotalPriceUSD))
		usd := st.FinalTotalPriceUSD
		st.ReopenRoomSelection()
		t.say(spendLimitMessage(usd, c.maxSpendUSD))
		return
	case err != nil:
		c.log.Error("booking failed", zap.String("thread_id", st.ThreadID), zap.Error(err))
		t.say(bookingFailedMessage)
		return
	}

	st.MarkBooked(b.Reference, b.TxHash, b.Degraded)
	t.say(bookedMessage(st))
}

func (t *turn) search(ctx context.Context) {
	st, c := t.st, t.c
	page, err := c.hotels.Search(ctx, hotel.Query{
		City:     st.Destination,
		CheckIn:  st.CheckIn,
		CheckOut: st.CheckOut,
		Guests:   st.Guests,
		Rooms:    st.Rooms,
		Currency: st.Currency,
		Symbol:   st.CurrencySymbol,
		Budget:   st.BudgetMax,
		Cursor:   st.HotelCursor,
	})
	if err != nil {
		c.log.Warn("hotel search failed", zap.String("thread_id", st.ThreadID), zap.Error(err))
		t.say(searchFailedMessage)
		return
	}
	if page.Exhausted {
		st.ShowPage(nil, 0)
	} else {
		st.ShowPage(page.Offers, page.Cursor)
	}
	t.say(page.Message)
}
