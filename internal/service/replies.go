package service

import (
	"fmt"
	"strings"

	"concierge/internal/modules/hotel"
	"concierge/internal/modules/session"
)

const welcomeMessage = "👋 Hi! I'm your hotel concierge. Tell me which **City** you'd like to stay in, " +
	"or say \"surprise me\" and I'll suggest one."

func collectPrompt(st *session.State) string {
	var known []string
	if st.Destination != "" {
		known = append(known, "📍 "+st.Destination)
	}
	if st.CheckIn != "" {
		known = append(known, fmt.Sprintf("📅 %s → %s", st.CheckIn, st.CheckOut))
	}
	if st.Guests > 0 {
		known = append(known, "👥 "+guestCount(st.Guests))
	}

	var ask string
	switch {
	case st.Destination == "":
		return welcomeMessage
	case st.CheckIn == "":
		ask = "When would you like to check in? Send the date as YYYY-MM-DD, and the check-out date too if you know it."
	case st.Guests <= 0:
		ask = "How many guests will be staying?"
	default:
		ask = fmt.Sprintf("What's your total budget for the whole stay in %s? You can also name another currency, e.g. \"300 EUR\".", st.Currency)
	}
	if len(known) == 0 {
		return ask
	}
	return fmt.Sprintf("Got it: %s.\n\n%s", strings.Join(known, " · "), ask)
}

func guestCount(n int) string {
	if n == 1 {
		return "1 guest"
	}
	return fmt.Sprintf("%d guests", n)
}

func relistMessage(st *session.State) string {
	return fmt.Sprintf("No problem, let's keep looking. Here are the options again:\n\n%s\n\n%s",
		numberedFrom(st.Hotels, st.HotelCursor, st.CurrencySymbol), pickHint)
}

const pickHint = "Reply with a number to pick a hotel, say \"next\" for more options, or \"different city\" to look elsewhere."

// numberedFrom renders the page with page-relative numbers and the cursor position as context.
func numberedFrom(offers []hotel.Offer, cursor int, symbol string) string {
	list := hotel.OfferList(offers, symbol)
	if cursor == 0 {
		return list
	}
	return fmt.Sprintf("(results %d–%d)\n%s", cursor+1, cursor+len(offers), list)
}

func fallbackPrompt(st *session.State) string {
	return fmt.Sprintf("I didn't quite catch that. Reply with a number from 1 to %d to pick a hotel, say \"next\" for more options, "+
		"\"cheaper\" or \"premium\" to shift the price range, or ask me about any of them.", len(st.Hotels))
}

func citySuggestion(city string) string {
	return fmt.Sprintf("How about **%s**? 🌍", city)
}

const citiesExhausted = "I've already suggested every city on my list. Which city would you like to try next?"

func bookingPrompt(hotelName string) string {
	return fmt.Sprintf("Would you like to book **%s**? Reply with its number / yes, or no to keep browsing.", hotelName)
}

const infoPickHint = "Would you like to book one of these hotels? Reply with its number, or ask me anything else about them."

func selectedBookingPrompt(hotelName string) string {
	return fmt.Sprintf("Would you like to go ahead with **%s**? Reply yes to choose your room, or no to keep browsing.", hotelName)
}

func confirmPrompt(st *session.State, rate float64) string {
	usd := fmt.Sprintf("%.2f USD", st.FinalTotalPriceUSD)
	if st.Currency != "USD" && st.Currency != "USDC" {
		usd = fmt.Sprintf("≈ %.2f USD at %.4f", st.FinalTotalPriceUSD, rate)
	}
	return fmt.Sprintf("You picked the **%s** at **%s**: %s for %s → %s (%s).\n\nShall I book it? Reply **yes** to confirm, or anything else to cancel.",
		st.FinalRoomType, st.SelectedHotel.Name, hotel.Money(st.CurrencySymbol, st.FinalLocalPrice), st.CheckIn, st.CheckOut, usd)
}

func awaitPrompt(st *session.State) string {
	return fmt.Sprintf("Your **%s** at **%s** is ready to book for %s. Reply **yes** to confirm, or tell me what to change.",
		st.FinalRoomType, st.SelectedHotel.Name, hotel.Money(st.CurrencySymbol, st.FinalLocalPrice))
}

const cancelNotice = "Okay, I won't book that. Let's pick a room again."

func reopenNotice(st *session.State) string {
	return fmt.Sprintf("📅 Dates updated to %s → %s. Please choose your room again.", st.CheckIn, st.CheckOut)
}

func bookedMessage(st *session.State) string {
	var b strings.Builder
	b.WriteString("🎉 **Booking Confirmed!**\n\n")
	if st.SelectedHotel != nil {
		fmt.Fprintf(&b, "🏨 **Hotel:** %s\n", st.SelectedHotel.Name)
	}
	fmt.Fprintf(&b, "🛏️ **Room:** %s (%s)\n", st.FinalRoomType, guestCount(st.Guests))
	fmt.Fprintf(&b, "📅 **Dates:** %s to %s\n", st.CheckIn, st.CheckOut)
	fmt.Fprintf(&b, "🎫 **Reference:** `%s`\n", st.BookingRef)
	fmt.Fprintf(&b, "💰 **Total:** %s (%.2f USD)\n", hotel.Money(st.CurrencySymbol, st.FinalLocalPrice), st.FinalTotalPriceUSD)
	fmt.Fprintf(&b, "🔗 **Transaction:** `%s`", st.TxHash)
	if st.BookingDegraded {
		b.WriteString("\n\n⚠️ The payment network didn't respond, so this confirmation is **provisional**. We'll finalize it once settlement goes through.")
	}
	return b.String()
}

func bookedSummary(st *session.State) string {
	return fmt.Sprintf("You're all set: your stay is booked under reference `%s`. Say \"reset\" to plan another trip.", st.BookingRef)
}

func spendLimitMessage(usdTotal, limit float64) string {
	return fmt.Sprintf("That comes to %.2f USD, which is above the %.2f USD limit I can book automatically. Reply **1** or **2** to pick another room, or say \"cheaper\" to see other hotels.",
		usdTotal, limit)
}

const bookingFailedMessage = "⚠️ I couldn't complete the payment just now. Reply **yes** to try again, or anything else to cancel."

const searchFailedMessage = "😔 No hotels found right now, the search isn't responding. Please try again in a moment, or say \"reset\" to start over."
