// README: Per-thread conversation state and the mutators that keep its sub-modes consistent.
package session

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"concierge/internal/ai"
	"concierge/internal/modules/hotel"
	"concierge/internal/modules/room"
)

// Phase is the coarse position of a conversation in the booking flow.
type Phase string

const (
	PhaseCollecting           Phase = "collecting"
	PhaseBrowsing             Phase = "browsing"
	PhaseInfo                 Phase = "info"
	PhaseRoomSelection        Phase = "room_selection"
	PhaseAwaitingConfirmation Phase = "awaiting_confirmation"
	PhaseBooked               Phase = "booked"
)

const (
	StatusBooked = "Booked"

	// HistoryLimit caps the number of messages kept per thread.
	HistoryLimit = 20
)

var ErrNotFound = errors.New("session not found")

type State struct {
	ThreadID string `json:"thread_id"`
	OwnerUID string `json:"owner_uid,omitempty"`

	Destination     string   `json:"destination"`
	SuggestedCities []string `json:"suggested_cities"`
	CheckIn         string   `json:"check_in"`
	CheckOut        string   `json:"check_out"`
	Guests          int      `json:"guests"`
	Rooms           int      `json:"rooms"`
	BudgetMax       float64  `json:"budget_max"`
	Currency        string   `json:"currency"`
	CurrencySymbol  string   `json:"currency_symbol"`

	InfoRequest    string        `json:"info_request"`
	HotelCursor    int           `json:"hotel_cursor"`
	Hotels         []hotel.Offer `json:"hotels"`
	SelectedHotel  *hotel.Offer  `json:"selected_hotel"`
	DiscussedHotel int           `json:"discussed_hotel"`
	RoomOptions    []room.Option `json:"room_options"`

	FinalRoomType                 string  `json:"final_room_type"`
	FinalLocalPrice               float64 `json:"final_local_price"`
	FinalTotalPriceUSD            float64 `json:"final_total_price_usd"`
	WaitingForBookingConfirmation bool    `json:"waiting_for_booking_confirmation"`

	FinalStatus     string `json:"final_status"`
	BookingRef      string `json:"booking_ref,omitempty"`
	TxHash          string `json:"tx_hash,omitempty"`
	BookingDegraded bool   `json:"booking_degraded,omitempty"`

	Phase     Phase        `json:"phase"`
	History   []ai.Message `json:"history"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// New returns an empty conversation for threadID.
func New(threadID string) *State {
	st := &State{ThreadID: threadID}
	st.resetTrip()
	return st
}

func (s *State) resetTrip() {
	s.Destination = ""
	s.SuggestedCities = nil
	s.CheckIn = ""
	s.CheckOut = ""
	s.Guests = 0
	s.Rooms = 1
	s.BudgetMax = 0
	s.Currency = "USD"
	s.CurrencySymbol = "$"
	s.InfoRequest = ""
	s.HotelCursor = 0
	s.Hotels = nil
	s.ClearSelection()
	s.FinalStatus = ""
	s.BookingRef = ""
	s.TxHash = ""
	s.BookingDegraded = false
	s.Phase = PhaseCollecting
}

// Reset clears every trip field. Thread identity, owner and history survive.
func (s *State) Reset() {
	s.resetTrip()
}

// RequirementsComplete reports whether destination, check-in, guests and budget are all known.
func (s *State) RequirementsComplete() bool {
	return s.Destination != "" && s.CheckIn != "" && s.Guests > 0 && s.BudgetMax > 0
}

// SelectHotel picks Hotels[i]. Any previous room choice and the confirmation gate are dropped.
func (s *State) SelectHotel(i int) bool {
	if i < 0 || i >= len(s.Hotels) {
		return false
	}
	picked := s.Hotels[i]
	s.ClearSelection()
	s.SelectedHotel = &picked
	return true
}

// ClearSelection drops the selected hotel together with its room options, final room and gate.
func (s *State) ClearSelection() {
	s.SelectedHotel = nil
	s.DiscussedHotel = -1
	s.RoomOptions = nil
	s.clearFinalRoom()
	s.WaitingForBookingConfirmation = false
}

// ClearPage drops the displayed page and rewinds the cursor. The selection is kept.
func (s *State) ClearPage() {
	s.HotelCursor = 0
	s.Hotels = nil
	s.DiscussedHotel = -1
}

// ClearResults drops the page and the selection.
func (s *State) ClearResults() {
	s.ClearPage()
	s.ClearSelection()
}

// NextPage advances the cursor by one page and drops the current page and selection.
func (s *State) NextPage() {
	cursor := s.HotelCursor + hotel.PageSize
	s.ClearResults()
	s.HotelCursor = cursor
}

// ShowPage stores a page fetched at cursor. Negative or unaligned cursors are rounded down.
func (s *State) ShowPage(offers []hotel.Offer, cursor int) {
	if cursor < 0 {
		cursor = 0
	}
	s.HotelCursor = cursor - cursor%hotel.PageSize
	s.Hotels = offers
}

// OfferRooms stores the tiers generated for the selected hotel.
func (s *State) OfferRooms(options []room.Option) {
	s.RoomOptions = options
	s.clearFinalRoom()
	s.WaitingForBookingConfirmation = false
}

// FinalizeRoom records the chosen tier and opens the confirmation gate.
func (s *State) FinalizeRoom(opt room.Option, usdTotal float64) {
	s.FinalRoomType = opt.Type
	s.FinalLocalPrice = opt.Price
	s.FinalTotalPriceUSD = usdTotal
	s.WaitingForBookingConfirmation = true
}

// ReopenRoomSelection drops the final room and closes the gate, keeping the room options
// so the user is asked to pick a tier again.
func (s *State) ReopenRoomSelection() {
	s.clearFinalRoom()
	s.WaitingForBookingConfirmation = false
}

// CancelConfirmation closes the gate and drops the room choice. The hotel stays selected.
func (s *State) CancelConfirmation() {
	s.clearFinalRoom()
	s.RoomOptions = nil
	s.WaitingForBookingConfirmation = false
}

// MarkBooked records a committed booking and closes the gate.
func (s *State) MarkBooked(ref, tx string, degraded bool) {
	s.FinalStatus = StatusBooked
	s.BookingRef = ref
	s.TxHash = tx
	s.BookingDegraded = degraded
	s.WaitingForBookingConfirmation = false
}

func (s *State) clearFinalRoom() {
	s.FinalRoomType = ""
	s.FinalLocalPrice = 0
	s.FinalTotalPriceUSD = 0
}

// AppendHistory adds messages, keeping the most recent HistoryLimit.
// Messages without an ID get one here so it survives every later read.
func (s *State) AppendHistory(msgs ...ai.Message) {
	s.History = append(s.History, msgs...)
	for i := range s.History {
		if s.History[i].ID == "" {
			s.History[i].ID = NewMessageID()
		}
	}
	if over := len(s.History) - HistoryLimit; over > 0 {
		s.History = append([]ai.Message(nil), s.History[over:]...)
	}
}

// NewMessageID returns a "msg_" id with 32 hex digits.
func NewMessageID() string {
	return "msg_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// LegacyMessageID derives a stable id for a history entry stored before ids
// were assigned.
func LegacyMessageID(threadID string, index int) string {
	u := uuid.NewSHA1(uuid.NameSpaceOID, []byte(threadID+"/"+strconv.Itoa(index)))
	return "msg_" + strings.ReplaceAll(u.String(), "-", "")
}

// DerivePhase computes the phase from the current fields.
func (s *State) DerivePhase() Phase {
	switch {
	case s.FinalStatus == StatusBooked:
		return PhaseBooked
	case !s.RequirementsComplete():
		return PhaseCollecting
	case s.WaitingForBookingConfirmation:
		return PhaseAwaitingConfirmation
	case s.SelectedHotel != nil:
		return PhaseRoomSelection
	case s.InfoRequest != "":
		return PhaseInfo
	default:
		return PhaseBrowsing
	}
}

// Suggested reports whether city was already offered from the recommendation queue.
func (s *State) Suggested(city string) bool {
	for _, c := range s.SuggestedCities {
		if c == city {
			return true
		}
	}
	return false
}
