// README: Concierge runs one dialogue turn per inbound message: extract, guard, merge, route, persist.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"concierge/internal/ai"
	"concierge/internal/config"
	"concierge/internal/modules/booking"
	"concierge/internal/modules/hotel"
	"concierge/internal/modules/session"
)

var (
	ErrEmptyMessage = errors.New("message is empty")
	ErrForbidden    = errors.New("thread belongs to another user")
)

type HotelSearcher interface {
	Search(ctx context.Context, q hotel.Query) (*hotel.Page, error)
}

type RateSource interface {
	Rate(ctx context.Context, code string) float64
}

type Booker interface {
	Submit(ctx context.Context, req booking.Request) (*booking.Booking, error)
}

type Deps struct {
	Sessions   session.Store
	Extractor  ai.IntentExtractor
	Consultant ai.Consultant
	Hotels     HotelSearcher
	Rates      RateSource
	Bookings   Booker

	// RecommendedCities is the queue offered when the user leaves the city to us.
	RecommendedCities []string
	AITimeout         time.Duration
	MaxSpendUSD       float64

	Logger *zap.Logger
	// Now defaults to time.Now; tests pin it.
	Now func() time.Time
}

type Concierge struct {
	sessions   session.Store
	extractor  ai.IntentExtractor
	consultant ai.Consultant
	hotels     HotelSearcher
	rates      RateSource
	bookings   Booker

	cities      []string
	aiTimeout   time.Duration
	maxSpendUSD float64

	locks *threadLocks
	log   *zap.Logger
	now   func() time.Time
}

func NewConcierge(d Deps) *Concierge {
	c := &Concierge{
		sessions:    d.Sessions,
		extractor:   d.Extractor,
		consultant:  d.Consultant,
		hotels:      d.Hotels,
		rates:       d.Rates,
		bookings:    d.Bookings,
		cities:      d.RecommendedCities,
		aiTimeout:   d.AITimeout,
		maxSpendUSD: d.MaxSpendUSD,
		locks:       newThreadLocks(),
		log:         d.Logger,
		now:         d.Now,
	}
	if c.extractor == nil {
		c.extractor = ai.RuleExtractor{}
	}
	if c.consultant == nil {
		c.consultant = ai.TemplateConsultant{}
	}
	if len(c.cities) == 0 {
		c.cities = config.DefaultRecommendedCities
	}
	if c.aiTimeout <= 0 {
		c.aiTimeout = 8 * time.Second
	}
	if c.log == nil {
		c.log = zap.NewNop()
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c
}

// TurnResult is the state after a turn plus the assistant messages it produced.
type TurnResult struct {
	State    *session.State
	Messages []string
}

// Reply joins the turn's messages into one block of text.
func (r *TurnResult) Reply() string {
	return strings.Join(r.Messages, "\n\n")
}

// CreateThread starts an empty conversation owned by ownerUID (may be empty).
func (c *Concierge) CreateThread(ctx context.Context, ownerUID string) (*session.State, error) {
	st := session.New(uuid.NewString())
	st.OwnerUID = ownerUID
	st.UpdatedAt = c.now().UTC()
	if err := c.sessions.Save(ctx, st); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return st, nil
}

// Thread loads a conversation, enforcing ownership when the thread has an owner.
func (c *Concierge) Thread(ctx context.Context, threadID, callerUID string) (*session.State, error) {
	st, err := c.sessions.Get(ctx, threadID)
	if err != nil {
		return nil, err
	}
	if st.OwnerUID != "" && st.OwnerUID != callerUID {
		return nil, ErrForbidden
	}
	return st, nil
}

func (c *Concierge) DeleteThread(ctx context.Context, threadID, callerUID string) error {
	unlock := c.locks.lock(threadID)
	defer unlock()
	if _, err := c.Thread(ctx, threadID, callerUID); err != nil {
		return err
	}
	return c.sessions.Delete(ctx, threadID)
}

// Turn processes one user message on threadID. Unknown threads are created. Only
// session store failures are returned; every collaborator failure becomes a reply.
func (c *Concierge) Turn(ctx context.Context, threadID, message string) (*TurnResult, error) {
	return c.process(ctx, threadID, message, nil)
}

// TurnAs is Turn for an existing thread on behalf of callerUID. The ownership
// check and the turn run under the same thread lock, so a thread deleted in
// between yields session.ErrNotFound instead of being recreated.
func (c *Concierge) TurnAs(ctx context.Context, threadID, callerUID, message string) (*TurnResult, error) {
	return c.process(ctx, threadID, message, &callerUID)
}

// process runs one turn. A nil caller creates unknown threads and skips ownership.
func (c *Concierge) process(ctx context.Context, threadID, message string, caller *string) (*TurnResult, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, ErrEmptyMessage
	}

	unlock := c.locks.lock(threadID)
	defer unlock()

	// a client disconnect must not leave a half-applied turn behind
	ctx = context.WithoutCancel(ctx)

	st, err := c.sessions.Get(ctx, threadID)
	switch {
	case errors.Is(err, session.ErrNotFound) && caller == nil:
		st = session.New(threadID)
	case errors.Is(err, session.ErrNotFound):
		return nil, err
	case err != nil:
		return nil, fmt.Errorf("load session: %w", err)
	case caller != nil && st.OwnerUID != "" && st.OwnerUID != *caller:
		return nil, ErrForbidden
	}

	st.AppendHistory(ai.Message{Role: ai.RoleUser, Content: message})
	t := &turn{c: c, st: st, raw: message}
	t.run(ctx)

	st.Phase = st.DerivePhase()
	if t.answeredInfo {
		st.Phase = session.PhaseInfo
	}
	for _, m := range t.replies {
		st.AppendHistory(ai.Message{Role: ai.RoleAssistant, Content: m})
	}
	st.UpdatedAt = c.now().UTC()

	if err := c.sessions.Save(ctx, st); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	c.log.Info("turn complete",
		zap.String("thread_id", threadID),
		zap.String("guard", t.guard),
		zap.String("route", t.route),
		zap.String("phase", string(st.Phase)),
	)
	return &TurnResult{State: st, Messages: t.replies}, nil
}

func (c *Concierge) extract(ctx context.Context, st *session.State) *ai.Intent {
	ctx, cancel := context.WithTimeout(ctx, c.aiTimeout)
	defer cancel()

	intent, err := c.extractor.Extract(ctx, st.History, c.now(), st.BudgetMax)
	if err != nil || intent == nil {
		c.log.Warn("intent extraction degraded",
			zap.String("thread_id", st.ThreadID),
			zap.Error(errors.Join(ai.ErrExtractionDegraded, err)),
		)
		return &ai.Intent{}
	}
	return intent
}
