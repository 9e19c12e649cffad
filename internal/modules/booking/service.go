// README: Booking service guards spend, settles payments and records the outcome.
package booking

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"concierge/internal/config"
)

type Service struct {
	store      Store
	settlement Settlement
	cfg        config.BookingConfig
	log        *zap.Logger
}

// NewService wires the booking flow. A nil settlement books through MockSettlement.
func NewService(store Store, settlement Settlement, cfg config.BookingConfig, logger *zap.Logger) *Service {
	if cfg.TimeoutSeconds <= 0 {
		cfg.TimeoutSeconds = 20
	}
	return &Service{store: store, settlement: settlement, cfg: cfg, log: logger}
}

// Submit settles req and persists the booking. Settlement failures fall back to a mock
// transaction flagged Degraded, unless strict settlement is configured, in which case the
// booking is marked failed and an error wrapping ErrBookingFailed is returned. Store
// failures are logged and never turn a settled booking into an error.
func (s *Service) Submit(ctx context.Context, req Request) (*Booking, error) {
	if strings.TrimSpace(req.Description) == "" || req.USDTotal <= 0 {
		return nil, ErrBadRequest
	}
	if s.cfg.MaxSpendUSD > 0 && req.USDTotal > s.cfg.MaxSpendUSD {
		return nil, fmt.Errorf("%w: %.2f USD > %.2f USD", ErrSpendLimit, req.USDTotal, s.cfg.MaxSpendUSD)
	}

	ts := now()
	b := &Booking{
		ID:          uuid.NewString(),
		ThreadID:    req.ThreadID,
		Description: req.Description,
		Destination: req.Destination,
		USDTotal:    req.USDTotal,
		SwapAmount:  req.SwapAmount,
		Status:      StatusPending,
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}
	stored := true
	if err := s.store.Create(ctx, b); err != nil {
		s.log.Error("record pending booking", zap.String("booking_id", b.ID), zap.Error(err))
		stored = false
	}

	sreq := SettlementRequest{
		Description: req.Description,
		USDTotal:    req.USDTotal,
		Destination: req.Destination,
		SwapAmount:  req.SwapAmount,
		ThreadID:    req.ThreadID,
	}

	if s.settlement == nil {
		res, _ := MockSettlement{}.Submit(ctx, sreq)
		s.finish(ctx, b, StatusMock, res, stored)
		return b, nil
	}

	res, err := s.settle(ctx, sreq)
	if err == nil {
		s.finish(ctx, b, StatusSubmitted, res, stored)
		return b, nil
	}

	s.log.Error("booking settlement failed",
		zap.String("booking_id", b.ID),
		zap.String("thread_id", req.ThreadID),
		zap.Float64("usd_total", req.USDTotal),
		zap.Error(err),
	)
	if s.cfg.StrictSettlement {
		s.finish(ctx, b, StatusFailed, &SettlementResult{}, stored)
		return b, err
	}

	res, _ = MockSettlement{}.Submit(ctx, sreq)
	b.Degraded = true
	s.finish(ctx, b, StatusMockFallback, res, stored)
	return b, nil
}

func (s *Service) settle(ctx context.Context, req SettlementRequest) (*SettlementResult, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(s.cfg.TimeoutSeconds)*time.Second)
	defer cancel()
	res, err := s.settlement.Submit(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBookingFailed, err)
	}
	return res, nil
}

// finish applies the outcome to b and records it when the pending row exists. The
// outcome stands even when recording fails.
func (s *Service) finish(ctx context.Context, b *Booking, to Status, res *SettlementResult, stored bool) {
	from := b.Status
	b.Status = to
	b.Reference = res.ReferenceID
	b.TxHash = res.TxID
	b.UpdatedAt = now()
	if !stored {
		return
	}
	if !CanTransition(from, to) {
		s.log.Error("booking transition rejected", zap.String("booking_id", b.ID),
			zap.String("from", string(from)), zap.String("to", string(to)))
		return
	}
	ok, err := s.store.UpdateStatus(ctx, b, from)
	switch {
	case err != nil:
		s.log.Error("record booking outcome", zap.String("booking_id", b.ID),
			zap.String("status", string(to)), zap.String("tx_hash", b.TxHash), zap.Error(err))
	case !ok:
		s.log.Error("booking outcome not recorded, status changed concurrently",
			zap.String("booking_id", b.ID), zap.String("status", string(to)))
	}
}
