package currency

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

type Service struct {
	feed    Feed
	timeout time.Duration
	log     *zap.Logger
}

// NewService builds the converter. feed may be nil, in which case only the static table is used.
func NewService(feed Feed, timeout time.Duration, logger *zap.Logger) *Service {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Service{feed: feed, timeout: timeout, log: logger}
}

// Rate returns the multiplier converting one unit of code into USD. It never fails:
// feed errors fall back to the static table and unknown codes to 1.0.
func (s *Service) Rate(ctx context.Context, code string) float64 {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" || code == "USD" || code == "USDC" {
		return 1.0
	}
	if s.feed != nil {
		rate, err := s.quote(ctx, code)
		if err == nil {
			return rate
		}
		s.log.Info("live rate unavailable, using fallback table", zap.String("currency", code), zap.Error(err))
	}
	return FallbackRate(code)
}

func (s *Service) quote(ctx context.Context, code string) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	rate, err := s.feed.Quote(ctx, code)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRateUnavailable, err)
	}
	return rate, nil
}

// ToUSD converts amount in code into USD using Rate.
func (s *Service) ToUSD(ctx context.Context, amount float64, code string) (usd, rate float64) {
	rate = s.Rate(ctx, code)
	return amount * rate, rate
}
