// README: Hotel search service: cache lookup, inventory fallback, ranking and pagination.
package hotel

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"concierge/internal/config"
)

type Service struct {
	inventory        Inventory
	cache            Cache
	flight           singleflight.Group
	timeout          time.Duration
	premiumThreshold float64
	fallbackCount    int
	log              *zap.Logger
}

func NewService(inventory Inventory, cache Cache, cfg config.HotelsConfig, logger *zap.Logger) *Service {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	fallback := cfg.FallbackCount
	if fallback <= 0 {
		fallback = 20
	}
	return &Service{
		inventory:        inventory,
		cache:            cache,
		timeout:          timeout,
		premiumThreshold: cfg.PremiumThreshold,
		fallbackCount:    fallback,
		log:              logger,
	}
}

// Search returns the page at q.Cursor. Inventory failures are absorbed: the page is
// empty and flagged Unavailable.
func (s *Service) Search(ctx context.Context, q Query) (*Page, error) {
	if strings.TrimSpace(q.City) == "" || q.CheckIn == "" || q.Guests <= 0 {
		return nil, ErrBadQuery
	}
	if q.Cursor < 0 || q.Cursor%PageSize != 0 {
		q.Cursor = 0
	}

	page := &Page{Cursor: q.Cursor}
	raws, err := s.fetch(ctx, q)
	if err != nil {
		s.log.Warn("hotel search failed", zap.String("city", q.City), zap.Error(err))
		page.Unavailable = true
	}

	ranked, matched := Rank(Normalize(raws, q.CheckIn, q.CheckOut), q.Budget, s.premiumThreshold, s.fallbackCount)
	page.Total = len(ranked)
	page.MatchedBudget = matched
	page.Offers = PageOf(ranked, q.Cursor)

	if len(page.Offers) == 0 && q.Cursor > 0 {
		page.Exhausted = true
		page.Cursor = 0
	}
	page.Message = listingMessage(q, page)
	return page, nil
}

func (s *Service) fetch(ctx context.Context, q Query) ([]RawOffer, error) {
	key := CacheKey(q.City, q.CheckIn, q.Guests, q.Currency)

	offers, hit, err := s.cache.Get(ctx, key)
	if err != nil {
		s.log.Warn("hotel cache read failed", zap.Error(err))
	} else if hit {
		return offers, nil
	}

	v, err, _ := s.flight.Do(key, func() (any, error) {
		callCtx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()

		raws, err := s.inventory.Search(callCtx, InventoryQuery{
			City:     q.City,
			CheckIn:  q.CheckIn,
			CheckOut: q.CheckOut,
			Guests:   q.Guests,
			Rooms:    q.Rooms,
			Currency: q.Currency,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInventoryUnavailable, err)
		}
		if err := s.cache.Set(ctx, key, raws); err != nil {
			s.log.Warn("hotel cache write failed", zap.Error(err))
		}
		return raws, nil
	})
	if err != nil {
		return nil, err
	}
	raws, ok := v.([]RawOffer)
	if !ok {
		return nil, errors.New("hotel search: unexpected result type")
	}
	return raws, nil
}
