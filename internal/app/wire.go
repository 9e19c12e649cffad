// README: Builds the Concierge and its collaborators from Config; shared by the API and the chat demo.
package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"concierge/internal/ai"
	"concierge/internal/config"
	"concierge/internal/infra"
	"concierge/internal/maps"
	"concierge/internal/modules/booking"
	"concierge/internal/modules/currency"
	"concierge/internal/modules/hotel"
	"concierge/internal/modules/session"
	"concierge/internal/service"
)

// App owns the Concierge plus every connection opened for it.
type App struct {
	Concierge *service.Concierge
	closers   []func()
}

// Close releases connections in reverse order of creation.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func (a *App) onClose(f func()) { a.closers = append(a.closers, f) }

func seconds(n int) time.Duration { return time.Duration(n) * time.Second }

func Build(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	a := &App{}
	fail := func(err error) (*App, error) {
		a.Close()
		return nil, err
	}

	sessions, bookings, err := a.stores(ctx, cfg)
	if err != nil {
		return fail(err)
	}
	cache, err := a.cache(ctx, cfg)
	if err != nil {
		return fail(err)
	}
	extractor, consultant, err := a.aiProvider(ctx, cfg)
	if err != nil {
		return fail(err)
	}
	inventory, err := newInventory(cfg, logger)
	if err != nil {
		return fail(err)
	}

	var settlement booking.Settlement
	if cfg.Booking.SettlementURL != "" {
		settlement = booking.NewHTTPSettlement(cfg.Booking.SettlementURL, cfg.Booking.APIKey)
	}

	var feed currency.Feed
	if cfg.Currency.FeedURL != "" {
		feed = currency.NewStablecoinFeed(cfg.Currency.FeedURL)
	}

	a.Concierge = service.NewConcierge(service.Deps{
		Sessions:          sessions,
		Extractor:         extractor,
		Consultant:        consultant,
		Hotels:            hotel.NewService(inventory, cache, cfg.Hotels, logger.Named("hotel")),
		Rates:             currency.NewService(feed, seconds(cfg.Currency.TimeoutSeconds), logger.Named("currency")),
		Bookings:          booking.NewService(bookings, settlement, cfg.Booking, logger.Named("booking")),
		RecommendedCities: cfg.Dialogue.RecommendedCities,
		AITimeout:         seconds(cfg.AI.TimeoutSeconds),
		MaxSpendUSD:       cfg.Booking.MaxSpendUSD,
		Logger:            logger.Named("concierge"),
	})
	logger.Info("concierge ready",
		zap.String("db", cfg.DB.Driver),
		zap.String("cache", cfg.Cache.Backend),
		zap.String("ai", cfg.AI.Provider),
		zap.Bool("fixture_inventory", cfg.Hotels.Fixture || cfg.Hotels.RapidAPIKey == ""),
		zap.Bool("live_settlement", settlement != nil),
	)
	return a, nil
}

func (a *App) stores(ctx context.Context, cfg config.Config) (session.Store, booking.Store, error) {
	switch cfg.DB.Driver {
	case "postgres":
		pool, err := infra.NewDB(ctx, cfg.DB.DSN)
		if err != nil {
			return nil, nil, err
		}
		a.onClose(pool.Close)
		sessions, bookings := session.NewPGStore(pool), booking.NewPGStore(pool)
		if err := sessions.Migrate(ctx); err != nil {
			return nil, nil, fmt.Errorf("migrate sessions: %w", err)
		}
		if err := bookings.Migrate(ctx); err != nil {
			return nil, nil, fmt.Errorf("migrate bookings: %w", err)
		}
		return sessions, bookings, nil
	case "sqlite":
		db, err := infra.NewSQLite(cfg.DB.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		a.onClose(func() { _ = db.Close() })
		sessions, bookings := session.NewSQLiteStore(db), booking.NewSQLiteStore(db)
		if err := sessions.Migrate(ctx); err != nil {
			return nil, nil, fmt.Errorf("migrate sessions: %w", err)
		}
		if err := bookings.Migrate(ctx); err != nil {
			return nil, nil, fmt.Errorf("migrate bookings: %w", err)
		}
		return sessions, bookings, nil
	default:
		return session.NewMemoryStore(), booking.NewMemoryStore(), nil
	}
}

func (a *App) cache(ctx context.Context, cfg config.Config) (hotel.Cache, error) {
	ttl := seconds(cfg.Cache.TTLSeconds)
	if cfg.Cache.Backend != "redis" {
		return hotel.NewMemoryCache(ttl), nil
	}
	rdb, err := infra.NewRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, err
	}
	a.onClose(func() { _ = rdb.Close() })
	return hotel.NewRedisCache(rdb, ttl), nil
}

func (a *App) aiProvider(ctx context.Context, cfg config.Config) (ai.IntentExtractor, ai.Consultant, error) {
	switch cfg.AI.Provider {
	case "gemini":
		p, err := ai.NewGeminiProvider(ctx, cfg.AI.GeminiKey, cfg.AI.GeminiModel)
		if err != nil {
			return nil, nil, err
		}
		a.onClose(p.Close)
		return p, p, nil
	case "openai":
		p := ai.NewOpenAIProvider(cfg.AI.OpenAIKey, cfg.AI.OpenAIModel)
		return p, p, nil
	default:
		return ai.RuleExtractor{}, ai.TemplateConsultant{}, nil
	}
}

func newInventory(cfg config.Config, logger *zap.Logger) (hotel.Inventory, error) {
	if cfg.Hotels.Fixture || cfg.Hotels.RapidAPIKey == "" {
		return hotel.FixtureInventory{}, nil
	}
	var geocoder hotel.Geocoder
	if cfg.Maps.APIKey != "" {
		g, err := maps.NewGeocodeService(cfg.Maps.APIKey)
		if err != nil {
			return nil, fmt.Errorf("geocoder: %w", err)
		}
		geocoder = g
	}
	return hotel.NewRapidAPIInventory(cfg.Hotels, geocoder, logger.Named("inventory")), nil
}
