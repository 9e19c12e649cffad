package config

import (
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTP.Addr != ":8080" {
		t.Errorf("http addr = %q", cfg.HTTP.Addr)
	}
	if cfg.Cache.TTLSeconds != 3600 {
		t.Errorf("cache ttl = %d, want 3600", cfg.Cache.TTLSeconds)
	}
	if cfg.Hotels.PremiumThreshold != 200 {
		t.Errorf("premium threshold = %v, want 200", cfg.Hotels.PremiumThreshold)
	}
	if cfg.Booking.MaxSpendUSD != 500 {
		t.Errorf("max spend = %v, want 500", cfg.Booking.MaxSpendUSD)
	}
	if cfg.AI.Provider != "rules" || cfg.DB.Driver != "memory" {
		t.Errorf("unexpected provider/driver %q/%q", cfg.AI.Provider, cfg.DB.Driver)
	}
	if len(cfg.Dialogue.RecommendedCities) != len(DefaultRecommendedCities) {
		t.Errorf("recommended cities = %v", cfg.Dialogue.RecommendedCities)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("CONCIERGE_HTTP_ADDR", ":9090")
	t.Setenv("CONCIERGE_HOTELS_PREMIUM_THRESHOLD", "350")
	t.Setenv("CONCIERGE_CACHE_TTL_SECONDS", "60")
	t.Setenv("CONCIERGE_DIALOGUE_RECOMMENDED_CITIES", "Porto,Split")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTP.Addr != ":9090" {
		t.Errorf("http addr = %q", cfg.HTTP.Addr)
	}
	if cfg.Hotels.PremiumThreshold != 350 {
		t.Errorf("premium threshold = %v", cfg.Hotels.PremiumThreshold)
	}
	if cfg.Cache.TTLSeconds != 60 {
		t.Errorf("ttl = %d", cfg.Cache.TTLSeconds)
	}
	if len(cfg.Dialogue.RecommendedCities) != 2 || cfg.Dialogue.RecommendedCities[1] != "Split" {
		t.Errorf("recommended cities = %v", cfg.Dialogue.RecommendedCities)
	}
}

func TestLoadValidation(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
	}{
		{"unknown driver", map[string]string{"CONCIERGE_DB_DRIVER": "mysql"}},
		{"unknown cache", map[string]string{"CONCIERGE_CACHE_BACKEND": "memcached"}},
		{"gemini without key", map[string]string{"CONCIERGE_AI_PROVIDER": "gemini"}},
		{"openai without key", map[string]string{"CONCIERGE_AI_PROVIDER": "openai"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
