package maps

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"googlemaps.github.io/maps"
)

var ErrNoResults = errors.New("no geocoding results")

// Location is a geocoded city.
type Location struct {
	Address string
	Lat     float64
	Lng     float64
}

// GeocodeService resolves city names with the Google Geocoding API. Results are memoised
// per city for the life of the process.
type GeocodeService struct {
	client *maps.Client

	mu    sync.RWMutex
	known map[string]Location
}

// NewGeocodeService creates a GeocodeService with the given API key. Extra client options
// (base URL, HTTP client) are passed through to the maps client.
func NewGeocodeService(apiKey string, opts ...maps.ClientOption) (*GeocodeService, error) {
	client, err := maps.NewClient(append([]maps.ClientOption{maps.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &GeocodeService{client: client, known: make(map[string]Location)}, nil
}

// Locate returns the first geocoding result for city.
func (s *GeocodeService) Locate(ctx context.Context, city string) (*Location, error) {
	key := strings.ToLower(strings.TrimSpace(city))
	if key == "" {
		return nil, ErrNoResults
	}
	s.mu.RLock()
	loc, ok := s.known[key]
	s.mu.RUnlock()
	if ok {
		return &loc, nil
	}

	results, err := s.client.Geocode(ctx, &maps.GeocodingRequest{Address: city})
	if err != nil {
		return nil, fmt.Errorf("maps api error: %w", err)
	}
	if len(results) == 0 {
		return nil, ErrNoResults
	}
	r := results[0]
	loc = Location{Address: r.FormattedAddress, Lat: r.Geometry.Location.Lat, Lng: r.Geometry.Location.Lng}

	s.mu.Lock()
	s.known[key] = loc
	s.mu.Unlock()
	return &loc, nil
}

// Coordinates adapts Locate to the hotel inventory's geocoder.
func (s *GeocodeService) Coordinates(ctx context.Context, city string) (float64, float64, error) {
	loc, err := s.Locate(ctx, city)
	if err != nil {
		return 0, 0, err
	}
	return loc.Lat, loc.Lng, nil
}
