package maps

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"googlemaps.github.io/maps"
)

func TestGeocodeServiceLocate(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("address") == "Nowhere" {
			_, _ = w.Write([]byte(`{"results":[],"status":"ZERO_RESULTS"}`))
			return
		}
		_, _ = w.Write([]byte(`{"results":[{"formatted_address":"Kotor, Montenegro","geometry":{"location":{"lat":42.4247,"lng":18.7712}}}],"status":"OK"}`))
	}))
	defer srv.Close()

	svc, err := NewGeocodeService("test-key", maps.WithBaseURL(srv.URL))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	ctx := context.Background()

	lat, lng, err := svc.Coordinates(ctx, "Kotor")
	if err != nil {
		t.Fatalf("coordinates: %v", err)
	}
	if lat != 42.4247 || lng != 18.7712 {
		t.Fatalf("got %v,%v", lat, lng)
	}
	if _, _, err := svc.Coordinates(ctx, " kotor "); err != nil {
		t.Fatalf("cached lookup: %v", err)
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Fatalf("expected one upstream call, got %d", calls)
	}

	if _, err := svc.Locate(ctx, "Nowhere"); err == nil {
		t.Fatal("expected error for zero results")
	}
	if _, err := svc.Locate(ctx, "  "); !errors.Is(err, ErrNoResults) {
		t.Fatalf("blank city err = %v", err)
	}
}
