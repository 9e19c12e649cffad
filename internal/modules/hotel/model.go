// README: Hotel offers, search queries and result pages.
package hotel

import (
	"context"
	"errors"
)

// PageSize is the number of offers shown per page; the cursor always moves in steps of PageSize.
const PageSize = 5

var (
	ErrInventoryUnavailable = errors.New("hotel inventory unavailable")
	ErrBadQuery             = errors.New("bad hotel query")
)

// RawOffer is an offer as returned by the inventory. TotalPrice is kept as text because
// upstream payloads are inconsistent; unparseable prices are dropped during normalisation.
type RawOffer struct {
	Name        string  `json:"name"`
	TotalPrice  string  `json:"total_price"`
	StarClass   float64 `json:"star_class"`
	ReviewScore float64 `json:"review_score"`
	CityLabel   string  `json:"city_label"`
}

// Offer is a normalised, rankable offer.
type Offer struct {
	Name         string  `json:"name"`
	TotalPrice   float64 `json:"total_price"`
	NightlyPrice float64 `json:"nightly_price"`
	StarClass    float64 `json:"star_class"`
	ReviewScore  float64 `json:"review_score"`
	CityLabel    string  `json:"city_label"`
}

type InventoryQuery struct {
	City     string
	CheckIn  string
	CheckOut string
	Guests   int
	Rooms    int
	Currency string
}

// Inventory is the external hotel availability service.
type Inventory interface {
	Search(ctx context.Context, q InventoryQuery) ([]RawOffer, error)
}

// Cache memoises raw inventory results per query shape.
type Cache interface {
	Get(ctx context.Context, key string) ([]RawOffer, bool, error)
	Set(ctx context.Context, key string, offers []RawOffer) error
}

// Geocoder resolves a city name to coordinates.
type Geocoder interface {
	Coordinates(ctx context.Context, city string) (lat, lng float64, err error)
}

type Query struct {
	City     string
	CheckIn  string
	CheckOut string
	Guests   int
	Rooms    int
	Currency string
	Symbol   string
	Budget   float64
	Cursor   int
}

// Page is one slice of the ranked result list plus the listing text shown to the user.
type Page struct {
	Offers []Offer
	// Cursor is the cursor the page was taken at; it is reset to 0 when the list was exhausted.
	Cursor        int
	Total         int
	Exhausted     bool
	MatchedBudget bool
	Unavailable   bool
	Message       string
}
