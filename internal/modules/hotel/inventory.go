package hotel

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"concierge/internal/config"
)

// RapidAPIInventory searches Booking.com availability through RapidAPI.
type RapidAPIInventory struct {
	baseURL  string
	host     string
	apiKey   string
	client   *http.Client
	geocoder Geocoder
	log      *zap.Logger
}

// NewRapidAPIInventory builds the client. geocoder may be nil, in which case the
// city is resolved through the locations endpoint.
func NewRapidAPIInventory(cfg config.HotelsConfig, geocoder Geocoder, logger *zap.Logger) *RapidAPIInventory {
	return &RapidAPIInventory{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		host:     cfg.RapidAPIHost,
		apiKey:   cfg.RapidAPIKey,
		client:   &http.Client{},
		geocoder: geocoder,
		log:      logger,
	}
}

func (inv *RapidAPIInventory) Search(ctx context.Context, q InventoryQuery) ([]RawOffer, error) {
	rooms := q.Rooms
	if rooms < 1 {
		rooms = 1
	}
	currency := q.Currency
	if currency == "" {
		currency = "USD"
	}
	params := url.Values{
		"checkin_date":       {q.CheckIn},
		"checkout_date":      {q.CheckOut},
		"adults_number":      {strconv.Itoa(q.Guests)},
		"room_number":        {strconv.Itoa(rooms)},
		"units":              {"metric"},
		"filter_by_currency": {currency},
		"order_by":           {"price"},
		"locale":             {"en-gb"},
	}

	endpoint := "/v1/hotels/search"
	located := false
	if inv.geocoder != nil {
		lat, lng, err := inv.geocoder.Coordinates(ctx, q.City)
		if err == nil {
			params.Set("latitude", strconv.FormatFloat(lat, 'f', 6, 64))
			params.Set("longitude", strconv.FormatFloat(lng, 'f', 6, 64))
			endpoint = "/v1/hotels/search-by-coordinates"
			located = true
		} else {
			inv.log.Warn("geocode failed, using locations lookup", zap.String("city", q.City), zap.Error(err))
		}
	}
	if !located {
		destID, destType, err := inv.locate(ctx, q.City)
		if err != nil {
			return nil, err
		}
		params.Set("dest_id", destID)
		params.Set("dest_type", destType)
	}

	body, err := inv.get(ctx, endpoint, params)
	if err != nil {
		return nil, err
	}
	return parseSearchResults(body), nil
}

func (inv *RapidAPIInventory) locate(ctx context.Context, city string) (id, kind string, err error) {
	body, err := inv.get(ctx, "/v1/hotels/locations", url.Values{"name": {city}, "locale": {"en-gb"}})
	if err != nil {
		return "", "", err
	}
	first := gjson.GetBytes(body, "0")
	if !first.Exists() || first.Get("dest_id").String() == "" {
		return "", "", fmt.Errorf("rapidapi: no location for %q", city)
	}
	return first.Get("dest_id").String(), first.Get("dest_type").String(), nil
}

func (inv *RapidAPIInventory) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, inv.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("rapidapi: build request: %w", err)
	}
	req.Header.Set("X-RapidAPI-Key", inv.apiKey)
	req.Header.Set("X-RapidAPI-Host", inv.host)

	resp, err := inv.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rapidapi: do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, fmt.Errorf("rapidapi: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rapidapi: %s returned %d", path, resp.StatusCode)
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("rapidapi: %s returned invalid JSON", path)
	}
	return body, nil
}

func parseSearchResults(body []byte) []RawOffer {
	results := gjson.GetBytes(body, "result").Array()
	offers := make([]RawOffer, 0, len(results))
	for _, r := range results {
		price := r.Get("composite_price_breakdown.gross_amount.value")
		if !price.Exists() || price.Float() == 0 {
			price = r.Get("min_total_price")
		}
		city := r.Get("city_trans").String()
		if city == "" {
			city = r.Get("city").String()
		}
		offers = append(offers, RawOffer{
			Name:        r.Get("hotel_name").String(),
			TotalPrice:  price.String(),
			StarClass:   r.Get("class").Float(),
			ReviewScore: r.Get("review_score").Float(),
			CityLabel:   city,
		})
	}
	return offers
}
