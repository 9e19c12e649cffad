package currency

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"
)

// stablecoinID is the price-feed id of the USD-pegged coin quoted in the target currency.
const stablecoinID = "usd-coin"

// StablecoinFeed reads the price of one USDC in the target currency from a
// CoinGecko-compatible simple price endpoint and inverts it.
type StablecoinFeed struct {
	endpoint string
	client   *http.Client
}

func NewStablecoinFeed(endpoint string) *StablecoinFeed {
	return &StablecoinFeed{endpoint: endpoint, client: &http.Client{}}
}

func (f *StablecoinFeed) Quote(ctx context.Context, code string) (float64, error) {
	vs := strings.ToLower(code)
	q := url.Values{"ids": {stablecoinID}, "vs_currencies": {vs}}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return 0, fmt.Errorf("price feed: build request: %w", err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("price feed: do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return 0, fmt.Errorf("price feed: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("price feed: status %d", resp.StatusCode)
	}

	price := gjson.GetBytes(body, stablecoinID+"."+vs)
	if !price.Exists() || price.Type != gjson.Number {
		return 0, fmt.Errorf("price feed: no %s quote in response", code)
	}
	p := price.Float()
	if p <= 0 || math.IsNaN(p) || math.IsInf(p, 0) {
		return 0, fmt.Errorf("price feed: invalid %s quote %v", code, p)
	}
	return 1 / p, nil
}
