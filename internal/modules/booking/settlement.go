package booking

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"io"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

type SettlementRequest struct {
	Description string  `json:"description"`
	USDTotal    float64 `json:"amount_usd"`
	Destination string  `json:"destination"`
	SwapAmount  float64 `json:"swap_amount"`
	ThreadID    string  `json:"thread_id,omitempty"`
}

type SettlementResult struct {
	ReferenceID string
	TxID        string
}

// Settlement commits a payment for a booking.
type Settlement interface {
	Submit(ctx context.Context, req SettlementRequest) (*SettlementResult, error)
}

// MockSettlement returns deterministic transaction ids without touching any backend.
type MockSettlement struct{}

func (MockSettlement) Submit(_ context.Context, req SettlementRequest) (*SettlementResult, error) {
	tx := MockTxID(req.Description, req.USDTotal, req.Destination)
	return &SettlementResult{ReferenceID: ReferenceFor(tx), TxID: tx}, nil
}

// MockTxID hashes the booking description, total and destination into a stable fake tx id.
func MockTxID(description string, usdTotal float64, destination string) string {
	h := fnv.New64a()
	fmt.Fprintf(h, "%s|%.6f|%s", description, usdTotal, destination)
	return fmt.Sprintf("0xMOCK_%016x", h.Sum64())
}

// ReferenceFor derives the user-facing reference from the last 8 characters of a tx id.
func ReferenceFor(tx string) string {
	if len(tx) > 8 {
		tx = tx[len(tx)-8:]
	}
	return "WRD-" + strings.ToUpper(tx)
}

// HTTPSettlement posts bookings as JSON to a settlement backend.
type HTTPSettlement struct {
	url    string
	apiKey string
	client *http.Client
}

func NewHTTPSettlement(url, apiKey string) *HTTPSettlement {
	return &HTTPSettlement{url: url, apiKey: apiKey, client: &http.Client{}}
}

func (s *HTTPSettlement) Submit(ctx context.Context, req SettlementRequest) (*SettlementResult, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("settlement: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("settlement: do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("settlement: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("settlement: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	tx := gjson.GetBytes(body, "tx_hash").String()
	if tx == "" {
		return nil, fmt.Errorf("settlement: response has no tx_hash")
	}
	ref := gjson.GetBytes(body, "reference_id").String()
	if ref == "" {
		ref = ReferenceFor(tx)
	}
	return &SettlementResult{ReferenceID: ref, TxID: tx}, nil
}
