// README: Booking record and status definitions.
package booking

import (
	"errors"
	"time"
)

type Status string

const (
	StatusPending      Status = "pending"
	StatusSubmitted    Status = "submitted"
	StatusMock         Status = "mock"
	StatusMockFallback Status = "mock_fallback"
	StatusFailed       Status = "failed"
)

var (
	ErrBookingFailed = errors.New("booking settlement failed")
	ErrSpendLimit    = errors.New("booking exceeds spend limit")
	ErrBadRequest    = errors.New("bad booking request")
	ErrInvalidState  = errors.New("invalid booking state transition")
	ErrNotFound      = errors.New("booking not found")
)

type Booking struct {
	ID          string    `json:"id"`
	ThreadID    string    `json:"thread_id"`
	Description string    `json:"description"`
	Destination string    `json:"destination"`
	USDTotal    float64   `json:"usd_total"`
	SwapAmount  float64   `json:"swap_amount"`
	Status      Status    `json:"status"`
	Reference   string    `json:"reference"`
	TxHash      string    `json:"tx_hash"`
	Degraded    bool      `json:"degraded"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Request describes one settlement. SwapAmount is always 0 for now.
type Request struct {
	ThreadID    string
	Description string
	Destination string
	USDTotal    float64
	SwapAmount  float64
}

// AllowedTransitions represents the booking flow as code.
var AllowedTransitions = map[Status][]Status{
	StatusPending: {StatusSubmitted, StatusMock, StatusMockFallback, StatusFailed},
}

func CanTransition(from, to Status) bool {
	next, ok := AllowedTransitions[from]
	if !ok {
		return false
	}
	for _, s := range next {
		if s == to {
			return true
		}
	}
	return false
}
