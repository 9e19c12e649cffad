// README: Room tiers offered for a selected hotel.
package room

import "errors"

const (
	TypeStandard = "Standard Room"
	TypeSuite    = "Suite"
)

// SuiteMultiplier prices the suite relative to the offer's total stay price.
const SuiteMultiplier = 1.5

var ErrInvalidSelection = errors.New("room selection not recognised")

// Option is one bookable tier. Price is the total stay price in the session currency.
type Option struct {
	Type  string  `json:"type"`
	Price float64 `json:"price"`
	Note  string  `json:"note,omitempty"`
}
