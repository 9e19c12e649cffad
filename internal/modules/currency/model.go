// README: Currency glyphs and fallback USD rates.
package currency

import (
	"context"
	"errors"
)

var ErrRateUnavailable = errors.New("currency rate unavailable")

// Feed quotes a live multiplier converting one unit of code into USD.
type Feed interface {
	Quote(ctx context.Context, code string) (float64, error)
}

var symbols = map[string]string{
	"USD": "$", "USDC": "$", "EUR": "€", "GBP": "£", "JPY": "¥", "CNY": "¥",
	"INR": "₹", "KRW": "₩", "THB": "฿", "TRY": "₺", "AUD": "A$", "CAD": "C$",
	"CHF": "CHF ", "SGD": "S$", "MXN": "MX$", "BRL": "R$", "ZAR": "R", "AED": "AED ",
}

// fallbackRates are used when the live feed fails; values are USD per unit.
var fallbackRates = map[string]float64{
	"EUR": 1.08,
	"GBP": 1.27,
	"JPY": 0.0067,
	"CNY": 0.14,
	"INR": 0.012,
	"KRW": 0.00075,
	"THB": 0.028,
	"TRY": 0.031,
	"AUD": 0.66,
	"CAD": 0.74,
	"CHF": 1.13,
	"SGD": 0.74,
	"MXN": 0.058,
	"BRL": 0.20,
	"ZAR": 0.055,
	"AED": 0.27,
}

// Symbol returns the display glyph for code, "$" when unknown.
func Symbol(code string) string {
	if s, ok := symbols[code]; ok {
		return s
	}
	return "$"
}

// FallbackRate returns the static rate for code, 1.0 when unknown.
func FallbackRate(code string) float64 {
	if r, ok := fallbackRates[code]; ok {
		return r
	}
	return 1.0
}
