package hotel

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Nights returns the number of nights between two ISO dates, at least 1.
func Nights(checkIn, checkOut string) int {
	in, err1 := time.Parse(time.DateOnly, checkIn)
	out, err2 := time.Parse(time.DateOnly, checkOut)
	if err1 != nil || err2 != nil {
		return 1
	}
	n := int(out.Sub(in).Hours() / 24)
	if n < 1 {
		return 1
	}
	return n
}

// Normalize parses prices and computes nightly rates. Offers with a zero, negative
// or unparseable total are discarded.
func Normalize(raws []RawOffer, checkIn, checkOut string) []Offer {
	nights := float64(Nights(checkIn, checkOut))
	out := make([]Offer, 0, len(raws))
	for _, r := range raws {
		total, err := strconv.ParseFloat(strings.TrimSpace(r.TotalPrice), 64)
		if err != nil || total <= 0 || math.IsNaN(total) || math.IsInf(total, 0) {
			continue
		}
		out = append(out, Offer{
			Name:         r.Name,
			TotalPrice:   total,
			NightlyPrice: total / nights,
			StarClass:    r.StarClass,
			ReviewScore:  r.ReviewScore,
			CityLabel:    r.CityLabel,
		})
	}
	return out
}

// Rank filters offers by total price against budget and orders them. When no offer fits,
// the fallbackCount cheapest offers by nightly price are returned instead and matched is false.
// Above premiumThreshold the order is (stars, nightly) descending, otherwise ascending.
func Rank(offers []Offer, budget, premiumThreshold float64, fallbackCount int) (ranked []Offer, matched bool) {
	for _, o := range offers {
		if o.TotalPrice <= budget {
			ranked = append(ranked, o)
		}
	}

	if len(ranked) == 0 {
		ranked = append([]Offer(nil), offers...)
		sort.SliceStable(ranked, func(i, j int) bool {
			return ranked[i].NightlyPrice < ranked[j].NightlyPrice
		})
		if len(ranked) > fallbackCount {
			ranked = ranked[:fallbackCount]
		}
		return ranked, false
	}

	premium := budget > premiumThreshold
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.StarClass != b.StarClass {
			if premium {
				return a.StarClass > b.StarClass
			}
			return a.StarClass < b.StarClass
		}
		if premium {
			return a.NightlyPrice > b.NightlyPrice
		}
		return a.NightlyPrice < b.NightlyPrice
	})
	return ranked, true
}

// PageOf returns ranked[cursor : cursor+PageSize], clamped to the list.
func PageOf(ranked []Offer, cursor int) []Offer {
	if cursor < 0 || cursor >= len(ranked) {
		return nil
	}
	end := cursor + PageSize
	if end > len(ranked) {
		end = len(ranked)
	}
	return append([]Offer(nil), ranked[cursor:end]...)
}
