package hotel

import (
	"context"
	"fmt"
	"hash/fnv"
	"strconv"
	"strings"
)

// FixtureInventory serves deterministic offers without network access. It backs the
// chat demo and local runs without a RapidAPI key.
type FixtureInventory struct {
	// Offers overrides generated offers per lower-cased city.
	Offers map[string][]RawOffer
}

var fixtureNames = []string{
	"Grand Hotel", "Old Town Boutique", "Harbour View Inn", "Central Suites",
	"Riverside Lodge", "Park Residence", "Sunset Hostel", "Royal Palace Hotel",
}

func (f FixtureInventory) Search(_ context.Context, q InventoryQuery) ([]RawOffer, error) {
	if offers, ok := f.Offers[strings.ToLower(q.City)]; ok {
		return append([]RawOffer(nil), offers...), nil
	}

	nights := float64(Nights(q.CheckIn, q.CheckOut))
	guests := q.Guests
	if guests < 1 {
		guests = 1
	}
	out := make([]RawOffer, 0, len(fixtureNames))
	for _, name := range fixtureNames {
		h := fnv.New32a()
		_, _ = fmt.Fprintf(h, "%s|%s", strings.ToLower(q.City), name)
		seed := h.Sum32()
		stars := float64(2 + seed%4)
		nightly := 35 + float64(seed%90) + stars*20 + float64(guests-1)*15
		out = append(out, RawOffer{
			Name:        fmt.Sprintf("%s %s", q.City, name),
			TotalPrice:  strconv.FormatFloat(nightly*nights, 'f', 2, 64),
			StarClass:   stars,
			ReviewScore: 6 + float64((seed>>8)%40)/10,
			CityLabel:   q.City,
		})
	}
	return out, nil
}
