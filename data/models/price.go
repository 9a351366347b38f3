package models

import (
	"slices"
	"time"
)

// PricePoint is one adjusted close for a symbol on a calendar date
type PricePoint struct {
	Symbol        string    `db:"symbol"`
	Date          time.Time `db:"date"`
	AdjustedClose float64   `db:"adj_close"`
}

// PriceSeries maps a symbol to its date ordered prices
type PriceSeries map[string][]PricePoint

type SymbolMetadata struct {
	Id            int32     `db:"id"`
	Symbol        string    `db:"symbol"`
	LastRefreshed time.Time `db:"last_refreshed"`
}

// DedupeLastWriteWins collapses points sharing a calendar date, the later
// point in the slice replaces the earlier one. Output is sorted by date.
func DedupeLastWriteWins(points []PricePoint) []PricePoint {
	if len(points) == 0 {
		return []PricePoint{}
	}

	latest := make(map[time.Time]PricePoint, len(points))
	for _, p := range points {
		latest[dateOnly(p.Date)] = p
	}

	res := make([]PricePoint, 0, len(latest))
	for d, p := range latest {
		p.Date = d
		res = append(res, p)
	}
	slices.SortFunc(res, func(a, b PricePoint) int {
		return a.Date.Compare(b.Date)
	})
	return res
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
