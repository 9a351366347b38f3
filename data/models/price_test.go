package models

import (
	"testing"
	"time"
)

func TestDedupeLastWriteWins(t *testing.T) {
	d1 := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)

	points := []PricePoint{
		{Symbol: "SPY", Date: d2, AdjustedClose: 101},
		{Symbol: "SPY", Date: d1, AdjustedClose: 100},
		{Symbol: "SPY", Date: d2.Add(15 * time.Hour), AdjustedClose: 102},
	}

	res := DedupeLastWriteWins(points)
	if len(res) != 2 {
		t.Fatalf("expected 2 points, got %d", len(res))
	}
	if !res[0].Date.Equal(d1) || res[0].AdjustedClose != 100 {
		t.Errorf("unexpected first point %+v", res[0])
	}
	if !res[1].Date.Equal(d2) || res[1].AdjustedClose != 102 {
		t.Errorf("expected the later write for %s to win, got %+v", d2, res[1])
	}
}

func TestDedupeLastWriteWinsEmpty(t *testing.T) {
	if res := DedupeLastWriteWins(nil); res == nil || len(res) != 0 {
		t.Fatalf("expected empty non nil slice, got %v", res)
	}
}
