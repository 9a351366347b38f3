package extensions

import (
	"testing"
	"time"
)

func TestDateOfDropsClockAndZone(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tz database unavailable: %v", err)
	}

	late := time.Date(2024, time.March, 8, 23, 30, 0, 0, ny)
	AssertAreEqual(t, "date", time.Date(2024, time.March, 8, 0, 0, 0, 0, time.UTC), DateOf(late))
	AssertAreEqual(t, "same day", true, SameDay(late, time.Date(2024, time.March, 8, 1, 0, 0, 0, time.UTC)))
}

func TestFilterSingle(t *testing.T) {
	keys := []string{"1. Information", "2. Symbol", "3. Last Refreshed"}

	res, err := FilterSingle(keys, func(s string) bool { return s == "2. Symbol" })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	AssertAreEqual(t, "key", "2. Symbol", res)

	if _, err := FilterSingle(keys, func(s string) bool { return true }); err == nil {
		t.Fatalf("expected an error when more than one element matches")
	}
}

func TestNormalizeSymbol(t *testing.T) {
	AssertAreEqual(t, "symbol", "SPY", NormalizeSymbol("  spy "))
	AssertAreEqual(t, "index", "^GSPC", NormalizeSymbol("^gspc"))
}
