package core

import (
	"testing"
	"time"

	dm "driftmon/data/models"
)

var scenarioStart = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func day(i int) time.Time {
	return scenarioStart.AddDate(0, 0, i)
}

func series(symbol string, closes ...float64) []dm.PricePoint {
	res := make([]dm.PricePoint, len(closes))
	for i, c := range closes {
		res[i] = dm.PricePoint{Symbol: symbol, Date: day(i), AdjustedClose: c}
	}
	return res
}

// scenarioPrices is the five day fund / benchmark pair used across the drift tests
func scenarioPrices() dm.PriceSeries {
	return dm.PriceSeries{
		"FUND": series("FUND", 100, 101, 102, 103, 104),
		"BM":   series("BM", 100, 100, 101, 103, 103),
	}
}

func scenarioReturns(t *testing.T) *Table {
	t.Helper()
	aligned, ok := Align(scenarioPrices(), "FUND", "BM")
	if !ok {
		t.Fatal("scenario prices did not align")
	}
	returns, ok := Returns(aligned)
	if !ok {
		t.Fatal("scenario returns absent")
	}
	return returns
}
