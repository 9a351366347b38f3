package core

import (
	"slices"
	"time"

	ex "driftmon/data/extensions"
	dm "driftmon/data/models"
)

const (
	FundColumn               = "fund"
	BenchmarkColumn          = "benchmark"
	FundReturnColumn         = "fund_ret"
	BenchmarkReturnColumn    = "bench_ret"
	TrackingDifferenceColumn = "td"
)

// Align inner joins the fund and benchmark price series on date. The result is absent
// when either symbol has no prices or the two series share no dates.
func Align(prices dm.PriceSeries, fund, benchmark string) (*Table, bool) {
	fundPrices := byDate(prices[fund])
	benchmarkPrices := byDate(prices[benchmark])
	if len(fundPrices) == 0 || len(benchmarkPrices) == 0 {
		return nil, false
	}

	dates := make([]time.Time, 0, ex.Min(len(fundPrices), len(benchmarkPrices)))
	for d := range fundPrices {
		if _, ok := benchmarkPrices[d]; ok {
			dates = append(dates, d)
		}
	}
	if len(dates) == 0 {
		return nil, false
	}
	slices.SortFunc(dates, func(a, b time.Time) int { return a.Compare(b) })

	fundValues := make([]float64, len(dates))
	benchmarkValues := make([]float64, len(dates))
	for i, d := range dates {
		fundValues[i] = fundPrices[d]
		benchmarkValues[i] = benchmarkPrices[d]
	}

	table, err := NewTable(dates)
	if err != nil {
		return nil, false
	}
	_ = table.SetColumn(FundColumn, fundValues)
	_ = table.SetColumn(BenchmarkColumn, benchmarkValues)
	return table, true
}

// Returns converts aligned prices into simple period returns. The first row has no
// predecessor and is reported as 0. Fewer than two rows is absent.
func Returns(aligned *Table) (*Table, bool) {
	if aligned.Len() < 2 {
		return nil, false
	}

	fundPrices, ok := aligned.Column(FundColumn)
	if !ok {
		return nil, false
	}
	benchmarkPrices, ok := aligned.Column(BenchmarkColumn)
	if !ok {
		return nil, false
	}

	table, err := NewTable(aligned.Dates())
	if err != nil {
		return nil, false
	}
	_ = table.SetColumn(FundReturnColumn, pctChange(fundPrices))
	_ = table.SetColumn(BenchmarkReturnColumn, pctChange(benchmarkPrices))
	return table, true
}

// pctChange returns r[i] = p[i]/p[i-1] - 1, with r[0] = 0 and 0 where the predecessor is 0
func pctChange(prices []float64) []float64 {
	res := make([]float64, len(prices))
	for i := 1; i < len(prices); i++ {
		if prices[i-1] == 0 {
			continue
		}
		res[i] = prices[i]/prices[i-1] - 1
	}
	return res
}

// last write wins for duplicate dates
func byDate(points []dm.PricePoint) map[time.Time]float64 {
	res := make(map[time.Time]float64, len(points))
	for _, p := range points {
		res[ex.DateOf(p.Date)] = p.AdjustedClose
	}
	return res
}
