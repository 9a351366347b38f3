package core

import (
	"errors"
	"fmt"

	"github.com/guregu/null/v6"
)

var (
	ErrInvalidWindow = errors.New("window must be a positive number of observations")
	ErrMissingSymbol = errors.New("fund and benchmark symbols are required")
)

// DriftAnalysis is the tracking difference series of a fund against its benchmark
// plus the rolling statistics as of the last row.
type DriftAnalysis struct {
	Returns     *Table // fund_ret, bench_ret, td
	Window      int
	Count       int
	TDMeanBps   null.Float
	TEBps       null.Float
	LatestTDBps null.Float
}

// AnalyzeDrift adds the tracking difference column to returns and evaluates the rolling
// mean (td_mean_bps) and sample deviation (te_bps) over the trailing window at the last row.
// A nil or empty table yields an analysis with no rows and every statistic absent.
// The input table is not modified.
func AnalyzeDrift(returns *Table, window int) (*DriftAnalysis, error) {
	if window <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidWindow, window)
	}

	analysis := &DriftAnalysis{Window: window}
	if returns.Len() == 0 {
		return analysis, nil
	}

	fundReturns, ok := returns.Column(FundReturnColumn)
	if !ok {
		return nil, fmt.Errorf("return table is missing column %s", FundReturnColumn)
	}
	benchmarkReturns, ok := returns.Column(BenchmarkReturnColumn)
	if !ok {
		return nil, fmt.Errorf("return table is missing column %s", BenchmarkReturnColumn)
	}

	n := returns.Len()
	td := make([]float64, n)
	tdBps := make([]float64, n)
	for i := range n {
		td[i] = fundReturns[i] - benchmarkReturns[i]
		tdBps[i] = td[i] * BasisPoints
	}

	out := returns.Clone()
	if err := out.SetColumn(TrackingDifferenceColumn, td); err != nil {
		return nil, err
	}

	means, stds, err := RollingMeanStdDev(tdBps, window)
	if err != nil {
		return nil, err
	}

	analysis.Returns = out
	analysis.Count = n
	analysis.TDMeanBps = means[n-1]
	analysis.TEBps = stds[n-1]
	analysis.LatestTDBps = null.FloatFrom(tdBps[n-1])
	return analysis, nil
}
