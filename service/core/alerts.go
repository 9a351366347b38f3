package core

import (
	"math"

	"github.com/guregu/null/v6"
)

type Thresholds struct {
	TDBps int
	TEBps int
}

type AlertState struct {
	TDBreach       bool
	TEBreach       bool
	TDThresholdBps int
	TEThresholdBps int
	Window         int
	LatestTDBps    null.Float
}

// EvaluateAlerts compares the latest tracking difference and the tracking error against
// their thresholds. Both comparisons are strict and an absent value never breaches.
func EvaluateAlerts(analysis *DriftAnalysis, thresholds Thresholds, window int) AlertState {
	res := AlertState{
		TDThresholdBps: thresholds.TDBps,
		TEThresholdBps: thresholds.TEBps,
		Window:         window,
	}
	if analysis == nil {
		return res
	}

	res.LatestTDBps = analysis.LatestTDBps
	if analysis.LatestTDBps.Valid {
		res.TDBreach = math.Abs(analysis.LatestTDBps.Float64) > float64(thresholds.TDBps)
	}
	if analysis.TEBps.Valid {
		res.TEBreach = analysis.TEBps.Float64 > float64(thresholds.TEBps)
	}
	return res
}
