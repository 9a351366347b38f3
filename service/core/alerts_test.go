package core

import (
	"testing"

	"github.com/guregu/null/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateAlertsScenarioBreachesDefaults(t *testing.T) {
	analysis, err := AnalyzeDrift(scenarioReturns(t), 3)
	require.NoError(t, err)

	state := EvaluateAlerts(analysis, Thresholds{TDBps: 30, TEBps: 50}, 3)
	assert.True(t, state.TDBreach)
	assert.True(t, state.TEBreach)
	assert.Equal(t, 30, state.TDThresholdBps)
	assert.Equal(t, 50, state.TEThresholdBps)
	assert.Equal(t, 3, state.Window)
	assert.Equal(t, analysis.LatestTDBps, state.LatestTDBps)
}

func TestEvaluateAlertsNilAnalysis(t *testing.T) {
	state := EvaluateAlerts(nil, Thresholds{TDBps: 30, TEBps: 50}, 30)
	assert.False(t, state.TDBreach)
	assert.False(t, state.TEBreach)
	assert.False(t, state.LatestTDBps.Valid)
	assert.Equal(t, 30, state.Window)
}

func TestEvaluateAlertsStrictComparison(t *testing.T) {
	analysis := &DriftAnalysis{
		LatestTDBps: null.FloatFrom(-30),
		TEBps:       null.FloatFrom(50),
	}

	state := EvaluateAlerts(analysis, Thresholds{TDBps: 30, TEBps: 50}, 30)
	assert.False(t, state.TDBreach, "equal magnitude does not breach")
	assert.False(t, state.TEBreach, "equal te does not breach")

	analysis.LatestTDBps = null.FloatFrom(-30.5)
	analysis.TEBps = null.FloatFrom(50.01)
	state = EvaluateAlerts(analysis, Thresholds{TDBps: 30, TEBps: 50}, 30)
	assert.True(t, state.TDBreach, "negative drift breaches on magnitude")
	assert.True(t, state.TEBreach)
}

func TestEvaluateAlertsAbsentTrackingErrorNeverBreaches(t *testing.T) {
	analysis := &DriftAnalysis{LatestTDBps: null.FloatFrom(5)}
	state := EvaluateAlerts(analysis, Thresholds{TDBps: 1, TEBps: 1}, 30)
	assert.True(t, state.TDBreach)
	assert.False(t, state.TEBreach)
}

func TestTDBreachIsMonotoneInThreshold(t *testing.T) {
	analysis, err := AnalyzeDrift(scenarioReturns(t), 3)
	require.NoError(t, err)

	// once a threshold stops breaching no larger threshold breaches again
	breached := true
	for threshold := 1; threshold <= 200; threshold++ {
		state := EvaluateAlerts(analysis, Thresholds{TDBps: threshold, TEBps: 50}, 3)
		if state.TDBreach && !breached {
			t.Fatalf("threshold %d breaches after a smaller threshold did not", threshold)
		}
		breached = state.TDBreach
	}
	assert.False(t, breached)
}
