package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/subcommands"
	"github.com/guregu/null/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sm "driftmon/service/models"
)

const scenarioCSV = `symbol,date,adj_close
FUND,2024-01-01,100
FUND,2024-01-02,101
FUND,2024-01-03,102
FUND,2024-01-04,103
FUND,2024-01-05,104
BM,2024-01-01,100
BM,2024-01-02,100
BM,2024-01-03,101
BM,2024-01-04,103
BM,2024-01-05,103
`

func writeScenario(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prices.csv")
	require.NoError(t, os.WriteFile(path, []byte(scenarioCSV), 0o600))
	return path
}

func captureStdout(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	previous := stdout
	stdout = &buf
	t.Cleanup(func() { stdout = previous })
	return &buf
}

func execute(t *testing.T, cmd subcommands.Command, args ...string) subcommands.ExitStatus {
	t.Helper()
	f := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	cmd.SetFlags(f)
	require.NoError(t, f.Parse(args))
	return cmd.Execute(context.Background(), f)
}

func TestSummaryCommandFromCSV(t *testing.T) {
	out := captureStdout(t)
	path := writeScenario(t)

	status := execute(t, &summaryCmd{}, "-csv", path, "-config", "", "-fund", "fund", "-benchmark", "bm", "-window", "3")
	require.Equal(t, subcommands.ExitSuccess, status)

	var res sm.SummaryResponse
	require.NoError(t, json.Unmarshal(out.Bytes(), &res))
	assert.Equal(t, 5, res.Count)
	assert.Equal(t, 3, res.Window)
	assert.InDelta(t, 98.5343, res.TEBps, 1e-3)
}

func TestAlertsCommandFromCSV(t *testing.T) {
	out := captureStdout(t)

	status := execute(t, &alertsCmd{}, "-csv", writeScenario(t), "-config", "", "-fund", "FUND", "-benchmark", "BM", "-window", "3")
	require.Equal(t, subcommands.ExitSuccess, status)

	var res sm.AlertResponse
	require.NoError(t, json.Unmarshal(out.Bytes(), &res))
	assert.True(t, res.TDBreach)
	assert.True(t, res.TEBreach)
}

func TestSeriesCommandRequiresPair(t *testing.T) {
	captureStdout(t)
	status := execute(t, &seriesCmd{}, "-csv", writeScenario(t), "-fund", "FUND")
	assert.Equal(t, subcommands.ExitUsageError, status)
}

func TestIngestCommandRejectsCSV(t *testing.T) {
	status := execute(t, &ingestCmd{}, "-csv", "prices.csv", "-fund", "FUND", "-benchmark", "BM")
	assert.Equal(t, subcommands.ExitUsageError, status)

	status = execute(t, &ingestCmd{}, "-fund", "FUND", "-benchmark", "BM", "-days", "5")
	assert.Equal(t, subcommands.ExitUsageError, status)
}

func TestReportCommandRawMarkdown(t *testing.T) {
	out := captureStdout(t)

	status := execute(t, &reportCmd{}, "-csv", writeScenario(t), "-config", "", "-fund", "FUND", "-benchmark", "BM", "-window", "3", "-raw", "-recent", "2")
	require.Equal(t, subcommands.ExitSuccess, status)

	doc := out.String()
	assert.Contains(t, doc, "# Drift report: FUND vs BM")
	assert.Contains(t, doc, "5 shared observations from 2024-01-01 to 2024-01-05")
	assert.Contains(t, doc, "98.53 bps")
	assert.Contains(t, doc, "-1.29 bps")
	assert.Contains(t, doc, "97.09 bps")
	assert.Contains(t, doc, "BREACH")
	assert.Contains(t, doc, "2024-01-05")
	assert.Contains(t, doc, "2024-01-04")
	assert.NotContains(t, doc, "2024-01-03", "only the most recent rows are listed")
}

func TestReportMarkdownWithoutData(t *testing.T) {
	doc := ReportMarkdown("AAA", "BBB",
		&sm.SeriesResponse{Points: []sm.SeriesPoint{}},
		&sm.SummaryResponse{Window: 30},
		&sm.AlertResponse{TDThresholdBps: 30, TEThresholdBps: 50, Window: 30, LatestTDBps: null.Float{}},
		10,
	)

	assert.Contains(t, doc, "No overlapping price history")
	assert.Contains(t, doc, "n/a")
	assert.NotContains(t, doc, "BREACH")
	assert.NotContains(t, doc, "Recent tracking difference")
}

func TestReportMarkdownCountWithoutPoints(t *testing.T) {
	doc := ReportMarkdown("AAA", "BBB",
		&sm.SeriesResponse{},
		&sm.SummaryResponse{Window: 3, Count: 5},
		&sm.AlertResponse{TDThresholdBps: 30, TEThresholdBps: 50, Window: 3},
		10,
	)

	assert.Contains(t, doc, "No overlapping price history")
	assert.NotContains(t, doc, "Recent tracking difference")
}

func TestFormatting(t *testing.T) {
	assert.Equal(t, "12.35 bps", bps(12.345))
	assert.Equal(t, "0.00 bps", bps(0))
	assert.Equal(t, "1.000%", pct(0.01))
}
