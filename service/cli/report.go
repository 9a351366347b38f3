package cli

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"
	md "github.com/nao1215/markdown"
	"github.com/shopspring/decimal"

	ex "driftmon/data/extensions"
	sm "driftmon/service/models"
)

type reportCmd struct {
	driftCmd
	recent int
	raw    bool
}

func (*reportCmd) Name() string     { return "report" }
func (*reportCmd) Synopsis() string { return "render a drift report for a pair" }
func (*reportCmd) Usage() string {
	return `driftctl report -fund <symbol> -benchmark <symbol> [-window n] [-recent n] [-raw] [-csv file | -db url]

  Renders the summary, the alert state and the most recent tracking differences.
`
}

func (c *reportCmd) SetFlags(f *flag.FlagSet) {
	c.driftCmd.SetFlags(f)
	f.IntVar(&c.recent, "recent", 10, "Number of recent daily tracking differences to list")
	f.BoolVar(&c.raw, "raw", false, "Print markdown without terminal styling")
}

func (c *reportCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := c.validatePair(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	sc, release, err := c.open(ctx)
	if err != nil {
		return fail(err)
	}
	defer release()

	window := c.window
	if window == 0 {
		window = sc.Config.DefaultWindow
	}

	report, err := sc.ComputeReport(ctx, c.fund, c.benchmark, window)
	if err != nil {
		return fail(err)
	}

	doc := ReportMarkdown(ex.NormalizeSymbol(c.fund), ex.NormalizeSymbol(c.benchmark), report.Series, report.Summary, report.Alerts, c.recent)
	if c.raw {
		fmt.Fprint(stdout, doc)
		return subcommands.ExitSuccess
	}
	if err := printMarkdown(doc); err != nil {
		return fail(err)
	}
	return subcommands.ExitSuccess
}

func printMarkdown(doc string) error {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
	if err != nil {
		return err
	}
	out, err := r.Render(doc)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(stdout, out)
	return err
}

// ReportMarkdown lays out a drift report, the last `recent` series points are listed newest first
func ReportMarkdown(fund, benchmark string, series *sm.SeriesResponse, summary *sm.SummaryResponse, alerts *sm.AlertResponse, recent int) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(fmt.Sprintf("Drift report: %s vs %s", fund, benchmark))
	if len(series.Points) == 0 {
		doc.PlainText("No overlapping price history for this pair.")
	} else {
		first, last := series.Points[0].Date, series.Points[len(series.Points)-1].Date
		doc.PlainText(fmt.Sprintf("%d shared observations from %s to %s, rolling window of %d.", summary.Count, first, last, summary.Window))
	}

	doc.H2("Summary")
	doc.Table(md.TableSet{
		Header: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Tracking difference mean", bps(summary.TDMeanBps)},
			{"Tracking error", bps(summary.TEBps)},
			{"Latest tracking difference", latest(alerts)},
		},
	})

	doc.H2("Alerts")
	doc.Table(md.TableSet{
		Header: []string{"Check", "Threshold", "Status"},
		Rows: [][]string{
			{"Tracking difference", fmt.Sprintf("%d bps", alerts.TDThresholdBps), status(alerts.TDBreach)},
			{"Tracking error", fmt.Sprintf("%d bps", alerts.TEThresholdBps), status(alerts.TEBreach)},
		},
	})

	if len(series.Points) > 0 && recent > 0 {
		doc.H2("Recent tracking difference")
		rows := make([][]string, 0, recent)
		for i := len(series.Points) - 1; i >= 0 && len(rows) < recent; i-- {
			p := series.Points[i]
			rows = append(rows, []string{p.Date, pct(p.FundRet), pct(p.BenchRet), bps(p.TD * 10_000)})
		}
		doc.Table(md.TableSet{
			Header: []string{"Date", "Fund", "Benchmark", "TD"},
			Rows:   rows,
		})
	}

	return doc.String()
}

func bps(v float64) string {
	return decimal.NewFromFloat(v).Round(2).StringFixed(2) + " bps"
}

func pct(v float64) string {
	return decimal.NewFromFloat(v).Shift(2).StringFixed(3) + "%"
}

func latest(alerts *sm.AlertResponse) string {
	if !alerts.LatestTDBps.Valid {
		return "n/a"
	}
	return bps(alerts.LatestTDBps.Float64)
}

func status(breach bool) string {
	if breach {
		return "BREACH"
	}
	return "ok"
}
