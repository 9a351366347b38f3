package cli

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/subcommands"

	ex "driftmon/data/extensions"
	"driftmon/service/core"
)

// Commands is every driftctl subcommand
var Commands = []subcommands.Command{
	&ingestCmd{},
	&seriesCmd{},
	&summaryCmd{},
	&alertsCmd{},
	&reportCmd{},
}

var stdout io.Writer = os.Stdout

func fail(err error) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return subcommands.ExitFailure
}

func printJSON(v any) error {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// driftCmd is the shared shape of the read only drift commands
type driftCmd struct {
	source
	window int
}

func (c *driftCmd) SetFlags(f *flag.FlagSet) {
	c.source.setFlags(f)
	f.IntVar(&c.window, "window", 0, "Rolling window in observations (defaults to the configured window)")
}

func (c *driftCmd) run(ctx context.Context, compute func(sc *core.ServiceContext, window int) (any, error)) subcommands.ExitStatus {
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

	res, err := compute(sc, window)
	if err != nil {
		return fail(err)
	}
	if err := printJSON(res); err != nil {
		return fail(err)
	}
	return subcommands.ExitSuccess
}

type seriesCmd struct{ driftCmd }

func (*seriesCmd) Name() string     { return "series" }
func (*seriesCmd) Synopsis() string { return "print the daily returns and tracking difference of a pair" }
func (*seriesCmd) Usage() string {
	return `driftctl series -fund <symbol> -benchmark <symbol> [-window n] [-csv file | -db url]

  Prints the aligned fund and benchmark returns with their tracking difference as json.
`
}

func (c *seriesCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.run(ctx, func(sc *core.ServiceContext, window int) (any, error) {
		return sc.ComputeSeries(ctx, c.fund, c.benchmark, window)
	})
}

type summaryCmd struct{ driftCmd }

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "print the rolling tracking difference mean and tracking error" }
func (*summaryCmd) Usage() string {
	return `driftctl summary -fund <symbol> -benchmark <symbol> [-window n] [-csv file | -db url]

  Prints td_mean_bps and te_bps as of the latest shared date.
`
}

func (c *summaryCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.run(ctx, func(sc *core.ServiceContext, window int) (any, error) {
		return sc.ComputeSummary(ctx, c.fund, c.benchmark, window)
	})
}

type alertsCmd struct{ driftCmd }

func (*alertsCmd) Name() string     { return "alerts" }
func (*alertsCmd) Synopsis() string { return "evaluate the drift thresholds for a pair" }
func (*alertsCmd) Usage() string {
	return `driftctl alerts -fund <symbol> -benchmark <symbol> [-window n] [-csv file | -db url]

  Prints whether the latest tracking difference or the tracking error breach their thresholds.
`
}

func (c *alertsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.run(ctx, func(sc *core.ServiceContext, window int) (any, error) {
		return sc.ComputeAlerts(ctx, c.fund, c.benchmark, window)
	})
}

type ingestCmd struct {
	source
	days  int
	force bool
	purge bool
}

func (*ingestCmd) Name() string     { return "ingest" }
func (*ingestCmd) Synopsis() string { return "pull daily adjusted closes for a pair into Postgres" }
func (*ingestCmd) Usage() string {
	return `driftctl ingest -fund <symbol> -benchmark <symbol> [-days n] [-force] [-purge] [-db url]

  Fetches the fund and benchmark from Alpha Vantage and upserts them.
  -purge deletes the stored history of both symbols first.
`
}

func (c *ingestCmd) SetFlags(f *flag.FlagSet) {
	c.source.setFlags(f)
	f.IntVar(&c.days, "days", core.DefaultIngestDays, "Days of history to keep (prices within 2x days are stored)")
	f.BoolVar(&c.force, "force", false, "Ingest even when the symbol was refreshed today")
	f.BoolVar(&c.purge, "purge", false, "Delete stored prices of both symbols before ingesting")
}

func (c *ingestCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := c.validatePair(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	if c.csvPath != "" {
		fmt.Fprintln(os.Stderr, "Error: ingest writes to Postgres, -csv is read only")
		return subcommands.ExitUsageError
	}
	if c.days < core.MinIngestDays || c.days > core.MaxIngestDays {
		fmt.Fprintf(os.Stderr, "Error: -days must be between %d and %d\n", core.MinIngestDays, core.MaxIngestDays)
		return subcommands.ExitUsageError
	}

	sc, release, err := c.open(ctx)
	if err != nil {
		return fail(err)
	}
	defer release()

	if c.purge {
		purger, ok := sc.Repository.(interface {
			DeleteSymbol(ctx context.Context, symbol string) (int64, error)
		})
		if !ok {
			return fail(fmt.Errorf("the price repository cannot delete symbols"))
		}
		for _, symbol := range []string{ex.NormalizeSymbol(c.fund), ex.NormalizeSymbol(c.benchmark)} {
			n, err := purger.DeleteSymbol(ctx, symbol)
			if err != nil {
				return fail(err)
			}
			fmt.Fprintf(os.Stderr, "purged %d prices for %s\n", n, symbol)
		}
		c.force = true
	}

	res, err := sc.IngestPair(ctx, c.fund, c.benchmark, c.days, c.force)
	if err != nil {
		return fail(err)
	}
	if err := printJSON(res); err != nil {
		return fail(err)
	}
	return subcommands.ExitSuccess
}
