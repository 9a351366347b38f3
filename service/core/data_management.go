package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	ex "driftmon/data/extensions"
	dm "driftmon/data/models"
	av "driftmon/service/api/alpha_vantage"
	sm "driftmon/service/models"
	"driftmon/service/trace"
)

var ErrIngestionUnavailable = errors.New("ingestion needs a price repository and a price feed")

// IngestPair syncs the fund and benchmark concurrently. The first failure cancels the other symbol.
func (sc *ServiceContext) IngestPair(ctx context.Context, fund, benchmark string, days int, force bool) (res *sm.IngestResponse, err error) {
	ctx, span := trace.StartSpan(ctx, "core.IngestPair", trace.IngestAttributes(fund, benchmark, days, force))
	defer func() { trace.EndSpan(span, err) }()

	if sc.Repository == nil || sc.Feed == nil {
		return nil, ErrIngestionUnavailable
	}

	fund, benchmark = ex.NormalizeSymbol(fund), ex.NormalizeSymbol(benchmark)
	if fund == "" || benchmark == "" {
		return nil, ErrMissingSymbol
	}

	symbols := []string{fund}
	if benchmark != fund {
		symbols = append(symbols, benchmark)
	}

	written := make([]int64, len(symbols))
	g, gctx := errgroup.WithContext(ctx)
	for i, symbol := range symbols {
		g.Go(func() error {
			n, err := sc.SyncSymbolPrices(gctx, symbol, days, force)
			written[i] = n
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res = &sm.IngestResponse{
		Fund:      fund,
		Benchmark: benchmark,
		BySymbol:  make(map[string]int64, len(symbols)),
	}
	for i, symbol := range symbols {
		res.BySymbol[symbol] = written[i]
		res.Ingested += written[i]
	}
	return res, nil
}

// SyncSymbolPrices pulls the daily adjusted series for symbol and stores the points dated within
// 2 * days of today. A symbol already refreshed today is skipped unless force is set.
func (sc *ServiceContext) SyncSymbolPrices(ctx context.Context, symbol string, days int, force bool) (int64, error) {
	start := time.Now()
	log := sc.logger().With(zap.String("symbol", symbol))

	md, err := sc.Repository.GetMetaDataBySymbol(ctx, symbol)
	if err != nil {
		return 0, fmt.Errorf("error determining if meta data exists in sync data: %w", err)
	}

	if md == nil {
		log.Info("adding new symbol to db")
		md = &dm.SymbolMetadata{
			Symbol:        symbol,
			LastRefreshed: time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC),
		}

		if err := sc.Repository.InsertNewMetaData(ctx, md, nil); err != nil {
			return 0, fmt.Errorf("error adding %s to db: %w", symbol, err)
		}
	}

	today := ex.Today()
	if !force && ex.SameDay(md.LastRefreshed, today) {
		log.Info("symbol already refreshed today, skipping", zap.String("last_refreshed", ex.FmtShort(md.LastRefreshed)))
		return 0, nil
	}

	tsr, err := sc.Feed.GetDailyAdjusted(ctx, symbol, av.OutputSizeFor(days))
	if err != nil {
		return 0, err
	}

	cutoff := today.AddDate(0, 0, -2*days)
	f := func(t *dm.TimeSeriesData) bool {
		return t.AdjustedClose.Valid && !ex.DateOf(t.Timestamp).Before(cutoff)
	}
	toInsert := ex.FilterMultiplePtr(tsr.TimeSeries, f)

	points := make([]dm.PricePoint, len(toInsert))
	var dividends, splits []string
	for i, t := range toInsert {
		points[i] = dm.PricePoint{
			Symbol:        symbol,
			Date:          ex.DateOf(t.Timestamp),
			AdjustedClose: t.AdjustedClose.Float64,
		}
		if isDividend(t) {
			dividends = append(dividends, ex.FmtShort(t.Timestamp))
		}
		if isSplit(t) {
			splits = append(splits, ex.FmtShort(t.Timestamp))
		}
	}

	ra, err := sc.Repository.SavePrices(ctx, symbol, points, today)
	if err != nil {
		return 0, fmt.Errorf("error saving prices for %s: %w", symbol, err)
	}
	pricesIngestedTotal.WithLabelValues(symbol).Add(float64(ra))

	log.Info("symbol synced",
		zap.Int("received", len(tsr.TimeSeries)),
		zap.Int("kept", len(points)),
		zap.Int64("written", ra),
		zap.Strings("dividend_days", dividends),
		zap.Strings("split_days", splits),
		zap.Duration("elapsed", time.Since(start)),
	)
	return ra, nil
}

// adjusted closes already include dividends and splits, the days are only logged
func isDividend(t *dm.TimeSeriesData) bool {
	return t.DividendAmount.Valid && t.DividendAmount.Float64 > 0
}

func isSplit(t *dm.TimeSeriesData) bool {
	return t.SplitCoefficient.Valid && t.SplitCoefficient.Float64 != 1
}
