package core

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	ex "driftmon/data/extensions"
	sm "driftmon/service/models"
	"driftmon/service/trace"
)

func (sc *ServiceContext) ComputeSeries(ctx context.Context, fund, benchmark string, window int) (res *sm.SeriesResponse, err error) {
	ctx, span := trace.StartSpan(ctx, "core.ComputeSeries", trace.PairAttributes(fund, benchmark, window))
	defer func() { trace.EndSpan(span, err) }()

	analysis, err := sc.analyzePair(ctx, fund, benchmark, window)
	if err != nil {
		return nil, err
	}

	return buildSeriesResponse(analysis), nil
}

// ComputeSummary reports absent rolling statistics as 0
func (sc *ServiceContext) ComputeSummary(ctx context.Context, fund, benchmark string, window int) (res *sm.SummaryResponse, err error) {
	ctx, span := trace.StartSpan(ctx, "core.ComputeSummary", trace.PairAttributes(fund, benchmark, window))
	defer func() { trace.EndSpan(span, err) }()

	analysis, err := sc.analyzePair(ctx, fund, benchmark, window)
	if err != nil {
		return nil, err
	}

	return buildSummaryResponse(analysis), nil
}

func (sc *ServiceContext) ComputeAlerts(ctx context.Context, fund, benchmark string, window int) (res *sm.AlertResponse, err error) {
	ctx, span := trace.StartSpan(ctx, "core.ComputeAlerts", trace.PairAttributes(fund, benchmark, window))
	defer func() { trace.EndSpan(span, err) }()

	analysis, err := sc.analyzePair(ctx, fund, benchmark, window)
	if err != nil {
		return nil, err
	}

	return sc.buildAlertResponse(fund, benchmark, analysis), nil
}

// ComputeReport builds the series, summary and alert responses from a single read of the store
func (sc *ServiceContext) ComputeReport(ctx context.Context, fund, benchmark string, window int) (res *sm.ReportResponse, err error) {
	ctx, span := trace.StartSpan(ctx, "core.ComputeReport", trace.PairAttributes(fund, benchmark, window))
	defer func() { trace.EndSpan(span, err) }()

	analysis, err := sc.analyzePair(ctx, fund, benchmark, window)
	if err != nil {
		return nil, err
	}

	return &sm.ReportResponse{
		Series:  buildSeriesResponse(analysis),
		Summary: buildSummaryResponse(analysis),
		Alerts:  sc.buildAlertResponse(fund, benchmark, analysis),
	}, nil
}

// analyzePair fetches, aligns and analyses a fund / benchmark pair. Missing or
// non-overlapping data is not an error, it yields an analysis with no rows.
func (sc *ServiceContext) analyzePair(ctx context.Context, fund, benchmark string, window int) (*DriftAnalysis, error) {
	start := time.Now()
	if window <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidWindow, window)
	}

	fund, benchmark = ex.NormalizeSymbol(fund), ex.NormalizeSymbol(benchmark)
	if fund == "" || benchmark == "" {
		return nil, ErrMissingSymbol
	}

	log := sc.logger().With(zap.String("fund", fund), zap.String("benchmark", benchmark), zap.Int("window", window))

	prices, err := sc.Store.FetchPrices(ctx, []string{fund, benchmark})
	if err != nil {
		return nil, fmt.Errorf("error fetching prices for %s/%s: %w", fund, benchmark, err)
	}

	aligned, ok := Align(prices, fund, benchmark)
	if !ok {
		log.Debug("no overlapping prices", zap.Int("fund_rows", len(prices[fund])), zap.Int("benchmark_rows", len(prices[benchmark])))
		return AnalyzeDrift(nil, window)
	}

	returns, ok := Returns(aligned)
	if !ok {
		log.Debug("not enough aligned rows for returns", zap.Int("rows", aligned.Len()))
		return AnalyzeDrift(nil, window)
	}

	analysis, err := AnalyzeDrift(returns, window)
	if err != nil {
		return nil, err
	}

	log.Debug("drift analysed", zap.Int("rows", analysis.Count), zap.Duration("elapsed", time.Since(start)))
	return analysis, nil
}

func buildSeriesResponse(analysis *DriftAnalysis) *sm.SeriesResponse {
	res := &sm.SeriesResponse{Points: make([]sm.SeriesPoint, 0, analysis.Count)}
	if analysis.Returns == nil {
		return res
	}

	for i := range analysis.Returns.Len() {
		res.Points = append(res.Points, sm.SeriesPoint{
			Date:     analysis.Returns.Date(i).Format(sm.DateFormat),
			FundRet:  analysis.Returns.Value(FundReturnColumn, i),
			BenchRet: analysis.Returns.Value(BenchmarkReturnColumn, i),
			TD:       analysis.Returns.Value(TrackingDifferenceColumn, i),
		})
	}
	return res
}

func buildSummaryResponse(analysis *DriftAnalysis) *sm.SummaryResponse {
	return &sm.SummaryResponse{
		Window:    analysis.Window,
		TDMeanBps: analysis.TDMeanBps.ValueOrZero(),
		TEBps:     analysis.TEBps.ValueOrZero(),
		Count:     analysis.Count,
	}
}

func (sc *ServiceContext) buildAlertResponse(fund, benchmark string, analysis *DriftAnalysis) *sm.AlertResponse {
	state := EvaluateAlerts(analysis, sc.thresholds(), analysis.Window)
	if state.TDBreach {
		alertBreachesTotal.WithLabelValues("td").Inc()
	}
	if state.TEBreach {
		alertBreachesTotal.WithLabelValues("te").Inc()
	}
	if state.TDBreach || state.TEBreach {
		sc.logger().Warn("drift threshold breached",
			zap.String("fund", fund),
			zap.String("benchmark", benchmark),
			zap.Int("window", analysis.Window),
			zap.Bool("td_breach", state.TDBreach),
			zap.Bool("te_breach", state.TEBreach),
			zap.Float64("latest_td_bps", state.LatestTDBps.ValueOrZero()),
			zap.Float64("te_bps", analysis.TEBps.ValueOrZero()),
		)
	}

	return &sm.AlertResponse{
		TDBreach:       state.TDBreach,
		TEBreach:       state.TEBreach,
		TDThresholdBps: state.TDThresholdBps,
		TEThresholdBps: state.TEThresholdBps,
		Window:         state.Window,
		LatestTDBps:    state.LatestTDBps,
	}
}
