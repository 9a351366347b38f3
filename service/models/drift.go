package models

import (
	"github.com/guregu/null/v6"
)

const DateFormat = "2006-01-02"

type SeriesPoint struct {
	Date     string  `json:"date"`
	FundRet  float64 `json:"fund_ret"`
	BenchRet float64 `json:"bench_ret"`
	TD       float64 `json:"td"`
}

type SeriesResponse struct {
	Points []SeriesPoint `json:"points"`
}

type SummaryResponse struct {
	Window    int     `json:"window"`
	TDMeanBps float64 `json:"td_mean_bps"`
	TEBps     float64 `json:"te_bps"`
	Count     int     `json:"count"`
}

type AlertResponse struct {
	TDBreach       bool       `json:"td_breach"`
	TEBreach       bool       `json:"te_breach"`
	TDThresholdBps int        `json:"td_threshold_bps"`
	TEThresholdBps int        `json:"te_threshold_bps"`
	Window         int        `json:"window"`
	LatestTDBps    null.Float `json:"latest_td_bps"`
}

type ReportResponse struct {
	Series  *SeriesResponse  `json:"series"`
	Summary *SummaryResponse `json:"summary"`
	Alerts  *AlertResponse   `json:"alerts"`
}

type IngestResponse struct {
	Ingested  int64            `json:"ingested"`
	Fund      string           `json:"fund"`
	Benchmark string           `json:"benchmark"`
	BySymbol  map[string]int64 `json:"by_symbol"`
}

type HealthResponse struct {
	Status string `json:"status"`
}
