package models

import (
	"time"

	"github.com/guregu/null/v6"
)

type TimeSeriesResult struct {
	Metadata   *TimeSeriesMetadata
	TimeSeries []*TimeSeriesData
}

type TimeSeriesMetadata struct {
	Information   null.String
	Symbol        string
	LastRefreshed time.Time
	OutputSize    null.String
	TimeZone      string
}

type TimeSeriesOHLCV struct {
	Open   null.Float
	High   null.Float
	Low    null.Float
	Close  null.Float
	Volume null.Float
}

type TimeSeriesData struct {
	Timestamp time.Time
	TimeSeriesOHLCV
	AdjustedClose    null.Float
	DividendAmount   null.Float
	SplitCoefficient null.Float
}
