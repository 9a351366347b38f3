package alpha_vantage

type TimeSeries uint8

// TimeSeries specifies a frequency to query for stock data.
const (
	TimeSeriesDailyAdjusted TimeSeries = iota
)

func (t TimeSeries) Function() string {
	switch t {
	case TimeSeriesDailyAdjusted:
		return "TIME_SERIES_DAILY_ADJUSTED"
	default:
		return ""
	}
}

// TimeSeriesKey is the top level json key holding the observations
func (t TimeSeries) TimeSeriesKey() string {
	switch t {
	case TimeSeriesDailyAdjusted:
		return "Time Series (Daily)"
	default:
		return ""
	}
}

// OutputSize selects how much history the feed returns
type OutputSize string

const (
	OutputSizeCompact OutputSize = "compact" // latest 100 observations
	OutputSizeFull    OutputSize = "full"
)

// CompactLimit is the number of observations a compact request returns
const CompactLimit = 100

func OutputSizeFor(days int) OutputSize {
	if days <= CompactLimit {
		return OutputSizeCompact
	}
	return OutputSizeFull
}
