package alpha_vantage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"net/http"
	"net/url"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/guregu/null/v6"

	e "driftmon/data/extensions"
	m "driftmon/data/models"
	c "driftmon/service/api"
)

// public
const (
	HostDefault = "www.alphavantage.co"
)

// private
const (
	defaultDataType = "json"
	defaultTimeout  = time.Second * 30

	// api request elements
	query      = "query"
	symbol     = "symbol"
	function   = "function"
	outputSize = "outputsize"

	metaDataKey = "Meta Data"
)

var (
	timeSeriesDateFormats = []string{
		"2006-01-02",
		"2006-01-02 15:04:05",
	}

	ohlcvResultKeys = map[string]string{
		"Open":   ". open",
		"High":   ". high",
		"Low":    ". low",
		"Close":  ". close",
		"Volume": ". volume",
	}

	// api failures come back as a 200 with one of these keys instead of data
	apiMessageKeys = []string{"Error Message", "Note", "Information"}
)

type AlphaVantageClient struct {
	*c.Client
}

func GetClient(apiKey string) *AlphaVantageClient {
	return &AlphaVantageClient{
		c.ClientFactory(HostDefault, apiKey, defaultTimeout),
	}
}

func NewClient(conn c.Connection, apiKey string) *AlphaVantageClient {
	return &AlphaVantageClient{c.NewClient(conn, apiKey)}
}

// GetDailyAdjusted returns the daily adjusted series for ticker, oldest observation first.
// https://www.alphavantage.co/documentation/#dailyadj
func (avc *AlphaVantageClient) GetDailyAdjusted(ctx context.Context, ticker string, size OutputSize) (*m.TimeSeriesResult, error) {
	if avc == nil || avc.Client == nil {
		panic("alpha vantage client has not been set.")
	}

	endpoint := avc.buildRequestPath(map[string]string{
		function:   TimeSeriesDailyAdjusted.Function(),
		symbol:     ticker,
		outputSize: string(size),
	})

	response, err := avc.Client.Connection.Request(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("error requesting daily adjusted series for %s: %w", ticker, err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("alpha vantage returned status %d for %s", response.StatusCode, ticker)
	}

	raw, err := parseRawJson(response.Body)
	if err != nil {
		return nil, err
	}

	if err := checkApiMessage(raw); err != nil {
		return nil, fmt.Errorf("error requesting %s: %w", ticker, err)
	}

	metaData, timeZone, err := parseMetaData(raw)
	if err != nil {
		return nil, err
	}

	timeSeriesData, err := parseTimeSeriesDataResult(raw, TimeSeriesDailyAdjusted.TimeSeriesKey(), timeZone)
	if err != nil {
		return nil, err
	}

	return &m.TimeSeriesResult{
		Metadata:   metaData,
		TimeSeries: timeSeriesData,
	}, nil
}

func (avc *AlphaVantageClient) buildRequestPath(params map[string]string) *url.URL {
	// build our URL
	endpoint := &url.URL{}
	endpoint.Path = query

	// base parameters
	query := endpoint.Query()
	query.Set("apikey", avc.Client.ApiKey)
	query.Set("datatype", defaultDataType)

	// additional parameters
	for key, value := range params {
		query.Set(key, value)
	}

	endpoint.RawQuery = query.Encode()

	return endpoint
}

func parseRawJson(reader io.Reader) (raw map[string]json.RawMessage, err error) {
	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("error reading response body: %w", err)
	}

	// converting to a <string, raw message> map
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("error unmarshaling response: %w", err)
	}

	return
}

func checkApiMessage(raw map[string]json.RawMessage) error {
	if _, ok := raw[metaDataKey]; ok {
		return nil
	}

	for _, key := range apiMessageKeys {
		if message, ok := raw[key]; ok {
			var text string
			if err := json.Unmarshal(message, &text); err != nil {
				text = string(message)
			}
			return fmt.Errorf("alpha vantage %s: %s", strings.ToLower(key), text)
		}
	}

	return fmt.Errorf("alpha vantage response has no %q section", metaDataKey)
}

func parseMetaData(raw map[string]json.RawMessage) (*m.TimeSeriesMetadata, *time.Location, error) {
	var metadataElements map[string]string
	if err := json.Unmarshal(raw[metaDataKey], &metadataElements); err != nil {
		return nil, nil, fmt.Errorf("error unmarshaling meta data: %w", err)
	}

	metaDataKeys := slices.Collect(maps.Keys(metadataElements))
	find := func(suffix string) (string, bool) {
		key, err := e.FilterSingle(metaDataKeys, func(s string) bool { return strings.HasSuffix(s, suffix) })
		return key, err == nil
	}

	symbolKey, ok := find(". Symbol")
	if !ok {
		return nil, nil, fmt.Errorf("error extracting symbol for meta data")
	}

	timeZoneKey, ok := find(". Time Zone")
	if !ok {
		return nil, nil, fmt.Errorf("error extracting time zone for meta data")
	}
	timeZone := getTimeZone(metadataElements[timeZoneKey])

	lastRefreshedKey, ok := find(". Last Refreshed")
	if !ok {
		return nil, nil, fmt.Errorf("error extracting last refreshed date")
	}

	lastRefreshed, err := parseDate(metadataElements[lastRefreshedKey], timeZone)
	if err != nil {
		return nil, nil, fmt.Errorf("error parsing last refreshed date: %w", err)
	}

	res := m.TimeSeriesMetadata{
		Symbol:        metadataElements[symbolKey],
		LastRefreshed: lastRefreshed,
		TimeZone:      metadataElements[timeZoneKey],
	}

	if key, ok := find(". Information"); ok {
		res.Information = null.StringFrom(metadataElements[key])
	}
	if key, ok := find(". Output Size"); ok {
		res.OutputSize = null.StringFrom(metadataElements[key])
	}

	return &res, timeZone, nil
}

func parseTimeSeriesDataResult(raw map[string]json.RawMessage, key string, location *time.Location) ([]*m.TimeSeriesData, error) {
	body, ok := raw[key]
	if !ok {
		return nil, fmt.Errorf("response is missing %q", key)
	}

	var timeSeriesElements map[string]map[string]string
	if err := json.Unmarshal(body, &timeSeriesElements); err != nil {
		return nil, fmt.Errorf("error unmarshaling time series: %w", err)
	}

	timeSeries := make([]*m.TimeSeriesData, 0, len(timeSeriesElements))
	if len(timeSeriesElements) == 0 {
		return timeSeries, nil
	}

	// populate the lookups
	var firstValue map[string]string
	for _, v := range timeSeriesElements {
		firstValue = v
		break
	}

	ohlcvLookup, err := getLookupKey(ohlcvResultKeys, firstValue)
	if err != nil {
		return nil, err
	}

	headers := slices.Collect(maps.Keys(firstValue))
	adjustedCloseKey, err := e.FilterSingle(headers, func(s string) bool { return strings.HasSuffix(s, ". adjusted close") })
	if err != nil {
		return nil, fmt.Errorf("error extracting adjusted close key for time series")
	}

	// dividends and splits are optional, a missing header leaves the values null
	dividendAmountKey, _ := e.FilterSingle(headers, func(s string) bool { return strings.HasSuffix(s, ". dividend amount") })
	splitCoefficientKey, _ := e.FilterSingle(headers, func(s string) bool { return strings.HasSuffix(s, ". split coefficient") })

	for timeSeriesKey, timeSeriesValue := range timeSeriesElements {
		timestamp, err := parseDate(timeSeriesKey, location)
		if err != nil {
			return nil, fmt.Errorf("error converting TIMESTAMP from string to time.Time: %w", err)
		}

		ohlcv, err := parseOHLCV(timeSeriesValue, ohlcvLookup)
		if err != nil {
			return nil, fmt.Errorf("error parsing OHLCV: %w", err)
		}

		timeSeries = append(timeSeries, &m.TimeSeriesData{
			Timestamp:        timestamp,
			TimeSeriesOHLCV:  ohlcv,
			AdjustedClose:    parseFloat(timeSeriesValue[adjustedCloseKey]),
			DividendAmount:   parseFloat(timeSeriesValue[dividendAmountKey]),
			SplitCoefficient: parseFloat(timeSeriesValue[splitCoefficientKey]),
		})
	}

	slices.SortFunc(timeSeries, func(a, b *m.TimeSeriesData) int { return a.Timestamp.Compare(b.Timestamp) })
	return timeSeries, nil
}

func parseOHLCV(value, lookup map[string]string) (res m.TimeSeriesOHLCV, err error) {
	v := reflect.ValueOf(&res).Elem()
	for jsonKey, structAttribute := range lookup {
		field := v.FieldByName(structAttribute)
		if !field.IsValid() {
			return res, fmt.Errorf("field %s does not exist", structAttribute)
		}
		if !field.CanSet() {
			return res, fmt.Errorf("field %s cannot be set", structAttribute)
		}

		field.Set(reflect.ValueOf(parseFloat(value[jsonKey])))
	}
	return
}

func getLookupKey(expectedKeys, values map[string]string) (map[string]string, error) {
	res := make(map[string]string)
	responseValueHeaders := slices.Collect(maps.Keys(values))

	for key, value := range expectedKeys {
		f := func(s string) bool {
			return strings.HasSuffix(strings.ToLower(s), value)
		}
		if jsonKey, err := e.FilterSingle(responseValueHeaders, f); err == nil {
			res[jsonKey] = key
		}
	}

	if len(res) == 0 {
		return nil, fmt.Errorf("error generating key value map from av response object. Available headers: %v", responseValueHeaders)
	}

	return res, nil
}

// getTimeZone falls back to UTC, only the calendar date of each observation is kept downstream
func getTimeZone(location string) *time.Location {
	var loc string
	switch strings.ToUpper(location) {
	case "US/EASTERN":
		loc = "America/New_York"
	default:
		return time.UTC
	}

	res, err := time.LoadLocation(loc)
	if err != nil {
		return time.UTC
	}
	return res
}

func parseDate(dateString string, location *time.Location) (time.Time, error) {
	for _, format := range timeSeriesDateFormats {
		t, err := time.ParseInLocation(format, dateString, location)
		if err != nil {
			continue
		}
		return t, nil
	}
	return time.Time{}, fmt.Errorf("error converting date %s to time.Time", dateString)
}

func parseFloat(val string) null.Float {
	if val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return null.FloatFrom(f)
		}
	}
	return null.Float{}
}
