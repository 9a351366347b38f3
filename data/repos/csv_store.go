package repos

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/gocarina/gocsv"

	ex "driftmon/data/extensions"
	m "driftmon/data/models"
)

// CSVStore serves prices from a flat file with a symbol,date,adj_close header.
// It is read once and never written, so it is safe for concurrent readers.
type CSVStore struct {
	series m.PriceSeries
}

type csvPrice struct {
	Symbol        string  `csv:"symbol"`
	Date          string  `csv:"date"`
	AdjustedClose float64 `csv:"adj_close"`
}

func OpenCSVStore(path string) (*CSVStore, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening price file %s: %w", path, err)
	}
	defer f.Close()

	return ReadCSVStore(f)
}

func ReadCSVStore(r io.Reader) (*CSVStore, error) {
	var rows []*csvPrice
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("error decoding price csv: %w", err)
	}

	series := make(m.PriceSeries)
	for i, row := range rows {
		date, err := time.Parse(time.DateOnly, strings.TrimSpace(row.Date))
		if err != nil {
			return nil, fmt.Errorf("error parsing date on row %d: %w", i+1, err)
		}

		symbol := ex.NormalizeSymbol(row.Symbol)
		series[symbol] = append(series[symbol], m.PricePoint{
			Symbol:        symbol,
			Date:          date,
			AdjustedClose: row.AdjustedClose,
		})
	}

	for symbol, points := range series {
		series[symbol] = m.DedupeLastWriteWins(points)
	}

	return &CSVStore{series: series}, nil
}

// FetchPrices mirrors the Postgres store: unknown symbols come back as empty series
func (s *CSVStore) FetchPrices(_ context.Context, symbols []string) (m.PriceSeries, error) {
	res := make(m.PriceSeries, len(symbols))
	for _, symbol := range symbols {
		res[symbol] = slices.Clone(s.series[ex.NormalizeSymbol(symbol)])
		if res[symbol] == nil {
			res[symbol] = []m.PricePoint{}
		}
	}
	return res, nil
}

func (s *CSVStore) Symbols() []string {
	res := make([]string, 0, len(s.series))
	for symbol := range s.series {
		res = append(res, symbol)
	}
	slices.Sort(res)
	return res
}
