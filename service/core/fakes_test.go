package core

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap/zaptest"

	dm "driftmon/data/models"
	av "driftmon/service/api/alpha_vantage"
	"driftmon/service/config"
)

type fakeRepository struct {
	mu       sync.Mutex
	prices   dm.PriceSeries
	metadata map[string]*dm.SymbolMetadata
	saved    map[string][]dm.PricePoint
	fetchErr error
	pingErr  error
	saveErr  error
	fetches  int
}

func newFakeRepository(prices dm.PriceSeries) *fakeRepository {
	if prices == nil {
		prices = dm.PriceSeries{}
	}
	return &fakeRepository{
		prices:   prices,
		metadata: map[string]*dm.SymbolMetadata{},
		saved:    map[string][]dm.PricePoint{},
	}
}

func (f *fakeRepository) FetchPrices(_ context.Context, symbols []string) (dm.PriceSeries, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches++

	res := make(dm.PriceSeries, len(symbols))
	for _, s := range symbols {
		res[s] = append([]dm.PricePoint{}, f.prices[s]...)
	}
	return res, nil
}

func (f *fakeRepository) Ping(context.Context) error {
	return f.pingErr
}

func (f *fakeRepository) GetMetaDataBySymbol(_ context.Context, symbol string) (*dm.SymbolMetadata, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	md, ok := f.metadata[symbol]
	if !ok {
		return nil, nil
	}
	cp := *md
	return &cp, nil
}

func (f *fakeRepository) InsertNewMetaData(_ context.Context, metadata *dm.SymbolMetadata, _ *pgx.Tx) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	metadata.Id = int32(len(f.metadata) + 1)
	cp := *metadata
	f.metadata[metadata.Symbol] = &cp
	return nil
}

func (f *fakeRepository) SavePrices(_ context.Context, symbol string, points []dm.PricePoint, lastRefreshed time.Time) (int64, error) {
	if f.saveErr != nil {
		return 0, f.saveErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	deduped := dm.DedupeLastWriteWins(points)
	f.saved[symbol] = deduped
	f.prices[symbol] = deduped
	f.metadata[symbol].LastRefreshed = lastRefreshed
	return int64(len(deduped)), nil
}

type fakeFeed struct {
	mu     sync.Mutex
	series map[string][]*dm.TimeSeriesData
	err    error
	calls  map[string]av.OutputSize
}

func (f *fakeFeed) GetDailyAdjusted(_ context.Context, ticker string, size av.OutputSize) (*dm.TimeSeriesResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = map[string]av.OutputSize{}
	}
	f.calls[ticker] = size

	if f.err != nil {
		return nil, f.err
	}
	data, ok := f.series[ticker]
	if !ok {
		return nil, fmt.Errorf("alpha vantage error message: invalid symbol %s", ticker)
	}
	return &dm.TimeSeriesResult{
		Metadata:   &dm.TimeSeriesMetadata{Symbol: ticker, LastRefreshed: time.Now()},
		TimeSeries: data,
	}, nil
}

func newTestContext(t *testing.T, repo *fakeRepository, feed PriceFeed) *ServiceContext {
	t.Helper()
	sc := &ServiceContext{
		Context: context.Background(),
		Config:  config.Default(),
		Logger:  zaptest.NewLogger(t),
		Store:   repo,
	}
	if repo != nil {
		sc.Repository = repo
	}
	sc.Feed = feed
	return sc
}
