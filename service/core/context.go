package core

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	dm "driftmon/data/models"
	av "driftmon/service/api/alpha_vantage"
	"driftmon/service/config"
)

// PriceStore is the read side every drift computation needs
type PriceStore interface {
	FetchPrices(ctx context.Context, symbols []string) (dm.PriceSeries, error)
}

// PriceRepository is the read/write store used by ingestion and health checks
type PriceRepository interface {
	PriceStore
	Ping(ctx context.Context) error
	GetMetaDataBySymbol(ctx context.Context, symbol string) (*dm.SymbolMetadata, error)
	InsertNewMetaData(ctx context.Context, metadata *dm.SymbolMetadata, tx *pgx.Tx) error
	SavePrices(ctx context.Context, symbol string, points []dm.PricePoint, lastRefreshed time.Time) (int64, error)
}

type PriceFeed interface {
	GetDailyAdjusted(ctx context.Context, ticker string, size av.OutputSize) (*dm.TimeSeriesResult, error)
}

// ServiceContext carries the dependencies of the service. Store is required, Repository and
// Feed only for ingestion; a read only cli over a csv file leaves them nil.
type ServiceContext struct {
	Context    context.Context
	Config     config.Config
	Logger     *zap.Logger
	Store      PriceStore
	Repository PriceRepository
	Feed       PriceFeed
}

func (sc *ServiceContext) thresholds() Thresholds {
	return Thresholds{
		TDBps: sc.Config.TDThresholdBps,
		TEBps: sc.Config.TEThresholdBps,
	}
}

func (sc *ServiceContext) logger() *zap.Logger {
	if sc.Logger == nil {
		return zap.NewNop()
	}
	return sc.Logger
}
