package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"driftmon/data/repos"
	av "driftmon/service/api/alpha_vantage"
	"driftmon/service/config"
	"driftmon/service/core"
	"driftmon/service/logging"
)

// source holds the flags shared by every command that reads prices
type source struct {
	configPath string
	database   string
	csvPath    string
	fund       string
	benchmark  string
}

func (s *source) setFlags(f *flag.FlagSet) {
	f.StringVar(&s.configPath, "config", "config.yaml", "Path to the yaml config file")
	f.StringVar(&s.database, "db", "", "Postgres connection string (defaults to BDM_DATABASE_URL / DATABASE_URL)")
	f.StringVar(&s.csvPath, "csv", "", "Read prices from a csv file (symbol,date,adj_close) instead of Postgres")
	f.StringVar(&s.fund, "fund", "", "Fund symbol")
	f.StringVar(&s.benchmark, "benchmark", "", "Benchmark symbol")
}

func (s *source) validatePair() error {
	if s.fund == "" || s.benchmark == "" {
		return errors.New("-fund and -benchmark are required")
	}
	return nil
}

// open builds a service context over the selected price source. The returned
// func releases the database pool, if one was opened.
func (s *source) open(ctx context.Context) (*core.ServiceContext, func(), error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, nil, fmt.Errorf("error loading .env: %w", err)
	}

	cfg, err := config.LoadConfig(s.configPath)
	if err != nil {
		return nil, nil, err
	}
	if s.database != "" {
		cfg.DatabaseURL = s.database
	}

	logger, err := logging.New(cfg.Log.Level, "console")
	if err != nil {
		return nil, nil, err
	}

	sc := &core.ServiceContext{
		Context: ctx,
		Config:  cfg,
		Logger:  logger,
	}
	release := func() { _ = logger.Sync() }

	if s.csvPath != "" {
		store, err := repos.OpenCSVStore(s.csvPath)
		if err != nil {
			return nil, nil, err
		}
		sc.Store = store
		return sc, release, nil
	}

	if cfg.DatabaseURL == "" {
		return nil, nil, errors.New("no price source, set -csv, -db or BDM_DATABASE_URL")
	}

	pg, err := repos.GetPostgresConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pg.EnsureSchema(ctx); err != nil {
		pg.Close()
		return nil, nil, err
	}

	sc.Store = pg
	sc.Repository = pg
	if cfg.AlphaVantageAPIKey != "" {
		sc.Feed = av.GetClient(cfg.AlphaVantageAPIKey)
	}

	return sc, func() { pg.Close(); release() }, nil
}
