package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	r "driftmon/data/repos"
	av "driftmon/service/api/alpha_vantage"
	"driftmon/service/config"
	c "driftmon/service/core"
	"driftmon/service/logging"
	"driftmon/service/trace"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the yaml config file")
	flag.Parse()

	// initialize context and signal handler, listen for interrupt and term signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// load in environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Printf(".env not loaded: %v", err)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	if err := trace.Init(cfg.TracingEnabled); err != nil {
		logger.Fatal("failed to initialise tracing", zap.Error(err))
	}

	if cfg.DatabaseURL == "" {
		logger.Fatal("no database configured, set BDM_DATABASE_URL or DATABASE_URL")
	}

	// get postgres connection
	postgresConnection, err := r.GetPostgresConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer postgresConnection.Close()

	if err := postgresConnection.EnsureSchema(ctx); err != nil {
		logger.Fatal("failed to create schema", zap.Error(err))
	}

	sc := &c.ServiceContext{
		Context:    ctx,
		Config:     cfg,
		Logger:     logger,
		Store:      postgresConnection,
		Repository: postgresConnection,
	}

	// ingestion is disabled without a key, the read endpoints still serve stored prices
	if cfg.AlphaVantageAPIKey != "" {
		sc.Feed = av.GetClient(cfg.AlphaVantageAPIKey)
	} else {
		logger.Warn("ALPHAVANTAGE_API_KEY not set, /ingest/run will be unavailable")
	}

	// get http server, makes all of the endpoints and routes
	s := c.GetHttpServer(sc)

	// start http server in goroutine
	go func() {
		logger.Info("starting drift monitor", zap.String("addr", s.Addr))
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	// wait here until the context is closed (ie, ctrl+C)
	<-ctx.Done()
	logger.Info("received shutdown signal, shutting down gracefully")

	// this gives the server 10 seconds to shutdown gracefully
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := s.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
	}
	if err := trace.Shutdown(shutdownCtx); err != nil {
		logger.Error("tracer shutdown error", zap.Error(err))
	}

	logger.Info("server stopped successfully")
}
