package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	sm "driftmon/service/models"
)

const (
	MinWindow = 5
	MaxWindow = 252

	DefaultIngestDays = 120
	MinIngestDays     = 30
	MaxIngestDays     = 1000
)

var errBadRequest = errors.New("bad request")

func GetHttpServer(sc *ServiceContext) *http.Server {
	return &http.Server{
		Addr:           sc.Config.Addr,
		Handler:        NewRouter(sc),
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   60 * time.Second, // ingestion waits on the feed
		MaxHeaderBytes: 1 << 20,
	}
}

func NewRouter(sc *ServiceContext) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   sc.Config.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(sc.instrument)

	r.Get("/health", sc.health)
	r.Post("/ingest/run", sc.runIngest)
	r.Get("/metrics/series", sc.metricsSeries)
	r.Get("/metrics/summary", sc.metricsSummary)
	r.Get("/alerts", sc.alerts)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}

// instrument records request counts and latency per route pattern and logs each request
func (sc *ServiceContext) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		elapsed := time.Since(start)
		httpRequestsTotal.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
		httpRequestDuration.WithLabelValues(route, r.Method).Observe(elapsed.Seconds())

		sc.logger().Debug("request served",
			zap.String("method", r.Method),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Duration("elapsed", elapsed),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

func (sc *ServiceContext) health(w http.ResponseWriter, r *http.Request) {
	if sc.Repository != nil {
		if err := sc.Repository.Ping(r.Context()); err != nil {
			sc.logger().Error("health check failed", zap.Error(err))
			writeError(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
	}
	writeJSON(w, http.StatusOK, sm.HealthResponse{Status: "ok"})
}

func (sc *ServiceContext) runIngest(w http.ResponseWriter, r *http.Request) {
	fund, benchmark, err := pairParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	days, err := intParam(r, "days", DefaultIngestDays, MinIngestDays, MaxIngestDays)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	force := false
	if raw := r.URL.Query().Get("force"); raw != "" {
		if force, err = strconv.ParseBool(raw); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("force must be a boolean, got %q", raw))
			return
		}
	}

	res, err := sc.IngestPair(r.Context(), fund, benchmark, days, force)
	if err != nil {
		sc.handleError(w, "ingestion failed", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (sc *ServiceContext) metricsSeries(w http.ResponseWriter, r *http.Request) {
	fund, benchmark, window, ok := sc.driftParams(w, r)
	if !ok {
		return
	}

	res, err := sc.ComputeSeries(r.Context(), fund, benchmark, window)
	if err != nil {
		sc.handleError(w, "series failed", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (sc *ServiceContext) metricsSummary(w http.ResponseWriter, r *http.Request) {
	fund, benchmark, window, ok := sc.driftParams(w, r)
	if !ok {
		return
	}

	res, err := sc.ComputeSummary(r.Context(), fund, benchmark, window)
	if err != nil {
		sc.handleError(w, "summary failed", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (sc *ServiceContext) alerts(w http.ResponseWriter, r *http.Request) {
	fund, benchmark, window, ok := sc.driftParams(w, r)
	if !ok {
		return
	}

	res, err := sc.ComputeAlerts(r.Context(), fund, benchmark, window)
	if err != nil {
		sc.handleError(w, "alerts failed", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// driftParams validates fund, benchmark and window, writing a 400 when they are unusable
func (sc *ServiceContext) driftParams(w http.ResponseWriter, r *http.Request) (fund, benchmark string, window int, ok bool) {
	fund, benchmark, err := pairParams(r)
	if err == nil {
		window, err = intParam(r, "window", sc.Config.DefaultWindow, MinWindow, MaxWindow)
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return "", "", 0, false
	}
	return fund, benchmark, window, true
}

func (sc *ServiceContext) handleError(w http.ResponseWriter, msg string, err error) {
	switch {
	case errors.Is(err, ErrInvalidWindow), errors.Is(err, ErrMissingSymbol):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrIngestionUnavailable):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		sc.logger().Error(msg, zap.Error(err))
		writeError(w, http.StatusInternalServerError, msg)
	}
}

func pairParams(r *http.Request) (fund, benchmark string, err error) {
	q := r.URL.Query()
	fund = strings.TrimSpace(q.Get("fund"))
	benchmark = strings.TrimSpace(q.Get("benchmark"))
	if fund == "" || benchmark == "" {
		return "", "", fmt.Errorf("%w: fund and benchmark query parameters are required", errBadRequest)
	}
	return fund, benchmark, nil
}

// intParam reads an optional integer query parameter bounded to [lo, hi]
func intParam(r *http.Request, name string, def, lo, hi int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def, nil
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer, got %q", errBadRequest, name, raw)
	}
	if v < lo || v > hi {
		return 0, fmt.Errorf("%w: %s must be between %d and %d, got %d", errBadRequest, name, lo, hi, v)
	}
	return v, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, sm.GetServiceResponseError(msg))
}
