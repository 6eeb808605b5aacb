package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"math"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/menulens/menulens/internal/analytics"
	"github.com/menulens/menulens/internal/config"
	"github.com/menulens/menulens/internal/export"
	"github.com/menulens/menulens/internal/observability"
	"github.com/menulens/menulens/internal/query"
	"github.com/menulens/menulens/internal/samples"
	"github.com/menulens/menulens/internal/schema"
	"github.com/menulens/menulens/internal/seed"
	"github.com/menulens/menulens/internal/storage"
	"github.com/menulens/menulens/internal/store"
)

type ReadinessCheck func(ctx context.Context) error

type Analyst interface {
	Answer(ctx context.Context, question string) (analytics.Answer, error)
	Related(ctx context.Context, question string, result query.Result) analytics.RelatedQuestions
	IsSafe(statement string) bool
	Dialect() string
}

type DashboardReader interface {
	Metrics(ctx context.Context) (store.Metrics, error)
	RevenueTrend(ctx context.Context) ([]store.RevenuePoint, error)
	CuisinePerformance(ctx context.Context) ([]store.CuisinePerformance, error)
	ListRestaurants(ctx context.Context) ([]store.Restaurant, error)
	ListMenuItems(ctx context.Context, restaurantID int64) ([]store.MenuItem, error)
	TableCounts(ctx context.Context, tables []string) ([]store.TableCount, error)
}

type AnswerExporter interface {
	Export(ctx context.Context, question, statement string, result query.Result) (export.Receipt, error)
	Open(ctx context.Context, key string) (io.ReadCloser, storage.ObjectInfo, error)
}

type Seeder func(ctx context.Context, randomSeed int64, opts seed.Options, reset bool) (seed.Counts, error)

type Dependencies struct {
	Logger            *slog.Logger
	Readiness         ReadinessCheck
	AuthMiddleware    func(http.Handler) http.Handler
	DependencyTimeout time.Duration
	Analyst           Analyst
	Dashboard         DashboardReader
	Schema            *schema.Descriptor
	Samples           *samples.Catalog
	Exporter          AnswerExporter
	Seeder            Seeder
	UI                http.Handler
}

func NewHandler(cfg config.Config, deps Dependencies) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /v1/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "service": cfg.Service.Name})
	})

	mux.HandleFunc("GET /v1/ready", func(w http.ResponseWriter, r *http.Request) {
		if deps.Readiness == nil {
			writeJSON(w, http.StatusOK, map[string]any{"status": "ready"})
			return
		}
		timeout := deps.DependencyTimeout
		if timeout <= 0 {
			timeout = 2 * time.Second
		}
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()
		if err := deps.Readiness(ctx); err != nil {
			writeError(r.Context(), w, http.StatusServiceUnavailable, "NOT_READY", err.Error(), true, nil)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": "ready"})
	})

	mux.Handle("GET /v1/metrics", promhttp.Handler())

	routes := map[string]http.HandlerFunc{
		"POST /v1/ask":                    func(w http.ResponseWriter, r *http.Request) { handleAsk(cfg, deps, w, r) },
		"POST /v1/related":                func(w http.ResponseWriter, r *http.Request) { handleRelated(deps, w, r) },
		"POST /v1/sql/check":              func(w http.ResponseWriter, r *http.Request) { handleSQLCheck(deps, w, r) },
		"GET /v1/schema":                  func(w http.ResponseWriter, r *http.Request) { handleSchema(deps, w, r) },
		"GET /v1/tables":                  func(w http.ResponseWriter, r *http.Request) { handleTableCounts(deps, w, r) },
		"GET /v1/sample-questions":        func(w http.ResponseWriter, r *http.Request) { handleSampleQuestions(deps, w, r) },
		"GET /v1/dashboard/metrics":       func(w http.ResponseWriter, r *http.Request) { handleDashboardMetrics(deps, w, r) },
		"GET /v1/dashboard/revenue-trend": func(w http.ResponseWriter, r *http.Request) { handleRevenueTrend(deps, w, r) },
		"GET /v1/dashboard/cuisines":      func(w http.ResponseWriter, r *http.Request) { handleCuisinePerformance(deps, w, r) },
		"GET /v1/restaurants":             func(w http.ResponseWriter, r *http.Request) { handleListRestaurants(deps, w, r) },
		"GET /v1/restaurants/{id}/menu":   func(w http.ResponseWriter, r *http.Request) { handleRestaurantMenu(deps, w, r) },
		"GET /v1/exports/{key...}":        func(w http.ResponseWriter, r *http.Request) { handleDownloadExport(deps, w, r) },
		"POST /v1/admin/seed":             func(w http.ResponseWriter, r *http.Request) { handleSeed(cfg, deps, w, r) },
	}

	protected := http.NewServeMux()
	for pattern, handler := range routes {
		protected.HandleFunc(pattern, handler)
	}

	var protectedHandler http.Handler = protected
	if cfg.Auth.Required {
		if deps.AuthMiddleware == nil {
			if deps.Logger != nil {
				deps.Logger.Error("auth required but auth middleware missing")
			}
			protectedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				writeError(r.Context(), w, http.StatusInternalServerError, "AUTH_MIDDLEWARE_MISSING", "auth middleware is required by configuration", false, nil)
			})
		} else {
			protectedHandler = deps.AuthMiddleware(protectedHandler)
		}
	}
	for pattern := range routes {
		mux.Handle(pattern, protectedHandler)
	}
	if deps.UI != nil {
		mux.Handle("GET /{path...}", deps.UI)
	}

	middlewares := []func(http.Handler) http.Handler{
		observability.TraceMiddleware,
		observability.MetricsMiddleware,
	}
	if deps.Logger != nil {
		middlewares = append(middlewares, observability.LoggingMiddleware(deps.Logger))
	}
	if len(cfg.CORS.AllowedOrigins) > 0 {
		middlewares = append([]func(http.Handler) http.Handler{corsMiddleware(cfg.CORS.AllowedOrigins)}, middlewares...)
	}
	return chain(mux, middlewares...)
}

func corsMiddleware(origins []string) func(http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization", "X-API-Key", "X-Trace-ID"},
		ExposedHeaders: []string{"X-Trace-ID"},
		MaxAge:         600,
	}).Handler
}

func CheckDatabase(ping func(ctx context.Context) error) ReadinessCheck {
	return func(ctx context.Context) error {
		if ping == nil {
			return errors.New("database is not configured")
		}
		return ping(ctx)
	}
}

func CheckAIConfig(cfg config.Config) ReadinessCheck {
	return func(_ context.Context) error {
		if cfg.AI.APIKey == "" {
			return errors.New("ai api key is not configured")
		}
		return nil
	}
}

func CombineReadinessChecks(checks ...ReadinessCheck) ReadinessCheck {
	filtered := make([]ReadinessCheck, 0, len(checks))
	for _, check := range checks {
		if check != nil {
			filtered = append(filtered, check)
		}
	}
	return func(ctx context.Context) error {
		for _, check := range filtered {
			if err := check(ctx); err != nil {
				return err
			}
		}
		return nil
	}
}

func chain(base http.Handler, middlewares ...func(http.Handler) http.Handler) http.Handler {
	wrapped := base
	for i := len(middlewares) - 1; i >= 0; i-- {
		wrapped = middlewares[i](wrapped)
	}
	return wrapped
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(ctx context.Context, w http.ResponseWriter, status int, code, message string, retryable bool, extra map[string]any) {
	writeJSON(w, status, map[string]any{
		"error_code": code,
		"message":    message,
		"retryable":  retryable,
		"context":    extra,
		"trace_id":   observability.TraceIDFromContext(ctx),
	})
}

// jsonRows replaces values encoding/json cannot represent with null.
func jsonRows(rows [][]any) [][]any {
	out := make([][]any, len(rows))
	for i, row := range rows {
		converted := make([]any, len(row))
		for j, value := range row {
			if f, ok := value.(float64); ok && (math.IsNaN(f) || math.IsInf(f, 0)) {
				value = nil
			}
			converted[j] = value
		}
		out[i] = converted
	}
	return out
}
