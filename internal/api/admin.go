package api

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/menulens/menulens/internal/auth"
	"github.com/menulens/menulens/internal/config"
	"github.com/menulens/menulens/internal/observability"
	"github.com/menulens/menulens/internal/seed"
)

type seedRequest struct {
	Restaurants   *int   `json:"restaurants"`
	Customers     *int   `json:"customers"`
	Orders        *int   `json:"orders"`
	Reviews       *int   `json:"reviews"`
	DateRangeDays *int   `json:"date_range_days"`
	RandomSeed    *int64 `json:"random_seed"`
	Reset         *bool  `json:"reset"`
}

func handleSeed(cfg config.Config, deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Seeder == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "SEED_NOT_CONFIGURED", "sample data seeding is not configured", false, nil)
		return
	}
	if err := requireRole(r, auth.RoleAdmin); err != nil {
		writeError(r.Context(), w, http.StatusForbidden, "FORBIDDEN", err.Error(), false, nil)
		return
	}

	var request seedRequest
	if err := decodeJSON(w, r, &request); err != nil && !errors.Is(err, io.EOF) {
		writeError(r.Context(), w, http.StatusBadRequest, "INVALID_JSON", "invalid seed request body", false, map[string]any{"details": err.Error()})
		return
	}

	opts := seed.Options{
		Restaurants:   valueOr(request.Restaurants, cfg.Seed.Restaurants),
		Customers:     valueOr(request.Customers, cfg.Seed.Customers),
		Orders:        valueOr(request.Orders, cfg.Seed.Orders),
		Reviews:       valueOr(request.Reviews, cfg.Seed.Reviews),
		DateRangeDays: valueOr(request.DateRangeDays, cfg.Seed.DateRangeDays),
	}
	if err := opts.Validate(); err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "INVALID_SEED_OPTIONS", err.Error(), false, nil)
		return
	}
	randomSeed := valueOr(request.RandomSeed, cfg.Seed.RandomSeed)
	// Explicit ids need empty tables, so reset is on unless disabled.
	reset := valueOr(request.Reset, true)

	counts, err := deps.Seeder(r.Context(), randomSeed, opts, reset)
	if err != nil {
		writeError(r.Context(), w, http.StatusInternalServerError, "SEED_FAILED", "failed to load sample data", true, map[string]any{"details": err.Error()})
		return
	}
	if deps.Logger != nil {
		deps.Logger.InfoContext(r.Context(), "sample data loaded",
			slog.String("trace_id", observability.TraceIDFromContext(r.Context())),
			slog.Int("restaurants", counts.Restaurants),
			slog.Int("orders", counts.Orders),
			slog.Int("reviews", counts.Reviews),
		)
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "seeded", "random_seed": randomSeed, "counts": counts})
}

func valueOr[T any](value *T, fallback T) T {
	if value == nil {
		return fallback
	}
	return *value
}
