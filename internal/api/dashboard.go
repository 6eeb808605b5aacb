package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/menulens/menulens/internal/auth"
	"github.com/menulens/menulens/internal/store"
)

func dashboardReady(deps Dependencies, w http.ResponseWriter, r *http.Request) bool {
	if deps.Dashboard == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "DASHBOARD_NOT_CONFIGURED", "dashboard dependencies are not configured", false, nil)
		return false
	}
	if err := requireRole(r, auth.RoleAnalyst); err != nil {
		writeError(r.Context(), w, http.StatusForbidden, "FORBIDDEN", err.Error(), false, nil)
		return false
	}
	return true
}

func writeDatabaseError(w http.ResponseWriter, r *http.Request, message string, err error) {
	writeError(r.Context(), w, http.StatusInternalServerError, "DATABASE_ERROR", message, true, map[string]any{"details": err.Error()})
}

func handleDashboardMetrics(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if !dashboardReady(deps, w, r) {
		return
	}
	metrics, err := deps.Dashboard.Metrics(r.Context())
	if err != nil {
		writeDatabaseError(w, r, "failed to load dashboard metrics", err)
		return
	}
	writeJSON(w, http.StatusOK, metrics)
}

func handleRevenueTrend(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if !dashboardReady(deps, w, r) {
		return
	}
	points, err := deps.Dashboard.RevenueTrend(r.Context())
	if err != nil {
		writeDatabaseError(w, r, "failed to load revenue trend", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"points": points})
}

func handleCuisinePerformance(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if !dashboardReady(deps, w, r) {
		return
	}
	items, err := deps.Dashboard.CuisinePerformance(r.Context())
	if err != nil {
		writeDatabaseError(w, r, "failed to load cuisine performance", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"cuisines": items})
}

func handleListRestaurants(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if !dashboardReady(deps, w, r) {
		return
	}
	items, err := deps.Dashboard.ListRestaurants(r.Context())
	if err != nil {
		writeDatabaseError(w, r, "failed to list restaurants", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"restaurants": items})
}

func handleRestaurantMenu(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if !dashboardReady(deps, w, r) {
		return
	}
	restaurantID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || restaurantID <= 0 {
		writeError(r.Context(), w, http.StatusBadRequest, "INVALID_RESTAURANT_ID", "restaurant id must be a positive integer", false, map[string]any{"id": r.PathValue("id")})
		return
	}
	items, err := deps.Dashboard.ListMenuItems(r.Context(), restaurantID)
	if errors.Is(err, store.ErrNotFound) {
		writeError(r.Context(), w, http.StatusNotFound, "MENU_NOT_FOUND", "restaurant not found or has no menu items", false, map[string]any{"restaurant_id": restaurantID})
		return
	}
	if err != nil {
		writeDatabaseError(w, r, "failed to load menu", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"restaurant_id": restaurantID, "menu_items": items})
}
