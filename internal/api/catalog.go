package api

import (
	"net/http"

	"github.com/menulens/menulens/internal/auth"
)

func handleSchema(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Schema == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "SCHEMA_NOT_CONFIGURED", "schema descriptor is not configured", false, nil)
		return
	}
	dialect := ""
	if deps.Analyst != nil {
		dialect = deps.Analyst.Dialect()
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"dialect": dialect,
		"tables":  deps.Schema.Tables(),
		"text":    deps.Schema.Text(),
	})
}

func handleTableCounts(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Schema == nil || deps.Dashboard == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "DASHBOARD_NOT_CONFIGURED", "dashboard dependencies are not configured", false, nil)
		return
	}
	if err := requireRole(r, auth.RoleAnalyst); err != nil {
		writeError(r.Context(), w, http.StatusForbidden, "FORBIDDEN", err.Error(), false, nil)
		return
	}
	counts, err := deps.Dashboard.TableCounts(r.Context(), deps.Schema.TableNames())
	if err != nil {
		writeError(r.Context(), w, http.StatusInternalServerError, "DATABASE_ERROR", "failed to count table rows", true, map[string]any{"details": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tables": counts})
}

func handleSampleQuestions(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Samples == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "SAMPLES_NOT_CONFIGURED", "sample questions are not configured", false, nil)
		return
	}
	topic := r.URL.Query().Get("topic")
	items := deps.Samples.Questions
	if topic != "" {
		items = deps.Samples.ByTopic(topic)
	}
	questions := make([]string, 0, len(items))
	for _, item := range items {
		questions = append(questions, item.Text)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"questions": questions,
		"items":     items,
	})
}
