package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/menulens/menulens/internal/analytics"
	"github.com/menulens/menulens/internal/auth"
	"github.com/menulens/menulens/internal/config"
	"github.com/menulens/menulens/internal/export"
	"github.com/menulens/menulens/internal/observability"
	"github.com/menulens/menulens/internal/query"
)

type askRequest struct {
	Question string `json:"question"`
	Export   bool   `json:"export"`
}

type askResponse struct {
	Question         string          `json:"question"`
	SQLQuery         string          `json:"sql_query"`
	Columns          []string        `json:"columns"`
	Rows             [][]any         `json:"rows"`
	RowCount         int             `json:"row_count"`
	Truncated        bool            `json:"truncated"`
	ExecutionMs      int64           `json:"execution_ms"`
	Insights         string          `json:"insights"`
	InsightDegraded  bool            `json:"insight_degraded"`
	RelatedQuestions []string        `json:"related_questions"`
	RelatedFallback  bool            `json:"related_fallback"`
	Export           *export.Receipt `json:"export,omitempty"`
	ExportError      string          `json:"export_error,omitempty"`
}

type relatedRequest struct {
	Question string   `json:"question"`
	Columns  []string `json:"columns"`
	Rows     [][]any  `json:"rows"`
}

type sqlCheckRequest struct {
	SQL string `json:"sql"`
}

func handleAsk(cfg config.Config, deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Analyst == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "ANALYST_NOT_CONFIGURED", "question answering is not configured", false, nil)
		return
	}
	if err := requireRole(r, auth.RoleAnalyst); err != nil {
		writeError(r.Context(), w, http.StatusForbidden, "FORBIDDEN", err.Error(), false, nil)
		return
	}

	var request askRequest
	if err := decodeJSON(w, r, &request); err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "INVALID_JSON", "invalid ask request body", false, map[string]any{"details": err.Error()})
		return
	}
	question := strings.TrimSpace(request.Question)
	if question == "" {
		writeError(r.Context(), w, http.StatusBadRequest, "QUESTION_REQUIRED", "question is required", false, nil)
		return
	}
	if request.Export && (!cfg.Export.Enabled || deps.Exporter == nil) {
		writeError(r.Context(), w, http.StatusBadRequest, "EXPORT_DISABLED", "result export is not enabled", false, nil)
		return
	}

	answer, err := deps.Analyst.Answer(r.Context(), question)
	if err != nil {
		writeAnalyticsError(r, w, err)
		return
	}
	related := deps.Analyst.Related(r.Context(), question, answer.Result)

	response := askResponse{
		Question:         answer.Question,
		SQLQuery:         answer.Statement,
		Columns:          answer.Result.Columns,
		Rows:             jsonRows(answer.Result.Rows),
		RowCount:         answer.Result.RowCount(),
		Truncated:        answer.Result.Truncated,
		ExecutionMs:      answer.Result.Duration.Milliseconds(),
		Insights:         answer.Insight.Text,
		InsightDegraded:  answer.Insight.Degraded,
		RelatedQuestions: related.Questions,
		RelatedFallback:  related.Fallback,
	}
	if response.Columns == nil {
		response.Columns = []string{}
	}

	if request.Export {
		receipt, err := deps.Exporter.Export(r.Context(), question, answer.Statement, answer.Result)
		if err != nil {
			if deps.Logger != nil {
				deps.Logger.WarnContext(r.Context(), "answer export failed",
					slog.String("trace_id", observability.TraceIDFromContext(r.Context())),
					slog.String("error", err.Error()),
				)
			}
			response.ExportError = err.Error()
		} else {
			response.Export = &receipt
		}
	}

	writeJSON(w, http.StatusOK, response)
}

func writeAnalyticsError(r *http.Request, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, analytics.ErrGeneration):
		writeError(r.Context(), w, http.StatusBadGateway, "GENERATION_FAILED", "could not generate a SQL query for the question", true, map[string]any{"details": err.Error()})
	case errors.Is(err, analytics.ErrExecution):
		writeError(r.Context(), w, http.StatusBadRequest, "QUERY_EXECUTION_FAILED", "generated query failed to execute", false, map[string]any{"details": err.Error()})
	default:
		writeError(r.Context(), w, http.StatusInternalServerError, "INTERNAL", "question could not be answered", true, map[string]any{"details": err.Error()})
	}
}

func handleRelated(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Analyst == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "ANALYST_NOT_CONFIGURED", "question answering is not configured", false, nil)
		return
	}
	if err := requireRole(r, auth.RoleAnalyst); err != nil {
		writeError(r.Context(), w, http.StatusForbidden, "FORBIDDEN", err.Error(), false, nil)
		return
	}

	var request relatedRequest
	if err := decodeJSON(w, r, &request); err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "INVALID_JSON", "invalid related request body", false, map[string]any{"details": err.Error()})
		return
	}
	question := strings.TrimSpace(request.Question)
	if question == "" {
		writeError(r.Context(), w, http.StatusBadRequest, "QUESTION_REQUIRED", "question is required", false, nil)
		return
	}

	related := deps.Analyst.Related(r.Context(), question, query.Result{Columns: request.Columns, Rows: request.Rows})
	writeJSON(w, http.StatusOK, map[string]any{
		"question":          question,
		"related_questions": related.Questions,
		"fallback":          related.Fallback,
	})
}

func handleSQLCheck(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Analyst == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "ANALYST_NOT_CONFIGURED", "question answering is not configured", false, nil)
		return
	}
	if err := requireRole(r, auth.RoleAnalyst); err != nil {
		writeError(r.Context(), w, http.StatusForbidden, "FORBIDDEN", err.Error(), false, nil)
		return
	}

	var request sqlCheckRequest
	if err := decodeJSON(w, r, &request); err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "INVALID_JSON", "invalid sql check request body", false, map[string]any{"details": err.Error()})
		return
	}
	if strings.TrimSpace(request.SQL) == "" {
		writeError(r.Context(), w, http.StatusBadRequest, "SQL_REQUIRED", "sql is required", false, nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"sql":     request.SQL,
		"safe":    deps.Analyst.IsSafe(request.SQL),
		"dialect": deps.Analyst.Dialect(),
	})
}

func requireRole(r *http.Request, role string) error {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		return nil
	}
	if identity.HasRole(role) {
		return nil
	}
	return fmt.Errorf("missing required role %q", role)
}
