package api

import (
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/menulens/menulens/internal/analytics"
	"github.com/menulens/menulens/internal/auth"
	"github.com/menulens/menulens/internal/export"
	"github.com/menulens/menulens/internal/query"
)

func topRestaurantsAnswer() analytics.Answer {
	return analytics.Answer{
		Statement: "SELECT r.name, SUM(o.total_amount) AS revenue FROM restaurants r JOIN orders o ON r.id = o.restaurant_id GROUP BY r.name ORDER BY revenue DESC LIMIT 5;",
		Result: query.Result{
			Columns:  []string{"name", "revenue"},
			Rows:     [][]any{{"Bella Vista", 1520.5}, {"Dragon Palace", math.NaN()}},
			Duration: 12 * time.Millisecond,
		},
		Insight: analytics.Insight{Text: "Bella Vista leads revenue."},
	}
}

func postJSON(h http.Handler, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestAskReturnsAnswerWithRelatedQuestions(t *testing.T) {
	analyst := &fakeAnalyst{
		answer:  topRestaurantsAnswer(),
		related: analytics.RelatedQuestions{Questions: []string{"Which menu items drive Bella Vista revenue?"}},
	}
	h := NewHandler(loadConfig(t, nil), Dependencies{Analyst: analyst})

	rr := postJSON(h, "/v1/ask", `{"question":"  What are the top 5 restaurants by revenue?  "}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rr.Code, rr.Body.String())
	}
	body := decodeBody(t, rr)
	if body["question"] != "What are the top 5 restaurants by revenue?" {
		t.Fatalf("question = %v", body["question"])
	}
	if !strings.HasPrefix(body["sql_query"].(string), "SELECT r.name") {
		t.Fatalf("sql_query = %v", body["sql_query"])
	}
	if body["row_count"] != float64(2) || body["insights"] != "Bella Vista leads revenue." || body["insight_degraded"] != false {
		t.Fatalf("body = %v", body)
	}
	rows := body["rows"].([]any)
	if second := rows[1].([]any); second[1] != nil {
		t.Fatalf("NaN should encode as null, got %v", second[1])
	}
	related := body["related_questions"].([]any)
	if len(related) != 1 || body["related_fallback"] != false {
		t.Fatalf("related = %v fallback = %v", related, body["related_fallback"])
	}
	if body["execution_ms"] != float64(12) {
		t.Fatalf("execution_ms = %v", body["execution_ms"])
	}
	if _, ok := body["export"]; ok {
		t.Fatalf("export should be omitted: %v", body["export"])
	}
	if len(analyst.relatedResults) != 1 || analyst.relatedResults[0].RowCount() != 2 {
		t.Fatalf("related called with %+v", analyst.relatedResults)
	}
}

func TestAskMapsPipelineErrors(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{name: "generation", err: &analytics.StageError{Stage: analytics.StageGeneration, Err: errors.New("api down")}, status: http.StatusBadGateway, code: "GENERATION_FAILED"},
		{name: "execution", err: &analytics.StageError{Stage: analytics.StageExecution, Err: errors.New("no such column: nope")}, status: http.StatusBadRequest, code: "QUERY_EXECUTION_FAILED"},
		{name: "other", err: errors.New("boom"), status: http.StatusInternalServerError, code: "INTERNAL"},
	}
	for _, tc := range cases {
		h := NewHandler(loadConfig(t, nil), Dependencies{Analyst: &fakeAnalyst{err: tc.err}})
		rr := postJSON(h, "/v1/ask", `{"question":"q"}`)
		if rr.Code != tc.status {
			t.Fatalf("%s: status = %d", tc.name, rr.Code)
		}
		body := decodeBody(t, rr)
		if body["error_code"] != tc.code {
			t.Fatalf("%s: error_code = %v", tc.name, body["error_code"])
		}
		details := body["context"].(map[string]any)["details"].(string)
		if !strings.Contains(details, tc.err.Error()) {
			t.Fatalf("%s: details = %q", tc.name, details)
		}
	}
}

func TestAskValidatesRequest(t *testing.T) {
	analyst := &fakeAnalyst{answer: topRestaurantsAnswer()}
	h := NewHandler(loadConfig(t, nil), Dependencies{Analyst: analyst})

	cases := map[string]string{
		`{"question":""}`:                "QUESTION_REQUIRED",
		`{"question":"q","x":1}`:         "INVALID_JSON",
		`not json`:                       "INVALID_JSON",
		`{"question":"q","export":true}`: "EXPORT_DISABLED",
	}
	for payload, code := range cases {
		rr := postJSON(h, "/v1/ask", payload)
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("%s: status = %d", payload, rr.Code)
		}
		if body := decodeBody(t, rr); body["error_code"] != code {
			t.Fatalf("%s: error_code = %v", payload, body["error_code"])
		}
	}
	if len(analyst.questions) != 0 {
		t.Fatalf("analyst should not be called, got %v", analyst.questions)
	}
}

func TestAskWithoutAnalystIsNotImplemented(t *testing.T) {
	h := NewHandler(loadConfig(t, nil), Dependencies{})
	if rr := postJSON(h, "/v1/ask", `{"question":"q"}`); rr.Code != http.StatusNotImplemented {
		t.Fatalf("status = %d", rr.Code)
	}
}

func TestAskExportsWhenRequested(t *testing.T) {
	cfg := loadConfig(t, map[string]string{"MENULENS_EXPORT_ENABLED": "true"})
	exporter := &fakeExporter{receipt: export.Receipt{Key: "exports/date=2026-10-17/abc.parquet", Rows: 2, Cells: 4, Size: 512}}
	h := NewHandler(cfg, Dependencies{Analyst: &fakeAnalyst{answer: topRestaurantsAnswer()}, Exporter: exporter})

	rr := postJSON(h, "/v1/ask", `{"question":"q","export":true}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rr.Code, rr.Body.String())
	}
	body := decodeBody(t, rr)
	receipt := body["export"].(map[string]any)
	if receipt["key"] != "exports/date=2026-10-17/abc.parquet" || receipt["rows"] != float64(2) {
		t.Fatalf("export = %v", receipt)
	}
	if len(exporter.exported) != 1 || exporter.exported[0].RowCount() != 2 {
		t.Fatalf("exported = %+v", exporter.exported)
	}
}

func TestAskExportFailureKeepsAnswer(t *testing.T) {
	cfg := loadConfig(t, map[string]string{"MENULENS_EXPORT_ENABLED": "true"})
	h := NewHandler(cfg, Dependencies{
		Analyst:  &fakeAnalyst{answer: topRestaurantsAnswer()},
		Exporter: &fakeExporter{err: errors.New("bucket offline")},
	})

	rr := postJSON(h, "/v1/ask", `{"question":"q","export":true}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	body := decodeBody(t, rr)
	if body["export_error"] != "bucket offline" || body["sql_query"] == "" {
		t.Fatalf("body = %v", body)
	}
}

func TestAskRequiresAnalystRole(t *testing.T) {
	cfg := loadConfig(t, map[string]string{"MENULENS_AUTH_REQUIRED": "true"})
	validator, err := auth.NewStaticAPIKeyValidator("k1:alice:analyst")
	if err != nil {
		t.Fatalf("validator setup failed: %v", err)
	}
	h := NewHandler(cfg, Dependencies{
		AuthMiddleware: auth.Middleware(nil, validator),
		Analyst:        &fakeAnalyst{answer: topRestaurantsAnswer()},
		Seeder:         (&fakeSeeder{}).seed,
	})

	req := httptest.NewRequest(http.MethodPost, "/v1/ask", strings.NewReader(`{"question":"q"}`))
	req.Header.Set("Authorization", "Bearer k1")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("ask status = %d", rr.Code)
	}

	seedReq := httptest.NewRequest(http.MethodPost, "/v1/admin/seed", strings.NewReader(`{}`))
	seedReq.Header.Set("Authorization", "Bearer k1")
	seedResp := httptest.NewRecorder()
	h.ServeHTTP(seedResp, seedReq)
	if seedResp.Code != http.StatusForbidden {
		t.Fatalf("seed status = %d, analysts must not reseed", seedResp.Code)
	}
}

func TestRelatedPassesResultShape(t *testing.T) {
	analyst := &fakeAnalyst{}
	h := NewHandler(loadConfig(t, nil), Dependencies{Analyst: analyst})

	rr := postJSON(h, "/v1/related", `{"question":"Top cuisines?","columns":["cuisine_type","revenue"],"rows":[["Italian",10.5]]}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rr.Code, rr.Body.String())
	}
	body := decodeBody(t, rr)
	if body["fallback"] != true || len(body["related_questions"].([]any)) != 5 {
		t.Fatalf("body = %v", body)
	}
	got := analyst.relatedResults[0]
	if len(got.Columns) != 2 || got.RowCount() != 1 {
		t.Fatalf("related result = %+v", got)
	}

	if rr := postJSON(h, "/v1/related", `{"question":" "}`); rr.Code != http.StatusBadRequest {
		t.Fatalf("empty question status = %d", rr.Code)
	}
}

func TestSQLCheck(t *testing.T) {
	h := NewHandler(loadConfig(t, nil), Dependencies{Analyst: &fakeAnalyst{}})

	cases := map[string]bool{
		"SELECT name FROM restaurants;":      true,
		"DROP TABLE orders;":                 false,
		"select created_at from restaurants": false,
	}
	for statement, want := range cases {
		rr := postJSON(h, "/v1/sql/check", `{"sql":"`+statement+`"}`)
		if rr.Code != http.StatusOK {
			t.Fatalf("status = %d", rr.Code)
		}
		body := decodeBody(t, rr)
		if body["safe"] != want || body["dialect"] != "SQLite" {
			t.Fatalf("%q: body = %v", statement, body)
		}
	}
	if rr := postJSON(h, "/v1/sql/check", `{"sql":""}`); rr.Code != http.StatusBadRequest {
		t.Fatalf("empty sql status = %d", rr.Code)
	}
}

func TestAnalystEndpointsRequireAnalystRole(t *testing.T) {
	analyst := &fakeAnalyst{answer: topRestaurantsAnswer()}
	withoutRoles := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), auth.Identity{Subject: "viewer"})))
		})
	}
	h := NewHandler(loadConfig(t, map[string]string{"MENULENS_AUTH_REQUIRED": "true"}), Dependencies{
		AuthMiddleware: withoutRoles,
		Analyst:        analyst,
	})

	requests := map[string]string{
		"/v1/ask":       `{"question":"q"}`,
		"/v1/related":   `{"question":"q"}`,
		"/v1/sql/check": `{"sql":"SELECT 1"}`,
	}
	for target, body := range requests {
		rr := postJSON(h, target, body)
		if rr.Code != http.StatusForbidden {
			t.Fatalf("%s status = %d, want 403", target, rr.Code)
		}
	}
	if len(analyst.checkedSQL) != 0 || len(analyst.questions) != 0 {
		t.Fatalf("analyst reached without role: checked=%v questions=%v", analyst.checkedSQL, analyst.questions)
	}
}
