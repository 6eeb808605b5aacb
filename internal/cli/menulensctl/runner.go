// Package menulensctl implements the menulens command-line client.
package menulensctl

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
)

type Options struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	HTTPClient *http.Client
	Stdout     io.Writer
	Stderr     io.Writer
	NoColor    bool
}

type request struct {
	method string
	path   string
	body   any
	render func(io.Writer, []byte) error
}

func Run(ctx context.Context, args []string, defaults Options) int {
	stdout := defaults.Stdout
	if stdout == nil {
		stdout = io.Discard
	}
	stderr := defaults.Stderr
	if stderr == nil {
		stderr = io.Discard
	}

	fs := flag.NewFlagSet("menulensctl", flag.ContinueOnError)
	fs.SetOutput(stderr)

	baseURL := fs.String("base-url", firstNonEmpty(defaults.BaseURL, "http://localhost:8000"), "MenuLens API base URL")
	apiKey := fs.String("api-key", defaults.APIKey, "API key for authenticated requests")
	timeout := fs.Duration("timeout", durationOr(defaults.Timeout, 60*time.Second), "HTTP timeout (e.g. 60s)")
	rawJSON := fs.Bool("json", false, "print raw JSON responses")
	progress := fs.Bool("progress", false, "show a spinner while waiting for the API")
	noColor := fs.Bool("no-color", defaults.NoColor, "disable colored output")
	topic := fs.String("topic", "", "filter sample questions by topic")
	exportResult := fs.Bool("export", false, "export ask results to Parquet")
	randomSeed := fs.Int64("seed", 0, "random seed for the seed command; 0 keeps the server default")
	noReset := fs.Bool("no-reset", false, "keep existing rows when seeding")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() < 1 {
		writeUsage(stderr)
		return 2
	}

	client := defaults.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: *timeout}
	}
	p := newPalette(*noColor)

	command := strings.TrimSpace(fs.Arg(0))
	text := strings.TrimSpace(strings.Join(fs.Args()[1:], " "))
	var req request
	switch command {
	case "health":
		req = request{method: http.MethodGet, path: "/v1/health"}
	case "ready":
		req = request{method: http.MethodGet, path: "/v1/ready"}
	case "ask":
		if text == "" {
			_, _ = fmt.Fprintln(stderr, "ask requires a question")
			return 2
		}
		req = request{method: http.MethodPost, path: "/v1/ask", body: map[string]any{"question": text, "export": *exportResult}, render: p.renderAnswer}
	case "related":
		if text == "" {
			_, _ = fmt.Fprintln(stderr, "related requires a question")
			return 2
		}
		req = request{method: http.MethodPost, path: "/v1/related", body: map[string]any{"question": text}, render: p.renderRelated}
	case "check":
		if text == "" {
			_, _ = fmt.Fprintln(stderr, "check requires a SQL statement")
			return 2
		}
		req = request{method: http.MethodPost, path: "/v1/sql/check", body: map[string]any{"sql": text}, render: p.renderCheck}
	case "schema":
		req = request{method: http.MethodGet, path: "/v1/schema", render: renderSchema}
	case "samples":
		path := "/v1/sample-questions"
		if strings.TrimSpace(*topic) != "" {
			path += "?topic=" + url.QueryEscape(strings.TrimSpace(*topic))
		}
		req = request{method: http.MethodGet, path: path, render: renderSamples}
	case "dashboard":
		req = request{method: http.MethodGet, path: "/v1/dashboard/metrics", render: renderMetrics}
	case "seed":
		body := map[string]any{}
		if *randomSeed != 0 {
			body["random_seed"] = *randomSeed
		}
		if *noReset {
			body["reset"] = false
		}
		req = request{method: http.MethodPost, path: "/v1/admin/seed", body: body}
	default:
		_, _ = fmt.Fprintf(stderr, "unknown command %q\n\n", command)
		writeUsage(stderr)
		return 2
	}

	var spin *spinner.Spinner
	if *progress {
		spin = spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(stderr))
		spin.Suffix = " waiting for " + req.path
		spin.Start()
	}
	endpoint := strings.TrimRight(*baseURL, "/") + req.path
	code, responseBody, err := doRequest(ctx, client, req.method, endpoint, *apiKey, req.body)
	if spin != nil {
		spin.Stop()
	}
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "request failed: %v\n", err)
		return 1
	}

	if code >= 400 {
		_, _ = p.errorText.Fprintf(stderr, "http %d: %s\n", code, strings.TrimSpace(string(responseBody)))
		return 1
	}

	if req.render != nil && !*rawJSON {
		if err := req.render(stdout, responseBody); err == nil {
			return 0
		}
	}
	if pretty, ok := prettyJSON(responseBody); ok {
		_, _ = fmt.Fprintln(stdout, pretty)
		return 0
	}
	if len(responseBody) > 0 {
		_, _ = fmt.Fprintln(stdout, string(responseBody))
	}
	return 0
}

func doRequest(ctx context.Context, client *http.Client, method, url, apiKey string, body any) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if strings.TrimSpace(apiKey) != "" {
		req.Header.Set("X-API-Key", strings.TrimSpace(apiKey))
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, responseBody, nil
}

type palette struct {
	heading   *color.Color
	sql       *color.Color
	insight   *color.Color
	degraded  *color.Color
	errorText *color.Color
	ok        *color.Color
}

func newPalette(noColor bool) palette {
	p := palette{
		heading:   color.New(color.FgBlue, color.Bold),
		sql:       color.New(color.FgCyan),
		insight:   color.New(color.FgGreen),
		degraded:  color.New(color.FgYellow),
		errorText: color.New(color.FgRed, color.Bold),
		ok:        color.New(color.FgGreen, color.Bold),
	}
	if noColor {
		for _, c := range []*color.Color{p.heading, p.sql, p.insight, p.degraded, p.errorText, p.ok} {
			c.DisableColor()
		}
	}
	return p
}

type answerView struct {
	SQL             string   `json:"sql_query"`
	Columns         []string `json:"columns"`
	Rows            [][]any  `json:"rows"`
	RowCount        int      `json:"row_count"`
	Truncated       bool     `json:"truncated"`
	ExecutionMS     int64    `json:"execution_ms"`
	Insights        string   `json:"insights"`
	InsightDegraded bool     `json:"insight_degraded"`
	Related         []string `json:"related_questions"`
	Export          *struct {
		Key  string `json:"key"`
		Rows int64  `json:"rows"`
	} `json:"export"`
	ExportError string `json:"export_error"`
}

func (p palette) renderAnswer(w io.Writer, raw []byte) error {
	var view answerView
	if err := json.Unmarshal(raw, &view); err != nil {
		return err
	}
	_, _ = p.heading.Fprintln(w, "SQL")
	_, _ = p.sql.Fprintln(w, view.SQL)
	_, _ = fmt.Fprintln(w)

	_, _ = p.heading.Fprintf(w, "Results (%d rows, %d ms)\n", view.RowCount, view.ExecutionMS)
	if len(view.Columns) == 0 || len(view.Rows) == 0 {
		_, _ = fmt.Fprintln(w, "no rows")
	} else {
		writeTable(w, view.Columns, view.Rows)
	}
	if view.Truncated {
		_, _ = p.degraded.Fprintln(w, "result truncated at the server row limit")
	}
	_, _ = fmt.Fprintln(w)

	_, _ = p.heading.Fprintln(w, "Insights")
	if view.InsightDegraded {
		_, _ = p.degraded.Fprintln(w, view.Insights)
	} else {
		_, _ = p.insight.Fprintln(w, view.Insights)
	}

	if view.Export != nil {
		_, _ = fmt.Fprintf(w, "\nexported %d rows to %s\n", view.Export.Rows, view.Export.Key)
	} else if view.ExportError != "" {
		_, _ = p.errorText.Fprintf(w, "\nexport failed: %s\n", view.ExportError)
	}

	if len(view.Related) > 0 {
		_, _ = fmt.Fprintln(w)
		_, _ = p.heading.Fprintln(w, "Related questions")
		for i, question := range view.Related {
			_, _ = fmt.Fprintf(w, "  %d. %s\n", i+1, question)
		}
	}
	return nil
}

func (p palette) renderRelated(w io.Writer, raw []byte) error {
	var view struct {
		Questions []string `json:"related_questions"`
		Fallback  bool     `json:"fallback"`
	}
	if err := json.Unmarshal(raw, &view); err != nil {
		return err
	}
	for i, question := range view.Questions {
		_, _ = fmt.Fprintf(w, "%d. %s\n", i+1, question)
	}
	if view.Fallback {
		_, _ = p.degraded.Fprintln(w, "(default suggestions)")
	}
	return nil
}

func (p palette) renderCheck(w io.Writer, raw []byte) error {
	var view struct {
		Safe    bool   `json:"safe"`
		Dialect string `json:"dialect"`
	}
	if err := json.Unmarshal(raw, &view); err != nil {
		return err
	}
	if view.Safe {
		_, _ = p.ok.Fprintf(w, "safe (%s)\n", view.Dialect)
	} else {
		_, _ = p.errorText.Fprintf(w, "unsafe (%s)\n", view.Dialect)
	}
	return nil
}

func renderSchema(w io.Writer, raw []byte) error {
	var view struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(raw, &view); err != nil {
		return err
	}
	_, _ = fmt.Fprintln(w, strings.TrimRight(view.Text, "\n"))
	return nil
}

func renderSamples(w io.Writer, raw []byte) error {
	var view struct {
		Items []struct {
			Text  string `json:"text"`
			Topic string `json:"topic"`
		} `json:"items"`
	}
	if err := json.Unmarshal(raw, &view); err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, item := range view.Items {
		_, _ = fmt.Fprintf(tw, "%s\t%s\n", item.Topic, item.Text)
	}
	return tw.Flush()
}

func renderMetrics(w io.Writer, raw []byte) error {
	var view struct {
		Restaurants     int64   `json:"total_restaurants"`
		Orders          int64   `json:"total_orders"`
		Revenue         float64 `json:"total_revenue"`
		AverageRating   float64 `json:"avg_rating"`
		Customers       int64   `json:"total_customers"`
		ActiveCustomers int64   `json:"active_customers"`
	}
	if err := json.Unmarshal(raw, &view); err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintf(tw, "restaurants\t%d\n", view.Restaurants)
	_, _ = fmt.Fprintf(tw, "orders\t%d\n", view.Orders)
	_, _ = fmt.Fprintf(tw, "revenue\t$%.2f\n", view.Revenue)
	_, _ = fmt.Fprintf(tw, "avg rating\t%.2f\n", view.AverageRating)
	_, _ = fmt.Fprintf(tw, "customers\t%d\n", view.Customers)
	_, _ = fmt.Fprintf(tw, "active customers\t%d\n", view.ActiveCustomers)
	return tw.Flush()
}

func writeTable(w io.Writer, columns []string, rows [][]any) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, strings.Join(columns, "\t"))
	for _, row := range rows {
		cells := make([]string, len(row))
		for i, value := range row {
			if value == nil {
				cells[i] = "NULL"
				continue
			}
			cells[i] = fmt.Sprint(value)
		}
		_, _ = fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	_ = tw.Flush()
}

func prettyJSON(raw []byte) (string, bool) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return "", false
	}
	var anyValue any
	if err := json.Unmarshal(raw, &anyValue); err != nil {
		return "", false
	}
	formatted, err := json.MarshalIndent(anyValue, "", "  ")
	if err != nil {
		return "", false
	}
	return string(formatted), true
}

func writeUsage(w io.Writer) {
	_, _ = fmt.Fprintln(w, "usage: menulensctl [flags] <command> [args]")
	_, _ = fmt.Fprintln(w, "")
	_, _ = fmt.Fprintln(w, "commands:")
	_, _ = fmt.Fprintln(w, "  health             GET /v1/health")
	_, _ = fmt.Fprintln(w, "  ready              GET /v1/ready")
	_, _ = fmt.Fprintln(w, "  ask <question>     POST /v1/ask")
	_, _ = fmt.Fprintln(w, "  related <question> POST /v1/related")
	_, _ = fmt.Fprintln(w, "  check <sql>        POST /v1/sql/check")
	_, _ = fmt.Fprintln(w, "  schema             GET /v1/schema")
	_, _ = fmt.Fprintln(w, "  samples            GET /v1/sample-questions")
	_, _ = fmt.Fprintln(w, "  dashboard          GET /v1/dashboard/metrics")
	_, _ = fmt.Fprintln(w, "  seed               POST /v1/admin/seed")
}

func firstNonEmpty(a, b string) string {
	if strings.TrimSpace(a) != "" {
		return strings.TrimSpace(a)
	}
	return b
}

func durationOr(v, fallback time.Duration) time.Duration {
	if v > 0 {
		return v
	}
	return fallback
}
