package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/menulens/menulens/internal/cli/menulensctl"
)

func main() {
	timeout := parseDurationWithDefault(strings.TrimSpace(os.Getenv("MENULENS_CLI_TIMEOUT")), 60*time.Second)
	options := menulensctl.Options{
		BaseURL: envOr("MENULENS_API_URL", "http://localhost:8000"),
		APIKey:  strings.TrimSpace(os.Getenv("MENULENS_API_KEY")),
		Timeout: timeout,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		NoColor: os.Getenv("NO_COLOR") != "",
	}

	code := menulensctl.Run(context.Background(), os.Args[1:], options)
	os.Exit(code)
}

func envOr(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func parseDurationWithDefault(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "invalid MENULENS_CLI_TIMEOUT %q; using %s\n", raw, fallback)
		return fallback
	}
	return parsed
}
