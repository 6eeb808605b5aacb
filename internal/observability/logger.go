package observability

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/menulens/menulens/internal/config"
)

type ctxKey string

const traceIDKey ctxKey = "trace_id"

// maxSQLAttrLen bounds logged statements; generated SQL can embed long literals.
const maxSQLAttrLen = 2048

var secretAttrKeys = map[string]struct{}{
	"api_key":       {},
	"authorization": {},
	"secret":        {},
	"password":      {},
}

func NewLogger(cfg config.Config, writer io.Writer) *slog.Logger {
	if writer == nil {
		writer = io.Discard
	}
	options := &slog.HandlerOptions{
		Level:       cfg.Observability.LogLevel,
		ReplaceAttr: scrubAttr,
	}
	var handler slog.Handler
	if cfg.Observability.LogJSON {
		handler = slog.NewJSONHandler(writer, options)
	} else {
		handler = slog.NewTextHandler(writer, options)
	}
	return slog.New(handler).With(
		slog.String("service", cfg.Service.Name),
		slog.String("profile", string(cfg.Profile)),
		slog.String("store_driver", cfg.Store.Driver),
		slog.String("ai_provider", cfg.AI.Provider),
	)
}

func scrubAttr(_ []string, attr slog.Attr) slog.Attr {
	key := strings.ToLower(attr.Key)
	if _, ok := secretAttrKeys[key]; ok {
		return slog.String(attr.Key, "[redacted]")
	}
	if key == "sql" && attr.Value.Kind() == slog.KindString {
		if statement := attr.Value.String(); len(statement) > maxSQLAttrLen {
			return slog.String(attr.Key, statement[:maxSQLAttrLen]+"...")
		}
	}
	return attr
}

func ContextWithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey, traceID)
}

func TraceIDFromContext(ctx context.Context) string {
	value, ok := ctx.Value(traceIDKey).(string)
	if !ok {
		return ""
	}
	return value
}
