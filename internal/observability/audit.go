package observability

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/trace"
)

// Audit logs a catalog mutation (create, delete) with trace correlation.
func Audit(ctx context.Context, logger *slog.Logger, event string, attrs ...any) {
	if logger == nil {
		logger = slog.Default()
	}
	msg := "audit"
	sc := trace.SpanContextFromContext(ctx)
	if sc.IsValid() {
		msg = fmt.Sprintf("audit trace_id=%s span_id=%s", sc.TraceID().String(), sc.SpanID().String())
	}
	base := []any{"event", event}
	base = append(base, attrs...)
	logger.InfoContext(ctx, msg, base...)
}
