package context

import (
	"context"

	"github.com/google/uuid"
)

const contextKeyTraceID = contextKey("traceID")

// TraceIDFromContext extracts the trace ID from the context.
// Returns the trace ID and true if present, or empty string and false if not present.
func TraceIDFromContext(ctx context.Context) (string, bool) {
	traceID, ok := ctx.Value(contextKeyTraceID).(string)

	return traceID, ok
}

// WithTraceID creates a new context with the given trace ID value.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, contextKeyTraceID, traceID)
}

// WithNewTraceID tags the context with a fresh time-ordered trace ID, so all
// log lines of one front-end command can be correlated.
func WithNewTraceID(ctx context.Context) context.Context {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}

	return WithTraceID(ctx, id.String())
}
