package logging

import (
	"context"
	"log/slog"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldApplicationID is the standardized structured logging key for application identifiers.
	FieldApplicationID = "application_id"
	// FieldJobID is the standardized structured logging key for job identifiers.
	FieldJobID = "job_id"
	// FieldActorID is the standardized structured logging key for the acting identity.
	FieldActorID = "actor_id"
	// FieldStage is the standardized structured logging key for pipeline stage names.
	FieldStage = "stage"
	// FieldCorrelationID is the standardized structured logging key for request correlation identifiers.
	FieldCorrelationID = "correlation_id"
)

type contextKey int

const (
	ctxKeyApplicationID contextKey = iota
	ctxKeyActorID
	ctxKeyCorrelationID
)

// WithApplicationID attaches an application identifier to the context.
func WithApplicationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKeyApplicationID, id)
}

// WithActorID attaches the acting identity to the context.
func WithActorID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKeyActorID, id)
}

// WithCorrelationID attaches a request correlation identifier to the context.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKeyCorrelationID, id)
}

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 3)
	if id, ok := ctx.Value(ctxKeyApplicationID).(string); ok && id != "" {
		fields = append(fields, slog.String(FieldApplicationID, id))
	}
	if id, ok := ctx.Value(ctxKeyActorID).(string); ok && id != "" {
		fields = append(fields, slog.String(FieldActorID, id))
	}
	if id, ok := ctx.Value(ctxKeyCorrelationID).(string); ok && id != "" {
		fields = append(fields, slog.String(FieldCorrelationID, id))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from
// the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(Args(fields...)...)
}
