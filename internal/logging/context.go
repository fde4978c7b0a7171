package logging

import (
	"context"
	"log/slog"
)

const (
	FieldComponent = "component"
	FieldJobID     = "job_id"
	FieldStage     = "stage"
)

type ctxKey int

const (
	jobIDKey ctxKey = iota
	stageKey
)

// WithJobID tags ctx with a job identifier.
func WithJobID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, jobIDKey, id)
}

// WithStage tags ctx with the running stage.
func WithStage(ctx context.Context, stage string) context.Context {
	return context.WithValue(ctx, stageKey, stage)
}

// ContextFields extracts the job and stage attributes carried by ctx.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	var out []slog.Attr
	if id, ok := ctx.Value(jobIDKey).(string); ok && id != "" {
		out = append(out, slog.String(FieldJobID, id))
	}
	if stage, ok := ctx.Value(stageKey).(string); ok && stage != "" {
		out = append(out, slog.String(FieldStage, stage))
	}
	return out
}

// WithContext returns logger augmented with the fields carried by ctx.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	args := make([]any, 0, len(fields))
	for _, f := range fields {
		args = append(args, f)
	}
	return logger.With(args...)
}

// Component returns logger tagged with a component name, or a no-op logger
// tagged the same way when logger is nil.
func Component(logger *slog.Logger, name string) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	return logger.With(slog.String(FieldComponent, name))
}
