package logger

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// OperationLogger tags every unit of work with a correlation id so log
// records produced by one logical operation can be traced across components.
type OperationLogger struct {
	log *slog.Logger
}

// NewOperationLogger wraps the given logger. A nil logger falls back to the
// process default.
func NewOperationLogger(log *slog.Logger) *OperationLogger {
	if log == nil {
		log = slog.Default()
	}
	return &OperationLogger{log: log}
}

func (l *OperationLogger) Info(msg string, args ...any) {
	l.log.Info(msg, args...)
}

func (l *OperationLogger) Error(msg string, args ...any) {
	l.log.Error(msg, args...)
}

func (l *OperationLogger) Debug(msg string, args ...any) {
	l.log.Debug(msg, args...)
}

// Operation runs work inside a correlation-tagged logging scope. The scope
// logs entry, outcome and elapsed time; the result or error of work is
// forwarded unchanged.
func Operation[T any](ctx context.Context, l *OperationLogger, category, name string, work func(context.Context) (T, error)) (T, error) {
	log := l.log.
		With("category", category).
		With("operation", name).
		With("correlation_id", uuid.NewString())

	start := time.Now()
	log.Info("operation started")

	result, err := work(ctx)
	if err != nil {
		log.
			With("err", err.Error()).
			With("elapsed", time.Since(start).String()).
			Error("operation failed")
		return result, err
	}

	log.
		With("elapsed", time.Since(start).String()).
		Info("operation completed")

	return result, nil
}
