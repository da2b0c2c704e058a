package services

import (
	"context"
	"log/slog"
	"time"
)

// OperationLogger logs the outcome of one service operation with its duration.
// Client errors are logged below error level.
type OperationLogger struct {
	logger    *slog.Logger
	operation string
	startTime time.Time
	ctx       context.Context
}

func startOperation(ctx context.Context, logger *slog.Logger, operation string, args ...any) *OperationLogger {
	l := logger.With(append([]any{"operation", operation}, args...)...)
	l.DebugContext(ctx, "Starting operation")
	return &OperationLogger{
		logger:    l,
		operation: operation,
		startTime: time.Now(),
		ctx:       ctx,
	}
}

func (ol *OperationLogger) Done(err error, args ...any) {
	attrs := append([]any{"duration", time.Since(ol.startTime)}, args...)

	switch {
	case err == nil:
		ol.logger.InfoContext(ol.ctx, ol.operation+" succeeded", attrs...)
	case IsValidation(err):
		ol.logger.WarnContext(ol.ctx, ol.operation+" rejected", append(attrs, "status", "validation_error", "error", err)...)
	case IsForbidden(err):
		ol.logger.WarnContext(ol.ctx, ol.operation+" rejected", append(attrs, "status", "forbidden", "error", err)...)
	case IsInvalidState(err):
		ol.logger.WarnContext(ol.ctx, ol.operation+" rejected", append(attrs, "status", "invalid_state", "error", err)...)
	case IsNotFound(err):
		ol.logger.InfoContext(ol.ctx, ol.operation+" found nothing", append(attrs, "status", "not_found", "error", err)...)
	default:
		ol.logger.ErrorContext(ol.ctx, ol.operation+" failed", append(attrs, "status", "error", "error", err)...)
	}
}
