package monitoring

import (
	"context"
	"fmt"

	"boilerplate_backend/internal/logger"
	"boilerplate_backend/internal/metrics"
	"boilerplate_backend/pkg/apperrors"
)

// ErrorMonitor - единая точка учета ошибок: лог + счетчик errors_total
type ErrorMonitor struct {
	metrics *metrics.Metrics
}

func NewErrorMonitor(m *metrics.Metrics) *ErrorMonitor {
	return &ErrorMonitor{metrics: m}
}

// Report: операционные AppError идут в warn, всё остальное в error со счетчиком
func (e *ErrorMonitor) Report(ctx context.Context, err error, args ...any) {
	if err == nil {
		return
	}

	if appErr, ok := apperrors.AsAppError(err); ok && appErr.Operational {
		fields := append([]any{
			"code", string(appErr.Code),
			"status", appErr.HTTPCode,
		}, args...)
		if appErr.Err != nil {
			fields = append(fields, "cause", appErr.Err.Error())
		}
		logger.CtxWarn(ctx, appErr.Message, fields...)
		return
	}

	logger.CtxWithError(ctx, "unexpected error", err, args...)
	e.count("unexpected")
}

// ReportPanic логирует восстановленную панику со стеком
func (e *ErrorMonitor) ReportPanic(ctx context.Context, recovered any, stack []byte) {
	logger.CtxError(ctx, "panic recovered",
		"panic", fmt.Sprint(recovered),
		"stack", string(stack),
	)
	e.count("panic")
}

func (e *ErrorMonitor) count(kind string) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Error(kind)
}
