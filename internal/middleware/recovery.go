package middleware

import (
	"io"
	"runtime/debug"

	"boilerplate_backend/internal/monitoring"
	"boilerplate_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

// Recovery ловит панику хендлера и отвечает 500 в общем формате
func Recovery(monitor *monitoring.ErrorMonitor) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, recovered any) {
		monitor.ReportPanic(c.Request.Context(), recovered, debug.Stack())
		apperrors.HandleError(c, apperrors.ErrInternal)
	})
}
