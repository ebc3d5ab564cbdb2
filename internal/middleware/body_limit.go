package middleware

import (
	"net/http"

	"boilerplate_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

// BodyLimit ограничивает размер тела. Превышение, обнаруженное при чтении, ловит BindJSON хендлера
func BodyLimit(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > limit {
			apperrors.HandleError(c, apperrors.ErrBodyTooLarge)
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		}
		c.Next()
	}
}
