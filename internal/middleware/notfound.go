package middleware

import (
	"boilerplate_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

func NotFound() gin.HandlerFunc {
	return func(c *gin.Context) {
		apperrors.HandleError(c, apperrors.ErrRouteNotFound)
	}
}
