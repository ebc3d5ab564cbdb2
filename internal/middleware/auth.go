package middleware

import (
	"strings"

	"boilerplate_backend/internal/auth"
	"boilerplate_backend/internal/logger"
	"boilerplate_backend/internal/models"
	"boilerplate_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

// Ключи gin.Context, которые выставляет AuthMiddleware
const (
	ContextUserID = "userID"
	ContextRole   = "role"
)

// AccessTokenParser - то, что нужно middleware от auth.TokenManager
type AccessTokenParser interface {
	ParseAccessToken(token string) (*auth.AccessClaims, error)
}

// AuthMiddleware - middleware проверки JWT
func AuthMiddleware(tokens AccessTokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			apperrors.HandleError(c, apperrors.ErrNoToken)
			return
		}

		tokenStr := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if tokenStr == "" {
			apperrors.HandleError(c, apperrors.ErrNoToken)
			return
		}

		claims, err := tokens.ParseAccessToken(tokenStr)
		if err != nil {
			apperrors.HandleError(c, apperrors.ErrUnauthorizedToken)
			return
		}

		// Сохраняем claims в контекст
		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextRole, models.UserRole(claims.Role))
		c.Request = c.Request.WithContext(logger.WithUserID(c.Request.Context(), claims.UserID))
		c.Next()
	}
}

// RequireRoles - пропускает только перечисленные роли. Ставится после AuthMiddleware
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	roleSet := make(map[models.UserRole]bool, len(roles))
	for _, r := range roles {
		roleSet[r] = true
	}

	return func(c *gin.Context) {
		roleVal, exists := c.Get(ContextRole)
		if !exists {
			apperrors.HandleError(c, apperrors.ErrAuthenticationMissing)
			return
		}

		role, ok := roleVal.(models.UserRole)
		if !ok || !roleSet[role] {
			apperrors.HandleError(c, apperrors.ErrInsufficientRole)
			return
		}

		c.Next()
	}
}
