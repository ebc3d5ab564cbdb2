package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Cache выставляет Cache-Control: в production для GET - max-age, иначе no-store
func Cache(duration time.Duration, private, production bool) gin.HandlerFunc {
	if duration <= 0 {
		duration = 5 * time.Minute
	}
	scope := "public"
	if private {
		scope = "private"
	}
	value := fmt.Sprintf("%s, max-age=%d", scope, int(duration.Seconds()))

	return func(c *gin.Context) {
		if production && c.Request.Method == http.MethodGet {
			c.Header("Cache-Control", value)
		} else {
			c.Header("Cache-Control", "no-store")
		}
		c.Next()
	}
}
