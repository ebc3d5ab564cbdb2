package middleware

import (
	"context"
	"math"
	"strconv"
	"strings"
	"time"

	"boilerplate_backend/internal/logger"
	"boilerplate_backend/internal/metrics"
	"boilerplate_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

// RateLimitStore - счетчик фиксированного окна
type RateLimitStore interface {
	// Increment увеличивает счетчик ключа и возвращает новое значение и момент сброса окна
	Increment(ctx context.Context, key string, window time.Duration) (int, time.Time, error)
	// Decrement откатывает одно попадание (для SkipSuccessful)
	Decrement(ctx context.Context, key string) error
}

// RateLimitRule - параметры одного лимитера
type RateLimitRule struct {
	Name   string
	Limit  int
	Window time.Duration
	// SkipSuccessful: ответы со статусом < 400 не расходуют лимит
	SkipSuccessful bool
	Skip           func(c *gin.Context) bool
	Message        string
}

func AuthRateLimitRule(limit int, window time.Duration) RateLimitRule {
	return RateLimitRule{
		Name:           "auth",
		Limit:          limit,
		Window:         window,
		SkipSuccessful: true,
		Message:        "Too many login attempts, please try again later",
	}
}

func APIRateLimitRule(limit int, window time.Duration) RateLimitRule {
	return RateLimitRule{
		Name:   "api",
		Limit:  limit,
		Window: window,
		Skip: func(c *gin.Context) bool {
			path := c.Request.URL.Path
			return strings.HasPrefix(path, "/monitoring") ||
				strings.HasPrefix(path, "/api/monitoring") ||
				strings.Contains(c.Request.UserAgent(), "Prometheus")
		},
		Message: "Too many requests, please try again later",
	}
}

func VerificationRateLimitRule(limit int) RateLimitRule {
	return RateLimitRule{
		Name:    "verification",
		Limit:   limit,
		Window:  time.Hour,
		Message: "Too many verification attempts, please try again later",
	}
}

// RateLimit - лимит по IP клиента. Ошибки хранилища не блокируют запрос
func RateLimit(store RateLimitStore, rule RateLimitRule, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rule.Skip != nil && rule.Skip(c) {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		key := rule.Name + ":" + c.ClientIP()

		count, resetAt, err := store.Increment(ctx, key, rule.Window)
		if err != nil {
			logger.CtxWithError(ctx, "rate limit store unavailable", err, "limiter", rule.Name)
			c.Next()
			return
		}

		remaining := rule.Limit - count
		if remaining < 0 {
			remaining = 0
		}
		resetSeconds := int(math.Ceil(time.Until(resetAt).Seconds()))
		if resetSeconds < 0 {
			resetSeconds = 0
		}

		c.Header("RateLimit-Limit", strconv.Itoa(rule.Limit))
		c.Header("RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("RateLimit-Reset", strconv.Itoa(resetSeconds))

		if count > rule.Limit {
			if m != nil {
				m.RateLimitHit(rule.Name)
			}
			c.Header("Retry-After", strconv.Itoa(resetSeconds))
			apperrors.HandleError(c, apperrors.ErrTooManyRequests.WithMessage(rule.Message))
			return
		}

		c.Next()

		if rule.SkipSuccessful && c.Writer.Status() < 400 {
			if err := store.Decrement(ctx, key); err != nil {
				logger.CtxWithError(ctx, "rate limit decrement failed", err, "limiter", rule.Name)
			}
		}
	}
}
