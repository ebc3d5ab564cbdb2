package routes

import (
	"time"

	_ "boilerplate_backend/docs"
	"boilerplate_backend/internal/config"
	"boilerplate_backend/internal/handlers"
	"boilerplate_backend/internal/logger"
	"boilerplate_backend/internal/metrics"
	"boilerplate_backend/internal/middleware"
	"boilerplate_backend/internal/models"
	"boilerplate_backend/ws"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Dependencies - всё, что нужно маршрутам кроме хэндлеров
type Dependencies struct {
	Tokens         middleware.AccessTokenParser
	RateLimitStore middleware.RateLimitStore
	RateLimit      config.RateLimitConfig
	Metrics        *metrics.Metrics
	Production     bool
}

// RegisterRoutes регистрирует все HTTP и WebSocket маршруты.
func RegisterRoutes(
	ginRouter *gin.Engine,
	appHandlers *handlers.AppHandlers,
	wsHandler *ws.WebSocketHandler,
	deps Dependencies,
) {
	ginRouter.GET("/", appHandlers.MonitoringHandler.Home)
	ginRouter.GET("/health", appHandlers.MonitoringHandler.Health)

	api := ginRouter.Group("/api")
	api.Use(deps.limiter(middleware.APIRateLimitRule(deps.RateLimit.APILimit, deps.RateLimit.Window)))
	{
		registerAuthRoutes(api, appHandlers.AuthHandler, deps)
		registerUserRoutes(api, appHandlers.UserHandler, deps)
		registerMonitoringRoutes(api.Group("/monitoring"), appHandlers.MonitoringHandler)
	}

	registerMonitoringRoutes(ginRouter.Group("/monitoring"), appHandlers.MonitoringHandler)

	ginRouter.GET("/api-docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	ginRouter.GET("/ws", wsHandler.ServeWS)
	logger.Info("WebSocket route /ws registered")

	ginRouter.NoRoute(middleware.NotFound())
}

func registerAuthRoutes(api *gin.RouterGroup, h *handlers.AuthHandler, deps Dependencies) {
	auth := api.Group("/auth")
	auth.Use(deps.limiter(middleware.AuthRateLimitRule(deps.RateLimit.AuthLimit, deps.RateLimit.Window)))
	{
		auth.POST("/signup", h.Signup)
		auth.POST("/login", h.Login)
		auth.POST("/refresh", h.Refresh)
		auth.GET("/verify-email/:token", h.VerifyEmail)
		auth.POST("/resend-verification",
			deps.limiter(middleware.VerificationRateLimitRule(deps.RateLimit.VerificationLimit)),
			h.ResendVerification,
		)
		auth.POST("/forgot-password", h.ForgotPassword)
		auth.POST("/reset-password/:token", h.ResetPassword)

		auth.POST("/logout", middleware.AuthMiddleware(deps.Tokens), h.Logout)
		auth.GET("/me", middleware.AuthMiddleware(deps.Tokens), h.Me)
	}
}

func registerUserRoutes(api *gin.RouterGroup, h *handlers.UserHandler, deps Dependencies) {
	users := api.Group("/users")
	users.Use(middleware.AuthMiddleware(deps.Tokens))
	{
		users.GET("/:id", middleware.Cache(time.Minute, true, deps.Production), h.Get)

		admin := users.Group("")
		admin.Use(middleware.RequireRoles(models.UserRoleAdmin))
		{
			admin.GET("", middleware.Cache(5*time.Minute, true, deps.Production), h.List)
			admin.POST("", h.Create)
			admin.PATCH("/:id", h.Update)
			admin.DELETE("/:id", h.Delete)
		}
	}
}

func registerMonitoringRoutes(rg *gin.RouterGroup, h *handlers.MonitoringHandler) {
	rg.GET("/metrics", h.Metrics)
	rg.GET("/health", h.Health)
	rg.GET("/readiness", h.Readiness)
	rg.GET("/liveness", h.Liveness)
	rg.POST("/alerts", h.Alerts)
}

// limiter - пустой middleware, если лимиты выключены
func (d Dependencies) limiter(rule middleware.RateLimitRule) gin.HandlerFunc {
	if !d.RateLimit.Enabled || d.RateLimitStore == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return middleware.RateLimit(d.RateLimitStore, rule, d.Metrics)
}
