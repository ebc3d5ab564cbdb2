package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"boilerplate_backend/database"
	"boilerplate_backend/internal/config"
	"boilerplate_backend/internal/email"
	"boilerplate_backend/internal/handlers"
	"boilerplate_backend/internal/logger"
	"boilerplate_backend/internal/middleware"
	"boilerplate_backend/internal/repositories"
	"boilerplate_backend/internal/routes"
	"boilerplate_backend/internal/services"
	"boilerplate_backend/internal/validator"
	"boilerplate_backend/internal/workers"
	"boilerplate_backend/ws"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// App - собранное приложение: контекст, роутер и фоновые задачи
type App struct {
	Ctx      *Context
	Router   *gin.Engine
	UserRepo repositories.UserRepository
	Worker   *workers.TokenCleanupWorker
}

// New строит репозитории -> сервисы -> хэндлеры -> роутер
func New(cfg *config.Config, db *gorm.DB, sender email.Sender) (*App, error) {
	appCtx, err := NewContext(cfg, db, sender)
	if err != nil {
		return nil, err
	}

	userRepo := repositories.NewUserRepository(db)

	// 1. Инициализируем сервисы
	serviceContainer := services.NewServiceContainer(userRepo, appCtx.Tokens, appCtx.Email, appCtx.Metrics)

	// 2. Инициализируем хэндлеры
	appHandlers, err := initializeHandlers(appCtx, serviceContainer)
	if err != nil {
		return nil, err
	}

	// 3. WebSocket
	wsHandler := ws.NewWebSocketHandler(appCtx.Hub)

	// 4. Gin и маршруты
	ginRouter := initializeGinRouter(appCtx)
	routes.RegisterRoutes(ginRouter, appHandlers, wsHandler, routes.Dependencies{
		Tokens:         appCtx.Tokens,
		RateLimitStore: appCtx.RateLimitStore,
		RateLimit:      cfg.RateLimit,
		Metrics:        appCtx.Metrics,
		Production:     cfg.IsProduction(),
	})

	return &App{
		Ctx:      appCtx,
		Router:   ginRouter,
		UserRepo: userRepo,
		Worker:   workers.NewTokenCleanupWorker(userRepo, cfg.Worker.TokenCleanupInterval),
	}, nil
}

func initializeHandlers(appCtx *Context, services *services.ServiceContainer) (*handlers.AppHandlers, error) {
	baseHandler := handlers.NewBaseHandler(validator.New(), appCtx.ErrorMonitor)

	sqlDB, err := appCtx.DB.DB()
	if err != nil {
		return nil, err
	}

	return &handlers.AppHandlers{
		AuthHandler:       handlers.NewAuthHandler(baseHandler, services.AuthService),
		UserHandler:       handlers.NewUserHandler(baseHandler, services.UserService),
		MonitoringHandler: handlers.NewMonitoringHandler(baseHandler, sqlDB, appCtx.Metrics.Handler()),
	}, nil
}

func initializeGinRouter(appCtx *Context) *gin.Engine {
	cfg := appCtx.Config

	router := gin.New()
	if err := router.SetTrustedProxies(cfg.Server.TrustedProxies); err != nil {
		logger.WithError(err).Warn("Invalid trusted proxies, ignoring")
	}

	router.Use(middleware.Recovery(appCtx.ErrorMonitor))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	router.Use(middleware.CORS(cfg.CORS.Origins))
	router.Use(middleware.BodyLimit(cfg.Server.BodyLimit))
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.MetricsMiddleware(appCtx.Metrics, "/monitoring/metrics", "/api/monitoring/metrics"))
	return router
}

// Start запускает хаб WebSocket и воркер очистки токенов
func (a *App) Start(ctx context.Context) {
	go a.Ctx.Hub.Run(ctx)
	a.Worker.Start(ctx)

	if total, err := a.UserRepo.Count(ctx); err == nil {
		a.Ctx.Metrics.SetActiveUsers(total)
	}
}

// Run - точка входа cmd/web
func Run() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", "error", err)
	}
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	logger.Init(cfg.Server.Env)
	logger.Info("Logger initialized", "env", cfg.Server.Env)

	logger.Info("Connecting to database...", "driver", cfg.Database.Driver)
	db, err := database.Connect(cfg.Database, cfg.IsDevelopment())
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("Failed to get *sql.DB from GORM", "error", err)
	}
	if err = sqlDB.Ping(); err != nil {
		logger.Fatal("Database unavailable", "error", err)
	}
	defer sqlDB.Close()
	logger.Info("Database connected")

	if err := database.Migrate(db); err != nil {
		logger.Fatal("Failed to migrate database", "error", err)
	}

	application, err := New(cfg, db, nil)
	if err != nil {
		logger.Fatal("Failed to build application", "error", err)
	}

	if err := SeedFirstAdmin(context.Background(), application.UserRepo, cfg.Seed); err != nil {
		logger.Fatal("Failed to seed first admin user", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application.Start(ctx)

	srv := &http.Server{
		Addr:    cfg.Addr(),
		Handler: application.Router,
	}

	go func() {
		logger.Info("Server starting", "addr", srv.Addr, "env", cfg.Server.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server startup error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutdown signal received")

	application.Ctx.Hub.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Could not close connections in time, forcing shutdown")
		return
	}
	logger.Info("HTTP server closed")
}
