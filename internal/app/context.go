package app

import (
	"fmt"

	"boilerplate_backend/internal/auth"
	"boilerplate_backend/internal/config"
	"boilerplate_backend/internal/email"
	"boilerplate_backend/internal/metrics"
	"boilerplate_backend/internal/middleware"
	"boilerplate_backend/internal/monitoring"
	"boilerplate_backend/ws"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Context - общие зависимости приложения. Создается один раз и передается в конструкторы
type Context struct {
	Config         *config.Config
	DB             *gorm.DB
	Metrics        *metrics.Metrics
	Hub            *ws.Hub
	ErrorMonitor   *monitoring.ErrorMonitor
	Tokens         *auth.TokenManager
	Email          *email.Service
	RateLimitStore middleware.RateLimitStore
}

// NewContext собирает Context. sender == nil означает "по конфигу": SMTP или лог
func NewContext(cfg *config.Config, db *gorm.DB, sender email.Sender) (*Context, error) {
	m := metrics.New()
	if err := db.Use(m.GormPlugin()); err != nil {
		return nil, fmt.Errorf("failed to register metrics plugin: %w", err)
	}

	templates, err := email.NewTemplateManager()
	if err != nil {
		return nil, fmt.Errorf("failed to load email templates: %w", err)
	}
	if sender == nil {
		sender = email.NewSender(cfg.Email)
	}

	store, err := newRateLimitStore(cfg.Redis)
	if err != nil {
		return nil, err
	}

	return &Context{
		Config:       cfg,
		DB:           db,
		Metrics:      m,
		Hub:          ws.NewHub(m),
		ErrorMonitor: monitoring.NewErrorMonitor(m),
		Tokens: auth.NewTokenManager(
			cfg.JWT.Secret, cfg.JWT.RefreshSecret,
			cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL,
		),
		Email:          email.NewService(sender, templates, cfg.Server.AppName, cfg.Server.URL, cfg.Server.FrontendURL),
		RateLimitStore: store,
	}, nil
}

// newRateLimitStore: Redis, если задан REDIS_URL, иначе память процесса
func newRateLimitStore(cfg config.RedisConfig) (middleware.RateLimitStore, error) {
	if cfg.URL == "" {
		return middleware.NewMemoryStore(), nil
	}
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	return middleware.NewRedisStore(redis.NewClient(opts)), nil
}
