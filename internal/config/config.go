package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"
)

type ServerConfig struct {
	Host            string        `yaml:"host" env:"HOST"`
	Port            int           `yaml:"port" env:"PORT" validate:"min=1024,max=65535"`
	Env             string        `yaml:"env" env:"APP_ENV" validate:"oneof=development production test"`
	AppName         string        `yaml:"app_name" env:"APP_NAME"`
	URL             string        `yaml:"url" env:"SERVER_URL" validate:"url"`
	FrontendURL     string        `yaml:"frontend_url" env:"FRONTEND_URL" validate:"url"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`
	BodyLimit       int64         `yaml:"body_limit" env:"BODY_LIMIT"`
	TrustedProxies  []string      `yaml:"trusted_proxies" env:"TRUSTED_PROXIES" envSeparator:","`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver" env:"DATABASE_DRIVER" validate:"oneof=postgres mysql sqlite"`
	URL    string `yaml:"url" env:"DATABASE_URL" validate:"required"`
}

type JWTConfig struct {
	Secret        string `yaml:"secret" env:"JWT_SECRET" validate:"required,min=32"`
	RefreshSecret string `yaml:"refresh_secret" env:"REFRESH_TOKEN_SECRET" validate:"required,min=32"`
	AccessExpiry  string `yaml:"access_expiry" env:"JWT_EXPIRY" validate:"expiry"`
	RefreshExpiry string `yaml:"refresh_expiry" env:"REFRESH_TOKEN_EXPIRY" validate:"expiry"`

	AccessTTL  time.Duration `yaml:"-" env:"-"`
	RefreshTTL time.Duration `yaml:"-" env:"-"`
}

type EmailConfig struct {
	SMTPHost     string `yaml:"smtp_host" env:"SMTP_HOST"`
	SMTPPort     int    `yaml:"smtp_port" env:"SMTP_PORT"`
	SMTPUsername string `yaml:"smtp_user" env:"SMTP_USER"`
	SMTPPassword string `yaml:"smtp_password" env:"SMTP_PASS"`
	FromEmail    string `yaml:"from_email" env:"SMTP_FROM"`
	FromName     string `yaml:"from_name" env:"SMTP_FROM_NAME"`
	UseTLS       bool   `yaml:"use_tls" env:"SMTP_TLS"`
}

type RateLimitConfig struct {
	Enabled           bool          `yaml:"enabled" env:"RATE_LIMIT_ENABLED"`
	AuthLimit         int           `yaml:"auth_limit" env:"RATE_LIMIT_AUTH"`
	APILimit          int           `yaml:"api_limit" env:"RATE_LIMIT_API"`
	VerificationLimit int           `yaml:"verification_limit" env:"RATE_LIMIT_VERIFICATION"`
	Window            time.Duration `yaml:"window" env:"RATE_LIMIT_WINDOW"`

	// enabled задан в yaml явно
	enabledSet bool
}

func (r *RateLimitConfig) UnmarshalYAML(unmarshal func(interface{}) error) error {
	type plain RateLimitConfig
	if err := unmarshal((*plain)(r)); err != nil {
		return err
	}
	var raw map[string]interface{}
	if err := unmarshal(&raw); err != nil {
		return err
	}
	_, r.enabledSet = raw["enabled"]
	return nil
}

type RedisConfig struct {
	URL string `yaml:"url" env:"REDIS_URL"`
}

type CORSConfig struct {
	Origins []string `yaml:"origins" env:"CORS_ORIGINS" envSeparator:","`
}

type SeedConfig struct {
	FirstAdminEmail    string `yaml:"first_admin_email" env:"FIRST_ADMIN_EMAIL"`
	FirstAdminPassword string `yaml:"first_admin_password" env:"FIRST_ADMIN_PASSWORD"`
}

type WorkerConfig struct {
	TokenCleanupInterval time.Duration `yaml:"token_cleanup_interval" env:"TOKEN_CLEANUP_INTERVAL"`
}

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	JWT       JWTConfig       `yaml:"jwt"`
	Email     EmailConfig     `yaml:"email"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Redis     RedisConfig     `yaml:"redis"`
	CORS      CORSConfig      `yaml:"cors"`
	Seed      SeedConfig      `yaml:"seed"`
	Worker    WorkerConfig    `yaml:"worker"`
}

func (c *Config) IsProduction() bool  { return c.Server.Env == EnvProduction }
func (c *Config) IsDevelopment() bool { return c.Server.Env == EnvDevelopment }
func (c *Config) IsTest() bool        { return c.Server.Env == EnvTest }

// Addr возвращает адрес для http.Server
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

var expiryPattern = regexp.MustCompile(`^\d+[smhd]$`)

// Load собирает конфигурацию: .env -> yaml -> переменные окружения -> дефолты -> валидация
func Load() (*Config, error) {
	// .env не обязателен
	_ = godotenv.Load()

	var cfg Config

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	if err := loadFile(configPath, &cfg); err != nil {
		return nil, err
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	applyAliases(&cfg)
	applyDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	var err error
	if cfg.JWT.AccessTTL, err = ParseDuration(cfg.JWT.AccessExpiry); err != nil {
		return nil, fmt.Errorf("JWT_EXPIRY: %w", err)
	}
	if cfg.JWT.RefreshTTL, err = ParseDuration(cfg.JWT.RefreshExpiry); err != nil {
		return nil, fmt.Errorf("REFRESH_TOKEN_EXPIRY: %w", err)
	}

	return &cfg, nil
}

func loadFile(path string, cfg *Config) error {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to open config file at %s: %w", path, err)
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
		return fmt.Errorf("failed to parse config file at %s: %w", path, err)
	}
	return nil
}

// Старые имена переменных из express-версии
func applyAliases(cfg *Config) {
	if v := os.Getenv("NODE_ENV"); v != "" && os.Getenv("APP_ENV") == "" {
		cfg.Server.Env = v
	}
	if v := os.Getenv("MYSQL_DATABASE_URL"); v != "" && os.Getenv("DATABASE_URL") == "" {
		cfg.Database.URL = v
		if os.Getenv("DATABASE_DRIVER") == "" {
			cfg.Database.Driver = "mysql"
		}
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 3000
	}
	if cfg.Server.Env == "" {
		cfg.Server.Env = EnvDevelopment
	}
	if cfg.Server.AppName == "" {
		cfg.Server.AppName = "Boilerplate API"
	}
	if cfg.Server.URL == "" {
		cfg.Server.URL = "http://localhost:" + strconv.Itoa(cfg.Server.Port)
	}
	if cfg.Server.FrontendURL == "" {
		cfg.Server.FrontendURL = "http://localhost:3001"
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}
	if cfg.Server.BodyLimit == 0 {
		cfg.Server.BodyLimit = 10 << 10
	}

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "postgres"
	}

	if cfg.JWT.AccessExpiry == "" {
		cfg.JWT.AccessExpiry = "15m"
	}
	if cfg.JWT.RefreshExpiry == "" {
		cfg.JWT.RefreshExpiry = "7d"
	}

	if cfg.Email.SMTPPort == 0 {
		cfg.Email.SMTPPort = 587
	}
	if cfg.Email.FromName == "" {
		cfg.Email.FromName = cfg.Server.AppName
	}

	if cfg.RateLimit.AuthLimit == 0 {
		cfg.RateLimit.AuthLimit = 50
	}
	if cfg.RateLimit.APILimit == 0 {
		cfg.RateLimit.APILimit = 50
	}
	if cfg.RateLimit.VerificationLimit == 0 {
		cfg.RateLimit.VerificationLimit = 3
	}
	if cfg.RateLimit.Window == 0 {
		cfg.RateLimit.Window = 15 * time.Minute
	}
	if _, ok := os.LookupEnv("RATE_LIMIT_ENABLED"); !ok && !cfg.RateLimit.enabledSet {
		cfg.RateLimit.Enabled = cfg.Server.Env != EnvTest
	}

	if len(cfg.CORS.Origins) == 0 {
		cfg.CORS.Origins = []string{cfg.Server.FrontendURL}
	}

	if cfg.Worker.TokenCleanupInterval == 0 {
		cfg.Worker.TokenCleanupInterval = time.Hour
	}
}

func validate(cfg *Config) error {
	v := validator.New()
	_ = v.RegisterValidation("expiry", func(fl validator.FieldLevel) bool {
		return expiryPattern.MatchString(fl.Field().String())
	})

	if err := v.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s: failed on '%s'", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// В production письма должны реально уходить
	if cfg.IsProduction() {
		if cfg.Email.SMTPHost == "" || cfg.Email.FromEmail == "" {
			return errors.New("invalid configuration: SMTP_HOST and SMTP_FROM are required in production")
		}
	}
	return nil
}

// ParseDuration понимает всё, что и time.ParseDuration, плюс суффикс "d" (дни)
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if strings.HasSuffix(s, "d") {
		days, err := strconv.Atoi(strings.TrimSuffix(s, "d"))
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q", s)
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	return d, nil
}
