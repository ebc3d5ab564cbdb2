package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("APP_ENV", "test")
	t.Setenv("DATABASE_URL", "file::memory:")
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("REFRESH_TOKEN_SECRET", testSecret+"r")
}

func TestLoad_Defaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "http://localhost:3000", cfg.Server.URL)
	assert.Equal(t, 15*time.Minute, cfg.JWT.AccessTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.JWT.RefreshTTL)
	assert.Equal(t, int64(10<<10), cfg.Server.BodyLimit)
	assert.False(t, cfg.RateLimit.Enabled)
	assert.True(t, cfg.IsTest())
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	setBaseEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	yamlBody := "server:\n  port: 4000\n  app_name: FromFile\njwt:\n  access_expiry: 30m\n"
	require.NoError(t, os.WriteFile(path, []byte(yamlBody), 0o600))
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("PORT", "5000")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.Server.Port)
	assert.Equal(t, "FromFile", cfg.Server.AppName)
	assert.Equal(t, 30*time.Minute, cfg.JWT.AccessTTL)
}

func TestLoad_RateLimitEnabled(t *testing.T) {
	tests := []struct {
		name string
		env  string
		yaml string
		flag string
		want bool
	}{
		{"test env defaults off", "test", "", "", false},
		{"development defaults on", "development", "", "", true},
		{"yaml turns it off", "development", "rate_limit:\n  enabled: false\n", "", false},
		{"yaml turns it on in test", "test", "rate_limit:\n  enabled: true\n", "", true},
		{"env beats yaml", "development", "rate_limit:\n  enabled: true\n", "false", false},
		{"env turns it on in test", "test", "", "true", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setBaseEnv(t)
			t.Setenv("APP_ENV", tt.env)
			if tt.yaml != "" {
				path := filepath.Join(t.TempDir(), "config.yaml")
				require.NoError(t, os.WriteFile(path, []byte(tt.yaml), 0o600))
				t.Setenv("CONFIG_PATH", path)
			}
			if tt.flag != "" {
				t.Setenv("RATE_LIMIT_ENABLED", tt.flag)
			}

			cfg, err := Load()
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.RateLimit.Enabled)
		})
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"short jwt secret", "JWT_SECRET", "short"},
		{"port out of range", "PORT", "80"},
		{"bad env", "APP_ENV", "staging"},
		{"bad expiry", "JWT_EXPIRY", "15 minutes"},
		{"bad driver", "DATABASE_DRIVER", "oracle"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setBaseEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoad_ProductionRequiresSMTP(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("APP_ENV", "production")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SMTP_HOST")

	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("SMTP_FROM", "noreply@example.com")
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.RateLimit.Enabled)
}

func TestLoad_LegacyAliases(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("APP_ENV", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DATABASE_DRIVER", "")
	t.Setenv("NODE_ENV", "test")
	t.Setenv("MYSQL_DATABASE_URL", "user:pass@tcp(localhost:3306)/app")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "test", cfg.Server.Env)
	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, "user:pass@tcp(localhost:3306)/app", cfg.Database.URL)
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"15m", 15 * time.Minute, false},
		{"7d", 7 * 24 * time.Hour, false},
		{"1h", time.Hour, false},
		{"30s", 30 * time.Second, false},
		{"xd", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseDuration(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}
