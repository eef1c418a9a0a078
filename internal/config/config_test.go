package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "inventory-service", cfg.App.Name)
	assert.Equal(t, "0.0.0.0:8080", cfg.App.Addr())
	assert.Equal(t, 30*time.Second, cfg.App.RequestTimeout())
	assert.Equal(t, 15*time.Minute, cfg.Auth.AccessTokenTTL())
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.RefreshTokenTTL())
	assert.Equal(t, 5, cfg.Auth.LoginMaxAttempts)
	assert.Equal(t, "inventory.movements", cfg.AMQP.MovementsQueue)
	assert.Empty(t, cfg.AMQP.URL)
	assert.Equal(t, 10*time.Second, cfg.Client.Timeout())
	assert.Equal(t, 5, cfg.Client.QueueMaxAttempts)
}

func TestLoad_FromEnvAndDotEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	content := "APP_PORT=9090\nAUTH_REFRESH_TOKEN_TTL_DAYS=30\nCLIENT_TIMEOUT_SECONDS=3\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(content), 0o644))

	t.Setenv("AUTH_ACCESS_TOKEN_TTL_MINUTES", "5")
	t.Setenv("POSTGRES_RUN_MIGRATIONS", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.App.Port)
	assert.Equal(t, 30*24*time.Hour, cfg.Auth.RefreshTokenTTL())
	assert.Equal(t, 5*time.Minute, cfg.Auth.AccessTokenTTL())
	assert.Equal(t, 3*time.Second, cfg.Client.Timeout())
	assert.False(t, cfg.Postgres.RunMigrations)
}

func TestLoad_InvalidValues(t *testing.T) {
	chdir(t, t.TempDir())

	t.Run("invalid redis db", func(t *testing.T) {
		t.Setenv("REDIS_DB", "abc")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("unparsable int falls back to default", func(t *testing.T) {
		t.Setenv("AUTH_BCRYPT_COST", "high")
		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, 12, cfg.Auth.BcryptCost)
	})
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			App:  AppConfig{Env: "development"},
			Auth: AuthConfig{JWTSecret: defaultJWTSecret, AccessTokenTTLMinutes: 15, RefreshTokenTTLDays: 7},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "development default secret ok", mutate: func(*Config) {}},
		{name: "production default secret rejected", mutate: func(c *Config) { c.App.Env = "production" }, wantErr: true},
		{name: "production custom secret ok", mutate: func(c *Config) {
			c.App.Env = "production"
			c.Auth.JWTSecret = "s3cr3t"
		}},
		{name: "zero access ttl", mutate: func(c *Config) { c.Auth.AccessTokenTTLMinutes = 0 }, wantErr: true},
		{name: "negative refresh ttl", mutate: func(c *Config) { c.Auth.RefreshTokenTTLDays = -1 }, wantErr: true},
		{name: "bootstrap email without password", mutate: func(c *Config) { c.Auth.BootstrapEmail = "hr@example.com" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
