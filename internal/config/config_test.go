package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := []byte("http_port: \"9000\"\ndb_driver: sqlite\ndatabase_url: ./data/app.db\nsession_ttl: 30m\nbcrypt_cost: 10\n")
	require.NoError(t, os.WriteFile(path, body, 0o600))

	t.Setenv("HTTP_PORT", "9100")
	t.Setenv("RATE_LIMIT_PER_MIN", "5")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "9100", cfg.HTTPPort)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "./data/app.db", cfg.DatabaseURL)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Equal(t, 5, cfg.RateLimitPerMin)
}

func TestLoad_InvalidEnvFallsBack(t *testing.T) {
	t.Setenv("SESSION_TTL", "soon")
	t.Setenv("BCRYPT_COST", "lots")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Defaults().SessionTTL, cfg.SessionTTL)
	assert.Equal(t, Defaults().BcryptCost, cfg.BcryptCost)
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("http_port: [unterminated"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*App)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*App) {}},
		{name: "unknown driver", mutate: func(a *App) { a.DBDriver = "mysql" }, wantErr: true},
		{name: "unknown session backend", mutate: func(a *App) { a.SessionBackend = "memcached" }, wantErr: true},
		{name: "unknown rate limit backend", mutate: func(a *App) { a.RateLimitBackend = "disk" }, wantErr: true},
		{name: "default key in production", mutate: func(a *App) { a.Env = "production" }, wantErr: true},
		{name: "custom key in production", mutate: func(a *App) {
			a.Env = "production"
			a.SessionSigningKey = "a-real-secret"
		}},
		{name: "zero ttl", mutate: func(a *App) { a.SessionTTL = 0 }, wantErr: true},
		{name: "bcrypt cost too low", mutate: func(a *App) { a.BcryptCost = 2 }, wantErr: true},
		{name: "no admin password", mutate: func(a *App) { a.AdminPassword = "" }, wantErr: true},
		{name: "zero rate limit", mutate: func(a *App) { a.RateLimitPerMin = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
