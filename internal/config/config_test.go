package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("SESSION_SECRET", "test-secret")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.Addr())
	assert.Equal(t, 720*time.Hour, cfg.SessionTTL())
	assert.Equal(t, "session", cfg.Session.CookieName)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins())
	assert.Empty(t, cfg.KafkaBrokers())
	assert.True(t, cfg.Scheduler.Enabled)
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
server:
  port: "9000"
session:
  secret: from-file
  ttl: 24h
kafka:
  brokers: "k1:9092, ,k2:9092"
`)
	t.Setenv("SERVER_PORT", "9100")
	t.Setenv("SESSION_COOKIE_SECURE", "true")
	t.Setenv("SMTP_PORT", "2525")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "9100", cfg.Server.Port)
	assert.Equal(t, "from-file", cfg.Session.Secret)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL())
	assert.True(t, cfg.Session.Secure)
	assert.Equal(t, 2525, cfg.SMTP.Port)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers())
}

func TestLoadConfigValidation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing secret", map[string]string{"SESSION_SECRET": ""}},
		{"bad ttl", map[string]string{"SESSION_SECRET": "x", "SESSION_TTL": "forever"}},
		{"bad read timeout", map[string]string{"SESSION_SECRET": "x", "SERVER_READ_TIMEOUT": "soon"}},
		{"zero upload size", map[string]string{"SESSION_SECRET": "x", "SERVER_MAX_UPLOAD_MB": "0"}},
		{"bad integer", map[string]string{"SESSION_SECRET": "x", "SMTP_PORT": "smtp"}},
		{"bad boolean", map[string]string{"SESSION_SECRET": "x", "DB_AUTO_MIGRATE": "sometimes"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
			assert.Error(t, err)
		})
	}
}

func TestGetPostgresConnectionString(t *testing.T) {
	cfg := &Config{}
	cfg.Database.User = "u"
	cfg.Database.Password = "p"
	cfg.Database.Host = "db"
	cfg.Database.Port = "5432"
	cfg.Database.DBName = "alumni"

	assert.Equal(t, "postgres://u:p@db:5432/alumni?sslmode=disable", cfg.GetPostgresConnectionString())
}
