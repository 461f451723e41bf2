package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv hides any ambient values for the variables Load reads.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "SERVER_PORT",
		"DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME", "DB_SSLMODE", "DB_MAX_CONNS",
		"JWT_SECRET", "JWT_EXPIRES_IN", "CLIENT_URL", "LOG_LEVEL",
		"AUTH_RATE_LIMIT_RPS", "AUTH_RATE_LIMIT_BURST",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaultsWithEnvSecret(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, ":4000", cfg.Server.Addr())
	assert.Equal(t, "localhost", cfg.DB.Host)
	assert.Equal(t, 5432, cfg.DB.Port)
	assert.Equal(t, "taskmanager", cfg.DB.Name)
	assert.Equal(t, "http://localhost:5173", cfg.CORS.AllowedOrigin)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Zero(t, cfg.RateLimit.RPS)

	ttl, err := cfg.JWT.TTL()
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, ttl)
}

func TestLoadPrecedence(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: "5000"
db:
  host: db.internal
  name: tasks
jwt:
  secret: from-yaml
  expires_in: 1d
log:
  level: debug
`), 0o600))

	t.Setenv("DB_HOST", "db.env")
	t.Setenv("PORT", "6000")
	t.Setenv("CLIENT_URL", "https://app.example.com")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":6000", cfg.Server.Addr())
	assert.Equal(t, "db.env", cfg.DB.Host)
	assert.Equal(t, "tasks", cfg.DB.Name)
	assert.Equal(t, "from-yaml", cfg.JWT.Secret)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "https://app.example.com", cfg.CORS.AllowedOrigin)
	// untouched by yaml or env
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)

	ttl, err := cfg.JWT.TTL()
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, ttl)
}

func TestValidateRequiresSecret(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestValidate(t *testing.T) {
	cfg := Defaults()
	cfg.JWT.Secret = "x"
	require.NoError(t, cfg.Validate())

	cfg.JWT.ExpiresIn = "forever"
	cfg.DB.Port = 0
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jwt.expires_in")
	assert.Contains(t, err.Error(), "db.port")
}

func TestLoadRejectsBadYAML(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", "x")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}
