package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DB_USER", "app")
	t.Setenv("DB_PASSWORD", "p@ss:word")
	t.Setenv("DB_NAME", "profiles")
	t.Setenv("JWT_SECRET", "0123456789abcdef0123456789abcdef")
}

func TestLoadConfig_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, 10, cfg.Database.MaxConns)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.Equal(t, "HS256", cfg.Auth.JWTAlgorithm)
	assert.Equal(t, time.Hour, cfg.Auth.TokenDuration)
	assert.Equal(t, "./uploads", cfg.Upload.Dir)
	assert.Equal(t, int64(5<<20), cfg.Upload.MaxBytes)
	assert.Equal(t, "5000", cfg.Server.Port)
	assert.Equal(t, "http://localhost:5000", cfg.Server.PublicBaseURL)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Empty(t, cfg.Log.File)
}

func TestLoadConfig_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("JWT_ALGORITHM", "hs512")
	t.Setenv("JWT_EXPIRY", "15m")
	t.Setenv("PUBLIC_BASE_URL", "https://cdn.example.com/")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com,https://b.example.com")
	t.Setenv("UPLOAD_MAX_BYTES", "1024")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "HS512", cfg.Auth.JWTAlgorithm)
	assert.Equal(t, 15*time.Minute, cfg.Auth.TokenDuration)
	assert.Equal(t, "https://cdn.example.com", cfg.Server.PublicBaseURL)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, int64(1024), cfg.Upload.MaxBytes)
}

func TestLoadConfig_MissingRequired(t *testing.T) {
	t.Setenv("DB_USER", "")
	t.Setenv("DB_PASSWORD", "")
	t.Setenv("DB_NAME", "")
	t.Setenv("JWT_SECRET", "")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration errors")
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := &AppConfig{
		Database: DatabaseConfig{Port: 0, MaxConns: 500, SSLMode: "sometimes"},
		Auth:     AuthConfig{JWTSecret: "short", JWTAlgorithm: "RS256", TokenDuration: 0},
		Upload:   UploadConfig{Dir: "", MaxBytes: 0},
		Server:   ServerConfig{PublicBaseURL: "not a url"},
		Log:      LogConfig{Level: "loud", Format: "xml"},
	}

	err := cfg.Validate()
	require.Error(t, err)
	msg := err.Error()
	for _, want := range []string{
		"DB_USER", "DB_NAME", "DB_POOL_SIZE", "DB_PORT", "DB_SSLMODE", "JWT_ALGORITHM", "JWT_SECRET", "JWT_EXPIRY",
		"UPLOAD_DIR", "UPLOAD_MAX_BYTES", "PUBLIC_BASE_URL", "LOG_LEVEL", "LOG_FORMAT",
	} {
		assert.Contains(t, msg, want)
	}
}

func TestDSN_EscapesPassword(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss/word", Name: "profiles"}
	assert.Equal(t, "postgres://app:p%40ss%2Fword@db:5432/profiles?sslmode=disable", d.DSN())
}

func TestDSN_SSLMode(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5432, User: "app", Password: "pw", Name: "profiles", SSLMode: "verify-full"}
	assert.Equal(t, "postgres://app:pw@db:5432/profiles?sslmode=verify-full", d.DSN())
}

func TestLoadDatabaseConfig_IgnoresHTTPSettings(t *testing.T) {
	t.Setenv("DB_USER", "app")
	t.Setenv("DB_PASSWORD", "pw")
	t.Setenv("DB_NAME", "profiles")
	t.Setenv("DB_SSLMODE", "Require")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("PUBLIC_BASE_URL", "not a url")
	t.Setenv("LOG_LEVEL", "loud")

	cfg, err := LoadDatabaseConfig()
	require.NoError(t, err)
	assert.Equal(t, "app", cfg.User)
	assert.Equal(t, "require", cfg.SSLMode)
	assert.Contains(t, cfg.DSN(), "sslmode=require")

	_, err = LoadConfig()
	assert.Error(t, err)
}

func TestLoadDatabaseConfig_Invalid(t *testing.T) {
	t.Setenv("DB_USER", "app")
	t.Setenv("DB_PASSWORD", "pw")
	t.Setenv("DB_NAME", "profiles")
	t.Setenv("DB_POOL_SIZE", "0")
	t.Setenv("DB_SSLMODE", "sometimes")

	_, err := LoadDatabaseConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_POOL_SIZE")
	assert.Contains(t, err.Error(), "DB_SSLMODE")
}
