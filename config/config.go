// Package config loads the service configuration from environment variables.
// Values are read with cleanenv struct tags; semantic checks are collected
// and reported as a single error so an operator sees every problem at once.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// DatabaseConfig holds the connection settings for the credential store.
type DatabaseConfig struct {
	Host     string `env:"DB_HOST" env-default:"localhost"`
	Port     int    `env:"DB_PORT" env-default:"5432"`
	User     string `env:"DB_USER" env-required:"true"`
	Password string `env:"DB_PASSWORD" env-required:"true"`
	Name     string `env:"DB_NAME" env-required:"true"`
	MaxConns int    `env:"DB_POOL_SIZE" env-default:"10"`
	SSLMode  string `env:"DB_SSLMODE" env-default:"disable"`
}

// AuthConfig holds token signing settings.
type AuthConfig struct {
	JWTSecret     string        `env:"JWT_SECRET" env-required:"true"`
	JWTAlgorithm  string        `env:"JWT_ALGORITHM" env-default:"HS256"`
	TokenDuration time.Duration `env:"JWT_EXPIRY" env-default:"1h"`
}

// UploadConfig describes where profile pictures live and how large they may be.
type UploadConfig struct {
	Dir      string `env:"UPLOAD_DIR" env-default:"./uploads"`
	MaxBytes int64  `env:"UPLOAD_MAX_BYTES" env-default:"5242880"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port           string   `env:"PORT" env-default:"5000"`
	PublicBaseURL  string   `env:"PUBLIC_BASE_URL" env-default:"http://localhost:5000"`
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" env-separator:"," env-default:"*"`
}

// LogConfig controls the process logger.
type LogConfig struct {
	Level  string `env:"LOG_LEVEL" env-default:"info"`
	Format string `env:"LOG_FORMAT" env-default:"json"`
	File   string `env:"LOG_FILE"`
}

// AppConfig is the top-level configuration structure for the application.
type AppConfig struct {
	Database DatabaseConfig
	Auth     AuthConfig
	Upload   UploadConfig
	Server   ServerConfig
	Log      LogConfig
}

// supportedAlgorithms are the HMAC algorithms accepted for JWT_ALGORITHM.
var supportedAlgorithms = map[string]bool{"HS256": true, "HS384": true, "HS512": true}

const minSecretLength = 16

// LoadConfig reads the environment into an AppConfig and validates it.
func LoadConfig() (*AppConfig, error) {
	var cfg AppConfig
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("configuration errors:\n- %v", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadDatabaseConfig reads and validates only the database settings.
// Maintenance commands use it so they run on hosts without the HTTP secrets.
func LoadDatabaseConfig() (*DatabaseConfig, error) {
	var cfg DatabaseConfig
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("configuration errors:\n- %v", err)
	}
	if err := joinErrors(cfg.validate()); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var sslModes = map[string]bool{
	"disable": true, "allow": true, "prefer": true,
	"require": true, "verify-ca": true, "verify-full": true,
}

func (d *DatabaseConfig) validate() []string {
	var errs []string
	if strings.TrimSpace(d.User) == "" {
		errs = append(errs, "DB_USER must not be empty")
	}
	if strings.TrimSpace(d.Name) == "" {
		errs = append(errs, "DB_NAME must not be empty")
	}
	if d.MaxConns < 1 || d.MaxConns > 100 {
		errs = append(errs, fmt.Sprintf("DB_POOL_SIZE must be between 1 and 100, got %d", d.MaxConns))
	}
	if d.Port < 1 || d.Port > 65535 {
		errs = append(errs, fmt.Sprintf("DB_PORT out of range: %d", d.Port))
	}
	d.SSLMode = strings.ToLower(strings.TrimSpace(d.SSLMode))
	if d.SSLMode != "" && !sslModes[d.SSLMode] {
		errs = append(errs, fmt.Sprintf("DB_SSLMODE must be a libpq sslmode, got %q", d.SSLMode))
	}
	return errs
}

func joinErrors(errs []string) error {
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("configuration errors:\n- %s", strings.Join(errs, "\n- "))
}

// Validate checks the semantic constraints that struct tags cannot express.
// All problems are collected into one error.
func (c *AppConfig) Validate() error {
	errs := c.Database.validate()

	c.Auth.JWTAlgorithm = strings.ToUpper(strings.TrimSpace(c.Auth.JWTAlgorithm))
	if !supportedAlgorithms[c.Auth.JWTAlgorithm] {
		errs = append(errs, fmt.Sprintf("JWT_ALGORITHM must be one of HS256, HS384, HS512, got %q", c.Auth.JWTAlgorithm))
	}
	if len(c.Auth.JWTSecret) < minSecretLength {
		errs = append(errs, fmt.Sprintf("JWT_SECRET must be at least %d bytes", minSecretLength))
	}
	if c.Auth.TokenDuration <= 0 {
		errs = append(errs, "JWT_EXPIRY must be a positive duration")
	}

	if strings.TrimSpace(c.Upload.Dir) == "" {
		errs = append(errs, "UPLOAD_DIR must not be empty")
	}
	if c.Upload.MaxBytes <= 0 {
		errs = append(errs, "UPLOAD_MAX_BYTES must be positive")
	}

	u, err := url.Parse(c.Server.PublicBaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Sprintf("PUBLIC_BASE_URL must be an absolute http(s) URL, got %q", c.Server.PublicBaseURL))
	} else {
		c.Server.PublicBaseURL = strings.TrimRight(c.Server.PublicBaseURL, "/")
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("LOG_LEVEL must be debug, info, warn or error, got %q", c.Log.Level))
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
	default:
		errs = append(errs, fmt.Sprintf("LOG_FORMAT must be json or text, got %q", c.Log.Format))
	}

	return joinErrors(errs)
}

// DSN returns a postgres URL for the pool and the migrator.
// The password is escaped so special characters survive. An empty SSLMode
// means disable.
func (d DatabaseConfig) DSN() string {
	sslMode := d.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:     "/" + d.Name,
		RawQuery: url.Values{"sslmode": {sslMode}}.Encode(),
	}
	return u.String()
}
