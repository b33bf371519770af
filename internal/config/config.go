// Package config builds the application settings from the environment.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jonathan/job-assistant/internal/apperr"
)

// DefaultCustomSettingsPath is read when CUSTOM_SETTINGS_PATH is unset.
const DefaultCustomSettingsPath = "custom_settings.json"

// PostgresSettings holds database connection parameters.
type PostgresSettings struct {
	User     string
	Password string
	DB       string
	Host     string
	Port     int
	URL      string // DATABASE_URL; overrides the discrete fields when set
}

// SMTPSettings holds outbound mail server parameters.
type SMTPSettings struct {
	Server   string
	Port     int
	User     string
	Password string
}

// Settings is the process configuration. It is built once at startup and passed to consumers.
type Settings struct {
	AppName    string
	AppVersion string

	Postgres PostgresSettings

	RedisURL      string
	RedisPassword string
	RedisDB       int

	SMTP      SMTPSettings
	EmailFrom string
	EmailTo   []string

	AllowedHosts []string
	CORSOrigins  []string
	Debug        bool
	SecretKey    string

	LogLevel  string
	LogFormat string

	HTTPPort   int
	SessionTTL time.Duration

	// CustomSettings holds the key-value pairs of the custom settings file, if present.
	CustomSettings map[string]string
}

// Load builds Settings from the process environment and the custom settings file.
func Load() (*Settings, error) {
	return LoadWith(os.LookupEnv)
}

// LoadWith builds Settings using lookup in place of the process environment.
func LoadWith(lookup func(string) (string, bool)) (*Settings, error) {
	env := envReader{lookup: lookup}

	s := &Settings{
		AppName:    env.getString("APP_NAME", "MyApp"),
		AppVersion: env.getString("APP_VERSION", "1.0.0"),
		Postgres: PostgresSettings{
			User:     env.getString("POSTGRES_USER", "postgres"),
			Password: env.getString("POSTGRES_PASSWORD", "password"),
			DB:       env.getString("POSTGRES_DB", "myapp_db"),
			Host:     env.getString("POSTGRES_HOST", "localhost"),
			Port:     env.getInt("POSTGRES_PORT", 5432),
			URL:      env.getString("DATABASE_URL", ""),
		},
		RedisURL:      env.getString("REDIS_URL", "redis://localhost:6379/0"),
		RedisPassword: env.getString("REDIS_PASSWORD", ""),
		RedisDB:       env.getInt("REDIS_DB", 0),
		SMTP: SMTPSettings{
			Server:   env.getString("SMTP_SERVER", "smtp.example.com"),
			Port:     env.getInt("SMTP_PORT", 587),
			User:     env.getString("SMTP_USER", "user@example.com"),
			Password: env.getString("SMTP_PASSWORD", "password"),
		},
		EmailFrom:    env.getString("EMAIL_FROM", "user@example.com"),
		EmailTo:      env.getList("EMAIL_TO", []string{"recipient@example.com"}),
		AllowedHosts: env.getList("ALLOWED_HOSTS", []string{"*"}),
		CORSOrigins:  env.getList("CORS_ORIGINS", []string{"*"}),
		Debug:        env.getBool("DEBUG", true),
		SecretKey:    env.getString("SECRET_KEY", "your_secret_key"),
		LogLevel:     strings.ToUpper(env.getString("LOG_LEVEL", "INFO")),
		LogFormat:    strings.ToLower(env.getString("LOG_FORMAT", "text")),
		HTTPPort:     env.getInt("HTTP_PORT", 8080),
		SessionTTL:   env.getDuration("SESSION_TTL", 24*time.Hour),
	}
	if env.err != nil {
		return nil, env.err
	}

	custom, err := loadCustomSettings(env.getString("CUSTOM_SETTINGS_PATH", DefaultCustomSettingsPath))
	if err != nil {
		return nil, err
	}
	s.CustomSettings = custom

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks value ranges and enumerated options.
func (s *Settings) Validate() error {
	if s.Postgres.Port < 1 || s.Postgres.Port > 65535 {
		return &apperr.ConfigurationError{Message: fmt.Sprintf("POSTGRES_PORT out of range: %d", s.Postgres.Port)}
	}
	if s.SMTP.Port < 1 || s.SMTP.Port > 65535 {
		return &apperr.ConfigurationError{Message: fmt.Sprintf("SMTP_PORT out of range: %d", s.SMTP.Port)}
	}
	if s.HTTPPort < 1 || s.HTTPPort > 65535 {
		return &apperr.ConfigurationError{Message: fmt.Sprintf("HTTP_PORT out of range: %d", s.HTTPPort)}
	}
	if s.SecretKey == "" {
		return &apperr.ConfigurationError{Message: "SECRET_KEY cannot be empty"}
	}
	if s.SessionTTL <= 0 {
		return &apperr.ConfigurationError{Message: fmt.Sprintf("SESSION_TTL must be positive, got: %s", s.SessionTTL)}
	}
	if _, err := ParseLogLevel(s.LogLevel); err != nil {
		return err
	}
	if s.LogFormat != "text" && s.LogFormat != "json" {
		return &apperr.ConfigurationError{Message: fmt.Sprintf("LOG_FORMAT must be text or json, got: %q", s.LogFormat)}
	}
	return nil
}

// DatabaseURL returns the Postgres connection string.
func (s *Settings) DatabaseURL() string {
	if s.Postgres.URL != "" {
		return s.Postgres.URL
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(s.Postgres.User, s.Postgres.Password),
		Host:   net.JoinHostPort(s.Postgres.Host, strconv.Itoa(s.Postgres.Port)),
		Path:   "/" + s.Postgres.DB,
	}
	return u.String()
}

// Addr returns the HTTP listen address.
func (s *Settings) Addr() string {
	return ":" + strconv.Itoa(s.HTTPPort)
}

// Custom returns a value from the custom settings file.
func (s *Settings) Custom(key string) (string, bool) {
	v, ok := s.CustomSettings[key]
	return v, ok
}

// loadCustomSettings reads a flat JSON object. A missing file yields an empty map.
func loadCustomSettings(path string) (map[string]string, error) {
	result := make(map[string]string)
	if path == "" {
		return result, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return result, nil
	}
	if err != nil {
		return nil, &apperr.ConfigurationError{Message: "failed to read custom settings " + path, Cause: err}
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &apperr.ConfigurationError{Message: "failed to parse custom settings " + path, Cause: err}
	}
	for k, v := range raw {
		switch val := v.(type) {
		case string:
			result[k] = val
		case bool, float64:
			result[k] = fmt.Sprint(val)
		default:
			return nil, &apperr.ConfigurationError{Message: fmt.Sprintf("custom setting %q must be a scalar", k)}
		}
	}
	return result, nil
}

// envReader records the first malformed value it sees.
type envReader struct {
	lookup func(string) (string, bool)
	err    error
}

func (r *envReader) raw(key string) (string, bool) {
	v, ok := r.lookup(key)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return strings.TrimSpace(v), true
}

func (r *envReader) fail(key, value string, err error) {
	if r.err == nil {
		r.err = &apperr.ConfigurationError{Message: fmt.Sprintf("invalid %s %q", key, value), Cause: err}
	}
}

func (r *envReader) getString(key, def string) string {
	if v, ok := r.raw(key); ok {
		return v
	}
	return def
}

func (r *envReader) getInt(key string, def int) int {
	v, ok := r.raw(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		r.fail(key, v, err)
		return def
	}
	return n
}

func (r *envReader) getBool(key string, def bool) bool {
	v, ok := r.raw(key)
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		r.fail(key, v, err)
		return def
	}
	return b
}

func (r *envReader) getDuration(key string, def time.Duration) time.Duration {
	v, ok := r.raw(key)
	if !ok {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		r.fail(key, v, err)
		return def
	}
	return d
}

// getList accepts a comma-separated value or a JSON array.
func (r *envReader) getList(key string, def []string) []string {
	v, ok := r.raw(key)
	if !ok {
		return def
	}
	if strings.HasPrefix(v, "[") {
		var out []string
		if err := json.Unmarshal([]byte(v), &out); err != nil {
			r.fail(key, v, err)
			return def
		}
		return out
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
