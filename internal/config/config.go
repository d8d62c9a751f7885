// Package config handles application configuration loading and validation using Viper.
package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config represents the application configuration.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Site        SiteConfig        `mapstructure:"site"`
	Auth        AuthConfig        `mapstructure:"auth"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Storage     StorageConfig     `mapstructure:"storage"`
	Notifier    NotifierConfig    `mapstructure:"notifier"`
	Metrics     MetricsConfig     `mapstructure:"metrics"`
	Logging     LoggingConfig     `mapstructure:"logging"`
	Departments map[string]string `mapstructure:"departments"` // extra department codes, merged over the built-in table
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port            int      `mapstructure:"port"`
	Environment     string   `mapstructure:"environment"`
	AllowedOrigins  []string `mapstructure:"allowed_origins"`
	ShutdownTimeout int      `mapstructure:"shutdown_timeout"` // seconds
}

// IsProduction reports whether the server runs in production mode.
func (s *ServerConfig) IsProduction() bool {
	return s.Environment == "production"
}

// SiteConfig describes the public site used for absolute links and page metadata.
type SiteConfig struct {
	Name        string `mapstructure:"name"`
	Description string `mapstructure:"description"`
	URL         string `mapstructure:"url"`
	ShareSource string `mapstructure:"share_source"`
	TimeZone    string `mapstructure:"time_zone"` // used when formatting event dates
}

// Location returns the configured time zone, or UTC when it cannot be loaded.
func (s *SiteConfig) Location() *time.Location {
	if s.TimeZone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(s.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// AbsoluteURL joins the site URL with a local path.
func (s *SiteConfig) AbsoluteURL(path string) string {
	return strings.TrimRight(s.URL, "/") + path
}

// AuthConfig contains OAuth and session settings.
type AuthConfig struct {
	GoogleClientID     string `mapstructure:"google_client_id"`
	GoogleClientSecret string `mapstructure:"google_client_secret"`
	RedirectURL        string `mapstructure:"redirect_url"`
	AllowedEmailDomain string `mapstructure:"allowed_email_domain"`
	StateSecret        string `mapstructure:"state_secret"`
	StateTTL           int    `mapstructure:"state_ttl"`   // seconds
	SessionTTL         int    `mapstructure:"session_ttl"` // seconds
	CookieName         string `mapstructure:"cookie_name"`
	CookieDomain       string `mapstructure:"cookie_domain"`
	// AdminEnabled gates account deletion and profile creation. Mirrors the
	// service-role credential of the hosted backend: without it the
	// provisioning step cannot run.
	AdminEnabled bool `mapstructure:"admin_enabled"`
}

// GetStateTTL returns the OAuth state lifetime.
func (a *AuthConfig) GetStateTTL() time.Duration {
	return time.Duration(a.StateTTL) * time.Second
}

// GetSessionTTL returns the session lifetime.
func (a *AuthConfig) GetSessionTTL() time.Duration {
	return time.Duration(a.SessionTTL) * time.Second
}

// DatabaseConfig contains database connection settings for PostgreSQL and Redis.
type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

// PostgresConfig contains PostgreSQL database connection and pool settings.
type PostgresConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Database        string `mapstructure:"database"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	SSLMode         string `mapstructure:"ssl_mode"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
	MigrateOnStart  bool   `mapstructure:"migrate_on_start"`
}

// DSN builds the libpq keyword/value connection string. Every value is
// single-quoted with backslashes and quotes escaped.
func (p *PostgresConfig) DSN() string {
	pairs := []struct{ key, value string }{
		{"host", p.Host},
		{"port", strconv.Itoa(p.Port)},
		{"user", p.User},
		{"password", p.Password},
		{"dbname", p.Database},
		{"sslmode", p.SSLMode},
	}

	parts := make([]string, 0, len(pairs))
	for _, kv := range pairs {
		parts = append(parts, kv.key+"="+quoteDSNValue(kv.value))
	}
	return strings.Join(parts, " ")
}

func quoteDSNValue(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}

// URL builds the postgres:// URL form used by the migrator.
func (p *PostgresConfig) URL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(p.User, p.Password),
		Host:     net.JoinHostPort(p.Host, strconv.Itoa(p.Port)),
		Path:     "/" + p.Database,
		RawQuery: url.Values{"sslmode": {p.SSLMode}}.Encode(),
	}
	return u.String()
}

// RedisConfig contains Redis connection and pool settings.
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

// Addr returns host:port.
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// StorageConfig contains object storage settings for public asset URLs.
type StorageConfig struct {
	PublicBaseURL string `mapstructure:"public_base_url"`
	BadgeBucket   string `mapstructure:"badge_bucket"`
	EventBucket   string `mapstructure:"event_bucket"`
}

// NotifierConfig contains chat webhook settings for contact form notices.
type NotifierConfig struct {
	WebhookURL string `mapstructure:"webhook_url"`
	Channel    string `mapstructure:"channel"`
	Enabled    bool   `mapstructure:"enabled"`
}

// MetricsConfig contains Prometheus exporter settings.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// LoggingConfig contains application logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("server.shutdown_timeout", 10)

	v.SetDefault("site.name", "ACE SASTRA")
	v.SetDefault("site.description", "ACE is a student-run club established with the aim of promoting excellence in computing education and research.")
	v.SetDefault("site.url", "http://localhost:3000")
	v.SetDefault("site.share_source", "ACE | SASTRA")
	v.SetDefault("site.time_zone", "Asia/Kolkata")

	v.SetDefault("auth.allowed_email_domain", "@sastra.ac.in")
	v.SetDefault("auth.state_ttl", 600)
	v.SetDefault("auth.session_ttl", 7*24*3600)
	v.SetDefault("auth.cookie_name", "ace_session")
	v.SetDefault("auth.admin_enabled", true)

	v.SetDefault("database.postgres.port", 5432)
	v.SetDefault("database.postgres.ssl_mode", "disable")
	v.SetDefault("database.postgres.max_open_conns", 20)
	v.SetDefault("database.postgres.max_idle_conns", 5)
	v.SetDefault("database.postgres.conn_max_lifetime", 300)
	v.SetDefault("database.postgres.migrate_on_start", true)
	v.SetDefault("database.redis.port", 6379)
	v.SetDefault("database.redis.pool_size", 10)

	v.SetDefault("storage.badge_bucket", "badges")
	v.SetDefault("storage.event_bucket", "event-images")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")
}

// Load reads configuration from file and environment variables.
// A .env file in the working directory, if present, is loaded first.
func Load(configPath string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/ace-portal/")
	}

	// Server configuration
	_ = v.BindEnv("server.port", "SERVER_PORT")
	_ = v.BindEnv("server.environment", "SERVER_ENVIRONMENT")

	// Site configuration
	_ = v.BindEnv("site.url", "SITE_URL")

	// Auth configuration
	_ = v.BindEnv("auth.google_client_id", "GOOGLE_CLIENT_ID")
	_ = v.BindEnv("auth.google_client_secret", "GOOGLE_CLIENT_SECRET")
	_ = v.BindEnv("auth.redirect_url", "GOOGLE_REDIRECT_URI", "AUTH_REDIRECT_URL")
	_ = v.BindEnv("auth.allowed_email_domain", "AUTH_ALLOWED_EMAIL_DOMAIN")
	_ = v.BindEnv("auth.state_secret", "AUTH_STATE_SECRET")
	_ = v.BindEnv("auth.session_ttl", "AUTH_SESSION_TTL")
	_ = v.BindEnv("auth.admin_enabled", "AUTH_ADMIN_ENABLED")

	// PostgreSQL configuration
	_ = v.BindEnv("database.postgres.host", "POSTGRES_HOST")
	_ = v.BindEnv("database.postgres.port", "POSTGRES_PORT")
	_ = v.BindEnv("database.postgres.database", "POSTGRES_DB")
	_ = v.BindEnv("database.postgres.user", "POSTGRES_USER")
	_ = v.BindEnv("database.postgres.password", "POSTGRES_PASSWORD")
	_ = v.BindEnv("database.postgres.ssl_mode", "POSTGRES_SSL_MODE")
	_ = v.BindEnv("database.postgres.migrate_on_start", "POSTGRES_MIGRATE_ON_START")

	// Redis configuration
	_ = v.BindEnv("database.redis.host", "REDIS_HOST")
	_ = v.BindEnv("database.redis.port", "REDIS_PORT")
	_ = v.BindEnv("database.redis.password", "REDIS_PASSWORD")
	_ = v.BindEnv("database.redis.db", "REDIS_DB")

	// Storage configuration
	_ = v.BindEnv("storage.public_base_url", "STORAGE_PUBLIC_BASE_URL")

	// Notifier configuration
	_ = v.BindEnv("notifier.webhook_url", "NOTIFIER_WEBHOOK_URL")
	_ = v.BindEnv("notifier.enabled", "NOTIFIER_ENABLED")

	// Logging configuration
	_ = v.BindEnv("logging.level", "LOG_LEVEL")
	_ = v.BindEnv("logging.format", "LOG_FORMAT")
	_ = v.BindEnv("logging.output", "LOG_OUTPUT")

	if err := v.ReadInConfig(); err != nil {
		// Environment-only deployments are fine; a named but missing file is not.
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Auth.GoogleClientID == "" {
		return fmt.Errorf("auth.google_client_id is required")
	}
	if c.Auth.GoogleClientSecret == "" {
		return fmt.Errorf("auth.google_client_secret is required")
	}
	if c.Auth.RedirectURL == "" {
		return fmt.Errorf("auth.redirect_url is required")
	}
	if len(c.Auth.StateSecret) < 32 {
		return fmt.Errorf("auth.state_secret must be at least 32 characters")
	}
	if !strings.HasPrefix(c.Auth.AllowedEmailDomain, "@") {
		return fmt.Errorf("auth.allowed_email_domain must start with '@'")
	}
	if c.Database.Postgres.Host == "" {
		return fmt.Errorf("database.postgres.host is required")
	}
	if c.Database.Postgres.Database == "" {
		return fmt.Errorf("database.postgres.database is required")
	}
	if c.Database.Postgres.User == "" {
		return fmt.Errorf("database.postgres.user is required")
	}
	if c.Database.Redis.Host == "" {
		return fmt.Errorf("database.redis.host is required")
	}
	if c.Storage.PublicBaseURL == "" {
		return fmt.Errorf("storage.public_base_url is required")
	}
	if c.Notifier.Enabled && c.Notifier.WebhookURL == "" {
		return fmt.Errorf("notifier.webhook_url is required when the notifier is enabled")
	}
	for code := range c.Departments {
		if len(code) != 3 {
			return fmt.Errorf("department code %q must be 3 characters", code)
		}
	}

	return nil
}
