package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Booking   BookingConfig   `yaml:"booking"`
	Sweeper   SweeperConfig   `yaml:"sweeper"`
	Retention RetentionConfig `yaml:"retention"`
}

// ServerConfig holds the HTTP server configuration.
type ServerConfig struct {
	Port            int     `yaml:"port"`
	RequestIPHeader string  `yaml:"request_ip_header"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int     `yaml:"rate_limit_burst"`
	CacheTTLSeconds int     `yaml:"cache_ttl_seconds"`
}

// DatabaseConfig holds the database connection configuration. A DSN with
// a postgres:// prefix selects PostgreSQL; anything else is treated as an
// SQLite path. The DATABASE_DSN environment variable overrides the file.
type DatabaseConfig struct {
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
}

// AuthConfig holds the token verification settings. The signing secret is
// shared with the identity provider; the JWT_SECRET environment variable
// overrides the file.
type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
}

// BookingConfig holds the booking business rules.
type BookingConfig struct {
	ClosedWeekday      int            `yaml:"closed_weekday"`
	MaxSpanDays        int            `yaml:"max_span_days"`
	MinDurationMinutes int            `yaml:"min_duration_minutes"`
	MinDuration        time.Duration  `yaml:"-"` // Derived from MinDurationMinutes
	Timezone           string         `yaml:"timezone"`
	Location           *time.Location `yaml:"-"` // Derived from Timezone
}

// SweeperConfig holds the expiration sweeper settings.
type SweeperConfig struct {
	IntervalSeconds int           `yaml:"interval_seconds"`
	Interval        time.Duration `yaml:"-"` // Ignored by YAML parser
}

// RetentionConfig holds the notification retention settings.
type RetentionConfig struct {
	NotificationDays int    `yaml:"notification_days"`
	Schedule         string `yaml:"schedule"`
}

// Load reads the configuration from the given path. A missing file is not
// an error: defaults plus environment overrides still produce a runnable
// configuration for local development.
func Load(path string) (*Config, error) {
	var cfg Config

	f, err := os.Open(path)
	switch {
	case os.IsNotExist(err):
		log.Printf("config file %s not found; using defaults", path)
	case err != nil:
		return nil, err
	default:
		defer f.Close()
		decoder := yaml.NewDecoder(f)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, err
		}
	}

	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 5
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 10
	}
	// -1 is meaningful here: it turns the response cache off, so only an
	// absent value takes the default.
	if cfg.Server.CacheTTLSeconds == 0 {
		cfg.Server.CacheTTLSeconds = 30
	}

	if dsn := os.Getenv("DATABASE_DSN"); dsn != "" {
		cfg.Database.DSN = dsn
	}
	if cfg.Database.DSN == "" {
		cfg.Database.DSN = "labres.db"
	}
	if cfg.Database.MaxOpenConns <= 0 {
		cfg.Database.MaxOpenConns = 20
	}
	if cfg.Database.MaxIdleConns <= 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetimeMinutes <= 0 {
		cfg.Database.ConnMaxLifetimeMinutes = 30
	}

	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		cfg.Auth.JWTSecret = secret
	}

	// Weekday 0 (Sunday) is a meaningful value, so only reject nonsense.
	if cfg.Booking.ClosedWeekday < 0 || cfg.Booking.ClosedWeekday > 6 {
		cfg.Booking.ClosedWeekday = 0
	}
	if cfg.Booking.MaxSpanDays <= 0 {
		cfg.Booking.MaxSpanDays = 7
	}
	if cfg.Booking.MinDurationMinutes <= 0 {
		cfg.Booking.MinDurationMinutes = 60
	}
	cfg.Booking.MinDuration = time.Duration(cfg.Booking.MinDurationMinutes) * time.Minute
	if cfg.Booking.Timezone == "" {
		cfg.Booking.Timezone = "Asia/Kolkata"
	}
	loc, err := time.LoadLocation(cfg.Booking.Timezone)
	if err != nil {
		return nil, err
	}
	cfg.Booking.Location = loc

	if cfg.Sweeper.IntervalSeconds <= 0 {
		cfg.Sweeper.IntervalSeconds = 60
	}
	cfg.Sweeper.Interval = time.Duration(cfg.Sweeper.IntervalSeconds) * time.Second

	if cfg.Retention.NotificationDays <= 0 {
		cfg.Retention.NotificationDays = 90
	}
	if cfg.Retention.Schedule == "" {
		cfg.Retention.Schedule = "0 3 * * *"
	}

	return &cfg, nil
}
