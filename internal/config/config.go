// Package config loads the personalization service configuration from YAML
// with environment variable overrides.
package config

import (
	"fmt"
	"time"
)

// Default configuration values.
const (
	defaultServiceName  = "personalization"
	defaultServicePort  = 8094
	defaultVersion      = "0.1.0"
	defaultLoggingLevel = "info"

	defaultDBHost    = "localhost"
	defaultDBPort    = 5432
	defaultDBName    = "personalization"
	defaultDBUser    = "postgres"
	defaultDBSSLMode = "disable"

	defaultRedisAddress = "localhost:6379"

	defaultKeyPrefix   = "personalization"
	defaultSessionTTLM = 30
	defaultMaxClicks   = 50

	defaultProductPage = "Product-Show"
	defaultSiteID      = "default"

	defaultMaxClicksPerMinute = 120
	defaultWindowSeconds      = 60
)

// Preference sources.
const (
	PreferenceSourceConfig   = "config"
	PreferenceSourceDatabase = "database"
)

// Config holds the application configuration.
type Config struct {
	Service         ServiceConfig         `yaml:"service"`
	Database        DatabaseConfig        `yaml:"database"`
	Redis           RedisConfig           `yaml:"redis"`
	Session         SessionConfig         `yaml:"session"`
	Personalization PersonalizationConfig `yaml:"personalization"`
	RateLimit       RateLimitConfig       `yaml:"rate_limit"`
	Logging         LoggingConfig         `yaml:"logging"`
}

// ServiceConfig holds service-level configuration.
type ServiceConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
	Port    int    `env:"PERSONALIZATION_PORT" yaml:"port"`
	Debug   bool   `env:"APP_DEBUG"            yaml:"debug"`
}

// DatabaseConfig holds PostgreSQL database configuration.
type DatabaseConfig struct {
	Host     string `env:"POSTGRES_PERSONALIZATION_HOST"     yaml:"host"`
	Port     int    `env:"POSTGRES_PERSONALIZATION_PORT"     yaml:"port"`
	User     string `env:"POSTGRES_PERSONALIZATION_USER"     yaml:"user"`
	Password string `env:"POSTGRES_PERSONALIZATION_PASSWORD" yaml:"password"`
	Database string `env:"POSTGRES_PERSONALIZATION_DB"       yaml:"database"`
	SSLMode  string `env:"POSTGRES_PERSONALIZATION_SSLMODE"  yaml:"sslmode"`
}

// DSN returns the PostgreSQL connection string.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Database, d.SSLMode,
	)
}

// MigrateURL returns the PostgreSQL URL form used by golang-migrate.
func (d *DatabaseConfig) MigrateURL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Database, d.SSLMode,
	)
}

// RedisConfig holds Redis connection configuration.
type RedisConfig struct {
	Address  string `env:"REDIS_ADDRESS"  yaml:"address"`
	Password string `env:"REDIS_PASSWORD" yaml:"password"`
	DB       int    `env:"REDIS_DB"       yaml:"db"`
}

// SessionConfig controls how session state is kept in Redis.
type SessionConfig struct {
	KeyPrefix string        `yaml:"key_prefix"`
	TTL       time.Duration `env:"SESSION_TTL" yaml:"ttl"`
	MaxClicks int           `yaml:"max_clicks"`
	// TrackingEnabled is the site-wide clickstream switch. Sessions may still
	// opt out individually.
	TrackingEnabled *bool `yaml:"tracking_enabled"`
}

// Tracking reports the site-wide clickstream switch, defaulting to on.
func (s *SessionConfig) Tracking() bool {
	return s.TrackingEnabled == nil || *s.TrackingEnabled
}

// PersonalizationConfig holds the popular-category settings.
type PersonalizationConfig struct {
	// ProductPage is the page identifier of product detail page clicks.
	ProductPage      string   `yaml:"product_page"`
	PreferenceSource string   `env:"PERSONALIZATION_PREFERENCE_SOURCE" yaml:"preference_source"`
	SiteID           string   `env:"PERSONALIZATION_SITE_ID"           yaml:"site_id"`
	CategoryIDs      []string `env:"PERSONALIZATION_CATEGORY_IDS"      yaml:"category_ids"`
}

// RateLimitConfig holds rate limiting configuration for click ingest.
type RateLimitConfig struct {
	MaxClicksPerMinute int `yaml:"max_clicks_per_minute"`
	WindowSeconds      int `yaml:"window_seconds"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `env:"LOG_LEVEL" yaml:"level"`
}

// Load loads configuration from the specified path. Defaults are applied
// after the file, and environment variables win over both.
func Load(path string) (*Config, error) {
	if err := loadEnvFiles(); err != nil {
		return nil, fmt.Errorf("load environment files: %w", err)
	}

	cfg := &Config{}
	if err := decodeFile(path, cfg); err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)
	setDefaults(cfg)

	return cfg, nil
}

func setDefaults(cfg *Config) {
	setServiceDefaults(&cfg.Service)
	setDatabaseDefaults(&cfg.Database)
	setSessionDefaults(&cfg.Session)
	setPersonalizationDefaults(&cfg.Personalization)
	setRateLimitDefaults(&cfg.RateLimit)
	setLoggingDefaults(&cfg.Logging)

	if cfg.Redis.Address == "" {
		cfg.Redis.Address = defaultRedisAddress
	}
}

func setServiceDefaults(svc *ServiceConfig) {
	if svc.Name == "" {
		svc.Name = defaultServiceName
	}
	if svc.Version == "" {
		svc.Version = defaultVersion
	}
	if svc.Port == 0 {
		svc.Port = defaultServicePort
	}
}

func setDatabaseDefaults(db *DatabaseConfig) {
	if db.Host == "" {
		db.Host = defaultDBHost
	}
	if db.Port == 0 {
		db.Port = defaultDBPort
	}
	if db.User == "" {
		db.User = defaultDBUser
	}
	if db.Database == "" {
		db.Database = defaultDBName
	}
	if db.SSLMode == "" {
		db.SSLMode = defaultDBSSLMode
	}
}

func setSessionDefaults(s *SessionConfig) {
	if s.KeyPrefix == "" {
		s.KeyPrefix = defaultKeyPrefix
	}
	if s.TTL == 0 {
		s.TTL = defaultSessionTTLM * time.Minute
	}
	if s.MaxClicks == 0 {
		s.MaxClicks = defaultMaxClicks
	}
}

func setPersonalizationDefaults(p *PersonalizationConfig) {
	if p.ProductPage == "" {
		p.ProductPage = defaultProductPage
	}
	if p.PreferenceSource == "" {
		p.PreferenceSource = PreferenceSourceConfig
	}
	if p.SiteID == "" {
		p.SiteID = defaultSiteID
	}
}

func setRateLimitDefaults(rl *RateLimitConfig) {
	if rl.MaxClicksPerMinute == 0 {
		rl.MaxClicksPerMinute = defaultMaxClicksPerMinute
	}
	if rl.WindowSeconds == 0 {
		rl.WindowSeconds = defaultWindowSeconds
	}
}

func setLoggingDefaults(log *LoggingConfig) {
	if log.Level == "" {
		log.Level = defaultLoggingLevel
	}
}
