package config

import "fmt"

const maxPort = 65535

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := validatePort("service.port", c.Service.Port); err != nil {
		return err
	}
	if err := validatePort("database.port", c.Database.Port); err != nil {
		return err
	}
	if c.Session.MaxClicks < 0 {
		return &ValidationError{Field: "session.max_clicks", Message: "must not be negative"}
	}
	if c.Session.TTL < 0 {
		return &ValidationError{Field: "session.ttl", Message: "must not be negative"}
	}
	if c.RateLimit.MaxClicksPerMinute < 1 {
		return &ValidationError{Field: "rate_limit.max_clicks_per_minute", Message: "must be at least 1"}
	}
	if c.RateLimit.WindowSeconds < 1 {
		return &ValidationError{Field: "rate_limit.window_seconds", Message: "must be at least 1"}
	}

	switch c.Personalization.PreferenceSource {
	case PreferenceSourceConfig, PreferenceSourceDatabase:
	default:
		return &ValidationError{
			Field:   "personalization.preference_source",
			Message: "must be one of: config, database",
		}
	}

	if c.Personalization.PreferenceSource == PreferenceSourceDatabase && c.Personalization.SiteID == "" {
		return &ValidationError{Field: "personalization.site_id", Message: "is required"}
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
		return nil
	default:
		return &ValidationError{Field: "logging.level", Message: "must be one of: debug, info, warn, error"}
	}
}

func validatePort(field string, port int) error {
	if port < 1 || port > maxPort {
		return &ValidationError{Field: field, Message: "must be between 1 and 65535"}
	}
	return nil
}
