package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"     validate:"required"`
	Flush    FlushConfig    `mapstructure:"flush"    validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret                   string `mapstructure:"jwt_secret"                     validate:"required,min=32"`
	TokenLifetimeMinutes        int    `mapstructure:"token_lifetime_minutes"         validate:"required,gt=0"`
	RefreshTokenLifetimeMinutes int    `mapstructure:"refresh_token_lifetime_minutes" validate:"required,gt=0"`
}

// FlushConfig controls the server-side progress buffer.
//
// Threshold is the pending-event count at which recording one more event
// flushes the user's buffer inline. WorkerCount and QueueSize size the
// background flusher pool, and MaxBufferAgeMinutes bounds how long events
// may sit unflushed before the sweeper picks them up.
type FlushConfig struct {
	Threshold            int `mapstructure:"threshold"               validate:"required,gt=0"`
	WorkerCount          int `mapstructure:"worker_count"            validate:"required,gt=0"`
	QueueSize            int `mapstructure:"queue_size"              validate:"required,gt=0"`
	MaxBufferAgeMinutes  int `mapstructure:"max_buffer_age_minutes"  validate:"required,gt=0"`
	SweepIntervalSeconds int `mapstructure:"sweep_interval_seconds"  validate:"required,gt=0"`
}
