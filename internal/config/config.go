package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"    validate:"required"`
	Mutator   MutatorConfig   `mapstructure:"mutator"   validate:"required"`
	Bootstrap BootstrapConfig `mapstructure:"bootstrap"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port                   int    `mapstructure:"port"                     validate:"required,gt=0,lt=65536"`
	LogLevel               string `mapstructure:"log_level"                validate:"required,oneof=debug info warn error"`
	Environment            string `mapstructure:"environment"              validate:"required,oneof=development production"`
	ShutdownTimeoutSeconds int    `mapstructure:"shutdown_timeout_seconds" validate:"required,gt=0"`
}

// IsDevelopment reports whether diagnostic error details may be exposed to clients.
func (c ServerConfig) IsDevelopment() bool {
	return c.Environment == "development"
}

// MutatorConfig controls the background task that randomly flips profile parameters.
type MutatorConfig struct {
	Enabled            bool `mapstructure:"enabled"`
	IntervalSeconds    int  `mapstructure:"interval_seconds"     validate:"required,gt=0"`
	TickTimeoutSeconds int  `mapstructure:"tick_timeout_seconds" validate:"required,gt=0"`
}

// BootstrapConfig points at the profiles loaded when the process starts.
type BootstrapConfig struct {
	// ProfilesFile is an optional YAML file with a top-level "profiles" mapping.
	ProfilesFile string `mapstructure:"profiles_file"`
}

// RateLimitConfig contains per-client request rate limiting settings.
type RateLimitConfig struct {
	RequestsPerSecond int `mapstructure:"requests_per_second" validate:"required,gt=0"`
	Burst             int `mapstructure:"burst"               validate:"required,gt=0"`
}
