package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g. PROFILE_SERVER_PORT.
const EnvPrefix = "PROFILE"

// Default values applied before any file or environment source.
const (
	DefaultPort                   = 8080
	DefaultLogLevel               = "info"
	DefaultEnvironment            = "production"
	DefaultShutdownTimeoutSeconds = 10
	DefaultMutatorInterval        = 300
	DefaultMutatorTickTimeout     = 5
	DefaultRequestsPerSecond      = 50
	DefaultBurst                  = 100
)

// Load configuration from environment variables and optionally a config file.
// Environment variables take precedence over values from the config file.
// An empty configFile skips file loading.
// Returns a populated Config struct or an error if loading/validation fails.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
			}
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks cfg against its struct tags.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", DefaultPort)
	v.SetDefault("server.log_level", DefaultLogLevel)
	v.SetDefault("server.environment", DefaultEnvironment)
	v.SetDefault("server.shutdown_timeout_seconds", DefaultShutdownTimeoutSeconds)

	v.SetDefault("mutator.enabled", true)
	v.SetDefault("mutator.interval_seconds", DefaultMutatorInterval)
	v.SetDefault("mutator.tick_timeout_seconds", DefaultMutatorTickTimeout)

	// Registered so AutomaticEnv can see PROFILE_BOOTSTRAP_PROFILES_FILE.
	v.SetDefault("bootstrap.profiles_file", "")

	v.SetDefault("ratelimit.requests_per_second", DefaultRequestsPerSecond)
	v.SetDefault("ratelimit.burst", DefaultBurst)
}
