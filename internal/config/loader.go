// Package config provides configuration management for the poller.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Load reads configuration from the specified YAML file and environment variables.
// Environment variables take precedence over file values.
// Environment variable format: JMXSTAT_<SECTION>_<KEY> (e.g., JMXSTAT_JOLOKIA_TIMEOUT)
// An empty path loads defaults and environment variables only.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults first
	setDefaults(v)

	// Configure environment variable binding
	v.SetEnvPrefix("JMXSTAT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", configPath)
		}

		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")

		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Unmarshal into Config struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate configuration
	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Default returns the configuration used when no file or environment is given.
func Default() *Config {
	return &Config{
		Jolokia: JolokiaConfig{Scheme: "http", Path: "/jolokia", Timeout: 10 * time.Second},
		Session: SessionConfig{MaxRetries: 5, MaxBackoff: 30 * time.Second},
		Logging: LoggingConfig{Level: "info", Format: "console"},
	}
}

// setDefaults sets default values for all configuration options.
func setDefaults(v *viper.Viper) {
	def := Default()

	// Jolokia defaults
	v.SetDefault("jolokia.scheme", def.Jolokia.Scheme)
	v.SetDefault("jolokia.path", def.Jolokia.Path)
	v.SetDefault("jolokia.timeout", def.Jolokia.Timeout)

	// Reconnect policy defaults
	v.SetDefault("session.max_retries", def.Session.MaxRetries)
	v.SetDefault("session.max_backoff", def.Session.MaxBackoff)

	// Output defaults
	v.SetDefault("output.timezone", "")
	v.SetDefault("output.attributes_file", "")

	// Logging defaults
	v.SetDefault("logging.level", def.Logging.Level)
	v.SetDefault("logging.format", def.Logging.Format)

	// Metrics endpoint is disabled unless configured
	v.SetDefault("metrics.listen", "")
}
