// Package config provides configuration management for the poller.
package config

import "time"

// Config is the root configuration structure for the poller.
type Config struct {
	Jolokia JolokiaConfig `mapstructure:"jolokia"`
	Session SessionConfig `mapstructure:"session"`
	Output  OutputConfig  `mapstructure:"output"`
	Logging LoggingConfig `mapstructure:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// JolokiaConfig contains settings for the Jolokia HTTP bridge to the remote JVM.
type JolokiaConfig struct {
	Scheme  string        `mapstructure:"scheme" validate:"oneof=http https"`
	Path    string        `mapstructure:"path" validate:"startswith=/"`
	Timeout time.Duration `mapstructure:"timeout" validate:"gt=0"`
}

// SessionConfig contains the reconnect policy of the polling loop.
type SessionConfig struct {
	MaxRetries int           `mapstructure:"max_retries" validate:"gte=1,lte=10"` // Consecutive failures before giving up
	MaxBackoff time.Duration `mapstructure:"max_backoff" validate:"gt=0"`         // Cap of the exponential delay
}

// OutputConfig contains settings for the sample output.
type OutputConfig struct {
	Timezone       string `mapstructure:"timezone" validate:"timezone"` // Empty means local time
	AttributesFile string `mapstructure:"attributes_file"`              // Optional YAML list of attribute tokens
}

// LoggingConfig contains configurations for logging.
type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=json console"`
}

// MetricsConfig contains settings for the optional Prometheus endpoint.
type MetricsConfig struct {
	Listen string `mapstructure:"listen" validate:"omitempty,hostname_port"` // e.g. "127.0.0.1:9404"
}

// Location returns the configured output timezone, or time.Local.
func (c *OutputConfig) Location() *time.Location {
	if c.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}
