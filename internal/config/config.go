// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ranjhana07/MINE/ingest"
	"github.com/ranjhana07/MINE/retry"
	"github.com/ranjhana07/MINE/telemetry"
	"github.com/spf13/viper"
)

type (
	// Config holds the dashboard process configuration.
	Config struct {
		MQTT ingest.ConnectionSettings `mapstructure:"mqtt"`

		// Overrides the individual mqtt keys when set.
		ConnectionString string `mapstructure:"mqtt_connection_string"`

		Reconnect    Reconnect     `mapstructure:"reconnect"`
		Store        Store         `mapstructure:"store"`
		PollInterval time.Duration `mapstructure:"poll_interval"`
		Log          Log           `mapstructure:"log"`

		// Path of the configuration file read, if any.
		File string `mapstructure:"-"`
	}

	// Reconnect configures automatic reconnection after a lost connection.
	Reconnect struct {
		Enabled     bool          `mapstructure:"enabled"`
		MaxAttempts uint64        `mapstructure:"max_attempts"`
		MinInterval time.Duration `mapstructure:"min_interval"`
		MaxInterval time.Duration `mapstructure:"max_interval"`
	}

	// Store configures the telemetry store.
	Store struct {
		Capacity int `mapstructure:"capacity"`
	}

	// Log configures the process logger. An empty File logs to stdout.
	Log struct {
		Level      string `mapstructure:"level"`
		Format     string `mapstructure:"format"`
		File       string `mapstructure:"file"`
		MaxSizeMB  int    `mapstructure:"max_size_mb"`
		MaxBackups int    `mapstructure:"max_backups"`
		MaxAgeDays int    `mapstructure:"max_age_days"`
	}
)

// DefaultSearchPaths are the directories searched for config.yaml when Load
// is given none.
var DefaultSearchPaths = []string{".", "./config", "/etc/minearmour"}

func setDefaults(v *viper.Viper) {
	def := ingest.DefaultConnectionSettings()
	v.SetDefault("mqtt.host", "")
	v.SetDefault("mqtt.port", def.Port)
	v.SetDefault("mqtt.use_tls", def.UseTLS)
	v.SetDefault("mqtt.insecure_skip_verify", false)
	v.SetDefault("mqtt.ca_file", "")
	v.SetDefault("mqtt.cert_file", "")
	v.SetDefault("mqtt.key_file", "")
	v.SetDefault("mqtt.username", "")
	v.SetDefault("mqtt.password", "")
	v.SetDefault("mqtt.client_id", "")
	v.SetDefault("mqtt.topic", def.Topic)
	v.SetDefault("mqtt.qos", def.QoS)
	v.SetDefault("mqtt.keep_alive", def.KeepAlive)
	v.SetDefault("mqtt.connection_timeout", def.ConnectionTimeout)
	v.SetDefault("mqtt_connection_string", "")

	v.SetDefault("reconnect.enabled", false)
	v.SetDefault("reconnect.max_attempts", 0)
	v.SetDefault("reconnect.min_interval", time.Second)
	v.SetDefault("reconnect.max_interval", 30*time.Second)

	v.SetDefault("store.capacity", telemetry.DefaultCapacity)
	v.SetDefault("poll_interval", time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 10)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 28)
}

// Load reads the configuration from defaults, an optional config.yaml in the
// given directories and the environment, in increasing order of precedence.
// Environment variables use the upper-cased key with dots replaced by
// underscores, e.g. MQTT_HOST or STORE_CAPACITY.
func Load(paths ...string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if len(paths) == 0 {
		paths = DefaultSearchPaths
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.File = v.ConfigFileUsed()

	if cfg.ConnectionString != "" {
		cs, err := ingest.ParseConnectionString(cfg.ConnectionString)
		if err != nil {
			return nil, err
		}
		cfg.MQTT = *cs
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if err := c.MQTT.Validate(); err != nil {
		return err
	}
	if c.PollInterval <= 0 {
		return errors.New("poll_interval must be positive")
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	return nil
}

// SlogLevel parses the configured level name.
func (l Log) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return level, fmt.Errorf("invalid log level %q: %w", l.Level, err)
	}
	return level, nil
}

// Policy returns the reconnection policy, or nil when reconnection is
// disabled.
func (r Reconnect) Policy(logger *slog.Logger) retry.Policy {
	if !r.Enabled {
		return nil
	}
	return &retry.ExponentialBackoff{
		MaxAttempts: r.MaxAttempts,
		MinInterval: r.MinInterval,
		MaxInterval: r.MaxInterval,
		Logger:      logger,
	}
}
