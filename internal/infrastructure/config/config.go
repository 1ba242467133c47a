package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for the voicelight bridge.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Discord  DiscordConfig  `yaml:"discord"`
	Database DatabaseConfig `yaml:"database"`
	MQTT     MQTTConfig     `yaml:"mqtt"`
	InfluxDB InfluxDBConfig `yaml:"influxdb"`
	API      APIConfig      `yaml:"api"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// DiscordConfig contains the chat gateway credentials.
type DiscordConfig struct {
	Token string `yaml:"token"`
}

// DatabaseConfig contains SQLite database settings.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Broker      MQTTBrokerConfig    `yaml:"broker"`
	Auth        MQTTAuthConfig      `yaml:"auth"`
	QoS         int                 `yaml:"qos"`
	Reconnect   MQTTReconnectConfig `yaml:"reconnect"`
	TopicPrefix string              `yaml:"topic_prefix"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
//
// When URL is set (e.g. "mqtts://broker.example:8883") it takes precedence
// over Host, Port and TLS.
type MQTTBrokerConfig struct {
	URL                string `yaml:"url"`
	Host               string `yaml:"host"`
	Port               int    `yaml:"port"`
	TLS                bool   `yaml:"tls"`
	InsecureSkipVerify bool   `yaml:"insecure_skip_verify"`
	ClientID           string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings.
// Interval is in seconds: the period between initial connect attempts and
// the cap on paho's reconnect backoff.
type MQTTReconnectConfig struct {
	Interval int `yaml:"interval"`
}

// InfluxDBConfig contains InfluxDB connection settings for cue telemetry.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// APIConfig contains settings for the optional HTTP status endpoint.
type APIConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Host     string        `yaml:"host"`
	Port     int           `yaml:"port"`
	Timeouts TimeoutConfig `yaml:"timeouts"`
}

// TimeoutConfig contains HTTP timeout settings in seconds.
type TimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// DefaultPath is the configuration file read when VOICELIGHT_CONFIG is unset.
const DefaultPath = "configs/config.yaml"

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// A missing file at DefaultPath is not an error: the bridge can run purely
// from environment variables. Any other missing path is.
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	case errors.Is(err, os.ErrNotExist) && path == DefaultPath:
		// Environment-only deployment.
	default:
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path:        "./data/led-map.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "voicelight-bridge",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				Interval: 5,
			},
			TopicPrefix: "lights",
		},
		InfluxDB: InfluxDBConfig{
			BatchSize:     100,
			FlushInterval: 10,
		},
		API: APIConfig{
			Host: "127.0.0.1",
			Port: 8089,
			Timeouts: TimeoutConfig{
				Read:  10,
				Write: 10,
				Idle:  60,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
//
// Both the VOICELIGHT_SECTION_KEY form and the bare names used by existing
// container deployments (DISCORD_TOKEN, MQTT_BROKER, MQTT_USERNAME,
// MQTT_PASSWORD) are honoured. The prefixed form wins when both are set.
func applyEnvOverrides(cfg *Config) {
	// Discord
	if v := firstEnv("VOICELIGHT_DISCORD_TOKEN", "DISCORD_TOKEN"); v != "" {
		cfg.Discord.Token = v
	}

	// Database
	if v := os.Getenv("VOICELIGHT_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	// MQTT
	if v := firstEnv("VOICELIGHT_MQTT_URL", "MQTT_BROKER"); v != "" {
		cfg.MQTT.Broker.URL = v
	}
	if v := os.Getenv("VOICELIGHT_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := firstEnv("VOICELIGHT_MQTT_USERNAME", "MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := firstEnv("VOICELIGHT_MQTT_PASSWORD", "MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// InfluxDB
	if v := os.Getenv("VOICELIGHT_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}

	// Logging
	if v := os.Getenv("VOICELIGHT_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// firstEnv returns the value of the first non-empty environment variable.
func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}

// Validate checks the configuration for errors.
//
// The Discord token is not checked here because the admin tool shares this
// configuration and never talks to the gateway; see RequireGateway.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	// Database validation
	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}

	// MQTT validation
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}
	if c.MQTT.Broker.URL == "" && (c.MQTT.Broker.Port < 1 || c.MQTT.Broker.Port > 65535) {
		errs = append(errs, "mqtt.broker.port must be between 1 and 65535")
	}
	if c.MQTT.Reconnect.Interval < 1 {
		errs = append(errs, "mqtt.reconnect.interval must be at least 1 second")
	}
	if strings.Trim(c.MQTT.TopicPrefix, "/") == "" {
		errs = append(errs, "mqtt.topic_prefix is required")
	}

	// InfluxDB validation
	if c.InfluxDB.Enabled && c.InfluxDB.URL == "" {
		errs = append(errs, "influxdb.url is required when influxdb is enabled")
	}

	// API validation
	if c.API.Enabled && (c.API.Port < 1 || c.API.Port > 65535) {
		errs = append(errs, "api.port must be between 1 and 65535")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// RequireGateway checks the settings only the bridge daemon needs.
func (c *Config) RequireGateway() error {
	var errs []string
	if c.Discord.Token == "" {
		errs = append(errs, "discord.token is required (set DISCORD_TOKEN)")
	}
	if c.MQTT.Auth.Username == "" || c.MQTT.Auth.Password == "" {
		errs = append(errs, "mqtt.auth.username and mqtt.auth.password are required (set MQTT_USERNAME and MQTT_PASSWORD)")
	}
	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}
	return nil
}

// ReconnectInterval returns the fixed MQTT retry period as a Duration.
func (c MQTTConfig) ReconnectInterval() time.Duration {
	return time.Duration(c.Reconnect.Interval) * time.Second
}
