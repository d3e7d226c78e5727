package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for earpanel.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Panel       PanelConfig       `yaml:"panel"`
	Session     SessionConfig     `yaml:"session"`
	Preferences PreferencesConfig `yaml:"preferences"`
	Database    DatabaseConfig    `yaml:"database"`
	MQTT        MQTTConfig        `yaml:"mqtt"`
	API         APIConfig         `yaml:"api"`
	WebSocket   WebSocketConfig   `yaml:"websocket"`
	InfluxDB    InfluxDBConfig    `yaml:"influxdb"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// PanelConfig identifies this control panel instance.
type PanelConfig struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`

	// CatalogFile is the YAML device catalog loaded at startup.
	// Empty means the built-in catalog.
	CatalogFile string `yaml:"catalog_file"`
}

// SessionConfig contains the timings of the simulated device operations.
type SessionConfig struct {
	ScanDurationMS           int `yaml:"scan_duration_ms"`
	FirmwareUpdateDurationMS int `yaml:"firmware_update_duration_ms"`
}

// PreferencesConfig contains the initial user preferences for a session.
type PreferencesConfig struct {
	AutoConnect      bool `yaml:"auto_connect"`
	Notifications    bool `yaml:"notifications"`
	LowBatteryAlert  bool `yaml:"low_battery_alert"`
	AutoUpdates      bool `yaml:"auto_updates"`
	HighQualityAudio bool `yaml:"high_quality_audio"`
}

// DatabaseConfig contains SQLite settings for the activity journal.
type DatabaseConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`

	// RetentionHours bounds how long journal entries are kept. 0 keeps everything.
	RetentionHours int `yaml:"retention_hours"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Enabled   bool                `yaml:"enabled"`
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
}

// APIConfig contains HTTP API server settings.
type APIConfig struct {
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
	CORS     CORSConfig       `yaml:"cors"`
}

// APITimeoutConfig contains HTTP timeout settings (seconds).
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// CORSConfig contains Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers"`
}

// WebSocketConfig contains WebSocket server settings.
type WebSocketConfig struct {
	MaxMessageSize int `yaml:"max_message_size"`
	PingInterval   int `yaml:"ping_interval"`
	PongTimeout    int `yaml:"pong_timeout"`
}

// InfluxDBConfig contains InfluxDB connection settings for battery telemetry.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load layers Default, the YAML file at path, an optional .env file and
// EARPANEL_* environment variables, in that order, then validates.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := LoadDotEnv(); err != nil {
		return nil, fmt.Errorf("loading .env: %w", err)
	}
	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Default returns a Config with sensible defaults.
//
// Every external integration (database, MQTT, InfluxDB) is disabled so a
// bare install runs fully in memory.
func Default() *Config {
	return &Config{
		Panel: PanelConfig{
			ID:   "panel-001",
			Name: "earpanel",
		},
		Session: SessionConfig{
			ScanDurationMS:           3000,
			FirmwareUpdateDurationMS: 5000,
		},
		Preferences: PreferencesConfig{
			AutoConnect:      true,
			Notifications:    true,
			LowBatteryAlert:  true,
			AutoUpdates:      false,
			HighQualityAudio: true,
		},
		Database: DatabaseConfig{
			Path:           "./data/earpanel.db",
			WALMode:        true,
			BusyTimeout:    5,
			RetentionHours: 24 * 7,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "earpanel",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
		},
		API: APIConfig{
			Host: "127.0.0.1",
			Port: 8090,
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
		},
		WebSocket: WebSocketConfig{
			MaxMessageSize: 8192,
			PingInterval:   30,
			PongTimeout:    10,
		},
		InfluxDB: InfluxDBConfig{
			BatchSize:     100,
			FlushInterval: 10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// envOverrides maps EARPANEL_* variables onto config fields. Secrets
// belong here rather than in the YAML file.
var envOverrides = []struct {
	key   string
	apply func(*Config, string)
}{
	{"EARPANEL_CATALOG_FILE", func(c *Config, v string) { c.Panel.CatalogFile = v }},
	{"EARPANEL_DATABASE_PATH", func(c *Config, v string) { c.Database.Path = v }},
	{"EARPANEL_MQTT_HOST", func(c *Config, v string) { c.MQTT.Broker.Host = v }},
	{"EARPANEL_MQTT_USERNAME", func(c *Config, v string) { c.MQTT.Auth.Username = v }},
	{"EARPANEL_MQTT_PASSWORD", func(c *Config, v string) { c.MQTT.Auth.Password = v }},
	{"EARPANEL_API_HOST", func(c *Config, v string) { c.API.Host = v }},
	{"EARPANEL_API_PORT", func(c *Config, v string) {
		if port, err := strconv.Atoi(v); err == nil {
			c.API.Port = port
		}
	}},
	{"EARPANEL_INFLUXDB_TOKEN", func(c *Config, v string) { c.InfluxDB.Token = v }},
	{"EARPANEL_LOG_LEVEL", func(c *Config, v string) { c.Logging.Level = v }},
}

func applyEnvOverrides(cfg *Config) {
	for _, o := range envOverrides {
		if v := os.Getenv(o.key); v != "" {
			o.apply(cfg, v)
		}
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []string

	if c.Panel.ID == "" {
		errs = append(errs, "panel.id is required")
	}

	if c.Session.ScanDurationMS <= 0 {
		errs = append(errs, "session.scan_duration_ms must be positive")
	}
	if c.Session.FirmwareUpdateDurationMS <= 0 {
		errs = append(errs, "session.firmware_update_duration_ms must be positive")
	}

	if c.Database.Enabled && c.Database.Path == "" {
		errs = append(errs, "database.path is required when the journal is enabled")
	}

	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}

	if c.API.Port < 1 || c.API.Port > 65535 {
		errs = append(errs, "api.port must be between 1 and 65535")
	}

	if c.WebSocket.PingInterval <= 0 {
		errs = append(errs, "websocket.ping_interval must be positive")
	}
	if c.WebSocket.PongTimeout <= 0 {
		errs = append(errs, "websocket.pong_timeout must be positive")
	}
	if c.WebSocket.MaxMessageSize <= 0 {
		errs = append(errs, "websocket.max_message_size must be positive")
	}

	if c.InfluxDB.Enabled && (c.InfluxDB.URL == "" || c.InfluxDB.Bucket == "") {
		errs = append(errs, "influxdb.url and influxdb.bucket are required when influxdb is enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// ScanDuration returns the simulated discovery latency.
func (c *Config) ScanDuration() time.Duration {
	return time.Duration(c.Session.ScanDurationMS) * time.Millisecond
}

// FirmwareUpdateDuration returns the simulated firmware transfer time.
func (c *Config) FirmwareUpdateDuration() time.Duration {
	return time.Duration(c.Session.FirmwareUpdateDurationMS) * time.Millisecond
}

// JournalRetention returns how long journal entries are kept (0 = forever).
func (c *Config) JournalRetention() time.Duration {
	return time.Duration(c.Database.RetentionHours) * time.Hour
}

// ReadTimeout returns the HTTP read and header timeout.
func (t APITimeoutConfig) ReadTimeout() time.Duration {
	return time.Duration(t.Read) * time.Second
}

// WriteTimeout returns the HTTP write timeout.
func (t APITimeoutConfig) WriteTimeout() time.Duration {
	return time.Duration(t.Write) * time.Second
}

// IdleTimeout returns the keep-alive idle timeout.
func (t APITimeoutConfig) IdleTimeout() time.Duration {
	return time.Duration(t.Idle) * time.Second
}
