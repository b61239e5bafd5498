package shared

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

const defaultGracePeriod = 5 * time.Second

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Database      DatabaseConfig      `toml:"database"`
	Server        ServerConfig        `toml:"server"`
	Reconcile     ReconcileConfig     `toml:"reconcile"`
	Feed          FeedConfig          `toml:"feed"`
	Notifications NotificationsConfig `toml:"notifications"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// ReconcileConfig contains reconciliation driver settings.
type ReconcileConfig struct {
	GracePeriod string `toml:"grace_period"`
}

// Grace parses GracePeriod, falling back to five seconds when unset or malformed.
func (r ReconcileConfig) Grace() time.Duration {
	if r.GracePeriod == "" {
		return defaultGracePeriod
	}
	d, err := time.ParseDuration(r.GracePeriod)
	if err != nil || d <= 0 {
		return defaultGracePeriod
	}
	return d
}

// FeedConfig selects the change feed backend.
type FeedConfig struct {
	Backend       string `toml:"backend"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
	Channel       string `toml:"channel"`
}

// NotificationsConfig selects and configures the push notification gateway.
type NotificationsConfig struct {
	Provider  string          `toml:"provider"`
	OneSignal OneSignalConfig `toml:"onesignal"`
	Queue     QueueConfig     `toml:"queue"`
}

// OneSignalConfig contains OneSignal REST API credentials.
type OneSignalConfig struct {
	AppID     string  `toml:"app_id"`
	APIKey    string  `toml:"api_key"`
	BaseURL   string  `toml:"base_url"`
	RateLimit float64 `toml:"rate_limit"`
}

// QueueConfig contains the AMQP broker settings for queued deliveries.
type QueueConfig struct {
	URL  string `toml:"url"`
	Name string `toml:"name"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// LoadEnv loads variables from the given .env files (default ".env") into the process environment.
//
// Missing files are not an error.
func LoadEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// ApplyEnv overrides config values with environment variables when they are set.
//
//   - ROSTER_DB_PATH
//   - ROSTER_PORT
//   - ONESIGNAL_APP_ID, ONESIGNAL_REST_API_KEY
//   - RABBITMQ_URL (AMQP_URL)
//   - REDIS_ADDR
func (c *Config) ApplyEnv() {
	if v := os.Getenv("ROSTER_DB_PATH"); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv("ROSTER_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Server.Port = n
		}
	}
	if v := os.Getenv("ONESIGNAL_APP_ID"); v != "" {
		c.Notifications.OneSignal.AppID = v
	}
	if v := os.Getenv("ONESIGNAL_REST_API_KEY"); v != "" {
		c.Notifications.OneSignal.APIKey = v
	}
	if v := os.Getenv("RABBITMQ_URL"); v != "" {
		c.Notifications.Queue.URL = v
	} else if v := os.Getenv("AMQP_URL"); v != "" {
		c.Notifications.Queue.URL = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Feed.RedisAddr = v
	}
}
