package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/julianstephens/pokrok/internal/constants"
	"github.com/julianstephens/pokrok/internal/utils"
)

// Config is the contents of ~/.config/pokrok/config.yaml.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Server   ServerConfig   `yaml:"server"`
	Client   ClientConfig   `yaml:"client"`
	Logging  LoggingConfig  `yaml:"logging"`

	// Timezone overrides the stored setting when deciding what "today" is.
	Timezone string `yaml:"timezone,omitempty"`
}

type DatabaseConfig struct {
	// Path is the SQLite file. Ignored when Connection is set.
	Path string `yaml:"path"`
	// Connection is a PostgreSQL URI or DSN without a password.
	Connection string `yaml:"connection,omitempty"`
}

type ServerConfig struct {
	Addr      string `yaml:"addr"`
	CacheTTL  string `yaml:"cache_ttl"`
	RedisAddr string `yaml:"redis_addr,omitempty"`
	RedisDB   int    `yaml:"redis_db,omitempty"`
}

type ClientConfig struct {
	ServerURL    string `yaml:"server_url"`
	PollInterval string `yaml:"poll_interval"`
	// ViewStatePath is where the dashboard remembers its tab and date.
	ViewStatePath string `yaml:"view_state_path"`
}

type LoggingConfig struct {
	Debug bool `yaml:"debug"`
}

func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{Path: constants.DefaultDBPath},
		Server: ServerConfig{
			Addr:     constants.DefaultListenAddr,
			CacheTTL: constants.DefaultCacheTTL.String(),
		},
		Client: ClientConfig{
			ServerURL:     constants.DefaultServerURL,
			PollInterval:  constants.DefaultPollInterval.String(),
			ViewStatePath: filepath.Join(constants.DefaultConfigDir, "view_state.json"),
		},
	}
}

// Load reads path over the defaults and applies POKROK_* environment
// overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(ExpandPath(path))
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Save(path string) error {
	path = ExpandPath(path)
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("POKROK_DB"); v != "" {
		if isPostgres(v) {
			c.Database.Connection = v
		} else {
			c.Database.Path = v
		}
	}
	if v := os.Getenv("POKROK_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("POKROK_REDIS_ADDR"); v != "" {
		c.Server.RedisAddr = v
	}
	if v := os.Getenv("POKROK_SERVER_URL"); v != "" {
		c.Client.ServerURL = v
	}
	if v := os.Getenv("POKROK_TIMEZONE"); v != "" {
		c.Timezone = v
	}
	if v := os.Getenv("POKROK_POLL_INTERVAL"); v != "" {
		c.Client.PollInterval = v
	}
	if v := os.Getenv("POKROK_DEBUG"); v != "" {
		if debug, err := strconv.ParseBool(v); err == nil {
			c.Logging.Debug = debug
		}
	}
}

// Validate checks durations and the timezone.
func (c *Config) Validate() error {
	if _, err := parsePositiveDuration("server.cache_ttl", c.Server.CacheTTL); err != nil {
		return err
	}
	if _, err := parsePositiveDuration("client.poll_interval", c.Client.PollInterval); err != nil {
		return err
	}
	if c.Timezone != "" && !utils.ValidateTimezone(c.Timezone) {
		return fmt.Errorf("invalid timezone %q", c.Timezone)
	}
	return nil
}

func (c *Config) CacheTTL() time.Duration {
	d, err := parsePositiveDuration("server.cache_ttl", c.Server.CacheTTL)
	if err != nil {
		return constants.DefaultCacheTTL
	}
	return d
}

func (c *Config) PollInterval() time.Duration {
	d, err := parsePositiveDuration("client.poll_interval", c.Client.PollInterval)
	if err != nil {
		return constants.DefaultPollInterval
	}
	return d
}

// UsesPostgres reports whether the configured database is PostgreSQL.
func (c *Config) UsesPostgres() bool {
	return c.Database.Connection != ""
}

// ConfigDir is the directory holding the SQLite file and logs.
func (c *Config) ConfigDir() string {
	if c.UsesPostgres() {
		return ExpandPath(constants.DefaultConfigDir)
	}
	return filepath.Dir(ExpandPath(c.Database.Path))
}

func parsePositiveDuration(field, value string) (time.Duration, error) {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", field, value, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be positive", field, value)
	}
	return d, nil
}

func isPostgres(s string) bool {
	return strings.HasPrefix(s, "postgres://") || strings.HasPrefix(s, "postgresql://") || strings.Contains(s, "host=")
}

// IsPostgres reports whether target looks like a PostgreSQL URI or DSN.
func IsPostgres(target string) bool {
	return isPostgres(target)
}

// ExpandPath replaces a leading "~" with the user's home directory.
func ExpandPath(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
