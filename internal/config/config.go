// Package config provides YAML-based configuration loading for swapmeet.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Supported database drivers.
const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

// Config is the top-level swapmeet configuration, loaded from swapmeet.yaml.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Server   ServerConfig   `yaml:"server"`
	Notify   NotifyConfig   `yaml:"notify"`
	Seed     string         `yaml:"seed"` // optional fixture file for `swap db seed`
}

// DatabaseConfig holds connection settings. Host, port, user, password and
// name apply to MySQL; Path applies to SQLite.
type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	Path     string `yaml:"path"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// NotifyConfig lists the chat channels that receive exchange events.
// A platform with an empty bot token is disabled.
type NotifyConfig struct {
	Slack   ChannelConfig `yaml:"slack"`
	Discord ChannelConfig `yaml:"discord"`
}

// ChannelConfig identifies a bot and the channel it posts to.
type ChannelConfig struct {
	BotToken  string `yaml:"bot_token"`
	ChannelID string `yaml:"channel_id"`
}

// Enabled reports whether the channel has enough settings to post.
func (c ChannelConfig) Enabled() bool {
	return c.BotToken != "" && c.ChannelID != ""
}

// Environment variables that override secrets from the YAML file.
const (
	EnvDBPassword   = "SWAPMEET_DB_PASSWORD"
	EnvDBHost       = "SWAPMEET_DB_HOST"
	EnvServerPort   = "SWAPMEET_PORT"
	EnvSlackToken   = "SWAPMEET_SLACK_BOT_TOKEN"
	EnvDiscordToken = "SWAPMEET_DISCORD_BOT_TOKEN"
)

// Load reads a YAML config file from path, applies overrides from the
// environment (a .env file next to the process is loaded first when
// present) and returns a validated Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	// A missing .env is normal outside development.
	_ = godotenv.Load()

	cfg, err := parse(data)
	if err != nil {
		return nil, err
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse unmarshals YAML bytes into a validated Config without consulting
// the environment.
func Parse(data []byte) (*Config, error) {
	cfg, err := parse(data)
	if err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// applyDefaults fills in derived and default values.
func (c *Config) applyDefaults() {
	if c.Database.Driver == "" {
		c.Database.Driver = DriverSQLite
	}
	switch c.Database.Driver {
	case DriverMySQL:
		if c.Database.Host == "" {
			c.Database.Host = "127.0.0.1"
		}
		if c.Database.Port == 0 {
			c.Database.Port = 3306
		}
		if c.Database.User == "" {
			c.Database.User = "swapmeet"
		}
		if c.Database.Name == "" {
			c.Database.Name = "swapmeet"
		}
	case DriverSQLite:
		if c.Database.Path == "" {
			c.Database.Path = "swapmeet.db"
		}
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
}

// applyEnv overrides secrets and deployment-specific values from lookup.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvDBPassword); ok {
		c.Database.Password = v
	}
	if v, ok := lookup(EnvDBHost); ok && v != "" {
		c.Database.Host = v
	}
	if v, ok := lookup(EnvServerPort); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: %s: %w", EnvServerPort, err)
		}
		c.Server.Port = port
	}
	if v, ok := lookup(EnvSlackToken); ok {
		c.Notify.Slack.BotToken = v
	}
	if v, ok := lookup(EnvDiscordToken); ok {
		c.Notify.Discord.BotToken = v
	}
	return nil
}

// validate checks that all required fields are present and consistent.
func (c *Config) validate() error {
	var errs []string
	switch c.Database.Driver {
	case DriverMySQL:
		if c.Database.Port < 0 || c.Database.Port > 65535 {
			errs = append(errs, fmt.Sprintf("database.port %d is out of range", c.Database.Port))
		}
	case DriverSQLite:
	default:
		errs = append(errs, fmt.Sprintf("database.driver %q is not supported (want mysql or sqlite)", c.Database.Driver))
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port %d is out of range", c.Server.Port))
	}
	if c.Notify.Slack.BotToken != "" && c.Notify.Slack.ChannelID == "" {
		errs = append(errs, "notify.slack.channel_id is required when a bot token is set")
	}
	if c.Notify.Discord.BotToken != "" && c.Notify.Discord.ChannelID == "" {
		errs = append(errs, "notify.discord.channel_id is required when a bot token is set")
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
