package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config defines server configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	DB        DBConfig        `yaml:"db"`
	Log       LogConfig       `yaml:"log"`
	Transport TransportConfig `yaml:"transport"`
	Auth      AuthConfig      `yaml:"auth"`
	Sequence  SequenceConfig  `yaml:"sequence"`
	Redis     RedisConfig     `yaml:"redis"`
	Notify    NotifyConfig    `yaml:"notify"`
	Jobs      JobsConfig      `yaml:"jobs"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DBConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	// Path sends logs to a size-capped file instead of stderr.
	Path string `yaml:"path"`
}

// TransportConfig selects how the MCP server is exposed: "stdio" or "http".
type TransportConfig struct {
	Mode string `yaml:"mode"`
}

type AuthConfig struct {
	Enabled bool `yaml:"enabled"`
	// DefaultActor is the actor id used when auth is disabled.
	DefaultActor string `yaml:"default_actor"`
	// DefaultRole is the role of the default actor.
	DefaultRole string `yaml:"default_role"`
}

// SequenceConfig selects the counter backend: "sqlite" or "redis".
type SequenceConfig struct {
	Backend string `yaml:"backend"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// NotifyConfig selects the notification driver: "log" or "amqp".
type NotifyConfig struct {
	Driver        string `yaml:"driver"`
	AMQPURL       string `yaml:"amqp_url"`
	Exchange      string `yaml:"exchange"`
	ApproverEmail string `yaml:"approver_email"`
}

type JobsConfig struct {
	DefaultMode string `yaml:"default_mode"`
	// Documents overrides the required document checklist per transport mode.
	Documents map[string][]string `yaml:"documents"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		DB: DBConfig{
			Path: "freightline.db",
		},
		Log: LogConfig{
			Level: "info",
		},
		Transport: TransportConfig{
			Mode: "stdio",
		},
		Auth: AuthConfig{
			DefaultActor: "local",
			DefaultRole:  "admin",
		},
		Sequence: SequenceConfig{
			Backend: "sqlite",
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		Notify: NotifyConfig{
			Driver:   "log",
			Exchange: "freight.notifications",
		},
		Jobs: JobsConfig{
			DefaultMode: "SEA",
		},
	}
}

// Load reads configuration from an optional YAML file and environment variables.
func Load() (Config, error) {
	cfg := Default()

	if path := os.Getenv("FREIGHT_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if host := os.Getenv("FREIGHT_SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if portStr := os.Getenv("FREIGHT_SERVER_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return fmt.Errorf("invalid FREIGHT_SERVER_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if dbPath := os.Getenv("FREIGHT_DB_PATH"); dbPath != "" {
		cfg.DB.Path = dbPath
	}
	if level := os.Getenv("FREIGHT_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if path := os.Getenv("FREIGHT_LOG_PATH"); path != "" {
		cfg.Log.Path = path
	}
	if mode := os.Getenv("FREIGHT_TRANSPORT"); mode != "" {
		cfg.Transport.Mode = mode
	}
	if enabled := os.Getenv("FREIGHT_AUTH_ENABLED"); enabled != "" {
		v, err := strconv.ParseBool(enabled)
		if err != nil {
			return fmt.Errorf("invalid FREIGHT_AUTH_ENABLED: %w", err)
		}
		cfg.Auth.Enabled = v
	}
	if actor := os.Getenv("FREIGHT_DEFAULT_ACTOR"); actor != "" {
		cfg.Auth.DefaultActor = actor
	}
	if role := os.Getenv("FREIGHT_DEFAULT_ROLE"); role != "" {
		cfg.Auth.DefaultRole = role
	}
	if backend := os.Getenv("FREIGHT_SEQUENCE_BACKEND"); backend != "" {
		cfg.Sequence.Backend = backend
	}
	if addr := os.Getenv("FREIGHT_REDIS_ADDR"); addr != "" {
		cfg.Redis.Addr = addr
	}
	if password := os.Getenv("FREIGHT_REDIS_PASSWORD"); password != "" {
		cfg.Redis.Password = password
	}
	if dbStr := os.Getenv("FREIGHT_REDIS_DB"); dbStr != "" {
		db, err := strconv.Atoi(dbStr)
		if err != nil {
			return fmt.Errorf("invalid FREIGHT_REDIS_DB: %w", err)
		}
		cfg.Redis.DB = db
	}
	if driver := os.Getenv("FREIGHT_NOTIFY_DRIVER"); driver != "" {
		cfg.Notify.Driver = driver
	}
	if url := os.Getenv("FREIGHT_AMQP_URL"); url != "" {
		cfg.Notify.AMQPURL = url
	}
	if exchange := os.Getenv("FREIGHT_AMQP_EXCHANGE"); exchange != "" {
		cfg.Notify.Exchange = exchange
	}
	if email := os.Getenv("FREIGHT_APPROVER_EMAIL"); email != "" {
		cfg.Notify.ApproverEmail = email
	}
	if mode := os.Getenv("FREIGHT_DEFAULT_MODE"); mode != "" {
		cfg.Jobs.DefaultMode = mode
	}
	return nil
}

// Validate checks the enumerated settings.
func (c Config) Validate() error {
	c.Transport.Mode = strings.ToLower(c.Transport.Mode)
	switch c.Transport.Mode {
	case "stdio", "http":
	default:
		return fmt.Errorf("invalid transport mode %q: expected stdio or http", c.Transport.Mode)
	}
	switch strings.ToLower(c.Sequence.Backend) {
	case "sqlite", "redis":
	default:
		return fmt.Errorf("invalid sequence backend %q: expected sqlite or redis", c.Sequence.Backend)
	}
	switch strings.ToLower(c.Notify.Driver) {
	case "log":
	case "amqp":
		if c.Notify.AMQPURL == "" {
			return fmt.Errorf("notify driver amqp requires an AMQP URL")
		}
	default:
		return fmt.Errorf("invalid notify driver %q: expected log or amqp", c.Notify.Driver)
	}
	return nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
