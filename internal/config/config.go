// Package config loads server configuration: defaults, then an optional
// TOML file, then environment overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	"github.com/matthewbaird/commonapply/internal/logging"
	"github.com/matthewbaird/commonapply/internal/store"
)

// Database drivers.
const (
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

// Config is the complete server configuration.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Log      logging.Config `toml:"log"`
	Session  SessionConfig  `toml:"session"`
	Bus      BusConfig      `toml:"bus"`
}

type ServerConfig struct {
	Port            int           `toml:"port"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Driver string `toml:"driver"`
	DSN    string `toml:"dsn"`
}

// SessionConfig controls expiry of live editing sessions. A zero duration
// disables that check.
type SessionConfig struct {
	MaxAge          time.Duration `toml:"max_age"`
	IdleTimeout     time.Duration `toml:"idle_timeout"`
	JanitorInterval time.Duration `toml:"janitor_interval"`
}

type BusConfig struct {
	BufferSize int `toml:"buffer_size"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:            8080,
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			Driver: DriverSQLite,
			DSN:    store.DefaultDSN,
		},
		Log: logging.DefaultConfig(),
		Session: SessionConfig{
			MaxAge:          12 * time.Hour,
			IdleTimeout:     30 * time.Minute,
			JanitorInterval: time.Minute,
		},
		Bus: BusConfig{BufferSize: 256},
	}
}

// Load reads path (if not empty) over the defaults and applies PORT,
// DATABASE_URL and LOG_LEVEL from the environment.
func Load(path string) (Config, error) {
	return load(path, os.Getenv)
}

func load(path string, getenv func(string) string) (Config, error) {
	cfg := Default()
	if path != "" {
		md, err := toml.DecodeFile(path, &cfg)
		if err != nil {
			return Config{}, fmt.Errorf("reading config %s: %w", path, err)
		}
		for _, key := range md.Undecoded() {
			log.Warn("unknown config key", "key", key.String(), "file", path)
		}
	}

	if p := getenv("PORT"); p != "" {
		v, err := strconv.Atoi(p)
		if err != nil {
			return Config{}, fmt.Errorf("PORT: %w", err)
		}
		cfg.Server.Port = v
	}
	if dsn := getenv("DATABASE_URL"); dsn != "" {
		cfg.Database.DSN = dsn
	}
	if lvl := getenv("LOG_LEVEL"); lvl != "" {
		cfg.Log.Level = lvl
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first setting that cannot work.
func (c Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	switch c.Database.Driver {
	case DriverSQLite:
		if c.Database.DSN == "" {
			return fmt.Errorf("database.dsn is required for the sqlite driver")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown database.driver %q", c.Database.Driver)
	}
	if c.Bus.BufferSize <= 0 {
		return fmt.Errorf("bus.buffer_size must be positive")
	}
	return nil
}
