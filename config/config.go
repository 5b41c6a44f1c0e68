// Package config loads pivotgraph settings from TOML.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	"github.com/TFMV/pivotgraph/models"
	"github.com/TFMV/pivotgraph/physics"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config holds pivotgraph configuration.
type Config struct {
	Simulation SimulationConfig `toml:"simulation"`
	Physics    physics.Params   `toml:"physics"`
	Server     ServerConfig     `toml:"server"`
	Log        LogConfig        `toml:"log"`
}

// SimulationConfig selects the dataset and the starting view.
type SimulationConfig struct {
	// Dataset is a JSON or YAML file. Empty means the embedded sample.
	Dataset string `toml:"dataset"`
	Focus   string `toml:"focus"`
	Metric  string `toml:"metric"`
	FPS     int    `toml:"fps"`
	// Seed fixes the initial scatter. Zero picks one from the clock.
	Seed int64 `toml:"seed"`
}

// ServerConfig controls the HTTP surface.
type ServerConfig struct {
	Addr            string `toml:"addr"`
	ShutdownSeconds int    `toml:"shutdown_seconds"`
	MaxSessions     int    `toml:"max_sessions"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level string `toml:"level"` // debug, info, warn, error
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Simulation: SimulationConfig{Metric: string(models.MetricCombined), FPS: 60},
		Physics:    physics.DefaultParams(),
		Server:     ServerConfig{Addr: ":8080", ShutdownSeconds: 5, MaxSessions: 64},
		Log:        LogConfig{Level: "info"},
	}
}

// Dir returns the pivotgraph config directory.
func Dir() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "pivotgraph")
}

// DefaultPath returns the config file used when none is given.
func DefaultPath() string {
	return filepath.Join(Dir(), "config.toml")
}

// Load decodes path over the defaults. An empty path reads DefaultPath and
// tolerates it being absent; an explicit path must exist.
func Load(path string) (*Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg to path, creating parent directories.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

// Validate rejects settings the engine cannot run with.
func (c *Config) Validate() error {
	p := c.Physics
	switch {
	case c.Simulation.FPS <= 0:
		return fmt.Errorf("%w: simulation.fps must be positive, got %d", ErrInvalid, c.Simulation.FPS)
	case p.Damping <= 0 || p.Damping > 1:
		return fmt.Errorf("%w: physics.damping must be in (0, 1], got %g", ErrInvalid, p.Damping)
	case p.Epsilon <= 0:
		return fmt.Errorf("%w: physics.epsilon must be positive, got %g", ErrInvalid, p.Epsilon)
	case p.RepulsionSoftening <= 0:
		return fmt.Errorf("%w: physics.repulsion_softening must be positive, got %g", ErrInvalid, p.RepulsionSoftening)
	case p.InitialSpread < 0:
		return fmt.Errorf("%w: physics.initial_spread must not be negative, got %g", ErrInvalid, p.InitialSpread)
	case c.Server.ShutdownSeconds < 0:
		return fmt.Errorf("%w: server.shutdown_seconds must not be negative", ErrInvalid)
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: log.level: %v", ErrInvalid, err)
	}
	return nil
}

// LogLevel returns the configured level, falling back to info.
func (c *Config) LogLevel() log.Level {
	lvl, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}

// ShutdownTimeout returns the graceful shutdown window.
func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.Server.ShutdownSeconds) * time.Second
}

// Metric returns the configured starting metric.
func (c *Config) Metric() models.Metric {
	return models.ParseMetric(c.Simulation.Metric)
}
