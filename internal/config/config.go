// Package config holds the settings shared by the server and the walker, read
// from a YAML file and overridden by command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds every tunable of a world, its server and its clients.
type Config struct {
	World  WorldConfig  `yaml:"world"`
	Server ServerConfig `yaml:"server"`
	Client ClientConfig `yaml:"client"`
}

type WorldConfig struct {
	Name          string `yaml:"name"`
	Dir           string `yaml:"dir"` // parent of the world directory
	Seed          int32  `yaml:"seed"`
	Generator     string `yaml:"generator"` // "default" or "flat"
	Store         string `yaml:"store"`     // "file" or "sqlite"
	VisibleRadius int    `yaml:"visible_radius"`
}

type ServerConfig struct {
	Port         int           `yaml:"port"`
	Timeout      time.Duration `yaml:"timeout"`
	PollInterval time.Duration `yaml:"poll_interval"`
	// ChunkRequestsPerSecond throttles LoadChunk per client; 0 disables it.
	ChunkRequestsPerSecond float64 `yaml:"chunk_requests_per_second"`
}

type ClientConfig struct {
	Addr         string        `yaml:"addr"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	SyncInterval time.Duration `yaml:"sync_interval"`
	IdleInterval time.Duration `yaml:"idle_interval"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		World: WorldConfig{
			Name:          "world",
			Dir:           "worlds",
			Generator:     "default",
			Store:         "file",
			VisibleRadius: 4,
		},
		Server: ServerConfig{
			Port:         7777,
			Timeout:      1000 * time.Millisecond,
			PollInterval: 50 * time.Millisecond,
		},
		Client: ClientConfig{
			Addr:         "127.0.0.1:7777",
			DialTimeout:  5 * time.Second,
			SyncInterval: 100 * time.Millisecond,
			IdleInterval: 10 * time.Millisecond,
		},
	}
}

// WorldDir returns the directory holding the world's chunks.
func (c *Config) WorldDir() string {
	return filepath.Join(c.World.Dir, c.World.Name)
}

// Load reads the YAML file at path over the defaults. If the file does not
// exist, the defaults are returned.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path as YAML.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Validate reports settings that cannot work.
func (c *Config) Validate() error {
	var errs []error
	if c.World.Name == "" {
		errs = append(errs, errors.New("world.name is empty"))
	}
	if c.World.VisibleRadius < 0 {
		errs = append(errs, fmt.Errorf("world.visible_radius %d is negative", c.World.VisibleRadius))
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if c.Server.Timeout <= 0 {
		errs = append(errs, errors.New("server.timeout must be positive"))
	}
	if c.Server.PollInterval <= 0 {
		errs = append(errs, errors.New("server.poll_interval must be positive"))
	}
	if c.Server.ChunkRequestsPerSecond < 0 {
		errs = append(errs, errors.New("server.chunk_requests_per_second is negative"))
	}
	return errors.Join(errs...)
}

// Merge applies file-loaded config values into cfg, but only for fields
// that were NOT explicitly set via CLI flags. explicitFlags contains the
// flag names that were explicitly provided on the command line.
func Merge(cfg *Config, fromFile *Config, explicitFlags map[string]bool) {
	if !explicitFlags["world"] {
		cfg.World.Name = fromFile.World.Name
	}
	if !explicitFlags["dir"] {
		cfg.World.Dir = fromFile.World.Dir
	}
	if !explicitFlags["seed"] {
		cfg.World.Seed = fromFile.World.Seed
	}
	if !explicitFlags["generator"] {
		cfg.World.Generator = fromFile.World.Generator
	}
	if !explicitFlags["store"] {
		cfg.World.Store = fromFile.World.Store
	}
	if !explicitFlags["radius"] {
		cfg.World.VisibleRadius = fromFile.World.VisibleRadius
	}
	if !explicitFlags["port"] {
		cfg.Server.Port = fromFile.Server.Port
	}
	if !explicitFlags["timeout"] {
		cfg.Server.Timeout = fromFile.Server.Timeout
	}
	if !explicitFlags["poll-interval"] {
		cfg.Server.PollInterval = fromFile.Server.PollInterval
	}
	if !explicitFlags["chunk-rate"] {
		cfg.Server.ChunkRequestsPerSecond = fromFile.Server.ChunkRequestsPerSecond
	}
	if !explicitFlags["addr"] {
		cfg.Client.Addr = fromFile.Client.Addr
	}
	if !explicitFlags["dial-timeout"] {
		cfg.Client.DialTimeout = fromFile.Client.DialTimeout
	}
	if !explicitFlags["sync-interval"] {
		cfg.Client.SyncInterval = fromFile.Client.SyncInterval
	}
	if !explicitFlags["idle-interval"] {
		cfg.Client.IdleInterval = fromFile.Client.IdleInterval
	}
}
