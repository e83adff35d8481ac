// Package config loads the host configuration from an optional YAML file.
// The cmd layer merges CLI flags over the loaded values, so every field here
// has a usable default and a missing file is not an error.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the host's file-loadable configuration.
type Config struct {
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	Registry  string `yaml:"registry"`
	MemoryDir string `yaml:"memory_dir"`

	Planner Planner `yaml:"planner"`
	Log     Log     `yaml:"log"`

	// DeliverTimeoutSeconds bounds one delegated call end to end; remote
	// agents may do minutes of work.
	DeliverTimeoutSeconds int `yaml:"deliver_timeout_seconds"`
	// DiscoveryTimeoutSeconds bounds each startup card fetch.
	DiscoveryTimeoutSeconds int `yaml:"discovery_timeout_seconds"`
}

// Planner selects the decision-policy provider and model.
type Planner struct {
	// Provider is "openai" or "anthropic".
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`
}

// Log selects the logging sink shape.
type Log struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`
	// Format is "text" or "json".
	Format string `yaml:"format"`
}

// Default returns the configuration used when no file and no flags are given.
func Default() Config {
	return Config{
		Host:                    "localhost",
		Port:                    8000,
		Registry:                "registry.json",
		MemoryDir:               "memory",
		Planner:                 Planner{Provider: "openai"},
		Log:                     Log{Level: "info", Format: "text"},
		DeliverTimeoutSeconds:   300,
		DiscoveryTimeoutSeconds: 5,
	}
}

// Load reads path over the defaults. An empty path returns the defaults; a
// missing or unreadable file is an error so a misspelled --config does not
// silently run on defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// Addr returns the host:port listen address.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DeliverTimeout returns the delegated-call bound as a duration.
func (c Config) DeliverTimeout() time.Duration {
	return time.Duration(c.DeliverTimeoutSeconds) * time.Second
}

// DiscoveryTimeout returns the per-endpoint discovery bound as a duration.
func (c Config) DiscoveryTimeout() time.Duration {
	return time.Duration(c.DiscoveryTimeoutSeconds) * time.Second
}
