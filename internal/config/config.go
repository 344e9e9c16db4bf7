// Package config provides configuration file support for sondaj.
package config

import (
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Config represents the sondaj configuration file structure.
type Config struct {
	// Defaults are applied when flags are not specified
	Defaults Defaults `yaml:"defaults"`

	// Aliases for common targets
	Aliases map[string]string `yaml:"aliases,omitempty"`
}

// Defaults holds default values for scan parameters.
type Defaults struct {
	// Interface is the network interface probes are sent on.
	Interface string `yaml:"interface"`

	// WaitMs is the per-port wait budget, in milliseconds.
	WaitMs int `yaml:"wait_ms"`

	// Retransmissions is the number of resends before a port times out.
	Retransmissions int `yaml:"retransmissions"`

	// RatelimitMs is the minimum gap between UDP probes, in milliseconds.
	RatelimitMs int `yaml:"ratelimit_ms"`

	// NoColor disables colored verdict output.
	NoColor bool `yaml:"no_color"`

	// TUI enables the live bubbletea progress view instead of streamed text.
	TUI bool `yaml:"tui"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Defaults: Defaults{
			Interface:       "",
			WaitMs:          5000,
			Retransmissions: 1,
			RatelimitMs:     1000,
			NoColor:         false,
			TUI:             false,
		},
		Aliases: make(map[string]string),
	}
}

// Load reads configuration from the default config file locations.
// It searches in order:
//  1. ./sondaj.yaml (current directory)
//  2. ~/.config/sondaj/config.yaml (Linux/macOS)
//  3. %APPDATA%\sondaj\config.yaml (Windows)
//
// If no config file is found, returns default configuration.
func Load() (*Config, error) {
	paths := getConfigPaths()

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return LoadFrom(path)
		}
	}

	// No config file found, return defaults
	return DefaultConfig(), nil
}

// LoadFrom reads configuration from a specific file path.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the configuration to the default user config path.
func (c *Config) Save() error {
	return c.SaveTo(getUserConfigPath())
}

// SaveTo writes the configuration to a specific file path.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// getConfigPaths returns the list of config file paths to search.
func getConfigPaths() []string {
	paths := []string{
		"sondaj.yaml",
		"sondaj.yml",
		".sondaj.yaml",
		".sondaj.yml",
	}

	if userPath := getUserConfigPath(); userPath != "" {
		paths = append(paths, userPath)
	}

	return paths
}

// getUserConfigPath returns the user-specific config file path.
func getUserConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "sondaj", "config.yaml")
		}
	default: // Linux, macOS, etc.
		home, err := os.UserHomeDir()
		if err == nil {
			if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
				return filepath.Join(xdgConfig, "sondaj", "config.yaml")
			}
			return filepath.Join(home, ".config", "sondaj", "config.yaml")
		}
	}
	return ""
}

// GetConfigPath returns the path where user config would be saved.
func GetConfigPath() string {
	return getUserConfigPath()
}

// GenerateExample generates an example configuration file content.
func GenerateExample() string {
	return `# sondaj configuration file
# Location: ~/.config/sondaj/config.yaml (Linux/macOS)
#           %APPDATA%\sondaj\config.yaml (Windows)
#           ./sondaj.yaml (current directory)

defaults:
  interface: ""           # network interface to probe on (required at scan time)
  wait_ms: 5000            # per-port wait budget, in milliseconds
  retransmissions: 1        # resends before a port is reported filtered/open
  ratelimit_ms: 1000        # minimum gap between UDP probes, in milliseconds
  no_color: false           # disable colored verdict output
  tui: false                # live progress view instead of streamed text

# Target aliases (optional)
aliases:
  dns: 8.8.8.8
  cf: 1.1.1.1
`
}
