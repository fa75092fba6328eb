package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	AUR   AURConfig   `yaml:"aur"`
	Check CheckConfig `yaml:"check"`
}

// AURConfig holds AUR RPC settings
type AURConfig struct {
	// URL is the RPC endpoint
	URL string `yaml:"url"`
}

// CheckConfig holds update-check settings
type CheckConfig struct {
	// Workers is the worker pool size; 0 means one worker per CPU
	Workers int `yaml:"workers"`
	// TimeoutSeconds bounds each repository page fetch
	TimeoutSeconds int `yaml:"timeout_seconds"`
	// Retries is the number of retry attempts on 5xx/429 responses.
	// The default of 0 issues a single fetch per package.
	Retries int `yaml:"retries"`
	// ProfilesPath points at an optional TOML file with extra repository
	// profiles, merged with the built-in ones
	ProfilesPath string `yaml:"profiles_path,omitempty"`
}

// Default returns the configuration defaults.
func Default() *Config {
	return &Config{
		AUR: AURConfig{
			URL: "https://aur.archlinux.org/rpc/",
		},
		Check: CheckConfig{
			Workers:        0,
			TimeoutSeconds: 30,
			Retries:        0,
		},
	}
}

// Timeout returns the per-request fetch timeout as a duration.
func (c *CheckConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// ConfigPaths returns all possible config file paths in priority order
// 1. ~/.config/aurrpkgs/config.yaml (XDG standard - priority)
// 2. ~/.aurrpkgs/config.yaml (legacy fallback)
func ConfigPaths() ([]string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	// Check XDG_CONFIG_HOME first, fallback to ~/.config
	xdgConfig := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfig == "" {
		xdgConfig = filepath.Join(home, ".config")
	}

	return []string{
		filepath.Join(xdgConfig, "aurrpkgs", "config.yaml"),
		filepath.Join(home, ".aurrpkgs", "config.yaml"),
	}, nil
}

// DefaultConfigPath returns the default config file path (XDG standard)
func DefaultConfigPath() (string, error) {
	paths, err := ConfigPaths()
	if err != nil {
		return "", err
	}
	return paths[0], nil
}

// FindConfigPath returns the first existing config file path
// Returns the default path if no config file exists yet
func FindConfigPath() (string, error) {
	paths, err := ConfigPaths()
	if err != nil {
		return "", err
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	// No config exists, return default (XDG) path for creation
	return paths[0], nil
}

// Load reads configuration from the first available config file
// Priority: ~/.config/aurrpkgs/config.yaml > ~/.aurrpkgs/config.yaml
func Load() (*Config, error) {
	configPath, err := FindConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(configPath)
}

// LoadFrom reads configuration from a specific file path
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Create default config
			cfg := Default()
			if saveErr := cfg.SaveTo(path); saveErr != nil {
				return nil, saveErr
			}
			return cfg, nil
		}
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes configuration to the default config file
func (c *Config) Save() error {
	configPath, err := DefaultConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(configPath)
}

// SaveTo writes configuration to a specific file path
func (c *Config) SaveTo(path string) error {
	// Ensure directory exists
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
