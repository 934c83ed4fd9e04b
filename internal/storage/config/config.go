package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"modman/internal/domain"

	"gopkg.in/yaml.v3"
)

const (
	defaultDownloadAttempts = 3
	defaultKeepLogs         = 10
)

// Config holds global application settings
type Config struct {
	DefaultProfile   string           `yaml:"default_profile"`
	DownloadAttempts int              `yaml:"download_attempts"`
	MatchMode        domain.MatchMode `yaml:"-"`
	MatchModeStr     string           `yaml:"match_mode"`
	KeepLogs         int              `yaml:"keep_logs"`
	Keybindings      string           `yaml:"keybindings"`
	Hooks            domain.ModHooks  `yaml:"hooks,omitempty"`
}

// Default returns the settings used when no config.yaml exists
func Default() *Config {
	return &Config{
		DefaultProfile:   domain.DefaultProfileName,
		DownloadAttempts: defaultDownloadAttempts,
		MatchMode:        domain.MatchExact,
		KeepLogs:         defaultKeepLogs,
		Keybindings:      "vim",
	}
}

// Load reads configuration from the given directory
func Load(configDir string) (*Config, error) {
	cfg := Default()

	configPath := filepath.Join(configDir, "config.yaml")
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil // Return defaults
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.MatchModeStr != "" {
		cfg.MatchMode = domain.ParseMatchMode(cfg.MatchModeStr)
	}
	if cfg.DefaultProfile == "" {
		cfg.DefaultProfile = domain.DefaultProfileName
	}
	if cfg.DownloadAttempts < 1 {
		cfg.DownloadAttempts = defaultDownloadAttempts
	}
	if cfg.KeepLogs < 0 {
		cfg.KeepLogs = 0
	}

	return cfg, nil
}

// Save writes configuration to the given directory
func (c *Config) Save(configDir string) error {
	c.MatchModeStr = c.MatchMode.String()

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	configPath := filepath.Join(configDir, "config.yaml")
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}
