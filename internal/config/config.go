// Package config loads orcify.toml and resolves named environments into
// concrete metastore connection strings.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/orcify/orcify/internal/planner"
)

// EnvironmentConfig describes a single named environment from orcify.toml.
type EnvironmentConfig struct {
	MetastoreURL string `toml:"metastore_url"`
}

type Config struct {
	DefaultEnvironment string                              `toml:"default_environment"`
	Environments       map[string]EnvironmentConfig        `toml:"environments"`
	Conversion         map[string]planner.ConversionConfig `toml:"conversion"`
	ConfigFilePath     string                              `toml:"-"`
}

// ConfigDir returns the directory holding the loaded orcify.toml, or ""
// when no config file was found.
func (c *Config) ConfigDir() string {
	if c == nil || c.ConfigFilePath == "" {
		return ""
	}
	return filepath.Dir(c.ConfigFilePath)
}

// Formats maps the [conversion.*] tables onto output formats. Table names
// other than the known formats are rejected rather than silently ignored.
func (c *Config) Formats() (map[planner.OutputFormat]*planner.ConversionConfig, error) {
	formats := make(map[planner.OutputFormat]*planner.ConversionConfig)
	for name := range c.Conversion {
		switch format := planner.OutputFormat(name); format {
		case planner.OutputFormatFlattened, planner.OutputFormatNested:
			cfg := c.Conversion[name]
			formats[format] = &cfg
		default:
			return nil, fmt.Errorf("unknown conversion format %q in %s (expected %q or %q)",
				name, c.ConfigFilePath, planner.OutputFormatFlattened, planner.OutputFormatNested)
		}
	}
	return formats, nil
}

// LoadConfig searches for orcify.toml starting in the working directory and
// walking up until a project boundary. A missing config file is not an
// error; an empty Config is returned.
func LoadConfig() (*Config, error) {
	startDir, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return loadConfigFrom(startDir)
}

func loadConfigFrom(startDir string) (*Config, error) {
	dir := startDir
	for {
		configPath := filepath.Join(dir, "orcify.toml")
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, err
			}

			var config Config
			if err := toml.Unmarshal(data, &config); err != nil {
				return nil, fmt.Errorf("failed to parse %s: %w", configPath, err)
			}

			config.ConfigFilePath = configPath
			return &config, nil
		}

		if isProjectRoot(dir) {
			break
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			break
		}
		dir = parent
	}

	return &Config{}, nil
}

// isProjectRoot checks if the directory is a project root based on common markers
func isProjectRoot(dir string) bool {
	if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
		return true
	}
	if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
		return true
	}
	if _, err := os.Stat(filepath.Join(dir, "package.json")); err == nil {
		return true
	}
	return false
}
