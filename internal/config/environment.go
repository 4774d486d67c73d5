package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

const defaultEnvironmentName = "development"

// ResolvedEnvironment represents a fully-resolved environment with concrete values.
type ResolvedEnvironment struct {
	Name         string
	MetastoreURL string
	DotenvPath   string
	FromConfig   bool
	FromDotenv   bool
}

// ResolveEnvironment resolves a named environment into a concrete metastore
// connection string. Values from .env.<name> override orcify.toml; the
// process environment is the last fallback.
func ResolveEnvironment(config *Config, name string) (*ResolvedEnvironment, error) {
	envName := strings.TrimSpace(name)
	if envName == "" {
		if config != nil && config.DefaultEnvironment != "" {
			envName = config.DefaultEnvironment
		} else {
			envName = defaultEnvironmentName
		}
	}

	resolved := &ResolvedEnvironment{Name: envName}

	if config != nil && config.Environments != nil {
		if envConfig, ok := config.Environments[envName]; ok {
			resolved.MetastoreURL = envConfig.MetastoreURL
			resolved.FromConfig = true
		}
	}

	baseDir := ""
	if config != nil {
		baseDir = config.ConfigDir()
	}
	if baseDir == "" {
		if cwd, err := os.Getwd(); err == nil {
			baseDir = cwd
		}
	}
	resolved.DotenvPath = filepath.Join(baseDir, ".env."+envName)

	if info, err := os.Stat(resolved.DotenvPath); err == nil && !info.IsDir() {
		values, err := godotenv.Read(resolved.DotenvPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", resolved.DotenvPath, err)
		}
		resolved.FromDotenv = true

		if value := values["METASTORE_URL"]; value != "" {
			resolved.MetastoreURL = value
		} else if value := values["DATABASE_URL"]; value != "" {
			resolved.MetastoreURL = value
		}
	} else if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to access %s: %w", resolved.DotenvPath, err)
	}

	if resolved.MetastoreURL == "" {
		if value := os.Getenv("METASTORE_URL"); value != "" {
			resolved.MetastoreURL = value
		}
	}

	if resolved.MetastoreURL == "" {
		return nil, fmt.Errorf("environment %q has no metastore URL: set environments.%s.metastore_url in orcify.toml, METASTORE_URL in %s, or the METASTORE_URL environment variable",
			envName, envName, resolved.DotenvPath)
	}

	return resolved, nil
}
