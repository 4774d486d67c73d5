package wizard

import (
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// GenerateFiles creates orcify.toml and the environment's .env file. The
// connection string goes to the .env file only, so orcify.toml stays safe
// to commit.
func GenerateFiles(env EnvironmentInput, conversion ConversionInput) (*InitResult, error) {
	result := &InitResult{}

	configPath := "orcify.toml"
	fileExists := false
	if _, err := os.Stat(configPath); err == nil {
		fileExists = true
	}

	if err := generateConfigTOML(configPath, env, conversion); err != nil {
		return nil, fmt.Errorf("failed to generate orcify.toml: %w", err)
	}
	result.ConfigPath = configPath
	if fileExists {
		result.ConfigUpdated = true
	} else {
		result.ConfigCreated = true
	}

	envFilePath := fmt.Sprintf(".env.%s", env.Name)
	if err := generateEnvFile(envFilePath, env); err != nil {
		return nil, fmt.Errorf("failed to generate %s: %w", envFilePath, err)
	}
	result.EnvFile = envFilePath

	if err := updateGitignore(); err != nil {
		return nil, fmt.Errorf("failed to update .gitignore: %w", err)
	}
	result.GitignoreUpdated = true

	return result, nil
}

func generateConfigTOML(path string, env EnvironmentInput, conversion ConversionInput) error {
	// Preserve environments from an existing config; the new one wins on a
	// name collision.
	existingEnvs := make(map[string]struct{})
	var defaultEnv string

	if data, err := os.ReadFile(path); err == nil {
		var existingConfig struct {
			DefaultEnvironment string                    `toml:"default_environment"`
			Environments       map[string]tomlComment    `toml:"environments"`
			Conversion         map[string]map[string]any `toml:"conversion"`
		}
		if err := toml.Unmarshal(data, &existingConfig); err == nil {
			for name := range existingConfig.Environments {
				existingEnvs[name] = struct{}{}
			}
			defaultEnv = existingConfig.DefaultEnvironment
		}
	}
	existingEnvs[env.Name] = struct{}{}

	if defaultEnv == "" {
		defaultEnv = env.Name
	}

	var b strings.Builder

	b.WriteString("# Orcify Configuration\n")
	b.WriteString("# Generated by: orcify init\n")
	b.WriteString("#\n")
	b.WriteString("# Metastore credentials live in .env.* files, never in this file.\n\n")

	b.WriteString(fmt.Sprintf("default_environment = %q\n\n", defaultEnv))

	for envName := range existingEnvs {
		b.WriteString(fmt.Sprintf("[environments.%s]\n", envName))
		b.WriteString(fmt.Sprintf("# Connection: .env.%s (METASTORE_URL)\n", envName))
		b.WriteString("\n")
	}

	b.WriteString("[conversion.flattened]\n")
	b.WriteString(fmt.Sprintf("destination_database = %q\n", conversion.DestinationDatabase))
	b.WriteString(fmt.Sprintf("destination_table = %q\n", conversion.DestinationTable))
	b.WriteString(fmt.Sprintf("destination_data_root = %q\n", conversion.DataRoot))
	b.WriteString("evolution_enabled = true\n\n")

	b.WriteString("[conversion.flattened.table_properties]\n")
	b.WriteString("\"orc.compress\" = \"SNAPPY\"\n")

	return os.WriteFile(path, []byte(b.String()), 0644)
}

type tomlComment struct{}

func generateEnvFile(path string, env EnvironmentInput) error {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("# Orcify Environment: %s\n", env.Name))
	b.WriteString("# Generated by: orcify init\n")
	b.WriteString("#\n")
	b.WriteString("# Do not commit this file if it contains secrets!\n")
	b.WriteString("#\n")

	connStr := BuildConnectionString(env)
	switch env.MetastoreType {
	case "postgres":
		b.WriteString("# PostgreSQL metastore backing database\n")
	case "sqlite":
		b.WriteString("# SQLite metastore snapshot (file-based)\n")
	case "libsql":
		b.WriteString("# libSQL/Turso metastore replica\n")
	}
	b.WriteString(fmt.Sprintf("METASTORE_URL=%s\n", connStr))

	// Write with restrictive permissions (owner read/write only)
	return os.WriteFile(path, []byte(b.String()), 0600)
}

func updateGitignore() error {
	gitignorePath := ".gitignore"

	content := ""
	if data, err := os.ReadFile(gitignorePath); err == nil {
		content = string(data)
	}

	if strings.Contains(content, ".env.*") || strings.Contains(content, ".env.") {
		return nil
	}

	section := `
# Orcify environment files (added by orcify init)
# DO NOT remove - contains metastore credentials
.env.*
!.env.*.example
`

	content += section

	return os.WriteFile(gitignorePath, []byte(content), 0644)
}
