package wizard

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

// ValidateEnvironmentName checks if an environment name is valid
func ValidateEnvironmentName(name string) error {
	if name == "" {
		return fmt.Errorf("environment name cannot be empty")
	}

	// Must be alphanumeric or underscore
	for _, ch := range name {
		isValid := (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9') || ch == '_' || ch == '-'
		if !isValid {
			return fmt.Errorf("environment name must contain only letters, numbers, underscores, and hyphens")
		}
	}

	return nil
}

// ValidatePort checks if a port number is valid
func ValidatePort(port string) error {
	if port == "" {
		return fmt.Errorf("port cannot be empty")
	}

	portNum, err := strconv.Atoi(port)
	if err != nil {
		return fmt.Errorf("port must be a number")
	}

	if portNum < 1 || portNum > 65535 {
		return fmt.Errorf("port must be between 1 and 65535")
	}

	return nil
}

// ValidateHiveName checks a Hive database or table name. Hive identifiers
// are lowercased on creation, so uppercase input is rejected rather than
// silently folded.
func ValidateHiveName(name string) error {
	if name == "" {
		return fmt.Errorf("name cannot be empty")
	}
	for _, ch := range name {
		isValid := (ch >= 'a' && ch <= 'z') || (ch >= '0' && ch <= '9') || ch == '_'
		if !isValid {
			return fmt.Errorf("hive names must contain only lowercase letters, numbers, and underscores")
		}
	}
	return nil
}

// ValidateDataRoot checks the destination data root path
func ValidateDataRoot(path string) error {
	if path == "" {
		return fmt.Errorf("data root cannot be empty")
	}
	if !strings.HasPrefix(path, "/") {
		return fmt.Errorf("data root must be an absolute path")
	}
	return nil
}

// TestConnection attempts to connect to the metastore backing database
func TestConnection(connStr string, metastoreType string) error {
	var driverName string
	switch metastoreType {
	case "postgres":
		driverName = "postgres"
	case "sqlite":
		driverName = "sqlite"
		connStr = strings.TrimPrefix(connStr, "sqlite://")
	case "libsql":
		driverName = "libsql"
	default:
		return fmt.Errorf("unsupported metastore type: %s", metastoreType)
	}

	db, err := sql.Open(driverName, connStr)
	if err != nil {
		return fmt.Errorf("failed to open connection: %w", err)
	}
	defer func() { _ = db.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	return nil
}

// BuildConnectionString constructs the metastore connection string for the
// configured backing database.
func BuildConnectionString(env EnvironmentInput) string {
	switch env.MetastoreType {
	case "postgres":
		return buildPostgresConnectionString(env)
	case "sqlite":
		return buildSQLitePath(env)
	case "libsql":
		if env.AuthToken != "" {
			return fmt.Sprintf("%s?authToken=%s", env.URL, env.AuthToken)
		}
		return env.URL
	}
	return ""
}

func buildPostgresConnectionString(env EnvironmentInput) string {
	// Auto-detect SSL mode based on host
	sslMode := env.SSLMode
	if sslMode == "" {
		if env.Host == "localhost" || env.Host == "127.0.0.1" {
			sslMode = "disable"
		} else {
			sslMode = "require"
		}
	}

	return fmt.Sprintf("postgresql://%s:%s@%s:%s/%s?sslmode=%s",
		env.User, env.Password, env.Host, env.Port, env.Database, sslMode)
}

func buildSQLitePath(env EnvironmentInput) string {
	filePath := env.FilePath
	if filePath == "" {
		filePath = "./metastore.db"
	} else if !strings.HasPrefix(filePath, "./") && !strings.HasPrefix(filePath, "/") {
		filePath = "./" + filePath
	}
	return filePath
}
