// Package executor runs publish plans: HiveQL statements against the
// metastore-backed warehouse connection, and directory moves against the
// data filesystem.
package executor

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/orcify/orcify/hive"
	"github.com/orcify/orcify/internal/planner"
)

// DetectDriver determines the SQL driver from the connection string.
func DetectDriver(connString string) string {
	switch {
	case strings.HasPrefix(connString, "postgres://"), strings.HasPrefix(connString, "postgresql://"):
		return "postgres"
	case strings.HasPrefix(connString, "libsql://"),
		strings.HasPrefix(connString, "wss://"),
		strings.HasPrefix(connString, "https://"):
		return "libsql"
	case strings.HasPrefix(connString, "file:"),
		strings.HasSuffix(connString, ".db"),
		strings.HasSuffix(connString, ".sqlite"):
		return "sqlite"
	default:
		return "postgres"
	}
}

// Open opens a database connection for the given connection string and
// verifies it with a ping.
func Open(ctx context.Context, connString string) (*sql.DB, error) {
	driver := DetectDriver(connString)
	db, err := sql.Open(driver, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s connection: %w", driver, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to %s: %w", driver, err)
	}
	return db, nil
}

// ExecuteStatements runs statements in order, stopping at the first failure.
func ExecuteStatements(ctx context.Context, db *sql.DB, statements []string, verbose bool) error {
	for i, stmt := range statements {
		if verbose {
			fmt.Fprintf(os.Stderr, "Executing statement %d/%d:\n%s\n", i+1, len(statements), stmt)
		}
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("statement %d/%d failed: %w\n%s", i+1, len(statements), err, stmt)
		}
	}
	return nil
}

// ExecutePublish runs a publish plan end to end: publish statements, then
// directory moves, then cleanup. Publish failures abort immediately, since
// continuing could expose half-published data. Cleanup failures are
// collected but do not stop remaining cleanup; leftover staging artifacts
// are preferable to a staging table that never gets dropped at all.
func ExecutePublish(ctx context.Context, db *sql.DB, fs hive.FileSystem, plan *planner.PublishPlan, verbose bool) error {
	if err := ExecuteStatements(ctx, db, plan.PublishStatements, verbose); err != nil {
		return fmt.Errorf("publish failed: %w", err)
	}

	for _, move := range plan.PublishDirectories {
		if verbose {
			fmt.Fprintf(os.Stderr, "Moving %s -> %s\n", move.From, move.To)
		}
		if err := fs.Move(move.From, move.To); err != nil {
			return fmt.Errorf("failed to move %s to %s: %w", move.From, move.To, err)
		}
	}

	var cleanupErrs []error
	for i, stmt := range plan.CleanupStatements {
		if verbose {
			fmt.Fprintf(os.Stderr, "Cleanup statement %d/%d:\n%s\n", i+1, len(plan.CleanupStatements), stmt)
		}
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			cleanupErrs = append(cleanupErrs, fmt.Errorf("cleanup statement failed: %w\n%s", err, stmt))
		}
	}
	for _, dir := range plan.CleanupDirectories {
		if verbose {
			fmt.Fprintf(os.Stderr, "Removing %s\n", dir)
		}
		if err := fs.Delete(dir); err != nil {
			cleanupErrs = append(cleanupErrs, fmt.Errorf("failed to remove %s: %w", dir, err))
		}
	}
	if len(cleanupErrs) > 0 {
		return fmt.Errorf("published, but cleanup left artifacts behind: %w", errors.Join(cleanupErrs...))
	}

	return nil
}
