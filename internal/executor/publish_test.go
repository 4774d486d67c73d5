package executor

import (
	"context"
	"database/sql"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/orcify/orcify/internal/planner"
)

// recordingFS captures filesystem calls so tests can assert ordering.
type recordingFS struct {
	ops     []string
	moveErr error
}

func (r *recordingFS) StatPermission(path string) (fs.FileMode, error) { return 0o755, nil }
func (r *recordingFS) Mkdir(path string, perm fs.FileMode) error      { return nil }
func (r *recordingFS) SetPermission(path string, perm fs.FileMode) error {
	return nil
}
func (r *recordingFS) Move(from, to string) error {
	if r.moveErr != nil {
		return r.moveErr
	}
	r.ops = append(r.ops, "move "+from+" "+to)
	return nil
}
func (r *recordingFS) Delete(path string) error {
	r.ops = append(r.ops, "delete "+path)
	return nil
}

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "warehouse.db"))
	if err != nil {
		t.Fatalf("Failed to open sqlite database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestExecutePublish(t *testing.T) {
	db := openTestDB(t)
	fsys := &recordingFS{}

	plan := &planner.PublishPlan{
		PublishStatements: []string{
			"CREATE TABLE published (id INTEGER)",
		},
		PublishDirectories: []planner.DirectoryMove{
			{From: "/staging/datepartition=2016-02-02", To: "/final/datepartition=2016-02-02"},
		},
		CleanupStatements: []string{
			"CREATE TABLE cleanup_ran (id INTEGER)",
		},
		CleanupDirectories: []string{"/staging"},
	}

	if err := ExecutePublish(context.Background(), db, fsys, plan, false); err != nil {
		t.Fatalf("Failed to execute publish: %v", err)
	}

	for _, table := range []string{"published", "cleanup_ran"} {
		var count int
		if err := db.QueryRow("SELECT count(*) FROM " + table).Scan(&count); err != nil {
			t.Errorf("Expected table %s to exist: %v", table, err)
		}
	}
	if len(fsys.ops) != 2 || fsys.ops[0] != "move /staging/datepartition=2016-02-02 /final/datepartition=2016-02-02" || fsys.ops[1] != "delete /staging" {
		t.Errorf("Unexpected filesystem operations: %v", fsys.ops)
	}
}

func TestExecutePublishAbortsOnStatementFailure(t *testing.T) {
	db := openTestDB(t)
	fsys := &recordingFS{}

	plan := &planner.PublishPlan{
		PublishStatements:  []string{"NOT VALID SQL"},
		PublishDirectories: []planner.DirectoryMove{{From: "/a", To: "/b"}},
	}

	err := ExecutePublish(context.Background(), db, fsys, plan, false)
	if err == nil {
		t.Fatal("Expected publish failure")
	}
	if !strings.Contains(err.Error(), "publish failed") {
		t.Errorf("Unexpected error: %v", err)
	}
	if len(fsys.ops) != 0 {
		t.Errorf("Expected no moves after statement failure, got %v", fsys.ops)
	}
}

func TestExecutePublishCleanupContinuesAfterFailure(t *testing.T) {
	db := openTestDB(t)
	fsys := &recordingFS{}

	plan := &planner.PublishPlan{
		CleanupStatements:  []string{"NOT VALID SQL", "CREATE TABLE still_ran (id INTEGER)"},
		CleanupDirectories: []string{"/staging"},
	}

	err := ExecutePublish(context.Background(), db, fsys, plan, false)
	if err == nil {
		t.Fatal("Expected cleanup error to be reported")
	}
	if !strings.Contains(err.Error(), "cleanup") {
		t.Errorf("Unexpected error: %v", err)
	}

	var count int
	if err := db.QueryRow("SELECT count(*) FROM still_ran").Scan(&count); err != nil {
		t.Errorf("Expected later cleanup statements to still run: %v", err)
	}
	if len(fsys.ops) != 1 || fsys.ops[0] != "delete /staging" {
		t.Errorf("Expected cleanup directories still removed, got %v", fsys.ops)
	}
}

func TestExecuteStatementsSequential(t *testing.T) {
	db := openTestDB(t)

	statements := []string{
		"CREATE TABLE t1 (id INTEGER)",
		"INSERT INTO t1 VALUES (1)",
		"INSERT INTO broken VALUES (1)",
		"INSERT INTO t1 VALUES (2)",
	}

	err := ExecuteStatements(context.Background(), db, statements, false)
	if err == nil {
		t.Fatal("Expected failure on third statement")
	}
	if !strings.Contains(err.Error(), "statement 3/4") {
		t.Errorf("Expected failing statement position in error, got: %v", err)
	}

	var count int
	if err := db.QueryRow("SELECT count(*) FROM t1").Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("Expected execution to stop at failure, got %d rows", count)
	}
}
