package hive

import (
	"context"
	"errors"
	"io/fs"
)

// ErrNotFound is returned by Catalog lookups when a table does not exist.
// Absence is an expected state (first-time conversion), not a failure.
var ErrNotFound = errors.New("not found in catalog")

// IsNotFound reports whether err is a catalog not-found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// Catalog is the read side of the table/partition metadata service.
type Catalog interface {
	// GetTable returns the table descriptor, or an error wrapping
	// ErrNotFound when the table does not exist.
	GetTable(ctx context.Context, db, table string) (*TableMeta, error)

	// GetPartitions returns all partitions of a table. Only called for
	// partitioned tables.
	GetPartitions(ctx context.Context, db, table string) ([]PartitionMeta, error)
}

// FileSystem abstracts the directory operations the planner and the publish
// phase need. The planner itself only stats, creates and chmods the
// destination data root; moves and deletes are executed later, driven by a
// publish plan.
type FileSystem interface {
	// StatPermission returns the permission bits of an existing path.
	StatPermission(path string) (fs.FileMode, error)

	// Mkdir creates a directory (and missing parents) with the given
	// permission. Creating an already-existing directory is not an error.
	Mkdir(path string, perm fs.FileMode) error

	// SetPermission reapplies permission bits on a path. Needed after
	// Mkdir since the process umask can mask the requested bits.
	SetPermission(path string, perm fs.FileMode) error

	// Move renames src to dst, replacing dst's contents.
	Move(src, dst string) error

	// Delete removes a path recursively.
	Delete(path string) error
}
