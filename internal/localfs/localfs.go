// Package localfs implements hive.FileSystem on the local filesystem.
// Warehouse roots mounted locally (or through a FUSE layer) go through this
// driver; the planner and publish phase only ever see the interface.
package localfs

import (
	"fmt"
	"io/fs"
	"os"
)

type FileSystem struct{}

func New() *FileSystem {
	return &FileSystem{}
}

func (f *FileSystem) StatPermission(path string) (fs.FileMode, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return info.Mode().Perm(), nil
}

func (f *FileSystem) Mkdir(path string, perm fs.FileMode) error {
	// MkdirAll tolerates an existing directory, which keeps concurrent
	// planning runs over the same destination root safe.
	return os.MkdirAll(path, perm)
}

func (f *FileSystem) SetPermission(path string, perm fs.FileMode) error {
	return os.Chmod(path, perm)
}

// Move replaces dst with src. The destination's previous contents are
// removed first so the rename has whole-directory replace semantics.
func (f *FileSystem) Move(src, dst string) error {
	if _, err := os.Stat(dst); err == nil {
		if err := os.RemoveAll(dst); err != nil {
			return fmt.Errorf("failed to clear destination %s: %w", dst, err)
		}
	}
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("failed to move %s to %s: %w", src, dst, err)
	}
	return nil
}

func (f *FileSystem) Delete(path string) error {
	return os.RemoveAll(path)
}
