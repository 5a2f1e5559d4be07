// Package atomicfile writes output files atomically: a sibling
// temporary is created in the destination directory, populated, and
// renamed into place, so a crash or interruption never leaves a
// partially written output where one of the real names is expected.
package atomicfile

import (
	"fmt"
	"os"
	"path/filepath"
)

// Write atomically creates path with data and mode. If path already
// exists as a symlink, Write refuses rather than following it.
func Write(path string, data []byte, mode os.FileMode) error {
	if err := refuseSymlink(path); err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("atomicfile: mkdir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("atomicfile: create temp in %s: %w", dir, err)
	}
	tmpPath := tmp.Name()

	defer func() {
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("atomicfile: write %s: %w", tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("atomicfile: close %s: %w", tmpPath, err)
	}
	if err := os.Chmod(tmpPath, mode); err != nil {
		return fmt.Errorf("atomicfile: chmod %s: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("atomicfile: rename %s to %s: %w", tmpPath, path, err)
	}

	return nil
}

// refuseSymlink returns an error if path exists and is a symlink, so
// Write never follows one into an unintended location.
func refuseSymlink(path string) error {
	info, err := os.Lstat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("atomicfile: stat %s: %w", path, err)
	}
	if info.Mode()&os.ModeSymlink != 0 {
		return fmt.Errorf("atomicfile: refusing to write through symlink at %s", path)
	}
	return nil
}
