package util

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

const (
	TempSuffix = ".dirmerge.tmp"

	defaultMode fs.FileMode = 0644
)

// AtomicWrite replaces dst with the content of r through a temp file in the
// same directory. An existing dst keeps its permission bits.
func AtomicWrite(dst string, r io.Reader) error {
	dir := filepath.Dir(dst)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create parent dir: %w", err)
	}

	mode := defaultMode
	info, err := os.Stat(dst)
	switch {
	case err == nil:
		mode = info.Mode().Perm()
	case !errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("failed to stat %s: %w", dst, err)
	}

	f, err := os.CreateTemp(dir, "."+filepath.Base(dst)+".*"+TempSuffix)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmp := f.Name()

	fail := func(msg string, err error) error {
		_ = f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("%s: %w", msg, err)
	}

	if _, err := io.Copy(f, r); err != nil {
		return fail("failed to write", err)
	}
	if err := f.Chmod(mode); err != nil {
		return fail("failed to set mode", err)
	}
	if err := f.Sync(); err != nil {
		return fail("failed to sync", err)
	}

	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmp, dst); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to rename: %w", err)
	}

	return nil
}

func RemoveIfExists(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove %s: %w", path, err)
	}

	return nil
}
