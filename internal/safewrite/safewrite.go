// Package safewrite replaces files atomically. The rewritten coverage
// report must never be left half-written where the downstream analyzer
// could pick it up, so content goes to a temp file in the target
// directory first and is renamed into place.
package safewrite

import (
	"fmt"
	"os"
	"path/filepath"
)

// BackupSuffix is appended to the original file when a backup is requested.
const BackupSuffix = ".bak"

// Replace writes data to path atomically. When backup is true and the
// target already exists, the original is kept at path + ".bak" until the
// caller verifies the result.
func Replace(path string, data []byte, backup bool) error {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	// On any failure below, the temp file is removed.
	cleanup := func(err error) error {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}

	if _, err := tmp.Write(data); err != nil {
		return cleanup(fmt.Errorf("write temp file: %w", err))
	}
	if err := tmp.Sync(); err != nil {
		return cleanup(fmt.Errorf("sync temp file: %w", err))
	}
	if err := tmp.Close(); err != nil {
		return cleanup(fmt.Errorf("close temp file: %w", err))
	}

	if backup {
		if _, err := os.Stat(path); err == nil {
			original, err := os.ReadFile(path)
			if err != nil {
				return cleanup(fmt.Errorf("read original for backup: %w", err))
			}
			if err := os.WriteFile(path+BackupSuffix, original, 0o644); err != nil {
				return cleanup(fmt.Errorf("write backup: %w", err))
			}
		}
	}

	if err := os.Rename(tmpName, path); err != nil {
		return cleanup(fmt.Errorf("replace %s: %w", path, err))
	}

	return nil
}
