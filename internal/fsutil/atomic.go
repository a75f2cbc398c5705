// Package fsutil holds small filesystem helpers.
package fsutil

import (
	"fmt"
	"os"
)

// AtomicWrite replaces path with data via a tmp+rename so readers never
// observe a partially written file. The tmp file is cleaned up when the
// rename fails.
func AtomicWrite(path string, data []byte, perm os.FileMode) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, perm); err != nil {
		return fmt.Errorf("write tmp: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}
