// SPDX-License-Identifier: MPL-2.0

package fsutil

import (
	"fmt"
	"os"
)

// LinkDir creates a symbolic link at dst pointing at the directory src.
// On Windows this requires developer mode or elevated privileges.
func LinkDir(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("failed to stat link target: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s: %w", src, ErrNotDir)
	}
	if err := os.Symlink(src, dst); err != nil {
		return fmt.Errorf("failed to create symlink: %w", err)
	}
	return nil
}
