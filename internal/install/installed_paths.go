// SPDX-License-Identifier: MPL-2.0

package install

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/appkg/appkg/internal/fsutil"
)

// InstalledPathsFileName records what an install wrote, relative to the
// package root.
const InstalledPathsFileName = ".appkg_installed_paths.json"

// RootPath is the entry every InstalledPaths record carries for the package
// directory itself.
const RootPath = "."

// InstalledPaths is the persisted list of paths owned by an install.
type InstalledPaths struct {
	Paths []string `json:"paths"`
}

// SaveInstalledPaths writes the record into dir.
func SaveInstalledPaths(dir string, ip InstalledPaths) error {
	data, err := json.MarshalIndent(ip, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode installed paths: %w", err)
	}
	data = append(data, '\n')
	if err := fsutil.AtomicWriteFile(filepath.Join(dir, InstalledPathsFileName), data, 0o644); err != nil {
		return fmt.Errorf("failed to save installed paths: %w", err)
	}
	return nil
}

// LoadInstalledPaths reads the record from dir.
func LoadInstalledPaths(dir string) (InstalledPaths, error) {
	data, err := os.ReadFile(filepath.Join(dir, InstalledPathsFileName))
	if err != nil {
		return InstalledPaths{}, fmt.Errorf("failed to read installed paths: %w", err)
	}
	var ip InstalledPaths
	if err := json.Unmarshal(data, &ip); err != nil {
		return InstalledPaths{}, fmt.Errorf("failed to parse installed paths: %w", err)
	}
	return ip, nil
}

// Uninstall removes an installed package. A symlinked local install is
// unlinked. A package with an installed-paths record has every listed path
// removed deepest first, then the record and the root. Anything else is
// removed recursively.
func Uninstall(dir string) error {
	info, err := os.Lstat(dir)
	if err != nil {
		return fmt.Errorf("failed to uninstall %s: %w", dir, err)
	}
	if info.Mode()&os.ModeSymlink != 0 {
		return os.Remove(dir)
	}

	ip, err := LoadInstalledPaths(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return os.RemoveAll(dir)
		}
		return err
	}

	paths := withParents(ip.Paths)
	slices.SortFunc(paths, func(a, b string) int {
		if n := strings.Count(b, "/") - strings.Count(a, "/"); n != 0 {
			return n
		}
		return strings.Compare(b, a)
	})
	for _, p := range paths {
		if p == RootPath {
			continue
		}
		target := filepath.Join(dir, filepath.FromSlash(p))
		if !strings.HasPrefix(target, filepath.Clean(dir)+string(filepath.Separator)) {
			return fmt.Errorf("refusing to remove %q outside %s", p, dir)
		}
		if err := removeOwned(target); err != nil {
			return err
		}
	}

	if err := os.Remove(filepath.Join(dir, InstalledPathsFileName)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove installed paths record: %w", err)
	}
	if err := os.Remove(dir); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove %s: %w", dir, err)
	}
	return nil
}

// withParents adds the directories implied by nested entries, since archives
// do not always carry explicit directory entries.
func withParents(paths []string) []string {
	seen := make(map[string]bool, len(paths))
	var out []string
	for _, p := range paths {
		for p != RootPath && p != "" && !seen[p] {
			seen[p] = true
			out = append(out, p)
			p = path.Dir(p)
		}
	}
	return out
}

// removeOwned deletes a file, or a directory once it is empty. Directories
// still holding files the install did not write are left in place.
func removeOwned(path string) error {
	info, err := os.Lstat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if info.IsDir() {
		entries, err := os.ReadDir(path)
		if err != nil {
			return err
		}
		if len(entries) > 0 {
			return nil
		}
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to remove %s: %w", path, err)
	}
	return nil
}
