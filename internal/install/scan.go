// SPDX-License-Identifier: MPL-2.0

package install

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/appkg/appkg/pkg/pkginfo"
)

// ScanInstalled loads every package under appDir/app_packages/<kind>/<name>
// and marks it installed. Directories without a manifest are skipped.
func ScanInstalled(ctx context.Context, appDir string, loader pkginfo.Loader) ([]*pkginfo.PackageInfo, error) {
	if loader == nil {
		loader = pkginfo.DirLoader{}
	}

	var installed []*pkginfo.PackageInfo
	for _, kind := range pkginfo.Kinds() {
		dir := InstallDir(appDir, kind)
		entries, err := os.ReadDir(dir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("failed to read %s: %w", dir, err)
		}

		for _, e := range entries {
			pkgDir := filepath.Join(dir, e.Name())
			if info, err := os.Stat(pkgDir); err != nil || !info.IsDir() {
				continue
			}

			p, err := loader.LoadFromPath(ctx, pkgDir)
			if errors.Is(err, pkginfo.ErrManifestNotFound) {
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("failed to load installed package %s: %w", pkgDir, err)
			}
			if p.Kind() != kind {
				return nil, fmt.Errorf("installed package %s is a %s, not a %s", pkgDir, p.Kind(), kind)
			}

			p = p.Clone()
			p.IsInstalled = true
			installed = append(installed, p)
		}
	}
	return installed, nil
}
