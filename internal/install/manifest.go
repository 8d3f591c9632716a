// SPDX-License-Identifier: MPL-2.0

package install

import (
	"context"
	"fmt"

	"github.com/appkg/appkg/internal/solver"
	"github.com/appkg/appkg/pkg/pkginfo"
)

// WriteInstallingPkgIntoManifest records the package the user asked for in
// app's manifest.json. results must hold exactly one package of kind and
// name. A non-nil localPath records it as a local declaration. The file is
// left alone when it already declares the package.
func WriteInstallingPkgIntoManifest(
	ctx context.Context,
	app *pkginfo.PackageInfo,
	results []*pkginfo.PackageInfo,
	kind pkginfo.Kind,
	name string,
	localPath *string,
	loader pkginfo.Loader,
) error {
	found := solver.FilterByKindAndName(results, &kind, &name, true)
	if len(found) != 1 {
		return &AmbiguousResultError{Identity: pkginfo.Identity{Kind: kind, Name: name}, Found: len(found)}
	}

	changed, err := UpdatePackageManifest(ctx, app, found[0], localPath, loader)
	if err != nil || !changed {
		return err
	}
	return app.Manifest.Save()
}

// UpdatePackageManifest merges added into base's dependency declarations in
// memory. A declaration for the same identity is kept when it already
// describes added (same source type, and the same path for local ones) and
// removed otherwise. When nothing was kept a new declaration is appended:
// local at localPath if it is non-nil, else a caret constraint on added's
// version. Local declarations are loaded with loader to learn their identity.
// It reports whether any declaration was added or removed.
func UpdatePackageManifest(ctx context.Context, base, added *pkginfo.PackageInfo, localPath *string, loader pkginfo.Loader) (bool, error) {
	if loader == nil {
		loader = pkginfo.DirLoader{}
	}

	target := added.Identity()
	present := false
	var remove []pkginfo.Dependency

	for _, dep := range base.Manifest.Dependencies {
		if !dep.IsLocal() {
			if id, _ := dep.Identity(); id != target {
				continue
			}
			if added.IsLocalDependency {
				remove = append(remove, dep)
			} else {
				present = true
			}
			continue
		}

		declared, err := loader.LoadFromPath(ctx, dep.ResolvedPath())
		if err != nil {
			return false, &LocalPathError{Path: dep.Path, Err: err}
		}
		if declared.Identity() != target {
			continue
		}
		if added.IsLocalDependency && dep.Path == added.LocalDependencyPath {
			present = true
		} else {
			remove = append(remove, dep)
		}
	}

	var add []pkginfo.Dependency
	if !present {
		if localPath != nil {
			add = append(add, pkginfo.NewLocalDependency(*localPath, base.Manifest.Dir))
		} else {
			add = append(add, pkginfo.NewRegistryDependency(target, "^"+added.Version()))
		}
	}

	if len(add) == 0 && len(remove) == 0 {
		return false, nil
	}
	if err := base.Manifest.UpdateDependencies(add, remove); err != nil {
		return false, fmt.Errorf("failed to update dependencies of %s: %w", base.Identity(), err)
	}
	base.Hash = pkginfo.ComputeHash(base.Manifest)
	return true, nil
}
