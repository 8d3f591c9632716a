// SPDX-License-Identifier: MPL-2.0

// Package install makes an application directory consistent with a solver
// result: it filters candidates by platform, materializes packages under
// app_packages, records dependency edges in manifest.json, keeps
// manifest-lock.json in sync and reports conflicts with what is already
// installed.
package install

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/appkg/appkg/internal/archive"
	"github.com/appkg/appkg/internal/config"
	"github.com/appkg/appkg/internal/fsutil"
	"github.com/appkg/appkg/internal/output"
	"github.com/appkg/appkg/internal/registry"
	"github.com/appkg/appkg/pkg/pkginfo"
)

// PackagesDirName is the directory inside an application that holds its
// installed dependencies, one subdirectory per kind.
const PackagesDirName = "app_packages"

// Installer materializes one resolved package at a time.
type Installer struct {
	Config    config.Config
	Fetcher   registry.Fetcher
	Extractor archive.Extractor
	// Validator checks an extracted package. Defaults to
	// pkginfo.CheckPropertyDocument.
	Validator func(dir string) error
	Out       output.Output
	Logger    *log.Logger
}

// InstallDir returns where packages of kind live inside appDir.
func InstallDir(appDir string, kind pkginfo.Kind) string {
	return filepath.Join(appDir, PackagesDirName, string(kind))
}

// Install places p at baseDir/<name>. Already installed packages are left
// alone. Local packages are copied or linked per the configured mode; registry
// packages are fetched, extracted and validated. Errors carry p's identity.
func (i *Installer) Install(ctx context.Context, p *pkginfo.PackageInfo, baseDir string) error {
	if p.IsInstalled {
		if i.Config.Verbose {
			i.Out.NormalLine(fmt.Sprintf("%s has already been installed.", p.Identity()))
		}
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	dst := filepath.Join(baseDir, p.Name())
	i.logger().Debug("installing package", "pkg", p.Variant(), "dst", dst)

	var err error
	if p.IsLocalDependency {
		err = i.installLocal(p, dst)
	} else {
		err = i.installRegistry(ctx, p, dst)
	}
	if err != nil {
		return &InstallError{Identity: p.Identity(), Err: err}
	}
	return nil
}

func (i *Installer) installLocal(p *pkginfo.PackageInfo, dst string) error {
	src, err := resolveLocalDir(localSource(p))
	if err != nil {
		return err
	}

	if _, err := os.Lstat(dst); err == nil {
		i.Out.NormalLine(fmt.Sprintf("Destination directory '%s' already exists. Skipping copy/link.", dst))
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat %s: %w", dst, err)
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("failed to create parent directories for '%s': %w", dst, err)
	}

	switch mode := i.Config.Install.LocalMode; mode {
	case config.LocalInstallCopy:
		return fsutil.CopyDir(src, dst)
	case config.LocalInstallLink:
		return fsutil.LinkDir(src, dst)
	default:
		return &config.InvalidLocalInstallModeError{Value: mode}
	}
}

// localSource joins a local package's declared path with its base directory.
func localSource(p *pkginfo.PackageInfo) string {
	if filepath.IsAbs(p.LocalDependencyPath) || p.LocalDependencyBaseDir == "" {
		return p.LocalDependencyPath
	}
	return filepath.Join(p.LocalDependencyBaseDir, p.LocalDependencyPath)
}

// resolveLocalDir makes path absolute, follows links and checks that the
// result is a directory.
func resolveLocalDir(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", &LocalPathError{Path: path, Err: err}
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", &LocalPathError{Path: path, Err: err}
	}
	info, err := os.Stat(resolved)
	if err != nil {
		return "", &LocalPathError{Path: path, Err: err}
	}
	if !info.IsDir() {
		return "", &LocalPathError{Path: path, Err: fsutil.ErrNotDir}
	}
	return resolved, nil
}

func (i *Installer) installRegistry(ctx context.Context, p *pkginfo.PackageInfo, dst string) (err error) {
	if i.Fetcher == nil {
		return registry.ErrNoRegistry
	}

	tmp, err := os.CreateTemp(i.Config.Registry.CacheDir, "appkg-download-*.zip")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer func() {
		_ = tmp.Close()
		if rmErr := os.Remove(tmp.Name()); rmErr != nil && !os.IsNotExist(rmErr) && err == nil {
			err = fmt.Errorf("failed to remove temporary file: %w", rmErr)
		}
	}()

	if err := i.Fetcher.Fetch(ctx, p.Identity(), p.Version(), p.URL, tmp); err != nil {
		return fmt.Errorf("failed to fetch %s: %w", p.Variant(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to flush temporary file: %w", err)
	}

	paths, err := i.extractor().Extract(tmp.Name(), dst)
	if err != nil {
		return fmt.Errorf("failed to extract %s: %w", p.Variant(), err)
	}
	i.logger().Debug("extracted package", "pkg", p.Variant(), "files", len(paths))

	if err := i.validator()(dst); err != nil {
		return fmt.Errorf("failed to check %s for %s: %w", pkginfo.PropertyFileName, p.Identity(), err)
	}

	return SaveInstalledPaths(dst, InstalledPaths{Paths: append(paths, RootPath)})
}

func (i *Installer) extractor() archive.Extractor {
	if i.Extractor == nil {
		return archive.Zip{}
	}
	return i.Extractor
}

func (i *Installer) validator() func(string) error {
	if i.Validator == nil {
		return pkginfo.CheckPropertyDocument
	}
	return i.Validator
}

func (i *Installer) logger() *log.Logger {
	if i.Logger == nil {
		return output.Discard()
	}
	return i.Logger
}
