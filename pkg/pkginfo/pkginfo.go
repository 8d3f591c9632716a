// SPDX-License-Identifier: MPL-2.0

// Package pkginfo holds the package data model: identities and variants,
// support matrices, manifests with their dependency declarations, and the
// PackageInfo records that flow through discovery, resolution and install.
package pkginfo

import (
	"context"
	"fmt"
	"path/filepath"
)

// NoCompatibleScore marks a PackageInfo that has not been scored, or that is
// not usable on the current platform.
const NoCompatibleScore = -1

type (
	// PackageInfo is everything known about one resolvable package during a
	// single command. It is never persisted.
	PackageInfo struct {
		Manifest *Manifest

		// IsLocalDependency marks packages resolved from a directory rather
		// than a registry. LocalDependencyPath is the path as declared and
		// LocalDependencyBaseDir the directory it is relative to.
		IsLocalDependency      bool
		LocalDependencyPath    string
		LocalDependencyBaseDir string

		CompatibleScore int
		IsInstalled     bool

		// URL is where the package comes from: an archive location for
		// registry packages, the package directory otherwise.
		URL string

		Hash string
	}

	// Loader reads the package stored in a directory.
	Loader interface {
		LoadFromPath(ctx context.Context, dir string) (*PackageInfo, error)
	}

	// DirLoader loads packages from manifest.json files on disk.
	DirLoader struct{}
)

// New wraps a manifest in an unscored PackageInfo.
func New(m *Manifest) *PackageInfo {
	return &PackageInfo{
		Manifest:        m,
		CompatibleScore: NoCompatibleScore,
		URL:             m.Dir,
		Hash:            ComputeHash(m),
	}
}

// LoadFromPath loads the package in dir with a DirLoader.
func LoadFromPath(ctx context.Context, dir string) (*PackageInfo, error) {
	return DirLoader{}.LoadFromPath(ctx, dir)
}

// LoadFromPath implements Loader.
func (DirLoader) LoadFromPath(ctx context.Context, dir string) (*PackageInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", dir, err)
	}

	m, err := LoadManifest(abs)
	if err != nil {
		return nil, err
	}
	return New(m), nil
}

// Identity returns the package's dependency slot.
func (p *PackageInfo) Identity() Identity { return p.Manifest.Identity }

// Kind returns the package kind.
func (p *PackageInfo) Kind() Kind { return p.Manifest.Kind }

// Name returns the package name.
func (p *PackageInfo) Name() string { return p.Manifest.Name }

// Version returns the package version.
func (p *PackageInfo) Version() string { return p.Manifest.Version }

// Supports returns the package's support matrix.
func (p *PackageInfo) Supports() Supports { return p.Manifest.Supports }

// Variant returns the package's concrete build key.
func (p *PackageInfo) Variant() Variant {
	return Variant{
		Identity: p.Identity(),
		Version:  p.Version(),
		Supports: p.Supports().String(),
	}
}

// Clone returns a shallow copy. The manifest is shared.
func (p *PackageInfo) Clone() *PackageInfo {
	c := *p
	return &c
}

// String renders "kind:name@version".
func (p *PackageInfo) String() string {
	return p.Identity().String() + "@" + p.Version()
}
