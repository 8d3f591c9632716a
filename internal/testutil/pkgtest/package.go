// SPDX-License-Identifier: MPL-2.0

package pkgtest

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/appkg/appkg/pkg/pkginfo"
)

type (
	// Option configures a test package.
	// Apply options to customize beyond the minimal defaults.
	Option func(*pkgSpec)

	pkgSpec struct {
		supports pkginfo.Supports
		deps     []pkginfo.Dependency
		files    map[string]string
	}
)

// NewPackage creates an in-memory package with the given identity and
// version. By default, it has:
//   - No support matrix (usable everywhere)
//   - No dependencies
//   - An unscored CompatibleScore
func NewPackage(t testing.TB, kind pkginfo.Kind, name, version string, opts ...Option) *pkginfo.PackageInfo {
	t.Helper()
	s := apply(opts)
	m, err := pkginfo.NewManifest(pkginfo.Identity{Kind: kind, Name: name}, version, s.supports, s.deps)
	if err != nil {
		t.Fatalf("NewManifest(%s:%s) error = %v", kind, name, err)
	}
	return pkginfo.New(m)
}

// NewLocalPackage is NewPackage marked as resolved from path, relative to
// baseDir.
func NewLocalPackage(t testing.TB, kind pkginfo.Kind, name, version, path, baseDir string, opts ...Option) *pkginfo.PackageInfo {
	t.Helper()
	p := NewPackage(t, kind, name, version, opts...)
	p.IsLocalDependency = true
	p.LocalDependencyPath = path
	p.LocalDependencyBaseDir = baseDir
	p.URL = filepath.Join(baseDir, path)
	return p
}

// WritePackage writes a package directory at root/name holding a
// manifest.json and any WithFile contents, and returns its path.
func WritePackage(t testing.TB, root string, kind pkginfo.Kind, name, version string, opts ...Option) string {
	t.Helper()
	dir := filepath.Join(root, name)
	WritePackageAt(t, dir, kind, name, version, opts...)
	return dir
}

// WritePackageAt is WritePackage with an explicit directory.
func WritePackageAt(t testing.TB, dir string, kind pkginfo.Kind, name, version string, opts ...Option) {
	t.Helper()
	s := apply(opts)
	m, err := pkginfo.NewManifest(pkginfo.Identity{Kind: kind, Name: name}, version, s.supports, s.deps)
	if err != nil {
		t.Fatalf("NewManifest(%s:%s) error = %v", kind, name, err)
	}
	data, err := m.Bytes()
	if err != nil {
		t.Fatalf("Manifest.Bytes() error = %v", err)
	}

	files := map[string]string{pkginfo.ManifestFileName: string(data)}
	for rel, content := range s.files {
		files[rel] = content
	}
	for rel, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("failed to create %s: %v", filepath.Dir(path), err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("failed to write %s: %v", path, err)
		}
	}
}

// ManifestJSON renders the manifest.json a package with these options would
// carry, for tests that compare bytes.
func ManifestJSON(t testing.TB, kind pkginfo.Kind, name, version string, opts ...Option) string {
	t.Helper()
	p := NewPackage(t, kind, name, version, opts...)
	data, err := p.Manifest.Bytes()
	if err != nil {
		t.Fatalf("Manifest.Bytes() error = %v", err)
	}
	return string(data)
}

// --- Package Options ---

// WithSupports sets the support matrix.
func WithSupports(supports ...pkginfo.Support) Option {
	return func(s *pkgSpec) {
		s.supports = append(s.supports, supports...)
	}
}

// WithRegistryDependency declares a registry dependency.
func WithRegistryDependency(kind pkginfo.Kind, name, versionReq string) Option {
	return func(s *pkgSpec) {
		s.deps = append(s.deps, pkginfo.NewRegistryDependency(pkginfo.Identity{Kind: kind, Name: name}, versionReq))
	}
}

// WithLocalDependency declares a local dependency at path.
func WithLocalDependency(path string) Option {
	return func(s *pkgSpec) {
		s.deps = append(s.deps, pkginfo.NewLocalDependency(path, ""))
	}
}

// WithFile adds a file, relative to the package directory, to packages
// written with WritePackage.
func WithFile(rel, content string) Option {
	return func(s *pkgSpec) {
		if s.files == nil {
			s.files = make(map[string]string)
		}
		s.files[rel] = content
	}
}

// WithProperty adds a property.json holding v.
func WithProperty(v any) Option {
	return func(s *pkgSpec) {
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			panic(err)
		}
		WithFile(pkginfo.PropertyFileName, string(data))(s)
	}
}

func apply(opts []Option) *pkgSpec {
	s := &pkgSpec{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
