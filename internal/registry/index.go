// SPDX-License-Identifier: MPL-2.0

package registry

import (
	"fmt"
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/appkg/appkg/pkg/pkginfo"
)

// IndexFileName is the package index at the root of a registry.
const IndexFileName = "index.toml"

type (
	// Index lists every package a registry serves.
	Index struct {
		Packages []IndexEntry `toml:"package"`
	}

	// IndexEntry describes one published package variant. File is the
	// archive location, relative to the registry root unless it is a URL.
	IndexEntry struct {
		Type         pkginfo.Kind      `toml:"type"`
		Name         string            `toml:"name"`
		Version      string            `toml:"version"`
		File         string            `toml:"file"`
		Supports     pkginfo.Supports  `toml:"supports,omitempty"`
		Dependencies []IndexDependency `toml:"dependencies,omitempty"`
	}

	// IndexDependency is a registry dependency of an indexed package.
	IndexDependency struct {
		Type    pkginfo.Kind `toml:"type"`
		Name    string       `toml:"name"`
		Version string       `toml:"version"`
	}
)

// ParseIndex decodes index.toml and checks every entry.
func ParseIndex(data []byte) (*Index, error) {
	var idx Index
	if err := toml.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", IndexFileName, err)
	}
	for i, e := range idx.Packages {
		if err := e.validate(); err != nil {
			return nil, fmt.Errorf("%s: package[%d]: %w", IndexFileName, i, err)
		}
	}
	return &idx, nil
}

// Marshal renders the index as TOML, sorted by identity and version.
func (idx *Index) Marshal() ([]byte, error) {
	slices.SortFunc(idx.Packages, func(a, b IndexEntry) int {
		if n := strings.Compare(string(a.Type), string(b.Type)); n != 0 {
			return n
		}
		if n := strings.Compare(a.Name, b.Name); n != 0 {
			return n
		}
		if n := strings.Compare(a.Version, b.Version); n != 0 {
			return n
		}
		return strings.Compare(a.Supports.String(), b.Supports.String())
	})
	return toml.Marshal(idx)
}

// Put adds e, replacing an entry for the same variant.
func (idx *Index) Put(e IndexEntry) {
	v := e.variant()
	for i := range idx.Packages {
		if idx.Packages[i].variant() == v {
			idx.Packages[i] = e
			return
		}
	}
	idx.Packages = append(idx.Packages, e)
}

// PackageInfos turns the index into unscored PackageInfo values. resolve maps
// an entry's File to the URL stored on the PackageInfo.
func (idx *Index) PackageInfos(resolve func(file string) string) ([]*pkginfo.PackageInfo, error) {
	out := make([]*pkginfo.PackageInfo, 0, len(idx.Packages))
	for _, e := range idx.Packages {
		deps := make([]pkginfo.Dependency, 0, len(e.Dependencies))
		for _, d := range e.Dependencies {
			deps = append(deps, pkginfo.NewRegistryDependency(pkginfo.Identity{Kind: d.Type, Name: d.Name}, d.Version))
		}
		m, err := pkginfo.NewManifest(pkginfo.Identity{Kind: e.Type, Name: e.Name}, e.Version, e.Supports, deps)
		if err != nil {
			return nil, fmt.Errorf("failed to build manifest for %s: %w", e.variant(), err)
		}
		p := pkginfo.New(m)
		p.URL = resolve(e.File)
		out = append(out, p)
	}
	return out, nil
}

// EntryFor describes a package about to be published as file. Only registry
// declarations are carried; Local.Publish refuses manifests with local ones.
func EntryFor(m *pkginfo.Manifest, file string) IndexEntry {
	e := IndexEntry{
		Type:     m.Kind,
		Name:     m.Name,
		Version:  m.Version,
		File:     file,
		Supports: m.Supports,
	}
	for _, d := range m.Dependencies {
		if id, ok := d.Identity(); ok {
			e.Dependencies = append(e.Dependencies, IndexDependency{Type: id.Kind, Name: id.Name, Version: d.VersionReq})
		}
	}
	return e
}

func (e IndexEntry) variant() pkginfo.Variant {
	return pkginfo.Variant{
		Identity: pkginfo.Identity{Kind: e.Type, Name: e.Name},
		Version:  e.Version,
		Supports: e.Supports.String(),
	}
}

func (e IndexEntry) validate() error {
	if err := e.Type.Validate(); err != nil {
		return err
	}
	if e.Name == "" || e.Version == "" || e.File == "" {
		return fmt.Errorf("%s: name, version and file are required", e.variant())
	}
	for _, s := range e.Supports {
		if err := s.Validate(); err != nil {
			return err
		}
	}
	for _, d := range e.Dependencies {
		if err := d.Type.Validate(); err != nil {
			return err
		}
	}
	return nil
}
