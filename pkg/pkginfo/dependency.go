// SPDX-License-Identifier: MPL-2.0

package pkginfo

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
)

const (
	// DependencyRegistry is resolved by version constraint against a registry.
	DependencyRegistry DependencyType = "registry"
	// DependencyLocal is resolved from a directory on disk.
	DependencyLocal DependencyType = "local"
)

// ErrInvalidDependency is returned when a declaration is neither a registry
// nor a local dependency.
var ErrInvalidDependency = errors.New("invalid dependency declaration")

type (
	// DependencyType tags the two shapes of a manifest declaration.
	DependencyType string

	// Dependency is one entry of a manifest's "dependencies" array.
	//
	// On disk a registry declaration is {"type": <kind>, "name": ..., "version": ...}
	// and a local declaration is {"path": ...}. BaseDir is the directory of the
	// owning manifest; it is never written back.
	Dependency struct {
		Type DependencyType

		Kind       Kind
		Name       string
		VersionReq string

		Path    string
		BaseDir string

		raw json.RawMessage
	}

	dependencyFields struct {
		Type    string `json:"type,omitempty"`
		Name    string `json:"name,omitempty"`
		Version string `json:"version,omitempty"`
		Path    string `json:"path,omitempty"`
	}
)

// NewRegistryDependency declares id at versionReq.
func NewRegistryDependency(id Identity, versionReq string) Dependency {
	return Dependency{Type: DependencyRegistry, Kind: id.Kind, Name: id.Name, VersionReq: versionReq}
}

// NewLocalDependency declares the package found at path, relative to baseDir.
func NewLocalDependency(path, baseDir string) Dependency {
	return Dependency{Type: DependencyLocal, Path: path, BaseDir: baseDir}
}

// ParseDependency reads one declaration. baseDir is recorded on local
// declarations so that their path can be resolved later.
func ParseDependency(raw json.RawMessage, baseDir string) (Dependency, error) {
	var f dependencyFields
	if err := json.Unmarshal(raw, &f); err != nil {
		return Dependency{}, fmt.Errorf("%w: %w", ErrInvalidDependency, err)
	}

	var d Dependency
	switch {
	case f.Path != "" && f.Type == "":
		d = NewLocalDependency(f.Path, baseDir)
	case f.Type != "" && f.Path == "":
		kind, err := ParseKind(f.Type)
		if err != nil {
			return Dependency{}, fmt.Errorf("%w: %w", ErrInvalidDependency, err)
		}
		if f.Name == "" {
			return Dependency{}, fmt.Errorf("%w: registry dependency without a name", ErrInvalidDependency)
		}
		d = NewRegistryDependency(Identity{Kind: kind, Name: f.Name}, f.Version)
	default:
		return Dependency{}, fmt.Errorf("%w: %s", ErrInvalidDependency, raw)
	}

	d.raw = raw
	return d, nil
}

// IsLocal reports whether d is a local declaration.
func (d Dependency) IsLocal() bool { return d.Type == DependencyLocal }

// Identity returns the slot a registry declaration fills. Local declarations
// only learn their identity once the directory is loaded, so ok is false.
func (d Dependency) Identity() (id Identity, ok bool) {
	if d.IsLocal() {
		return Identity{}, false
	}
	return Identity{Kind: d.Kind, Name: d.Name}, true
}

// ResolvedPath joins a relative local path with its base directory.
func (d Dependency) ResolvedPath() string {
	if filepath.IsAbs(d.Path) || d.BaseDir == "" {
		return d.Path
	}
	return filepath.Join(d.BaseDir, d.Path)
}

// Equal reports whether two declarations would be written identically.
// BaseDir is ignored because it is not persisted.
func (d Dependency) Equal(o Dependency) bool {
	if d.Type != o.Type {
		return false
	}
	if d.IsLocal() {
		return d.Path == o.Path
	}
	return d.Kind == o.Kind && d.Name == o.Name && d.VersionReq == o.VersionReq
}

// Raw returns the bytes the declaration was parsed from, or nil for a
// declaration built in memory.
func (d Dependency) Raw() json.RawMessage { return d.raw }

func (d Dependency) String() string {
	if d.IsLocal() {
		return "local:" + d.Path
	}
	return string(d.Kind) + ":" + d.Name + "@" + d.VersionReq
}

// MarshalJSON writes the on-disk shape.
func (d Dependency) MarshalJSON() ([]byte, error) {
	if d.IsLocal() {
		return json.Marshal(dependencyFields{Path: d.Path})
	}
	return json.Marshal(dependencyFields{Type: string(d.Kind), Name: d.Name, Version: d.VersionReq})
}
