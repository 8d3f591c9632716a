// SPDX-License-Identifier: MPL-2.0

package pkginfo

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/appkg/appkg/internal/fsutil"
	"github.com/appkg/appkg/pkg/cueutil"
	"github.com/appkg/appkg/pkg/jsondoc"
	"github.com/appkg/appkg/pkg/platform"
)

const (
	// ManifestFileName is the manifest's file name inside a package directory.
	ManifestFileName = "manifest.json"

	dependenciesKey = "dependencies"
)

//go:embed manifest_schema.cue
var manifestSchema []byte

var (
	// ErrManifestNotFound is returned when a directory has no manifest.json.
	ErrManifestNotFound = errors.New("manifest not found")
	// ErrReservedName is returned for package names no host can use as a directory.
	ErrReservedName = errors.New("package name is reserved")
)

type (
	// Manifest is a parsed manifest.json. The typed fields mirror the
	// document; every edit goes through the document so that keys this
	// package does not know about survive untouched.
	Manifest struct {
		Identity
		Version      string
		Supports     Supports
		Dependencies []Dependency

		// Dir is the package directory the manifest was read from.
		Dir string

		doc *jsondoc.Document
	}

	manifestFields struct {
		Type     string    `json:"type"`
		Name     string    `json:"name"`
		Version  string    `json:"version"`
		Supports []Support `json:"supports,omitempty"`
	}
)

// NewManifest builds a manifest in memory, as registry index entries do.
func NewManifest(id Identity, version string, supports Supports, deps []Dependency) (*Manifest, error) {
	doc := jsondoc.New()
	if err := doc.Set("type", id.Kind); err != nil {
		return nil, err
	}
	if err := doc.Set("name", id.Name); err != nil {
		return nil, err
	}
	if err := doc.Set("version", version); err != nil {
		return nil, err
	}
	if len(supports) > 0 {
		if err := doc.Set("supports", supports); err != nil {
			return nil, err
		}
	}

	m := &Manifest{Identity: id, Version: version, Supports: supports, doc: doc}
	if err := m.UpdateDependencies(deps, nil); err != nil {
		return nil, err
	}
	return m, nil
}

// LoadManifest reads and validates dir/manifest.json.
func LoadManifest(dir string) (*Manifest, error) {
	path := filepath.Join(dir, ManifestFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", path, ErrManifestNotFound)
		}
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	return ParseManifest(data, dir)
}

// ParseManifest validates data against the manifest schema and keeps the
// ordered document for later edits. dir becomes the base directory of local
// declarations.
func ParseManifest(data []byte, dir string) (*Manifest, error) {
	filename := filepath.Join(dir, ManifestFileName)

	res, err := cueutil.ParseAndDecode[manifestFields](manifestSchema, data, "#Manifest", cueutil.WithFilename(filename))
	if err != nil {
		return nil, err
	}
	fields := res.Value

	if platform.IsWindowsReservedName(fields.Name) {
		return nil, fmt.Errorf("%s: %q: %w", filename, fields.Name, ErrReservedName)
	}

	doc, err := jsondoc.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}

	deps, err := parseDependencies(doc, dir)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}

	return &Manifest{
		Identity:     Identity{Kind: Kind(fields.Type), Name: fields.Name},
		Version:      fields.Version,
		Supports:     fields.Supports,
		Dependencies: deps,
		Dir:          dir,
		doc:          doc,
	}, nil
}

func parseDependencies(doc *jsondoc.Document, baseDir string) ([]Dependency, error) {
	raw, ok := doc.Raw(dependenciesKey)
	if !ok {
		return nil, nil
	}
	items, err := jsondoc.SplitArray(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", dependenciesKey, err)
	}

	deps := make([]Dependency, 0, len(items))
	for i, item := range items {
		d, err := ParseDependency(item, baseDir)
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", dependenciesKey, i, err)
		}
		deps = append(deps, d)
	}
	return deps, nil
}

// Document returns the ordered document backing the manifest.
func (m *Manifest) Document() *jsondoc.Document { return m.doc }

// Bytes renders the manifest as it would be written to disk.
func (m *Manifest) Bytes() ([]byte, error) { return m.doc.Marshal() }

// UpdateDependencies drops every declaration equal to one in remove, then
// appends add. Surviving declarations keep their order and original bytes.
// The "dependencies" key is created at the end of the document if it did not
// exist and something is added. New declarations follow the indentation of
// the document. When nothing is added or removed the document is untouched.
func (m *Manifest) UpdateDependencies(add, remove []Dependency) error {
	removing := false
	for _, d := range m.Dependencies {
		if containsDeclaration(remove, d) {
			removing = true
			break
		}
	}
	if len(add) == 0 && !removing {
		return nil
	}

	var items []json.RawMessage
	for _, d := range m.Dependencies {
		if containsDeclaration(remove, d) {
			continue
		}
		raw := d.Raw()
		if raw == nil {
			var err error
			if raw, err = m.doc.Encode(d, 2); err != nil {
				return fmt.Errorf("failed to encode dependency %s: %w", d, err)
			}
		}
		items = append(items, raw)
	}
	for _, d := range add {
		raw, err := m.doc.Encode(d, 2)
		if err != nil {
			return fmt.Errorf("failed to encode dependency %s: %w", d, err)
		}
		items = append(items, raw)
	}

	if len(items) == 0 && !m.doc.Has(dependenciesKey) {
		return nil
	}
	m.doc.SetRaw(dependenciesKey, m.doc.JoinArray(items, 1))

	deps, err := parseDependencies(m.doc, m.Dir)
	if err != nil {
		return err
	}
	m.Dependencies = deps
	return nil
}

func containsDeclaration(list []Dependency, d Dependency) bool {
	for _, o := range list {
		if o.Equal(d) {
			return true
		}
	}
	return false
}

// Save atomically writes the manifest to Dir/manifest.json.
func (m *Manifest) Save() error {
	if m.Dir == "" {
		return errors.New("manifest has no directory")
	}
	data, err := m.Bytes()
	if err != nil {
		return fmt.Errorf("failed to render manifest: %w", err)
	}
	if err := fsutil.AtomicWriteFile(filepath.Join(m.Dir, ManifestFileName), data, 0o644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}
