// SPDX-License-Identifier: MPL-2.0

// Package lockfile reads, builds and writes manifest-lock.json, the record of
// exactly which package variants an application resolved to.
package lockfile

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/appkg/appkg/internal/fsutil"
	"github.com/appkg/appkg/pkg/cueutil"
	"github.com/appkg/appkg/pkg/pkginfo"
)

const (
	// FileName is the lock file name inside an application directory.
	FileName = "manifest-lock.json"

	// CurrentVersion is the only lock format version this package writes.
	CurrentVersion = 1
)

//go:embed lock_schema.cue
var lockSchema []byte

// ErrNotFound is returned by ParseInFolder when the directory has no lock file.
var ErrNotFound = errors.New("lock file not found")

type (
	// Lock is a parsed manifest-lock.json. Packages is kept sorted so that
	// two locks for the same resolution marshal to the same bytes.
	Lock struct {
		Version  int     `json:"version"`
		Packages []Entry `json:"packages"`
	}

	// Entry is one locked package variant.
	Entry struct {
		Kind         pkginfo.Kind     `json:"type"`
		Name         string           `json:"name"`
		Version      string           `json:"version"`
		Hash         string           `json:"hash"`
		Supports     pkginfo.Supports `json:"supports,omitempty"`
		Dependencies []Ref            `json:"dependencies,omitempty"`

		// Path is set for local packages only: the path they were declared with.
		Path string `json:"path,omitempty"`
	}

	// Ref points from an entry to one of its dependencies.
	Ref struct {
		Kind pkginfo.Kind `json:"type"`
		Name string       `json:"name"`
	}

	// LineWriter receives human-readable change lines.
	LineWriter interface {
		NormalLine(line string)
	}
)

// FromPackages builds the lock for a resolved package set. Local dependency
// declarations are mapped to identities by matching their resolved path
// against the local packages in pkgs; declarations pointing outside the set
// are left out.
func FromPackages(pkgs []*pkginfo.PackageInfo) *Lock {
	localByDir := make(map[string]pkginfo.Identity)
	for _, p := range pkgs {
		if p.IsLocalDependency {
			localByDir[filepath.Clean(p.URL)] = p.Identity()
		}
	}

	seen := make(map[pkginfo.Variant]bool, len(pkgs))
	lock := &Lock{Version: CurrentVersion, Packages: make([]Entry, 0, len(pkgs))}
	for _, p := range pkgs {
		v := p.Variant()
		if seen[v] {
			continue
		}
		seen[v] = true

		e := Entry{
			Kind:     p.Kind(),
			Name:     p.Name(),
			Version:  p.Version(),
			Hash:     p.Hash,
			Supports: slices.Clone(p.Supports()),
		}
		if p.IsLocalDependency {
			e.Path = p.LocalDependencyPath
		}
		for _, d := range p.Manifest.Dependencies {
			id, ok := d.Identity()
			if !ok {
				id, ok = localByDir[filepath.Clean(d.ResolvedPath())]
			}
			if ok {
				e.Dependencies = append(e.Dependencies, Ref{Kind: id.Kind, Name: id.Name})
			}
		}
		slices.SortFunc(e.Dependencies, compareRefs)
		e.Dependencies = slices.Compact(e.Dependencies)

		lock.Packages = append(lock.Packages, e)
	}

	lock.sort()
	return lock
}

// Parse validates data against the lock schema and decodes it.
func Parse(data []byte) (*Lock, error) {
	res, err := cueutil.ParseAndDecode[Lock](lockSchema, data, "#Lock", cueutil.WithFilename(FileName))
	if err != nil {
		return nil, err
	}
	lock := res.Value
	lock.sort()
	return lock, nil
}

// ParseInFolder reads dir/manifest-lock.json. A missing file yields an error
// wrapping ErrNotFound.
func ParseInFolder(dir string) (*Lock, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read lock file: %w", err)
	}

	lock, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return lock, nil
}

// Marshal renders the lock with two-space indentation and a trailing newline.
func (l *Lock) Marshal() ([]byte, error) {
	if l.Packages == nil {
		c := *l
		c.Packages = []Entry{}
		l = &c
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(l); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write stores the lock in dir unless an equal lock is already there, and
// reports whether the file changed. The file is replaced atomically.
func (l *Lock) Write(dir string) (bool, error) {
	if old, err := ParseInFolder(dir); err == nil && old.Equal(l) {
		return false, nil
	}

	data, err := l.Marshal()
	if err != nil {
		return false, fmt.Errorf("failed to render lock file: %w", err)
	}
	if err := fsutil.AtomicWriteFile(filepath.Join(dir, FileName), data, 0o644); err != nil {
		return false, fmt.Errorf("failed to write lock file: %w", err)
	}
	return true, nil
}

// Equal reports whether two locks hold the same entries.
func (l *Lock) Equal(o *Lock) bool {
	if l == nil || o == nil {
		return l == o
	}
	return l.Version == o.Version && slices.EqualFunc(l.Packages, o.Packages, Entry.Equal)
}

// Equal compares every field of two entries.
func (e Entry) Equal(o Entry) bool {
	return e.Kind == o.Kind &&
		e.Name == o.Name &&
		e.Version == o.Version &&
		e.Hash == o.Hash &&
		e.Path == o.Path &&
		slices.Equal(e.Supports, o.Supports) &&
		slices.Equal(e.Dependencies, o.Dependencies)
}

// Identity returns the entry's dependency slot.
func (e Entry) Identity() pkginfo.Identity {
	return pkginfo.Identity{Kind: e.Kind, Name: e.Name}
}

// Variant returns the entry's variant key.
func (e Entry) Variant() pkginfo.Variant {
	return pkginfo.Variant{Identity: e.Identity(), Version: e.Version, Supports: e.Supports.String()}
}

// PrintChanges writes one line per difference between old and l:
// " + " for new variants, " - " for dropped ones and " ~ " for a slot whose
// single variant moved, or whose variant kept its key but changed content.
func (l *Lock) PrintChanges(old *Lock, out LineWriter) {
	oldByVariant := indexByVariant(old)
	newByVariant := indexByVariant(l)

	var added, removed []Entry
	var lines []string
	for v, e := range newByVariant {
		prev, ok := oldByVariant[v]
		switch {
		case !ok:
			added = append(added, e)
		case !prev.Equal(e):
			lines = append(lines, " ~ "+v.String()+" (content changed)")
		}
	}
	for v, e := range oldByVariant {
		if _, ok := newByVariant[v]; !ok {
			removed = append(removed, e)
		}
	}

	addedByID := groupByIdentity(added)
	removedByID := groupByIdentity(removed)
	for id, news := range addedByID {
		olds := removedByID[id]
		if len(news) != 1 || len(olds) != 1 {
			continue
		}
		lines = append(lines, fmt.Sprintf(" ~ %s@%s -> %s", id, renderVersion(olds[0]), renderVersion(news[0])))
		delete(addedByID, id)
		delete(removedByID, id)
	}
	for _, es := range addedByID {
		for _, e := range es {
			lines = append(lines, " + "+e.Variant().String())
		}
	}
	for _, es := range removedByID {
		for _, e := range es {
			lines = append(lines, " - "+e.Variant().String())
		}
	}

	slices.SortFunc(lines, func(a, b string) int { return strings.Compare(a[3:], b[3:]) })
	for _, line := range lines {
		out.NormalLine(line)
	}
}

func renderVersion(e Entry) string {
	if s := e.Supports.String(); s != "" {
		return e.Version + " (" + s + ")"
	}
	return e.Version
}

func indexByVariant(l *Lock) map[pkginfo.Variant]Entry {
	m := make(map[pkginfo.Variant]Entry)
	if l == nil {
		return m
	}
	for _, e := range l.Packages {
		m[e.Variant()] = e
	}
	return m
}

func groupByIdentity(es []Entry) map[pkginfo.Identity][]Entry {
	m := make(map[pkginfo.Identity][]Entry)
	for _, e := range es {
		m[e.Identity()] = append(m[e.Identity()], e)
	}
	return m
}

func (l *Lock) sort() {
	slices.SortFunc(l.Packages, func(a, b Entry) int {
		if n := strings.Compare(string(a.Kind), string(b.Kind)); n != 0 {
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
}

func compareRefs(a, b Ref) int {
	if n := strings.Compare(string(a.Kind), string(b.Kind)); n != 0 {
		return n
	}
	return strings.Compare(a.Name, b.Name)
}
