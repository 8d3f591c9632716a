// SPDX-License-Identifier: MPL-2.0

package registry

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/appkg/appkg/internal/fsutil"
	"github.com/appkg/appkg/internal/output"
	"github.com/appkg/appkg/pkg/pkginfo"
)

var supportsSlug = strings.NewReplacer(", ", "-")

// Local is a registry stored in a directory.
type Local struct {
	dir    string
	logger *log.Logger
}

// NewLocal returns the registry rooted at dir.
func NewLocal(dir string, logger *log.Logger) *Local {
	if logger == nil {
		logger = output.Discard()
	}
	return &Local{dir: dir, logger: logger}
}

// Dir returns the registry root.
func (r *Local) Dir() string { return r.dir }

// LoadIndex reads dir/index.toml. A registry without one is empty.
func (r *Local) LoadIndex() (*Index, error) {
	data, err := os.ReadFile(filepath.Join(r.dir, IndexFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return &Index{}, nil
		}
		return nil, fmt.Errorf("failed to read registry index: %w", err)
	}
	return ParseIndex(data)
}

// Packages implements Registry.
func (r *Local) Packages(ctx context.Context) ([]*pkginfo.PackageInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	idx, err := r.LoadIndex()
	if err != nil {
		return nil, err
	}
	return idx.PackageInfos(r.resolve)
}

// Fetch implements Fetcher.
func (r *Local) Fetch(ctx context.Context, id pkginfo.Identity, version, url string, dst io.Writer) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	src := url
	if src == "" {
		if src, err = r.lookup(id, version); err != nil {
			return err
		}
	}
	r.logger.Debug("fetching package", "pkg", id, "version", version, "from", src)

	f, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s@%s: %w", id, version, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	if _, err := io.Copy(dst, f); err != nil {
		return fmt.Errorf("failed to copy %s@%s: %w", id, version, err)
	}
	return nil
}

// Publish copies the archive at archivePath into the registry under
// <kind>/<name>/<version>.zip and records m in the index. Manifests that
// declare local dependencies are rejected before anything is written.
func (r *Local) Publish(m *pkginfo.Manifest, archivePath string) error {
	for _, d := range m.Dependencies {
		if d.IsLocal() {
			return fmt.Errorf("%s@%s: %w (%s)", m.Identity, m.Version, ErrLocalDependency, d.Path)
		}
	}

	rel := path.Join(string(m.Kind), m.Name, m.Version+".zip")
	if s := m.Supports.String(); s != "" {
		rel = path.Join(string(m.Kind), m.Name, m.Version, supportsSlug.Replace(s)+".zip")
	}

	data, err := os.ReadFile(archivePath)
	if err != nil {
		return fmt.Errorf("failed to read archive: %w", err)
	}
	dst := filepath.Join(r.dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("failed to create registry directory: %w", err)
	}
	if err := fsutil.AtomicWriteFile(dst, data, 0o644); err != nil {
		return fmt.Errorf("failed to store archive: %w", err)
	}

	idx, err := r.LoadIndex()
	if err != nil {
		return err
	}
	idx.Put(EntryFor(m, rel))
	out, err := idx.Marshal()
	if err != nil {
		return fmt.Errorf("failed to render registry index: %w", err)
	}
	if err := fsutil.AtomicWriteFile(filepath.Join(r.dir, IndexFileName), out, 0o644); err != nil {
		return fmt.Errorf("failed to write registry index: %w", err)
	}
	r.logger.Debug("published package", "pkg", m.Identity, "version", m.Version, "file", rel)
	return nil
}

func (r *Local) resolve(file string) string {
	if isURL(file) || filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(r.dir, filepath.FromSlash(file))
}

func (r *Local) lookup(id pkginfo.Identity, version string) (string, error) {
	idx, err := r.LoadIndex()
	if err != nil {
		return "", err
	}
	for _, e := range idx.Packages {
		if e.Type == id.Kind && e.Name == id.Name && e.Version == version {
			return r.resolve(e.File), nil
		}
	}
	return "", fmt.Errorf("%s@%s: %w", id, version, os.ErrNotExist)
}
