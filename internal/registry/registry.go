// SPDX-License-Identifier: MPL-2.0

// Package registry lists and downloads published packages. A registry is a
// directory or an http(s) base URL holding an index.toml and the package
// archives it references.
package registry

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/appkg/appkg/pkg/pkginfo"
)

var (
	// ErrNoRegistry is returned when no registry location is configured.
	ErrNoRegistry = errors.New("no registry configured")
	// ErrLocalDependency is returned when publishing a package that still
	// declares local dependencies. The index cannot describe them, so the
	// published build would never match its own extracted manifest.
	ErrLocalDependency = errors.New("published packages cannot declare local dependencies")
)

type (
	// Fetcher downloads one package archive into dst. url pins the archive
	// location; when empty the registry looks the variant up in its index.
	Fetcher interface {
		Fetch(ctx context.Context, id pkginfo.Identity, version, url string, dst io.Writer) error
	}

	// Registry is a Fetcher that can also enumerate what it serves.
	Registry interface {
		Fetcher
		Packages(ctx context.Context) ([]*pkginfo.PackageInfo, error)
	}
)

// Open returns the registry at location: an http(s) URL or a directory.
func Open(location string, logger *log.Logger) (Registry, error) {
	switch {
	case location == "":
		return nil, ErrNoRegistry
	case strings.HasPrefix(location, "http://"), strings.HasPrefix(location, "https://"):
		return NewHTTP(location, nil, logger), nil
	default:
		return NewLocal(location, logger), nil
	}
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
