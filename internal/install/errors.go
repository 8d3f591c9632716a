// SPDX-License-Identifier: MPL-2.0

package install

import (
	"errors"
	"fmt"

	"github.com/appkg/appkg/pkg/lockfile"
	"github.com/appkg/appkg/pkg/pkginfo"
)

var (
	// ErrLocalPath is the sentinel wrapped by LocalPathError.
	ErrLocalPath = errors.New("local dependency path is not a package directory")
	// ErrAmbiguousResult is the sentinel wrapped by AmbiguousResultError.
	ErrAmbiguousResult = errors.New("ambiguous solver result")
	// ErrInstall is the sentinel wrapped by InstallError.
	ErrInstall = errors.New("install failed")
	// ErrLockfile is the sentinel wrapped by LockfileError.
	ErrLockfile = errors.New("lock file not updated")
)

type (
	// LocalPathError reports a local dependency path that does not resolve
	// to a directory holding a package.
	LocalPathError struct {
		Path string
		Err  error
	}

	// AmbiguousResultError is returned when a solver result holds zero or
	// several packages for the identity being written into a manifest.
	AmbiguousResultError struct {
		Identity pkginfo.Identity
		Found    int
	}

	// InstallError attaches the package identity to an install failure.
	InstallError struct {
		Identity pkginfo.Identity
		Err      error
	}

	// LockfileError is returned when manifest-lock.json cannot be written.
	LockfileError struct {
		Err error
	}
)

func (e *LocalPathError) Error() string {
	return fmt.Sprintf("local dependency %q: %v", e.Path, e.Err)
}

// Unwrap returns both the sentinel and the underlying cause.
func (e *LocalPathError) Unwrap() []error { return []error{ErrLocalPath, e.Err} }

func (e *AmbiguousResultError) Error() string {
	if e.Found == 0 {
		return fmt.Sprintf("failed to find any of %s", e.Identity)
	}
	return fmt.Sprintf("found the possibility of multiple %s being incorrect (%d matches)", e.Identity, e.Found)
}

// Unwrap returns ErrAmbiguousResult for errors.Is() compatibility.
func (e *AmbiguousResultError) Unwrap() error { return ErrAmbiguousResult }

func (e *InstallError) Error() string {
	return fmt.Sprintf("failed to install %s: %v", e.Identity, e.Err)
}

// Unwrap returns both the sentinel and the underlying cause.
func (e *InstallError) Unwrap() []error { return []error{ErrInstall, e.Err} }

func (e *LockfileError) Error() string {
	return fmt.Sprintf("failed to write %s: %v", lockfile.FileName, e.Err)
}

// Unwrap returns both the sentinel and the underlying cause.
func (e *LockfileError) Unwrap() []error { return []error{ErrLockfile, e.Err} }
