// SPDX-License-Identifier: MPL-2.0

package pkginfo

import (
	"errors"
	"fmt"
	"strings"

	"github.com/appkg/appkg/pkg/platform"
)

// Support-matrix vocabulary.
const (
	OSLinux OS = platform.OSLinux
	OSMac   OS = platform.OSMac
	OSWin   OS = platform.OSWin

	ArchX86   Arch = platform.ArchX86
	ArchX64   Arch = platform.ArchX64
	ArchArm   Arch = platform.ArchArm
	ArchArm64 Arch = platform.ArchArm64

	// Weights of a matched field in SupportsCompatibleScore. An OS match
	// outranks an architecture match.
	osMatchScore   = 2
	archMatchScore = 1
)

// ErrInvalidSupport is the sentinel wrapped by InvalidSupportError.
var ErrInvalidSupport = errors.New("invalid support entry")

type (
	// OS is an operating system name in a support matrix. Empty means any.
	OS string

	// Arch is a CPU architecture name in a support matrix. Empty means any.
	Arch string

	// Support is one (os, arch) entry of a support matrix.
	Support struct {
		OS   OS   `json:"os,omitempty" toml:"os,omitempty"`
		Arch Arch `json:"arch,omitempty" toml:"arch,omitempty"`
	}

	// Supports is a package's support matrix. An empty matrix supports
	// every platform.
	Supports []Support

	// InvalidSupportError is returned when a Support names an unknown OS or
	// architecture.
	InvalidSupportError struct {
		Value Support
	}
)

// CurrentSupport describes the host. Fields the host mapping does not
// recognize are left empty.
func CurrentSupport() Support {
	return Support{OS: OS(platform.HostOS()), Arch: Arch(platform.HostArch())}
}

// String renders "os, arch", "os", "arch" or "" depending on which fields are set.
func (s Support) String() string {
	switch {
	case s.OS != "" && s.Arch != "":
		return string(s.OS) + ", " + string(s.Arch)
	case s.OS != "":
		return string(s.OS)
	default:
		return string(s.Arch)
	}
}

// Validate rejects unknown OS and architecture names.
func (s Support) Validate() error {
	switch s.OS {
	case "", OSLinux, OSMac, OSWin:
	default:
		return &InvalidSupportError{Value: s}
	}
	switch s.Arch {
	case "", ArchX86, ArchX64, ArchArm, ArchArm64:
	default:
		return &InvalidSupportError{Value: s}
	}
	return nil
}

func (e *InvalidSupportError) Error() string {
	return fmt.Sprintf("invalid support entry {os: %q, arch: %q}", e.Value.OS, e.Value.Arch)
}

// Unwrap returns ErrInvalidSupport for errors.Is() compatibility.
func (e *InvalidSupportError) Unwrap() error { return ErrInvalidSupport }

// String is the canonical rendering used in Variant keys and reports:
// non-empty entries joined by ", ".
func (ss Supports) String() string {
	items := make([]string, 0, len(ss))
	for _, s := range ss {
		if str := s.String(); str != "" {
			items = append(items, str)
		}
	}
	return strings.Join(items, ", ")
}

// SupportsCompatibleScore ranks how well a support matrix fits target.
// An empty matrix scores 0. Otherwise each entry is scored on its own and the
// best entry wins: an entry with a field that is set on both sides and
// differs scores -1, else every field set on both sides and equal adds its
// weight. A negative result means the package cannot be used on target.
func SupportsCompatibleScore(ss Supports, target Support) int {
	if len(ss) == 0 {
		return 0
	}

	best := -1
	for _, s := range ss {
		if score := entryScore(s, target); score > best {
			best = score
		}
	}
	return best
}

func entryScore(s, target Support) int {
	score := 0
	if s.OS != "" && target.OS != "" {
		if s.OS != target.OS {
			return -1
		}
		score += osMatchScore
	}
	if s.Arch != "" && target.Arch != "" {
		if s.Arch != target.Arch {
			return -1
		}
		score += archMatchScore
	}
	return score
}
