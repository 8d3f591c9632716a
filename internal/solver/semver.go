// SPDX-License-Identifier: MPL-2.0

package solver

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	// ErrInvalidVersion is the sentinel wrapped by version parse failures.
	ErrInvalidVersion = errors.New("invalid version")
	// ErrInvalidConstraint is the sentinel wrapped by constraint parse failures.
	ErrInvalidConstraint = errors.New("invalid version constraint")

	versionRegex = regexp.MustCompile(`^v?(\d+)(?:\.(\d+))?(?:\.(\d+))?(?:-([0-9A-Za-z\-.]+))?(?:\+([0-9A-Za-z\-.]+))?$`)
	termRegex    = regexp.MustCompile(`^([~^]|>=|<=|>|<|=)?\s*(v?\d+(?:\.\d+)?(?:\.\d+)?(?:-[0-9A-Za-z\-.]+)?(?:\+[0-9A-Za-z\-.]+)?)$`)
)

type (
	// Version is a parsed semantic version.
	Version struct {
		Major      int
		Minor      int
		Patch      int
		Prerelease string
		Original   string
	}

	// Constraint is a conjunction of version terms, such as ">=1.2.0, <2.0.0".
	// An empty constraint or "*" matches every version.
	Constraint struct {
		terms    []term
		Original string
	}

	term struct {
		op      string
		version *Version
	}
)

// ParseVersion parses a semantic version. Missing minor or patch parts are zero.
func ParseVersion(s string) (*Version, error) {
	m := versionRegex.FindStringSubmatch(s)
	if m == nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidVersion, s)
	}

	v := &Version{Original: s, Prerelease: m[4]}
	parts := []*int{&v.Major, &v.Minor, &v.Patch}
	for i, p := range parts {
		if m[i+1] == "" {
			continue
		}
		n, err := strconv.Atoi(m[i+1])
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %w", ErrInvalidVersion, s, err)
		}
		*p = n
	}
	return v, nil
}

func (v *Version) String() string { return v.Original }

// Compare returns -1, 0 or 1. A prerelease sorts before its release.
func (v *Version) Compare(o *Version) int {
	for _, pair := range [][2]int{{v.Major, o.Major}, {v.Minor, o.Minor}, {v.Patch, o.Patch}} {
		switch {
		case pair[0] < pair[1]:
			return -1
		case pair[0] > pair[1]:
			return 1
		}
	}

	switch {
	case v.Prerelease == o.Prerelease:
		return 0
	case v.Prerelease == "":
		return 1
	case o.Prerelease == "":
		return -1
	case v.Prerelease < o.Prerelease:
		return -1
	default:
		return 1
	}
}

// ParseConstraint parses comma-separated terms. Each term is a version
// optionally prefixed by one of = ^ ~ > >= < <=. A bare version means "=".
func ParseConstraint(s string) (*Constraint, error) {
	c := &Constraint{Original: s}
	s = strings.TrimSpace(s)
	if s == "" || s == "*" {
		return c, nil
	}

	for raw := range strings.SplitSeq(s, ",") {
		raw = strings.TrimSpace(raw)
		m := termRegex.FindStringSubmatch(raw)
		if m == nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidConstraint, s)
		}
		op := m[1]
		if op == "" {
			op = "="
		}
		v, err := ParseVersion(m[2])
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %w", ErrInvalidConstraint, s, err)
		}
		c.terms = append(c.terms, term{op: op, version: v})
	}
	return c, nil
}

func (c *Constraint) String() string { return c.Original }

// Matches reports whether v satisfies every term.
func (c *Constraint) Matches(v *Version) bool {
	for _, t := range c.terms {
		if !t.matches(v) {
			return false
		}
	}
	return true
}

func (t term) matches(v *Version) bool {
	cmp := v.Compare(t.version)
	switch t.op {
	case "=":
		return cmp == 0
	case ">":
		return cmp > 0
	case ">=":
		return cmp >= 0
	case "<":
		return cmp < 0
	case "<=":
		return cmp <= 0
	case "~":
		// ~1.2.3 := >=1.2.3 <1.3.0
		return cmp >= 0 && v.Major == t.version.Major && v.Minor == t.version.Minor
	case "^":
		// ^1.2.3 := >=1.2.3 <2.0.0, ^0.2.3 := >=0.2.3 <0.3.0, ^0.0.3 := =0.0.3
		if cmp < 0 {
			return false
		}
		switch {
		case t.version.Major != 0:
			return v.Major == t.version.Major
		case t.version.Minor != 0:
			return v.Major == 0 && v.Minor == t.version.Minor
		default:
			return v.Major == 0 && v.Minor == 0 && v.Patch == t.version.Patch
		}
	default:
		return false
	}
}
