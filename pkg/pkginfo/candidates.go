// SPDX-License-Identifier: MPL-2.0

package pkginfo

import (
	"cmp"
	"slices"
	"strconv"
	"strings"
)

// Candidates indexes usable packages first by identity, then by variant, so
// that every viable build of a dependency slot can be enumerated.
type Candidates map[Identity]map[Variant]*PackageInfo

// Add stores p under its identity and variant, replacing an earlier package
// with the same variant.
func (c Candidates) Add(p *PackageInfo) {
	id := p.Identity()
	variants, ok := c[id]
	if !ok {
		variants = make(map[Variant]*PackageInfo)
		c[id] = variants
	}
	variants[p.Variant()] = p
}

// Variants returns the candidates for id ordered by version, compared
// numerically per release segment, then by supports, so callers iterate
// deterministically.
func (c Candidates) Variants(id Identity) []*PackageInfo {
	out := make([]*PackageInfo, 0, len(c[id]))
	for _, p := range c[id] {
		out = append(out, p)
	}
	slices.SortFunc(out, func(a, b *PackageInfo) int {
		if n := compareVersions(a.Version(), b.Version()); n != 0 {
			return n
		}
		return strings.Compare(a.Supports().String(), b.Supports().String())
	})
	return out
}

// Len returns the number of variants across all identities.
func (c Candidates) Len() int {
	n := 0
	for _, v := range c {
		n += len(v)
	}
	return n
}

// compareVersions orders "major.minor.patch[-pre][+build]" strings. Numeric
// segments compare as numbers, a release sorts after its pre-releases, and
// anything unparsable falls back to plain string order.
func compareVersions(a, b string) int {
	relA, preA := splitVersion(a)
	relB, preB := splitVersion(b)

	segA, segB := strings.Split(relA, "."), strings.Split(relB, ".")
	for i := 0; i < min(len(segA), len(segB)); i++ {
		na, errA := strconv.Atoi(segA[i])
		nb, errB := strconv.Atoi(segB[i])
		var n int
		if errA == nil && errB == nil {
			n = cmp.Compare(na, nb)
		} else {
			n = strings.Compare(segA[i], segB[i])
		}
		if n != 0 {
			return n
		}
	}
	if n := cmp.Compare(len(segA), len(segB)); n != 0 {
		return n
	}

	switch {
	case preA == preB:
		return strings.Compare(a, b)
	case preA == "":
		return 1
	case preB == "":
		return -1
	default:
		return strings.Compare(preA, preB)
	}
}

func splitVersion(v string) (release, pre string) {
	v, _, _ = strings.Cut(v, "+")
	release, pre, _ = strings.Cut(v, "-")
	return release, pre
}
