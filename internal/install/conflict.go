// SPDX-License-Identifier: MPL-2.0

package install

import (
	"fmt"
	"slices"
	"strings"

	"github.com/appkg/appkg/internal/output"
	"github.com/appkg/appkg/pkg/pkginfo"
)

// Replacement pairs an installed package with the resolved package that
// takes its place.
type Replacement struct {
	New *pkginfo.PackageInfo
	Old *pkginfo.PackageInfo
}

// CompareSolverResultsWithInstalled reports installed packages the solver
// result does not mention and installed packages it would replace. Only
// replacements count as a conflict.
func CompareSolverResultsWithInstalled(results, installed []*pkginfo.PackageInfo, out output.Output) bool {
	if untracked := FindUntrackedLocalPackages(results, installed); len(untracked) > 0 {
		out.NormalLine("💡  The following local packages do not appear in the dependency tree:")
		for _, p := range untracked {
			out.NormalLine(" " + p.String())
		}
	}

	replaced := FindToBeReplacedLocalPackages(results, installed)
	if len(replaced) == 0 {
		return false
	}

	out.NormalLine("🔄  The following packages will be replaced:")
	for _, r := range replaced {
		oldSup, newSup := supportsSuffix(r.Old), supportsSuffix(r.New)
		if oldSup == newSup {
			oldSup, newSup = "", ""
		}
		out.NormalLine(fmt.Sprintf(" %s%s -> %s%s", r.Old, oldSup, r.New, newSup))
	}
	return true
}

// FindUntrackedLocalPackages returns the installed packages whose identity
// is absent from results, ordered by variant.
func FindUntrackedLocalPackages(results, installed []*pkginfo.PackageInfo) []*pkginfo.PackageInfo {
	resolved := make(map[pkginfo.Identity]bool, len(results))
	for _, p := range results {
		resolved[p.Identity()] = true
	}

	var untracked []*pkginfo.PackageInfo
	for _, p := range installed {
		if !resolved[p.Identity()] {
			untracked = append(untracked, p)
		}
	}
	slices.SortFunc(untracked, compareByVariant)
	return untracked
}

// FindToBeReplacedLocalPackages pairs every installed package with the
// resolved package of the same identity when the two differ in variant or
// content. Pairs are ordered by the installed package's variant.
func FindToBeReplacedLocalPackages(results, installed []*pkginfo.PackageInfo) []Replacement {
	byIdentity := make(map[pkginfo.Identity]*pkginfo.PackageInfo, len(results))
	for _, p := range results {
		byIdentity[p.Identity()] = p
	}

	var replaced []Replacement
	for _, old := range installed {
		p, ok := byIdentity[old.Identity()]
		if !ok || IsSameBuild(p, old) {
			continue
		}
		replaced = append(replaced, Replacement{New: p, Old: old})
	}
	slices.SortFunc(replaced, func(a, b Replacement) int { return compareByVariant(a.Old, b.Old) })
	return replaced
}

// IsSameBuild reports whether a resolved package is already satisfied by an
// installed one.
func IsSameBuild(resolved, installed *pkginfo.PackageInfo) bool {
	return resolved.Variant() == installed.Variant() && resolved.Hash == installed.Hash
}

func supportsSuffix(p *pkginfo.PackageInfo) string {
	if s := p.Supports().String(); s != "" {
		return " (" + s + ")"
	}
	return ""
}

func compareByVariant(a, b *pkginfo.PackageInfo) int {
	return strings.Compare(a.Variant().String(), b.Variant().String())
}
