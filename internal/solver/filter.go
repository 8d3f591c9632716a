// SPDX-License-Identifier: MPL-2.0

package solver

import "github.com/appkg/appkg/pkg/pkginfo"

// FilterByKindAndName selects from a solver result. A package matches when
// its kind equals *kind and its name equals *name; a nil filter matches
// anything. keepMatching selects the matching packages, otherwise the rest.
func FilterByKindAndName(results []*pkginfo.PackageInfo, kind *pkginfo.Kind, name *string, keepMatching bool) []*pkginfo.PackageInfo {
	var out []*pkginfo.PackageInfo
	for _, p := range results {
		matched := (kind == nil || p.Kind() == *kind) && (name == nil || p.Name() == *name)
		if matched == keepMatching {
			out = append(out, p)
		}
	}
	return out
}
