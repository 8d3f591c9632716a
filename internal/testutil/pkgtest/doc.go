// SPDX-License-Identifier: MPL-2.0

// Package pkgtest provides test helpers for building packages, both as
// in-memory pkginfo.PackageInfo values and as package directories on disk.
//
// This package is separate from testutil to avoid import cycles, since
// testutil carries no dependency on pkg/pkginfo.
//
// # Usage
//
//	import "github.com/appkg/appkg/internal/testutil/pkgtest"
//
//	p := pkgtest.NewPackage(t, pkginfo.KindExtension, "foo", "1.0.0")
//	dir := pkgtest.WritePackage(t, root, pkginfo.KindExtension, "foo", "1.0.0",
//	    pkgtest.WithRegistryDependency(pkginfo.KindSystem, "rt", "^0.4.0"),
//	)
package pkgtest
