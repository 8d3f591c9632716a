// SPDX-License-Identifier: MPL-2.0

package install

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/appkg/appkg/internal/output"
	"github.com/appkg/appkg/internal/testutil/pkgtest"
	"github.com/appkg/appkg/pkg/pkginfo"
)

func installedLocal(t *testing.T, kind pkginfo.Kind, name, version string, opts ...pkgtest.Option) *pkginfo.PackageInfo {
	t.Helper()
	p := pkgtest.NewPackage(t, kind, name, version, opts...)
	p.IsInstalled = true
	p.URL = "/ws/app/app_packages/" + string(kind) + "/" + name
	return p
}

func TestCompareSolverResultsWithInstalled_Replacement(t *testing.T) {
	t.Parallel()

	old := installedLocal(t, pkginfo.KindExtension, "foo", "1.0.0")
	resolved := pkgtest.NewPackage(t, pkginfo.KindExtension, "foo", "2.0.0")

	out := &output.Buffer{}
	conflict := CompareSolverResultsWithInstalled([]*pkginfo.PackageInfo{resolved}, []*pkginfo.PackageInfo{old}, out)
	if !conflict {
		t.Error("CompareSolverResultsWithInstalled() = false, want true")
	}

	pairs := FindToBeReplacedLocalPackages([]*pkginfo.PackageInfo{resolved}, []*pkginfo.PackageInfo{old})
	if len(pairs) != 1 || pairs[0].Old != old || pairs[0].New != resolved {
		t.Fatalf("FindToBeReplacedLocalPackages() = %+v, want exactly (new=foo@2.0.0, old=foo@1.0.0)", pairs)
	}

	want := []string{
		"🔄  The following packages will be replaced:",
		" extension:foo@1.0.0 -> extension:foo@2.0.0",
	}
	if diff := cmp.Diff(want, out.Lines()); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestCompareSolverResultsWithInstalled_SupportsSuffix(t *testing.T) {
	t.Parallel()

	linux := pkginfo.Support{OS: pkginfo.OSLinux}
	linuxX64 := pkginfo.Support{OS: pkginfo.OSLinux, Arch: pkginfo.ArchX64}

	tests := []struct {
		name     string
		old      *pkginfo.PackageInfo
		resolved *pkginfo.PackageInfo
		want     string
	}{
		{
			name:     "different matrices",
			old:      installedLocal(t, pkginfo.KindSystem, "rt", "0.4.0", pkgtest.WithSupports(linux)),
			resolved: pkgtest.NewPackage(t, pkginfo.KindSystem, "rt", "0.4.0", pkgtest.WithSupports(linuxX64)),
			want:     " system:rt@0.4.0 (linux) -> system:rt@0.4.0 (linux, x64)",
		},
		{
			name:     "matrix added",
			old:      installedLocal(t, pkginfo.KindSystem, "rt", "0.4.0"),
			resolved: pkgtest.NewPackage(t, pkginfo.KindSystem, "rt", "0.5.0", pkgtest.WithSupports(linux)),
			want:     " system:rt@0.4.0 -> system:rt@0.5.0 (linux)",
		},
		{
			name:     "same matrix",
			old:      installedLocal(t, pkginfo.KindSystem, "rt", "0.4.0", pkgtest.WithSupports(linuxX64)),
			resolved: pkgtest.NewPackage(t, pkginfo.KindSystem, "rt", "0.5.0", pkgtest.WithSupports(linuxX64)),
			want:     " system:rt@0.4.0 -> system:rt@0.5.0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			out := &output.Buffer{}
			if !CompareSolverResultsWithInstalled([]*pkginfo.PackageInfo{tt.resolved}, []*pkginfo.PackageInfo{tt.old}, out) {
				t.Fatal("CompareSolverResultsWithInstalled() = false, want true")
			}
			lines := out.Lines()
			if len(lines) != 2 || lines[1] != tt.want {
				t.Errorf("lines = %q, want second line %q", lines, tt.want)
			}
		})
	}
}

func TestCompareSolverResultsWithInstalled_Untracked(t *testing.T) {
	t.Parallel()

	installed := []*pkginfo.PackageInfo{
		installedLocal(t, pkginfo.KindExtension, "zeta", "0.1.0"),
		installedLocal(t, pkginfo.KindExtension, "alpha", "1.0.0"),
		installedLocal(t, pkginfo.KindSystem, "rt", "0.4.0"),
	}
	results := []*pkginfo.PackageInfo{installed[2]}

	out := &output.Buffer{}
	if CompareSolverResultsWithInstalled(results, installed, out) {
		t.Error("CompareSolverResultsWithInstalled() = true, want false for untracked packages only")
	}

	want := []string{
		"💡  The following local packages do not appear in the dependency tree:",
		" extension:alpha@1.0.0",
		" extension:zeta@0.1.0",
	}
	if diff := cmp.Diff(want, out.Lines()); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestCompareSolverResultsWithInstalled_SameBuildIsNotAConflict(t *testing.T) {
	t.Parallel()

	installed := installedLocal(t, pkginfo.KindExtension, "foo", "1.0.0")
	resolved := pkgtest.NewPackage(t, pkginfo.KindExtension, "foo", "1.0.0")

	out := &output.Buffer{}
	if CompareSolverResultsWithInstalled([]*pkginfo.PackageInfo{resolved}, []*pkginfo.PackageInfo{installed}, out) {
		t.Error("CompareSolverResultsWithInstalled() = true, want false")
	}
	if lines := out.Lines(); len(lines) != 0 {
		t.Errorf("unexpected output %v", lines)
	}
}

func TestFindToBeReplacedLocalPackages_ContentChanged(t *testing.T) {
	t.Parallel()

	installed := installedLocal(t, pkginfo.KindExtension, "foo", "1.0.0")
	resolved := pkgtest.NewPackage(t, pkginfo.KindExtension, "foo", "1.0.0",
		pkgtest.WithRegistryDependency(pkginfo.KindSystem, "rt", "^0.4.0"))

	pairs := FindToBeReplacedLocalPackages([]*pkginfo.PackageInfo{resolved}, []*pkginfo.PackageInfo{installed})
	if len(pairs) != 1 {
		t.Errorf("FindToBeReplacedLocalPackages() = %d pairs, want 1 for a same-version package with different content", len(pairs))
	}
	if untracked := FindUntrackedLocalPackages([]*pkginfo.PackageInfo{resolved}, []*pkginfo.PackageInfo{installed}); len(untracked) != 0 {
		t.Errorf("FindUntrackedLocalPackages() = %v, want none", untracked)
	}
}
