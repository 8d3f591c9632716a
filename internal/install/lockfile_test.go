// SPDX-License-Identifier: MPL-2.0

package install

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/appkg/appkg/internal/output"
	"github.com/appkg/appkg/internal/testutil"
	"github.com/appkg/appkg/internal/testutil/pkgtest"
	"github.com/appkg/appkg/pkg/lockfile"
	"github.com/appkg/appkg/pkg/pkginfo"
)

func TestWritePkgsIntoLockfile(t *testing.T) {
	t.Parallel()

	appDir := t.TempDir()
	lockPath := filepath.Join(appDir, lockfile.FileName)
	pkgs := []*pkginfo.PackageInfo{
		pkgtest.NewPackage(t, pkginfo.KindExtension, "foo", "1.0.0"),
		pkgtest.NewPackage(t, pkginfo.KindSystem, "rt", "0.4.0", pkgtest.WithSupports(pkginfo.Support{OS: pkginfo.OSLinux})),
	}

	// First install: no lock yet.
	out := &output.Buffer{}
	changed, err := WritePkgsIntoLockfile(pkgs, appDir, out)
	if err != nil {
		t.Fatalf("WritePkgsIntoLockfile() error = %v", err)
	}
	if !changed {
		t.Error("first WritePkgsIntoLockfile() changed = false, want true")
	}
	if diff := cmp.Diff([]string{"🔒  Creating manifest-lock.json..."}, out.Lines()); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
	first := testutil.MustReadFile(t, lockPath)

	// Same set again: nothing changes.
	out = &output.Buffer{}
	changed, err = WritePkgsIntoLockfile(pkgs, appDir, out)
	if err != nil {
		t.Fatalf("WritePkgsIntoLockfile() error = %v", err)
	}
	if changed {
		t.Error("second WritePkgsIntoLockfile() changed = true, want false")
	}
	if lines := out.Lines(); len(lines) != 0 {
		t.Errorf("second run printed %v", lines)
	}
	if got := testutil.MustReadFile(t, lockPath); got != first {
		t.Errorf("lock file rewritten:\n%s\nwant:\n%s", got, first)
	}

	// Upgrade foo: the change is reported.
	upgraded := []*pkginfo.PackageInfo{
		pkgtest.NewPackage(t, pkginfo.KindExtension, "foo", "1.1.0"),
		pkgs[1],
	}
	out = &output.Buffer{}
	changed, err = WritePkgsIntoLockfile(upgraded, appDir, out)
	if err != nil {
		t.Fatalf("WritePkgsIntoLockfile() error = %v", err)
	}
	if !changed {
		t.Error("WritePkgsIntoLockfile() after upgrade changed = false, want true")
	}
	want := []string{
		"🔒  Breaking manifest-lock.json...",
		" ~ extension:foo@1.0.0 -> 1.1.0",
	}
	if diff := cmp.Diff(want, out.Lines()); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestWritePkgsIntoLockfile_ReplacesCorruptLock(t *testing.T) {
	t.Parallel()

	appDir := t.TempDir()
	testutil.MustWriteFile(t, filepath.Join(appDir, lockfile.FileName), "{not json")

	out := &output.Buffer{}
	pkgs := []*pkginfo.PackageInfo{pkgtest.NewPackage(t, pkginfo.KindExtension, "foo", "1.0.0")}
	changed, err := WritePkgsIntoLockfile(pkgs, appDir, out)
	if err != nil {
		t.Fatalf("WritePkgsIntoLockfile() error = %v", err)
	}
	if !changed {
		t.Error("changed = false, want true")
	}
	lines := out.Lines()
	if len(lines) != 1 || !strings.HasPrefix(lines[0], "🔒  Replacing unreadable manifest-lock.json (") {
		t.Errorf("output = %q, want a single replacing line", lines)
	}

	lock, err := lockfile.ParseInFolder(appDir)
	if err != nil {
		t.Fatalf("ParseInFolder() error = %v", err)
	}
	if len(lock.Packages) != 1 || lock.Packages[0].Name != "foo" {
		t.Errorf("lock = %+v", lock)
	}
}
