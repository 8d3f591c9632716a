// SPDX-License-Identifier: MPL-2.0

package install

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/appkg/appkg/internal/testutil"
)

func TestInstalledPaths_SaveLoad(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	want := InstalledPaths{Paths: []string{"manifest.json", "lib/a.so", RootPath}}
	if err := SaveInstalledPaths(dir, want); err != nil {
		t.Fatalf("SaveInstalledPaths() error = %v", err)
	}

	got, err := LoadInstalledPaths(dir)
	if err != nil {
		t.Fatalf("LoadInstalledPaths() error = %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("LoadInstalledPaths() mismatch (-want +got):\n%s", diff)
	}
}

func TestUninstall_RemovesRecordedPaths(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "foo")
	testutil.MustWriteFile(t, filepath.Join(dir, "manifest.json"), "{}")
	testutil.MustWriteFile(t, filepath.Join(dir, "lib", "deep", "a.so"), "x")
	// lib and lib/deep have no entries of their own, as in archives
	// written without directory records.
	if err := SaveInstalledPaths(dir, InstalledPaths{Paths: []string{"manifest.json", "lib/deep/a.so", RootPath}}); err != nil {
		t.Fatal(err)
	}

	if err := Uninstall(dir); err != nil {
		t.Fatalf("Uninstall() error = %v", err)
	}
	if _, err := os.Lstat(dir); !os.IsNotExist(err) {
		t.Errorf("package directory still exists (err = %v)", err)
	}
}

func TestUninstall_KeepsUnownedFiles(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "foo")
	testutil.MustWriteFile(t, filepath.Join(dir, "manifest.json"), "{}")
	testutil.MustWriteFile(t, filepath.Join(dir, "user.log"), "keep me")
	if err := SaveInstalledPaths(dir, InstalledPaths{Paths: []string{"manifest.json", RootPath}}); err != nil {
		t.Fatal(err)
	}

	if err := Uninstall(dir); err == nil {
		t.Error("Uninstall() error = nil, want the non-empty root reported")
	}
	if got := testutil.MustReadFile(t, filepath.Join(dir, "user.log")); got != "keep me" {
		t.Errorf("user.log = %q, want it untouched", got)
	}
	if _, err := os.Stat(filepath.Join(dir, "manifest.json")); !os.IsNotExist(err) {
		t.Errorf("manifest.json still exists (err = %v)", err)
	}
}

func TestUninstall_WithoutRecord(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "foo")
	testutil.MustWriteFile(t, filepath.Join(dir, "a", "b.txt"), "copied")

	if err := Uninstall(dir); err != nil {
		t.Fatalf("Uninstall() error = %v", err)
	}
	if _, err := os.Lstat(dir); !os.IsNotExist(err) {
		t.Errorf("package directory still exists (err = %v)", err)
	}
}

func TestUninstall_Symlink(t *testing.T) {
	t.Parallel()
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need extra privileges on Windows")
	}

	ws := t.TempDir()
	src := filepath.Join(ws, "src")
	testutil.MustWriteFile(t, filepath.Join(src, "manifest.json"), "{}")
	link := filepath.Join(ws, "link")
	if err := os.Symlink(src, link); err != nil {
		t.Fatal(err)
	}

	if err := Uninstall(link); err != nil {
		t.Fatalf("Uninstall() error = %v", err)
	}
	if _, err := os.Lstat(link); !os.IsNotExist(err) {
		t.Errorf("link still exists (err = %v)", err)
	}
	if got := testutil.MustReadFile(t, filepath.Join(src, "manifest.json")); got != "{}" {
		t.Errorf("link target was modified: %q", got)
	}
}

func TestUninstall_RejectsEscapingPaths(t *testing.T) {
	t.Parallel()

	ws := t.TempDir()
	dir := filepath.Join(ws, "foo")
	outside := filepath.Join(ws, "outside.txt")
	testutil.MustWriteFile(t, outside, "precious")
	testutil.MustMkdirAll(t, dir)
	if err := SaveInstalledPaths(dir, InstalledPaths{Paths: []string{"../outside.txt", RootPath}}); err != nil {
		t.Fatal(err)
	}

	if err := Uninstall(dir); err == nil {
		t.Error("Uninstall() error = nil, want refusal")
	}
	if got := testutil.MustReadFile(t, outside); got != "precious" {
		t.Errorf("outside.txt = %q, want it untouched", got)
	}
}
