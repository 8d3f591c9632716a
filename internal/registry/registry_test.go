// SPDX-License-Identifier: MPL-2.0

package registry

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/appkg/appkg/pkg/pkginfo"
)

const sampleIndex = `
[[package]]
type = "extension"
name = "foo"
version = "1.0.0"
file = "extension/foo/1.0.0.zip"

[[package.dependencies]]
type = "system"
name = "rt"
version = "^0.4.0"

[[package]]
type = "system"
name = "rt"
version = "0.4.0"
file = "https://cdn.example.com/rt-0.4.0.zip"

[[package.supports]]
os = "linux"
arch = "x64"
`

func TestParseIndex(t *testing.T) {
	t.Parallel()

	idx, err := ParseIndex([]byte(sampleIndex))
	if err != nil {
		t.Fatalf("ParseIndex() error = %v", err)
	}

	pkgs, err := idx.PackageInfos(func(file string) string { return "base/" + file })
	if err != nil {
		t.Fatalf("PackageInfos() error = %v", err)
	}

	var got []string
	for _, p := range pkgs {
		got = append(got, p.Variant().String()+" "+p.URL)
	}
	want := []string{
		"extension:foo@1.0.0 base/extension/foo/1.0.0.zip",
		"system:rt@0.4.0 (linux, x64) base/https://cdn.example.com/rt-0.4.0.zip",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("PackageInfos() mismatch (-want +got):\n%s", diff)
	}

	deps := pkgs[0].Manifest.Dependencies
	if len(deps) != 1 || deps[0].String() != "system:rt@^0.4.0" {
		t.Errorf("dependencies = %v", deps)
	}
	if pkgs[0].CompatibleScore != pkginfo.NoCompatibleScore {
		t.Errorf("CompatibleScore = %d, want unscored", pkgs[0].CompatibleScore)
	}
}

func TestParseIndex_Invalid(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"bad kind":     "[[package]]\ntype = \"plugin\"\nname = \"a\"\nversion = \"1.0.0\"\nfile = \"a.zip\"\n",
		"missing file": "[[package]]\ntype = \"app\"\nname = \"a\"\nversion = \"1.0.0\"\n",
		"bad support":  "[[package]]\ntype = \"app\"\nname = \"a\"\nversion = \"1.0.0\"\nfile = \"a.zip\"\n[[package.supports]]\nos = \"beos\"\n",
		"not toml":     "[[package",
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			if _, err := ParseIndex([]byte(data)); err == nil {
				t.Error("ParseIndex() error = nil, want an error")
			}
		})
	}
}

func TestLocal_PublishFetch(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	reg := NewLocal(t.TempDir(), nil)

	archivePath := filepath.Join(t.TempDir(), "foo.zip")
	if err := os.WriteFile(archivePath, []byte("zip-bytes"), 0o644); err != nil {
		t.Fatal(err)
	}

	m, err := pkginfo.NewManifest(pkginfo.Identity{Kind: pkginfo.KindExtension, Name: "foo"}, "1.0.0",
		pkginfo.Supports{{OS: pkginfo.OSLinux, Arch: pkginfo.ArchX64}}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := reg.Publish(m, archivePath); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	// Publishing the same variant again replaces the entry.
	if err := reg.Publish(m, archivePath); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	pkgs, err := reg.Packages(ctx)
	if err != nil {
		t.Fatalf("Packages() error = %v", err)
	}
	if len(pkgs) != 1 {
		t.Fatalf("Packages() = %d entries, want 1", len(pkgs))
	}
	want := filepath.Join(reg.Dir(), "extension", "foo", "1.0.0", "linux-x64.zip")
	if pkgs[0].URL != want {
		t.Errorf("URL = %q, want %q", pkgs[0].URL, want)
	}

	var buf bytes.Buffer
	if err := reg.Fetch(ctx, m.Identity, "1.0.0", pkgs[0].URL, &buf); err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if buf.String() != "zip-bytes" {
		t.Errorf("Fetch() wrote %q", buf.String())
	}

	buf.Reset()
	if err := reg.Fetch(ctx, m.Identity, "1.0.0", "", &buf); err != nil {
		t.Fatalf("Fetch() by lookup error = %v", err)
	}

	err = reg.Fetch(ctx, m.Identity, "9.9.9", "", &buf)
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Fetch() unknown version error = %v, want os.ErrNotExist", err)
	}
}

func TestLocal_PublishRejectsLocalDependencies(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	reg := NewLocal(dir, nil)
	archivePath := filepath.Join(t.TempDir(), "foo.zip")
	if err := os.WriteFile(archivePath, []byte("zip-bytes"), 0o644); err != nil {
		t.Fatal(err)
	}

	m, err := pkginfo.NewManifest(pkginfo.Identity{Kind: pkginfo.KindExtension, Name: "foo"}, "1.0.0", nil,
		[]pkginfo.Dependency{
			pkginfo.NewRegistryDependency(pkginfo.Identity{Kind: pkginfo.KindSystem, Name: "rt"}, "^0.4.0"),
			pkginfo.NewLocalDependency("../bar", t.TempDir()),
		})
	if err != nil {
		t.Fatal(err)
	}

	err = reg.Publish(m, archivePath)
	if !errors.Is(err, ErrLocalDependency) {
		t.Fatalf("Publish() error = %v, want ErrLocalDependency", err)
	}
	if !strings.Contains(err.Error(), "../bar") {
		t.Errorf("Publish() error = %q, want it to name ../bar", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("rejected Publish() wrote %d entries into the registry", len(entries))
	}
}

func TestLocal_EmptyRegistry(t *testing.T) {
	t.Parallel()

	pkgs, err := NewLocal(t.TempDir(), nil).Packages(context.Background())
	if err != nil || len(pkgs) != 0 {
		t.Errorf("Packages() = %v, %v; want empty, nil", pkgs, err)
	}
}

func TestHTTP(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, IndexFileName), []byte(sampleIndex), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(dir, "extension", "foo"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "extension", "foo", "1.0.0.zip"), []byte("remote"), 0o644); err != nil {
		t.Fatal(err)
	}

	srv := httptest.NewServer(http.FileServer(http.Dir(dir)))
	t.Cleanup(srv.Close)

	reg, err := Open(srv.URL+"/", nil)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	pkgs, err := reg.Packages(ctx)
	if err != nil {
		t.Fatalf("Packages() error = %v", err)
	}
	if got, want := pkgs[0].URL, srv.URL+"/extension/foo/1.0.0.zip"; got != want {
		t.Errorf("URL = %q, want %q", got, want)
	}
	if got := pkgs[1].URL; !strings.HasPrefix(got, "https://cdn.example.com/") {
		t.Errorf("absolute URL rewritten to %q", got)
	}

	var buf bytes.Buffer
	id := pkginfo.Identity{Kind: pkginfo.KindExtension, Name: "foo"}
	if err := reg.Fetch(ctx, id, "1.0.0", "", &buf); err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if buf.String() != "remote" {
		t.Errorf("Fetch() wrote %q", buf.String())
	}

	if err := reg.Fetch(ctx, id, "2.0.0", "", &buf); err == nil {
		t.Error("Fetch() of a missing archive succeeded")
	}
}

func TestOpen(t *testing.T) {
	t.Parallel()

	if _, err := Open("", nil); !errors.Is(err, ErrNoRegistry) {
		t.Errorf("Open(\"\") error = %v, want ErrNoRegistry", err)
	}
	r, err := Open("/srv/registry", nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := r.(*Local); !ok {
		t.Errorf("Open(dir) = %T, want *Local", r)
	}
}
