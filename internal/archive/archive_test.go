// SPDX-License-Identifier: MPL-2.0

package archive

import (
	"archive/zip"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestPackAndExtract(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	mustWrite(t, filepath.Join(src, "manifest.json"), `{"type": "extension", "name": "foo", "version": "1.0.0"}`)
	mustWrite(t, filepath.Join(src, "bin", "run.sh"), "#!/bin/sh\n")

	zipPath := filepath.Join(t.TempDir(), "foo.zip")
	if err := Pack(src, zipPath); err != nil {
		t.Fatalf("Pack() error = %v", err)
	}

	dest := filepath.Join(t.TempDir(), "app_packages", "extension", "foo")
	paths, err := Zip{}.Extract(zipPath, dest)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	slices.Sort(paths)
	if diff := cmp.Diff([]string{"bin", "bin/run.sh", "manifest.json"}, paths); diff != "" {
		t.Errorf("Extract() paths mismatch (-want +got):\n%s", diff)
	}

	data, err := os.ReadFile(filepath.Join(dest, "bin", "run.sh"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "#!/bin/sh\n" {
		t.Errorf("extracted content = %q", data)
	}
}

func TestExtract_RejectsEscapes(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"../evil.txt", "/abs.txt", "a/../../evil.txt"} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			zipPath := filepath.Join(t.TempDir(), "bad.zip")
			f, err := os.Create(zipPath)
			if err != nil {
				t.Fatal(err)
			}
			zw := zip.NewWriter(f)
			w, err := zw.Create(name)
			if err != nil {
				t.Fatal(err)
			}
			if _, err := w.Write([]byte("x")); err != nil {
				t.Fatal(err)
			}
			if err := zw.Close(); err != nil {
				t.Fatal(err)
			}
			if err := f.Close(); err != nil {
				t.Fatal(err)
			}

			dest := filepath.Join(t.TempDir(), "dest")
			_, err = Extract(zipPath, dest)
			if !errors.Is(err, ErrUnsafePath) {
				t.Fatalf("Extract() error = %v, want ErrUnsafePath", err)
			}
			if _, statErr := os.Stat(dest); !os.IsNotExist(statErr) {
				t.Errorf("destination created despite rejected archive")
			}
		})
	}
}

func TestExtract_NotAZip(t *testing.T) {
	t.Parallel()

	p := filepath.Join(t.TempDir(), "x.zip")
	mustWrite(t, p, "not a zip")
	if _, err := Extract(p, t.TempDir()); err == nil {
		t.Error("Extract() error = nil, want an error")
	}
}

func mustWrite(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
