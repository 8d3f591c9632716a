// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"path/filepath"
	"testing"
)

func TestSnapshot(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	MustWriteFile(t, filepath.Join(dir, "a", "b.txt"), "hello")

	before := Snapshot(t, dir)
	for _, want := range []string{".", "a", "a/b.txt"} {
		if _, ok := before[want]; !ok {
			t.Errorf("Snapshot() missing %q", want)
		}
	}
	if got := before["a/b.txt"].Size; got != 5 {
		t.Errorf("Snapshot()[a/b.txt].Size = %d, want 5", got)
	}

	MustWriteFile(t, filepath.Join(dir, "c.txt"), "")
	after := Snapshot(t, dir)
	if len(after) != len(before)+1 {
		t.Errorf("len(Snapshot()) = %d after adding a file, want %d", len(after), len(before)+1)
	}
}

func TestMustReadFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "f.txt")
	MustWriteFile(t, path, "content")
	if got := MustReadFile(t, path); got != "content" {
		t.Errorf("MustReadFile() = %q, want %q", got, "content")
	}
}
