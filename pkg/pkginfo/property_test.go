// SPDX-License-Identifier: MPL-2.0

package pkginfo

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeProperty(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, PropertyFileName), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestCheckPropertyDocument(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		content  string
		wantErr  bool
		contains string
	}{
		{
			name:    "valid graphs",
			content: `{"runtime": {"log_level": 2, "predefined_graphs": [{"name": "default", "auto_start": true, "nodes": [{"type": "extension", "name": "a", "addon": "echo"}]}]}}`,
		},
		{
			name:    "unrelated keys",
			content: `{"greeting": "hi"}`,
		},
		{
			name:     "log level out of range",
			content:  `{"runtime": {"log_level": 9}}`,
			wantErr:  true,
			contains: "log_level",
		},
		{
			name:     "node without addon",
			content:  `{"runtime": {"predefined_graphs": [{"name": "g", "nodes": [{"type": "extension", "name": "a"}]}]}}`,
			wantErr:  true,
			contains: "addon",
		},
		{
			name:     "duplicate graph",
			content:  `{"runtime": {"predefined_graphs": [{"name": "g"}, {"name": "g"}]}}`,
			wantErr:  true,
			contains: "duplicate graph name",
		},
		{
			name:     "duplicate node",
			content:  `{"runtime": {"predefined_graphs": [{"name": "g", "nodes": [{"type": "extension", "name": "a", "addon": "x"}, {"type": "extension", "name": "a", "addon": "y"}]}]}}`,
			wantErr:  true,
			contains: "duplicate node",
		},
		{
			name:    "not json",
			content: `{"runtime": `,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := writeProperty(t, tt.content)
			err := CheckPropertyDocument(dir)
			if (err != nil) != tt.wantErr {
				t.Fatalf("CheckPropertyDocument() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil {
				return
			}
			if !errors.Is(err, ErrInvalidProperty) {
				t.Errorf("error %v does not wrap ErrInvalidProperty", err)
			}
			var perr *PropertyError
			if !errors.As(err, &perr) || perr.Dir != dir {
				t.Errorf("error %v is not a *PropertyError for %s", err, dir)
			}
			if tt.contains != "" && !strings.Contains(err.Error(), tt.contains) {
				t.Errorf("error %q should contain %q", err.Error(), tt.contains)
			}
		})
	}
}

func TestCheckPropertyDocument_Missing(t *testing.T) {
	t.Parallel()

	if err := CheckPropertyDocument(t.TempDir()); err != nil {
		t.Errorf("CheckPropertyDocument() without property.json = %v, want nil", err)
	}
}
