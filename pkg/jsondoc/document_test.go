// SPDX-License-Identifier: MPL-2.0

package jsondoc

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const sampleManifest = `{
  "type": "app",
  "name": "demo",
  "version": "0.1.0",
  "dependencies": [
    {
      "type": "extension",
      "name": "a",
      "version": "^1.0.0"
    },
    {
      "path": "../b"
    }
  ],
  "scripts": {
    "start": "./bin/start <fast>"
  }
}
`

func TestParse_RoundTripIsByteIdentical(t *testing.T) {
	t.Parallel()

	doc, err := Parse([]byte(sampleManifest))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	out, err := doc.Marshal()
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if diff := cmp.Diff(sampleManifest, string(out)); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_KeepsKeyOrder(t *testing.T) {
	t.Parallel()

	doc, err := Parse([]byte(sampleManifest))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	want := []string{"type", "name", "version", "dependencies", "scripts"}
	if diff := cmp.Diff(want, doc.Keys()); diff != "" {
		t.Errorf("Keys() mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_Rejects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
	}{
		{name: "array", input: `[1, 2]`},
		{name: "trailing data", input: `{"a": 1} {"b": 2}`},
		{name: "truncated", input: `{"a": `},
		{name: "empty", input: ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := Parse([]byte(tt.input)); err == nil {
				t.Errorf("Parse(%q) expected error", tt.input)
			}
		})
	}
}

func TestDocument_SetKeepsPosition(t *testing.T) {
	t.Parallel()

	doc, err := Parse([]byte(sampleManifest))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if err := doc.Set("version", "0.2.0"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := doc.Set("description", "added"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	want := []string{"type", "name", "version", "dependencies", "scripts", "description"}
	if diff := cmp.Diff(want, doc.Keys()); diff != "" {
		t.Errorf("Keys() mismatch (-want +got):\n%s", diff)
	}

	var version string
	if err := doc.Decode("version", &version); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if version != "0.2.0" {
		t.Errorf("version = %q, want %q", version, "0.2.0")
	}
}

func TestDocument_Delete(t *testing.T) {
	t.Parallel()

	doc, err := Parse([]byte(`{"a": 1, "b": 2, "c": 3}`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if !doc.Delete("b") {
		t.Error("Delete(b) = false, want true")
	}
	if doc.Delete("missing") {
		t.Error("Delete(missing) = true, want false")
	}
	if diff := cmp.Diff([]string{"a", "c"}, doc.Keys()); diff != "" {
		t.Errorf("Keys() mismatch (-want +got):\n%s", diff)
	}

	var v int
	if err := doc.Decode("b", &v); !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("Decode(b) error = %v, want ErrKeyNotFound", err)
	}
}

func TestDocument_CloneIsIndependent(t *testing.T) {
	t.Parallel()

	doc, err := Parse([]byte(`{"a": 1}`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	c := doc.Clone()
	if err := c.Set("a", 2); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	raw, _ := doc.Raw("a")
	if string(raw) != "1" {
		t.Errorf("original value = %s, want 1", raw)
	}
}

func TestMarshal_EmptyDocument(t *testing.T) {
	t.Parallel()

	out, err := New().Marshal()
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(out) != "{}\n" {
		t.Errorf("Marshal() = %q, want %q", out, "{}\n")
	}
}

func TestSplitJoinArray_PreservesElements(t *testing.T) {
	t.Parallel()

	doc, err := Parse([]byte(sampleManifest))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	raw, _ := doc.Raw("dependencies")

	items, err := SplitArray(raw)
	if err != nil {
		t.Fatalf("SplitArray() error = %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("SplitArray() returned %d items, want 2", len(items))
	}

	if diff := cmp.Diff(string(raw), string(JoinArray(items, 1))); diff != "" {
		t.Errorf("JoinArray() mismatch (-want +got):\n%s", diff)
	}
}

func TestJoinArray_AppendedElementMatchesLayout(t *testing.T) {
	t.Parallel()

	item, err := Indent(map[string]string{"path": "../c"}, 2)
	if err != nil {
		t.Fatalf("Indent() error = %v", err)
	}

	got := string(JoinArray([]json.RawMessage{item}, 1))
	want := "[\n    {\n      \"path\": \"../c\"\n    }\n  ]"
	if got != want {
		t.Errorf("JoinArray() = %q, want %q", got, want)
	}
}

func TestJoinArray_Empty(t *testing.T) {
	t.Parallel()

	if got := string(JoinArray(nil, 1)); got != "[]" {
		t.Errorf("JoinArray(nil) = %q, want %q", got, "[]")
	}
}

func TestSplitArray_RejectsObject(t *testing.T) {
	t.Parallel()

	if _, err := SplitArray(json.RawMessage(`{"a": 1}`)); !errors.Is(err, ErrNotArray) {
		t.Errorf("SplitArray() error = %v, want ErrNotArray", err)
	}
}

func TestMarshal_KeepsLayout(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		edit  func(*Document) error
		want  string
	}{
		{
			name:  "compact untouched",
			input: `{"a":1,"b":[1,2]}`,
			edit:  func(*Document) error { return nil },
			want:  `{"a":1,"b":[1,2]}`,
		},
		{
			name:  "compact set and append",
			input: `{"a": 1, "b": [1,2]}`,
			edit: func(d *Document) error {
				if err := d.Set("a", map[string]int{"x": 2}); err != nil {
					return err
				}
				return d.Set("c", []int{3})
			},
			want: `{"a": {"x":2}, "b": [1,2], "c": [3]}`,
		},
		{
			name: "four spaces set and append",
			input: `{
    "a": 1,
    "b": {"keep": "as is"}
}
`,
			edit: func(d *Document) error {
				if err := d.Set("a", 2); err != nil {
					return err
				}
				return d.Set("c", map[string]int{"x": 1})
			},
			want: `{
    "a": 2,
    "b": {"keep": "as is"},
    "c": {
        "x": 1
    }
}
`,
		},
		{
			name:  "delete",
			input: "{\n\t\"a\": 1,\n\t\"b\": 2\n}",
			edit: func(d *Document) error {
				d.Delete("b")
				return nil
			},
			want: "{\n\t\"a\": 1\n}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			doc, err := Parse([]byte(tt.input))
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if err := tt.edit(doc); err != nil {
				t.Fatalf("edit error = %v", err)
			}

			out, err := doc.Marshal()
			if err != nil {
				t.Fatalf("Marshal() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, string(out)); diff != "" {
				t.Errorf("Marshal() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParse_DetectsIndentUnit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  string
	}{
		{input: `{"a": 1}`, want: ""},
		{input: "{\n  \"a\": 1\n}", want: "  "},
		{input: "{\n    \"a\": 1\n}", want: "    "},
		{input: "{\n\t\"a\": 1\n}", want: "\t"},
	}

	for _, tt := range tests {
		doc, err := Parse([]byte(tt.input))
		if err != nil {
			t.Fatalf("Parse(%q) error = %v", tt.input, err)
		}
		if got := doc.IndentUnit(); got != tt.want {
			t.Errorf("Parse(%q).IndentUnit() = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestDocument_Changed(t *testing.T) {
	t.Parallel()

	doc, err := Parse([]byte(`{"a": 1}`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if doc.Changed() {
		t.Error("parsed document reports a change")
	}

	doc.SetRaw("a", json.RawMessage("1"))
	if doc.Changed() {
		t.Error("storing the same bytes reported a change")
	}
	if doc.Clone().Changed() {
		t.Error("clone of an unchanged document reports a change")
	}

	doc.SetRaw("a", json.RawMessage("2"))
	if !doc.Changed() {
		t.Error("storing new bytes did not report a change")
	}
	if !New().Changed() {
		t.Error("new document reports no change")
	}
}

func TestJoinArray_FollowsDocumentLayout(t *testing.T) {
	t.Parallel()

	items := []json.RawMessage{json.RawMessage(`1`), json.RawMessage(`2`)}

	compact, err := Parse([]byte(`{"a":[]}`))
	if err != nil {
		t.Fatal(err)
	}
	if got := string(compact.JoinArray(items, 1)); got != "[1,2]" {
		t.Errorf("compact JoinArray() = %q, want %q", got, "[1,2]")
	}

	wide, err := Parse([]byte("{\n    \"a\": []\n}"))
	if err != nil {
		t.Fatal(err)
	}
	want := "[\n        1,\n        2\n    ]"
	if got := string(wide.JoinArray(items, 1)); got != want {
		t.Errorf("four-space JoinArray() = %q, want %q", got, want)
	}
}
