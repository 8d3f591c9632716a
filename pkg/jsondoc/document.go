// SPDX-License-Identifier: MPL-2.0

// Package jsondoc implements an ordered JSON object whose values are kept as
// raw bytes, so that editing one key of a user-maintained file leaves every
// other key, its position and its formatting exactly as it was.
package jsondoc

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// indentUnit is the per-level indentation used by documents that were not
// parsed from existing text.
const indentUnit = "  "

var (
	// ErrNotObject is returned when the top-level JSON value is not an object.
	ErrNotObject = errors.New("document is not a JSON object")
	// ErrKeyNotFound is returned by Decode when the key is absent.
	ErrKeyNotFound = errors.New("key not found")
)

// Document is an ordered JSON object. The zero value is not usable; create
// documents with New or Parse.
//
// A parsed document remembers the text it came from. Until a key is changed
// Marshal returns that text unmodified; afterwards untouched keys keep their
// surrounding whitespace and new values follow the detected indent unit.
type Document struct {
	keys   []string
	values map[string]json.RawMessage

	// lead is the whitespace before each key; sep sits between key and value.
	lead map[string]string
	sep  map[string]string
	// tail precedes the closing brace and trailer follows it.
	tail    string
	trailer string
	// unit is the detected indentation; empty means a single-line object.
	unit string

	src   []byte
	dirty bool
}

// New returns an empty document.
func New() *Document {
	return &Document{
		values:  make(map[string]json.RawMessage),
		lead:    make(map[string]string),
		sep:     make(map[string]string),
		tail:    "\n",
		trailer: "\n",
		unit:    indentUnit,
		dirty:   true,
	}
}

// Parse reads a JSON object preserving key order, the raw bytes of each value
// and the whitespace between them. A duplicated key keeps its first position
// and its last value.
func Parse(data []byte) (*Document, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, ErrNotObject
	}

	doc := New()
	pos := int(dec.InputOffset())
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("failed to read key: %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v where a key was expected", keyTok)
		}
		keyEnd := int(dec.InputOffset())

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("failed to read value of %q: %w", key, err)
		}
		valueEnd := int(dec.InputOffset())

		if _, seen := doc.lead[key]; !seen {
			doc.lead[key] = leadingSpace(data[pos:keyEnd])
			doc.sep[key] = string(data[keyEnd : valueEnd-len(raw)])
		}
		doc.SetRaw(key, raw)
		pos = valueEnd
	}

	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("failed to read end of document: %w", err)
	}
	closeEnd := int(dec.InputOffset())
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after document")
	}

	doc.tail = string(data[pos : closeEnd-1])
	doc.trailer = string(data[closeEnd:])
	doc.unit = ""
	if len(doc.keys) > 0 {
		if lead := doc.lead[doc.keys[0]]; strings.Contains(lead, "\n") {
			doc.unit = lead[strings.LastIndex(lead, "\n")+1:]
		}
	} else if strings.Contains(doc.tail, "\n") {
		doc.unit = indentUnit
	}
	doc.src = bytes.Clone(data)
	doc.dirty = false

	return doc, nil
}

// leadingSpace returns the whitespace between the separating comma, if any,
// and the opening quote of the key that ends seg.
func leadingSpace(seg []byte) string {
	i := bytes.IndexByte(seg, '"')
	if i < 0 {
		return ""
	}
	seg = seg[:i]
	if c := bytes.LastIndexByte(seg, ','); c >= 0 {
		seg = seg[c+1:]
	}
	return string(seg)
}

// Keys returns the keys in document order.
func (d *Document) Keys() []string {
	out := make([]string, len(d.keys))
	copy(out, d.keys)
	return out
}

// Len returns the number of keys.
func (d *Document) Len() int { return len(d.keys) }

// Has reports whether key is present.
func (d *Document) Has(key string) bool {
	_, ok := d.values[key]
	return ok
}

// Raw returns the raw bytes stored for key.
func (d *Document) Raw(key string) (json.RawMessage, bool) {
	raw, ok := d.values[key]
	return raw, ok
}

// Decode unmarshals the value stored for key into v.
func (d *Document) Decode(key string, v any) error {
	raw, ok := d.values[key]
	if !ok {
		return fmt.Errorf("%q: %w", key, ErrKeyNotFound)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("failed to decode %q: %w", key, err)
	}
	return nil
}

// Set marshals v and stores it under key. An existing key keeps its position;
// a new key is appended.
func (d *Document) Set(key string, v any) error {
	raw, err := d.Encode(v, 1)
	if err != nil {
		return fmt.Errorf("failed to encode %q: %w", key, err)
	}
	d.SetRaw(key, raw)
	return nil
}

// SetRaw stores raw under key without re-encoding it. Storing the bytes the
// key already holds does not change the document.
func (d *Document) SetRaw(key string, raw json.RawMessage) {
	old, ok := d.values[key]
	if !ok {
		d.keys = append(d.keys, key)
	} else if bytes.Equal(old, raw) {
		return
	}
	d.values[key] = raw
	d.dirty = true
}

// Delete removes key and reports whether it was present.
func (d *Document) Delete(key string) bool {
	if _, ok := d.values[key]; !ok {
		return false
	}
	delete(d.values, key)
	delete(d.lead, key)
	delete(d.sep, key)
	for i, k := range d.keys {
		if k == key {
			d.keys = append(d.keys[:i], d.keys[i+1:]...)
			break
		}
	}
	d.dirty = true
	return true
}

// Changed reports whether the document differs from the text it was parsed from.
func (d *Document) Changed() bool { return d.dirty }

// IndentUnit returns the indentation of one nesting level, or "" when the
// document is laid out on a single line.
func (d *Document) IndentUnit() string { return d.unit }

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	c := New()
	for _, k := range d.keys {
		c.SetRaw(k, bytes.Clone(d.values[k]))
		if lead, ok := d.lead[k]; ok {
			c.lead[k] = lead
		}
		if sep, ok := d.sep[k]; ok {
			c.sep[k] = sep
		}
	}
	c.tail, c.trailer, c.unit = d.tail, d.trailer, d.unit
	c.src, c.dirty = bytes.Clone(d.src), d.dirty
	return c
}

// Marshal renders the document. An unchanged parsed document is returned as
// it was read. Otherwise values are written back byte-for-byte, each key keeps
// the whitespace it was read with, and new keys follow the document layout.
func (d *Document) Marshal() ([]byte, error) {
	if !d.dirty && d.src != nil {
		return bytes.Clone(d.src), nil
	}
	if len(d.keys) == 0 {
		return []byte("{}" + d.trailer), nil
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range d.keys {
		key, err := encodeString(k)
		if err != nil {
			return nil, err
		}
		buf.WriteString(d.leadFor(k))
		buf.Write(key)
		buf.WriteString(d.sepFor(k))
		buf.Write(d.values[k])
		if i < len(d.keys)-1 {
			buf.WriteByte(',')
		}
	}
	buf.WriteString(d.tail)
	buf.WriteByte('}')
	buf.WriteString(d.trailer)
	return buf.Bytes(), nil
}

func (d *Document) leadFor(key string) string {
	if lead, ok := d.lead[key]; ok {
		return lead
	}
	if d.unit != "" {
		return "\n" + d.unit
	}
	if len(d.keys) > 1 && d.keys[0] != key {
		// Single-line documents separate keys the way their second key was.
		if lead, ok := d.lead[d.keys[1]]; ok {
			return lead
		}
	}
	return ""
}

func (d *Document) sepFor(key string) string {
	if sep, ok := d.sep[key]; ok {
		return sep
	}
	for _, k := range d.keys {
		if sep, ok := d.sep[k]; ok {
			return sep
		}
	}
	return ": "
}

// Encode lays out v for a value nested depth levels deep in d.
func (d *Document) Encode(v any, depth int) (json.RawMessage, error) {
	return indentWith(v, depth, d.unit)
}

// JoinArray lays out items as an array value nested depth levels deep in d.
func (d *Document) JoinArray(items []json.RawMessage, depth int) json.RawMessage {
	return joinArrayWith(items, depth, d.unit)
}

// Indent encodes v as JSON laid out for a value nested depth levels deep,
// using two-space indentation. HTML characters are not escaped.
func Indent(v any, depth int) (json.RawMessage, error) {
	return indentWith(v, depth, indentUnit)
}

func indentWith(v any, depth int, unit string) (json.RawMessage, error) {
	var compact bytes.Buffer
	enc := json.NewEncoder(&compact)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	data := bytes.TrimRight(compact.Bytes(), "\n")
	if unit == "" {
		return data, nil
	}

	var out bytes.Buffer
	if err := json.Indent(&out, data, strings.Repeat(unit, depth), unit); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func encodeString(s string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
