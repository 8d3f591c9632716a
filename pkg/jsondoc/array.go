// SPDX-License-Identifier: MPL-2.0

package jsondoc

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrNotArray is returned by SplitArray when the value is not a JSON array.
var ErrNotArray = errors.New("value is not a JSON array")

// SplitArray returns the raw bytes of each element of a JSON array.
func SplitArray(raw json.RawMessage) ([]json.RawMessage, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to read array: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '[' {
		return nil, ErrNotArray
	}

	var items []json.RawMessage
	for dec.More() {
		var item json.RawMessage
		if err := dec.Decode(&item); err != nil {
			return nil, fmt.Errorf("failed to read array element %d: %w", len(items), err)
		}
		items = append(items, item)
	}

	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("failed to read end of array: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after array")
	}
	return items, nil
}

// JoinArray lays out items as a JSON array value nested depth levels deep,
// using two-space indentation. Each element is written verbatim on its own line.
func JoinArray(items []json.RawMessage, depth int) json.RawMessage {
	return joinArrayWith(items, depth, indentUnit)
}

func joinArrayWith(items []json.RawMessage, depth int, unit string) json.RawMessage {
	if len(items) == 0 {
		return json.RawMessage("[]")
	}
	if unit == "" {
		parts := make([][]byte, len(items))
		for i, item := range items {
			parts[i] = item
		}
		return append(append([]byte{'['}, bytes.Join(parts, []byte{','})...), ']')
	}

	itemIndent := strings.Repeat(unit, depth+1)

	var buf bytes.Buffer
	buf.WriteString("[\n")
	for i, item := range items {
		buf.WriteString(itemIndent)
		buf.Write(item)
		if i < len(items)-1 {
			buf.WriteByte(',')
		}
		buf.WriteByte('\n')
	}
	buf.WriteString(strings.Repeat(unit, depth))
	buf.WriteByte(']')
	return buf.Bytes()
}
