// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	cueerrors "cuelang.org/go/cue/errors"
)

type (
	// Issue is one schema violation, located by a JSON path such as
	// "dependencies[1].version".
	Issue struct {
		Path    string
		Message string
	}

	// ValidationError collects the schema violations found in one document.
	ValidationError struct {
		FilePath string
		Issues   []Issue
	}
)

// Error renders a single issue inline and several issues one per line.
func (e *ValidationError) Error() string {
	if len(e.Issues) == 1 {
		return e.FilePath + ": " + e.Issues[0].String()
	}

	lines := make([]string, len(e.Issues))
	for i, is := range e.Issues {
		lines[i] = is.String()
	}
	return fmt.Sprintf("%s: validation failed:\n  %s", e.FilePath, strings.Join(lines, "\n  "))
}

func (i Issue) String() string {
	if i.Path == "" {
		return i.Message
	}
	return i.Path + ": " + i.Message
}

// FormatError converts a CUE error into a *ValidationError. Errors that did
// not come from CUE are wrapped with the file path.
func FormatError(err error, filePath string) error {
	if err == nil {
		return nil
	}

	var cueErr cueerrors.Error
	if !errors.As(err, &cueErr) {
		return fmt.Errorf("%s: %w", filePath, err)
	}
	cueErrs := cueerrors.Errors(err)

	verr := &ValidationError{FilePath: filePath}
	for _, ce := range cueErrs {
		path := jsonPath(cueerrors.Path(ce))
		msg := ce.Error()
		if path != "" {
			if rest, ok := strings.CutPrefix(msg, path); ok {
				msg = strings.TrimSpace(strings.TrimPrefix(rest, ":"))
			}
		}
		verr.Issues = append(verr.Issues, Issue{Path: path, Message: msg})
	}
	return verr
}

// jsonPath turns CUE's selector list into JSON-path notation, rendering
// numeric selectors as indices.
func jsonPath(selectors []string) string {
	var b strings.Builder
	for i, sel := range selectors {
		if _, err := strconv.Atoi(sel); err == nil && i > 0 {
			b.WriteString("[" + sel + "]")
			continue
		}
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(sel)
	}
	return b.String()
}

// CheckFileSize rejects documents larger than maxSize bytes.
func CheckFileSize(data []byte, maxSize int64, filename string) error {
	if int64(len(data)) > maxSize {
		return fmt.Errorf("%s: file size %d bytes exceeds maximum %d bytes", filename, len(data), maxSize)
	}
	return nil
}
