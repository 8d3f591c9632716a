// SPDX-License-Identifier: MPL-2.0

package pkginfo

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// ComputeHash fingerprints the parts of a manifest that determine what gets
// installed: identity, version, support matrix and declared dependencies.
// Formatting and unrelated keys do not affect the result.
func ComputeHash(m *Manifest) string {
	d := xxhash.New()
	write := func(s string) {
		_, _ = d.WriteString(s)
		_, _ = d.WriteString("\x00")
	}

	write(string(m.Kind))
	write(m.Name)
	write(m.Version)
	write(m.Supports.String())
	for _, dep := range m.Dependencies {
		write(dep.String())
	}

	return fmt.Sprintf("%016x", d.Sum64())
}
