// SPDX-License-Identifier: MPL-2.0

package pkginfo

type (
	// Identity names a dependency slot. It is the one key used to match
	// manifest declarations, resolved packages and installed packages
	// against each other.
	Identity struct {
		Kind Kind
		Name string
	}

	// Variant is one concrete build of an Identity. Supports holds the
	// canonical rendering of the support matrix so that Variant stays
	// comparable and usable as a map key.
	Variant struct {
		Identity
		Version  string
		Supports string
	}
)

// String renders the identity as "kind:name".
func (id Identity) String() string {
	return string(id.Kind) + ":" + id.Name
}

// String renders the variant as "kind:name@version", followed by the
// support matrix in parentheses when one is declared.
func (v Variant) String() string {
	s := v.Identity.String() + "@" + v.Version
	if v.Supports != "" {
		s += " (" + v.Supports + ")"
	}
	return s
}
