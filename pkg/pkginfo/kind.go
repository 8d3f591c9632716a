// SPDX-License-Identifier: MPL-2.0

package pkginfo

import (
	"errors"
	"fmt"
)

const (
	// KindApp is a runnable application; the root of a workspace.
	KindApp Kind = "app"
	// KindExtension is a unit of behavior loaded by an app.
	KindExtension Kind = "extension"
	// KindProtocol implements a transport between apps.
	KindProtocol Kind = "protocol"
	// KindAddonLoader loads extensions written in a foreign runtime.
	KindAddonLoader Kind = "addon_loader"
	// KindSystem is a shared runtime library.
	KindSystem Kind = "system"
)

// ErrInvalidKind is the sentinel wrapped by InvalidKindError.
var ErrInvalidKind = errors.New("invalid package kind")

type (
	// Kind is the package type half of an Identity.
	Kind string

	// InvalidKindError is returned when a Kind is not one of the known kinds.
	InvalidKindError struct {
		Value Kind
	}
)

// Kinds returns every known kind in install-directory order.
func Kinds() []Kind {
	return []Kind{KindApp, KindExtension, KindProtocol, KindAddonLoader, KindSystem}
}

// ParseKind converts s to a Kind, rejecting unknown values.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if err := k.Validate(); err != nil {
		return "", err
	}
	return k, nil
}

func (k Kind) String() string { return string(k) }

// Validate returns an *InvalidKindError for unknown kinds.
func (k Kind) Validate() error {
	switch k {
	case KindApp, KindExtension, KindProtocol, KindAddonLoader, KindSystem:
		return nil
	default:
		return &InvalidKindError{Value: k}
	}
}

func (e *InvalidKindError) Error() string {
	return fmt.Sprintf("invalid package kind %q (valid: app, extension, protocol, addon_loader, system)", e.Value)
}

// Unwrap returns ErrInvalidKind for errors.Is() compatibility.
func (e *InvalidKindError) Unwrap() error { return ErrInvalidKind }
