// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// LocalInstallCopy copies a local dependency's tree into the workspace.
	LocalInstallCopy LocalInstallMode = "copy"
	// LocalInstallLink links the workspace entry to the local directory.
	LocalInstallLink LocalInstallMode = "link"

	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"
)

var (
	// ErrInvalidLocalInstallMode is the sentinel wrapped by InvalidLocalInstallModeError.
	ErrInvalidLocalInstallMode = errors.New("invalid local install mode")
	// ErrInvalidColorScheme is the sentinel wrapped by InvalidColorSchemeError.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidConfig is the sentinel wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// LocalInstallMode selects how local dependencies are placed into the workspace.
	LocalInstallMode string

	// InvalidLocalInstallModeError is returned for a mode other than copy or link.
	InvalidLocalInstallModeError struct {
		Value LocalInstallMode
	}

	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// InvalidColorSchemeError is returned when a ColorScheme value is not recognized.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// InvalidConfigError collects every field-level problem of a Config.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration. It is immutable once
	// loaded; stages receive it by value.
	Config struct {
		// Verbose enables the detailed progress lines and debug logging.
		Verbose bool `json:"verbose" mapstructure:"verbose"`
		// Install configures how packages are materialized.
		Install InstallConfig `json:"install" mapstructure:"install"`
		// Registry locates published packages.
		Registry RegistryConfig `json:"registry" mapstructure:"registry"`
		// UI configures the user interface.
		UI UIConfig `json:"ui" mapstructure:"ui"`
	}

	// InstallConfig configures the installer.
	InstallConfig struct {
		// LocalMode is "copy" (default) or "link".
		LocalMode LocalInstallMode `json:"local_mode" mapstructure:"local_mode"`
		// Parallelism bounds how many packages install at once.
		Parallelism int `json:"parallelism" mapstructure:"parallelism"`
	}

	// RegistryConfig locates the package registry.
	RegistryConfig struct {
		// Index is a registry directory or an http(s) base URL.
		Index string `json:"index" mapstructure:"index"`
		// CacheDir holds downloaded archives. Empty uses the system temp dir.
		CacheDir string `json:"cache_dir" mapstructure:"cache_dir"`
	}

	// UIConfig configures the user interface.
	UIConfig struct {
		// ColorScheme sets the color scheme ("auto", "dark", "light").
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme"`
	}
)

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		Install: InstallConfig{
			LocalMode:   LocalInstallCopy,
			Parallelism: 4,
		},
		UI: UIConfig{
			ColorScheme: ColorSchemeAuto,
		},
	}
}

func (m LocalInstallMode) String() string { return string(m) }

// Validate returns nil for copy and link.
func (m LocalInstallMode) Validate() error {
	switch m {
	case LocalInstallCopy, LocalInstallLink:
		return nil
	default:
		return &InvalidLocalInstallModeError{Value: m}
	}
}

func (e *InvalidLocalInstallModeError) Error() string {
	return fmt.Sprintf("invalid local install mode %q (valid: copy, link)", e.Value)
}

// Unwrap returns ErrInvalidLocalInstallMode for errors.Is() compatibility.
func (e *InvalidLocalInstallModeError) Unwrap() error { return ErrInvalidLocalInstallMode }

func (cs ColorScheme) String() string { return string(cs) }

// Validate returns nil for auto, dark and light.
func (cs ColorScheme) Validate() error {
	switch cs {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return nil
	default:
		return &InvalidColorSchemeError{Value: cs}
	}
}

func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (valid: auto, dark, light)", e.Value)
}

// Unwrap returns ErrInvalidColorScheme for errors.Is() compatibility.
func (e *InvalidColorSchemeError) Unwrap() error { return ErrInvalidColorScheme }

// Validate checks every field and reports all problems at once.
func (c Config) Validate() error {
	var errs []error
	if err := c.Install.LocalMode.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Install.Parallelism < 1 {
		errs = append(errs, fmt.Errorf("install.parallelism must be at least 1, got %d", c.Install.Parallelism))
	}
	if err := c.UI.ColorScheme.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Registry.CacheDir != "" && strings.TrimSpace(c.Registry.CacheDir) == "" {
		errs = append(errs, errors.New("registry.cache_dir must not be whitespace-only"))
	}
	if len(errs) > 0 {
		return &InvalidConfigError{FieldErrors: errs}
	}
	return nil
}

func (e *InvalidConfigError) Error() string {
	msgs := make([]string, len(e.FieldErrors))
	for i, err := range e.FieldErrors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("invalid config: %s", strings.Join(msgs, "; "))
}

// Unwrap returns ErrInvalidConfig and every field error.
func (e *InvalidConfigError) Unwrap() []error {
	return append([]error{ErrInvalidConfig}, e.FieldErrors...)
}
