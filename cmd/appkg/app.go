// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"github.com/appkg/appkg/internal/config"
	"github.com/appkg/appkg/internal/registry"
)

type (
	// App wires CLI services and shared dependencies. Every command handler
	// receives an App and reaches configuration, registries and the terminal
	// through it.
	App struct {
		Config       ConfigProvider
		OpenRegistry RegistryOpener
		stdin        io.Reader
		stdout       io.Writer
		stderr       io.Writer
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp.
	Dependencies struct {
		Config       ConfigProvider
		OpenRegistry RegistryOpener
		Stdin        io.Reader
		Stdout       io.Writer
		Stderr       io.Writer
	}

	// ConfigProvider loads configuration for the CLI.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (config.Config, error)
	}

	// RegistryOpener returns the registry at a configured location.
	RegistryOpener func(cfg config.Config, logger *log.Logger) (registry.Registry, error)
)

// NewApp creates a new App with the provided dependencies.
func NewApp(deps Dependencies) *App {
	if deps.Stdin == nil {
		deps.Stdin = os.Stdin
	}
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.OpenRegistry == nil {
		deps.OpenRegistry = openConfiguredRegistry
	}

	return &App{
		Config:       deps.Config,
		OpenRegistry: deps.OpenRegistry,
		stdin:        deps.Stdin,
		stdout:       deps.Stdout,
		stderr:       deps.Stderr,
	}
}

// openConfiguredRegistry opens registry.index. An unset index yields a nil
// registry so applications with only local dependencies still install.
func openConfiguredRegistry(cfg config.Config, logger *log.Logger) (registry.Registry, error) {
	if cfg.Registry.Index == "" {
		return nil, nil
	}
	return registry.Open(cfg.Registry.Index, logger)
}
