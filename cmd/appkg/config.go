// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/appkg/appkg/internal/config"
	"github.com/appkg/appkg/internal/issue"
)

// newConfigCommand creates the `appkg config` command tree.
func newConfigCommand(app *App, root *rootFlags) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect appkg configuration",
		Long: `Inspect appkg configuration.

Configuration is stored in:
  - Linux: ~/.config/appkg/config.cue
  - macOS: ~/Library/Application Support/appkg/config.cue
  - Windows: %APPDATA%\appkg\config.cue

Every key can be overridden with an APPKG_ environment variable, e.g.
APPKG_INSTALL_LOCAL_MODE=link.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig(cmd.Context(), app)
			if err != nil {
				return app.reportError(cmd, err, root.verbose)
			}
			showConfig(app, root, cfg)
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configPath(root)
			if err != nil {
				return app.reportError(cmd, err, root.verbose)
			}
			fmt.Fprintln(app.stdout, path)
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output the effective configuration as CUE",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig(cmd.Context(), app)
			if err != nil {
				return app.reportError(cmd, err, root.verbose)
			}
			fmt.Fprint(app.stdout, config.GenerateCUE(cfg))
			return nil
		},
	})

	return cfgCmd
}

func showConfig(app *App, root *rootFlags, cfg config.Config) {
	keyStyle := CmdStyle
	valueStyle := SuccessStyle
	w := app.stdout

	fmt.Fprintln(w, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(w)

	if path, err := configPath(root); err == nil && fileExists(path) {
		fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("Config file"), path)
	} else {
		fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("verbose"), valueStyle.Render(fmt.Sprintf("%v", cfg.Verbose)))

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("install"))
	fmt.Fprintf(w, "  local_mode: %s\n", valueStyle.Render(cfg.Install.LocalMode.String()))
	fmt.Fprintf(w, "  parallelism: %s\n", valueStyle.Render(fmt.Sprintf("%d", cfg.Install.Parallelism)))

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("registry"))
	fmt.Fprintf(w, "  index: %s\n", orNone(cfg.Registry.Index, valueStyle.Render))
	fmt.Fprintf(w, "  cache_dir: %s\n", orNone(cfg.Registry.CacheDir, valueStyle.Render))

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("ui"))
	fmt.Fprintf(w, "  color_scheme: %s\n", valueStyle.Render(cfg.UI.ColorScheme.String()))
}

// configPath is the --config file when given, else config.cue in the
// platform config directory.
func configPath(root *rootFlags) (string, error) {
	if root.cfgFile != "" {
		return root.cfgFile, nil
	}
	dir, err := config.ConfigDir()
	if err != nil {
		return "", issue.WrapWithContext(err, "locate configuration directory", "")
	}
	return filepath.Join(dir, config.ConfigFileName+"."+config.ConfigFileExt), nil
}

func orNone(v string, render func(...string) string) string {
	if v == "" {
		return SubtitleStyle.Render("(not set)")
	}
	return render(v)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
