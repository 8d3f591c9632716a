// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/appkg/appkg/internal/config"
	"github.com/appkg/appkg/internal/issue"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// rootFlags holds the persistent flags shared by every subcommand.
type rootFlags struct {
	verbose bool
	cfgFile string
	appDir  string
}

// NewRootCommand builds the appkg command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	flags := &rootFlags{}
	rootCmd := &cobra.Command{
		Use:   "appkg",
		Short: "Install and lock the packages an application depends on",
		Long: TitleStyle.Render("appkg") + SubtitleStyle.Render(" - Install and lock the packages an application depends on") + `

appkg reads the manifest.json of an application, resolves every declared
dependency against the local directories and the configured registry, and
installs the result into app_packages/. The resolved set is recorded in
manifest-lock.json.

` + SubtitleStyle.Render("Examples:") + `
  appkg install                           Install what manifest.json declares
  appkg install extension my_ext@^1.2.0   Add a registry extension
  appkg install extension my_ext --local-path ../my_ext
  appkg uninstall extension my_ext        Remove an installed package
  appkg package ./my_ext --publish ./registry
  appkg config show                       Show current configuration`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&flags.cfgFile, "config", "", "config file (default is $HOME/.config/appkg/config.cue)")
	rootCmd.PersistentFlags().StringVarP(&flags.appDir, "app-dir", "C", ".", "application directory holding manifest.json")

	rootCmd.AddCommand(newInstallCommand(app, flags))
	rootCmd.AddCommand(newUninstallCommand(app, flags))
	rootCmd.AddCommand(newPackageCommand(app, flags))
	rootCmd.AddCommand(newConfigCommand(app, flags))

	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the root command. This is called by main.main().
func Execute() {
	app := NewApp(Dependencies{})
	rootCmd := NewRootCommand(app)

	// fang overrides rootCmd.Version, so the version goes through WithVersion.
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}

// loadConfig loads the configuration and applies the flags that override it.
func (f *rootFlags) loadConfig(ctx context.Context, app *App) (config.Config, error) {
	cfg, err := app.Config.Load(ctx, config.LoadOptions{ConfigFilePath: f.cfgFile})
	if err != nil {
		var ae *issue.ActionableError
		if errors.As(err, &ae) {
			return config.Config{}, err
		}
		return config.Config{}, issue.NewErrorContext().
			WithOperation("load configuration").
			WithResource(f.cfgFile).
			WithSuggestion("Run 'appkg config path' to see which file is read").
			WithIssue(issue.ConfigLoadFailedId).
			Wrap(err).
			BuildError()
	}
	if f.verbose {
		cfg.Verbose = true
	}
	return cfg, nil
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}

// reportError prints err and, when one is attached, its catalogue page, then
// returns an ExitError so the command exits non-zero without a second error
// line.
func (app *App) reportError(cmd *cobra.Command, err error, verbose bool) error {
	cmd.SilenceErrors = true
	fmt.Fprintln(app.stderr, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, verbose))
	if page := issue.IssueOf(err); page != nil {
		if rendered, rerr := page.Render("dark"); rerr == nil {
			fmt.Fprint(app.stderr, rendered)
		}
	}
	return &ExitError{Code: 1, Err: err}
}
