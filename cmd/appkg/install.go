// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/appkg/appkg/internal/install"
	"github.com/appkg/appkg/internal/output"
	"github.com/appkg/appkg/pkg/pkginfo"
)

// ErrConstraintWithLocalPath is returned when a request names both a version
// constraint and --local-path.
var ErrConstraintWithLocalPath = errors.New("a version constraint cannot be combined with --local-path")

type installFlags struct {
	localPath string
	yes       bool
}

func newInstallCommand(app *App, root *rootFlags) *cobra.Command {
	flags := &installFlags{}
	cmd := &cobra.Command{
		Use:   "install [<kind> <name>[@<constraint>]]",
		Short: "Install the application's dependencies",
		Long: `Install every dependency declared in manifest.json into app_packages/
and update manifest-lock.json.

With a kind and a name the package is also added to manifest.json: from the
registry, optionally constrained (e.g. my_ext@^1.2.0), or from a directory
given with --local-path.

Kinds: ` + kindList(),
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 0 && len(args) != 2 {
				return fmt.Errorf("accepts 0 or 2 arg(s), received %d", len(args))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInstall(cmd, app, root, flags, args)
		},
	}

	cmd.Flags().StringVar(&flags.localPath, "local-path", "", "install the package from this directory instead of the registry")
	cmd.Flags().BoolVarP(&flags.yes, "yes", "y", false, "replace installed packages without asking")

	return cmd
}

func runInstall(cmd *cobra.Command, app *App, root *rootFlags, flags *installFlags, args []string) error {
	ctx := cmd.Context()
	cfg, err := root.loadConfig(ctx, app)
	if err != nil {
		return app.reportError(cmd, err, root.verbose)
	}

	var req *install.Request
	if len(args) == 2 {
		if req, err = parseRequest(args[0], args[1], flags.localPath); err != nil {
			return app.reportError(cmd, actionable(err, "parse install request", strings.Join(args, " ")), cfg.Verbose)
		}
	} else if flags.localPath != "" {
		return app.reportError(cmd, errors.New("--local-path needs a kind and a name"), cfg.Verbose)
	}

	logger := output.NewLogger(app.stderr, cfg.Verbose)
	reg, err := app.OpenRegistry(cfg, logger)
	if err != nil {
		return app.reportError(cmd, actionable(err, "open registry", cfg.Registry.Index), cfg.Verbose)
	}

	pl := &install.Pipeline{
		Config:   cfg,
		Registry: reg,
		Support:  pkginfo.CurrentSupport(),
		Out:      output.NewConsole(app.stdout, app.stderr),
		Logger:   logger,
		Confirm:  app.confirm,
	}

	appDir, err := filepath.Abs(root.appDir)
	if err != nil {
		return app.reportError(cmd, err, cfg.Verbose)
	}
	if _, err := pl.Run(ctx, install.RunOptions{AppDir: appDir, Request: req, AssumeYes: flags.yes}); err != nil {
		return app.reportError(cmd, actionable(err, "install packages", appDir), cfg.Verbose)
	}
	return nil
}

// parseRequest reads "<kind> <name>[@<constraint>]".
func parseRequest(kindArg, nameArg, localPath string) (*install.Request, error) {
	kind, err := pkginfo.ParseKind(kindArg)
	if err != nil {
		return nil, err
	}
	name, constraint, _ := strings.Cut(nameArg, "@")
	if name == "" {
		return nil, fmt.Errorf("%w: empty package name", pkginfo.ErrInvalidDependency)
	}
	if constraint != "" && localPath != "" {
		return nil, ErrConstraintWithLocalPath
	}
	return &install.Request{Kind: kind, Name: name, Constraint: constraint, LocalPath: localPath}, nil
}

// confirm asks prompt on stdout and reads a y/N answer from stdin.
func (app *App) confirm(prompt string) (bool, error) {
	fmt.Fprint(app.stdout, WarningStyle.Render(prompt)+" [y/N] ")
	answer, err := bufio.NewReader(app.stdin).ReadString('\n')
	if err != nil && answer == "" {
		fmt.Fprintln(app.stdout)
		return false, nil
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

func kindList() string {
	kinds := make([]string, 0, len(pkginfo.Kinds()))
	for _, k := range pkginfo.Kinds() {
		kinds = append(kinds, k.String())
	}
	return strings.Join(kinds, ", ")
}
