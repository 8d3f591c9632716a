// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/appkg/appkg/internal/install"
	"github.com/appkg/appkg/pkg/pkginfo"
)

func newUninstallCommand(app *App, root *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "uninstall <kind> <name>",
		Short: "Remove an installed package from app_packages",
		Long: `Remove an installed package from app_packages/.

Only the files recorded when the package was installed are deleted. A linked
local package loses its link; the directory it points at is left alone.
manifest.json and manifest-lock.json are not changed, so the next install
brings the package back while it is still declared.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := pkginfo.ParseKind(args[0])
			if err != nil {
				return app.reportError(cmd, err, root.verbose)
			}
			appDir, err := filepath.Abs(root.appDir)
			if err != nil {
				return app.reportError(cmd, err, root.verbose)
			}

			id := pkginfo.Identity{Kind: kind, Name: args[1]}
			dir := filepath.Join(install.InstallDir(appDir, kind), args[1])
			if _, err := os.Lstat(dir); err != nil {
				return app.reportError(cmd, fmt.Errorf("%s is not installed in %s", id, appDir), root.verbose)
			}
			if err := install.Uninstall(dir); err != nil {
				return app.reportError(cmd, actionable(err, "uninstall", id.String()), root.verbose)
			}

			fmt.Fprintf(app.stdout, "%s %s\n", SuccessStyle.Render("Removed"), CmdStyle.Render(id.String()))
			return nil
		},
	}
}
