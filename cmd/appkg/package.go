// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/appkg/appkg/internal/archive"
	"github.com/appkg/appkg/internal/registry"
	"github.com/appkg/appkg/pkg/pkginfo"
)

type packageFlags struct {
	output  string
	publish string
}

func newPackageCommand(app *App, root *rootFlags) *cobra.Command {
	flags := &packageFlags{}
	cmd := &cobra.Command{
		Use:   "package <dir>",
		Short: "Build a package archive and optionally publish it",
		Long: `Validate the package in <dir> and zip its contents.

The archive is written to --output, by default <name>-<version>.zip in the
current directory. With --publish the archive is also added to the registry
directory given, and the registry's index.toml is updated.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := runPackage(app, args[0], flags); err != nil {
				return app.reportError(cmd, actionable(err, "package", args[0]), root.verbose)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "archive path (default <name>-<version>.zip)")
	cmd.Flags().StringVar(&flags.publish, "publish", "", "registry directory to publish the archive into")

	return cmd
}

func runPackage(app *App, dir string, flags *packageFlags) error {
	m, err := pkginfo.LoadManifest(dir)
	if err != nil {
		return err
	}
	if err := pkginfo.CheckPropertyDocument(dir); err != nil {
		return err
	}

	dst := flags.output
	if dst == "" {
		dst = fmt.Sprintf("%s-%s.zip", m.Name, m.Version)
	}
	if err := archive.Pack(dir, dst); err != nil {
		return err
	}
	fmt.Fprintf(app.stdout, "%s %s\n", SuccessStyle.Render("Packed"), CmdStyle.Render(dst))

	if flags.publish == "" {
		return nil
	}
	reg := registry.NewLocal(flags.publish, nil)
	if err := reg.Publish(m, dst); err != nil {
		return err
	}
	fmt.Fprintf(app.stdout, "%s %s %s %s\n",
		SuccessStyle.Render("Published"), CmdStyle.Render(m.Identity.String()+"@"+m.Version),
		SubtitleStyle.Render("to"), filepath.Clean(flags.publish))
	return nil
}
