// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"os"

	"github.com/appkg/appkg/internal/config"
	"github.com/appkg/appkg/internal/install"
	"github.com/appkg/appkg/internal/issue"
	"github.com/appkg/appkg/internal/registry"
	"github.com/appkg/appkg/internal/solver"
	"github.com/appkg/appkg/pkg/pkginfo"
)

// classifyInstallError maps an install failure to its catalogue page and
// the hint shown under the message. Causes are checked before the wrappers
// that carry them.
func classifyInstallError(err error) (issue.Id, string) {
	switch {
	case errors.Is(err, pkginfo.ErrManifestNotFound):
		return issue.ManifestNotFoundId, "Create a manifest.json in the application directory or pass --app-dir"
	case errors.Is(err, pkginfo.ErrInvalidDependency),
		errors.Is(err, pkginfo.ErrInvalidKind),
		errors.Is(err, pkginfo.ErrInvalidSupport),
		errors.Is(err, pkginfo.ErrReservedName):
		return issue.ManifestInvalidId, "Fix the manifest.json named above"
	case errors.Is(err, install.ErrLocalPath):
		return issue.LocalPathMissingId, "Check that the path points at a package directory with a manifest.json"
	case errors.Is(err, install.ErrAmbiguousResult):
		return issue.AmbiguousResultId, "Check the kind and name of the requested package"
	case errors.Is(err, solver.ErrUnsatisfiable), errors.Is(err, solver.ErrInvalidConstraint):
		return issue.DependencyUnsatisfiableId, "Relax the version constraint or publish a matching version"
	case errors.Is(err, pkginfo.ErrInvalidProperty):
		return issue.PropertyInvalidId, "Fix property.json in the package and publish it again"
	case errors.Is(err, install.ErrReplaceDeclined):
		return issue.PackageConflictId, "Re-run with --yes to replace the installed packages"
	case errors.Is(err, registry.ErrLocalDependency):
		return issue.ManifestInvalidId, "Replace local dependencies with registry dependencies before publishing"
	case errors.Is(err, registry.ErrNoRegistry):
		return issue.RegistryUnavailableId, "Set registry.index in the configuration"
	case errors.Is(err, config.ErrInvalidLocalInstallMode):
		return issue.InvalidInstallModeId, "Set install.local_mode to \"copy\" or \"link\""
	case errors.Is(err, install.ErrLockfile):
		return issue.LockfileWriteFailedId, "Check write permissions on the application directory"
	case errors.Is(err, os.ErrPermission):
		return issue.InstallFailedId, "Check write permissions on app_packages"
	default:
		return issue.InstallFailedId, ""
	}
}

// actionable wraps err with the operation that failed and the catalogue
// page classifyInstallError picks for it.
func actionable(err error, operation, resource string) error {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return err
	}
	id, hint := classifyInstallError(err)
	ctx := issue.NewErrorContext().
		WithOperation(operation).
		WithResource(resource).
		WithIssue(id).
		Wrap(err)
	if hint != "" {
		ctx = ctx.WithSuggestion(hint)
	}
	return ctx.BuildError()
}
