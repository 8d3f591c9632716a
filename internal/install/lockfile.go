// SPDX-License-Identifier: MPL-2.0

package install

import (
	"errors"
	"fmt"

	"github.com/appkg/appkg/internal/output"
	"github.com/appkg/appkg/pkg/lockfile"
	"github.com/appkg/appkg/pkg/pkginfo"
)

// WritePkgsIntoLockfile stores the lock for pkgs in appDir and reports
// whether the file changed. When an earlier lock existed and differs, the
// differences are printed to out. A lock that exists but cannot be read is
// replaced without a change report.
func WritePkgsIntoLockfile(pkgs []*pkginfo.PackageInfo, appDir string, out output.Output) (bool, error) {
	old, err := lockfile.ParseInFolder(appDir)
	switch {
	case errors.Is(err, lockfile.ErrNotFound):
		out.NormalLine("🔒  Creating manifest-lock.json...")
	case err != nil:
		out.NormalLine(fmt.Sprintf("🔒  Replacing unreadable manifest-lock.json (%v)...", err))
		old = nil
	}

	lock := lockfile.FromPackages(pkgs)
	changed, err := lock.Write(appDir)
	if err != nil {
		return false, &LockfileError{Err: err}
	}

	if changed && old != nil {
		out.NormalLine("🔒  Breaking manifest-lock.json...")
		lock.PrintChanges(old, out)
	}
	return changed, nil
}
