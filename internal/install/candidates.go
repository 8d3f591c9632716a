// SPDX-License-Identifier: MPL-2.0

package install

import (
	"fmt"

	"github.com/appkg/appkg/internal/config"
	"github.com/appkg/appkg/internal/output"
	"github.com/appkg/appkg/pkg/pkginfo"
)

// FilterCompatibleToCandidates scores every package in all against support
// and adds the usable ones to candidates. The score is stored on a copy, so
// all is left untouched. Incompatible packages are dropped.
func FilterCompatibleToCandidates(cfg config.Config, all []*pkginfo.PackageInfo, candidates pkginfo.Candidates, support pkginfo.Support, out output.Output) {
	for _, p := range all {
		if cfg.Verbose {
			out.NormalLine(fmt.Sprintf("Check support score for %s", p.Variant()))
		}

		score := pkginfo.SupportsCompatibleScore(p.Supports(), support)
		if score < 0 {
			if cfg.Verbose {
				out.NormalLine(fmt.Sprintf("The existed %s package %s is not compatible with the current system.", p.Kind(), p.Name()))
			}
			continue
		}

		scored := p.Clone()
		scored.CompatibleScore = score
		if cfg.Verbose {
			out.NormalLine(fmt.Sprintf("The existed %s package %s is compatible with the current system.", p.Kind(), p.Name()))
		}
		candidates.Add(scored)
	}
}
