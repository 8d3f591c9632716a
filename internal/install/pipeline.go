// SPDX-License-Identifier: MPL-2.0

package install

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/appkg/appkg/internal/archive"
	"github.com/appkg/appkg/internal/config"
	"github.com/appkg/appkg/internal/output"
	"github.com/appkg/appkg/internal/registry"
	"github.com/appkg/appkg/internal/solver"
	"github.com/appkg/appkg/pkg/pkginfo"
)

// ErrReplaceDeclined is returned when installed packages would be replaced
// and the caller did not confirm it.
var ErrReplaceDeclined = errors.New("replacing installed packages was not confirmed")

type (
	// Pipeline runs a whole install for one application directory.
	Pipeline struct {
		Config config.Config
		// Registry may be nil when every dependency is local.
		Registry  registry.Registry
		Solver    solver.Solver
		Loader    pkginfo.Loader
		Extractor archive.Extractor
		Support   pkginfo.Support
		Out       output.Output
		Logger    *log.Logger
		// Confirm is asked before installed packages are replaced. A nil
		// Confirm declines.
		Confirm func(prompt string) (bool, error)
	}

	// Request names a package to add to the application's manifest.
	// Constraint applies to registry packages; LocalPath selects a directory
	// instead.
	Request struct {
		Kind       pkginfo.Kind
		Name       string
		Constraint string
		LocalPath  string
	}

	// RunOptions configures one Pipeline.Run.
	RunOptions struct {
		AppDir string
		// Request is nil for a plain install of what the manifest declares.
		Request *Request
		// AssumeYes replaces installed packages without asking.
		AssumeYes bool
	}

	// RunResult summarizes a finished install.
	RunResult struct {
		Packages    []*pkginfo.PackageInfo
		Installed   int
		Conflict    bool
		LockChanged bool
	}
)

// Run resolves the application's dependencies, installs what is missing,
// records the requested package in manifest.json and syncs the lock file.
func (pl *Pipeline) Run(ctx context.Context, opts RunOptions) (*RunResult, error) {
	started := time.Now()
	loader := pl.loader()

	app, err := loader.LoadFromPath(ctx, opts.AppDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load application: %w", err)
	}
	appDir := app.Manifest.Dir

	installed, err := ScanInstalled(ctx, appDir, loader)
	if err != nil {
		return nil, err
	}

	candidates := make(pkginfo.Candidates)
	var pool []*pkginfo.PackageInfo
	if pl.Registry != nil {
		published, err := pl.Registry.Packages(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list registry packages: %w", err)
		}
		pool = append(pool, published...)
	}
	pool = append(pool, installed...)
	FilterCompatibleToCandidates(pl.Config, pool, candidates, pl.Support, pl.Out)
	pl.logger().Debug("collected candidates", "count", candidates.Len())

	var extra []pkginfo.Dependency
	var localPath *string
	if r := opts.Request; r != nil {
		dep, rel, err := r.dependency(appDir)
		if err != nil {
			return nil, err
		}
		extra = append(extra, dep)
		localPath = rel
	}

	results, err := pl.solver().Solve(ctx, app, extra, candidates)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve dependencies of %s: %w", app.Identity(), err)
	}
	results = markInstalled(results, installed)

	res := &RunResult{Packages: results}
	res.Conflict = CompareSolverResultsWithInstalled(results, installed, pl.Out)
	if res.Conflict && !opts.AssumeYes {
		ok := false
		if pl.Confirm != nil {
			if ok, err = pl.Confirm("Replace the installed packages listed above?"); err != nil {
				return nil, err
			}
		}
		if !ok {
			return res, ErrReplaceDeclined
		}
	}
	for _, r := range FindToBeReplacedLocalPackages(results, installed) {
		pl.logger().Debug("removing replaced package", "pkg", r.Old.Variant(), "dir", r.Old.URL)
		if err := Uninstall(r.Old.URL); err != nil {
			return nil, &InstallError{Identity: r.Old.Identity(), Err: err}
		}
	}

	if res.Installed, err = pl.installAll(ctx, appDir, results); err != nil {
		return nil, err
	}

	if r := opts.Request; r != nil {
		if err := WriteInstallingPkgIntoManifest(ctx, app, results, r.Kind, r.Name, localPath, loader); err != nil {
			return nil, err
		}
	}

	locked := append([]*pkginfo.PackageInfo{app}, results...)
	if res.LockChanged, err = WritePkgsIntoLockfile(locked, appDir, pl.Out); err != nil {
		return nil, err
	}

	pl.Out.NormalLine(fmt.Sprintf("🏆  Install successfully in %s", time.Since(started).Round(time.Millisecond)))
	return res, nil
}

func (pl *Pipeline) installAll(ctx context.Context, appDir string, pkgs []*pkginfo.PackageInfo) (int, error) {
	inst := &Installer{
		Config:    pl.Config,
		Extractor: pl.Extractor,
		Out:       pl.Out,
		Logger:    pl.logger(),
	}
	if pl.Registry != nil {
		inst.Fetcher = pl.Registry
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(pl.Config.Install.Parallelism, 1))

	count := 0
	for _, p := range pkgs {
		if !p.IsInstalled {
			count++
		}
		g.Go(func() error {
			return inst.Install(gctx, p, InstallDir(appDir, p.Kind()))
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	return count, nil
}

// dependency turns the request into the declaration handed to the solver.
// For a local request it also returns the path as it will be recorded,
// relative to appDir.
func (r *Request) dependency(appDir string) (pkginfo.Dependency, *string, error) {
	if err := r.Kind.Validate(); err != nil {
		return pkginfo.Dependency{}, nil, err
	}
	if r.LocalPath == "" {
		constraint := r.Constraint
		if constraint == "" {
			constraint = "*"
		}
		return pkginfo.NewRegistryDependency(pkginfo.Identity{Kind: r.Kind, Name: r.Name}, constraint), nil, nil
	}

	abs, err := filepath.Abs(r.LocalPath)
	if err != nil {
		return pkginfo.Dependency{}, nil, &LocalPathError{Path: r.LocalPath, Err: err}
	}
	rel, err := filepath.Rel(appDir, abs)
	if err != nil {
		rel = abs
	}
	rel = filepath.ToSlash(rel)
	return pkginfo.NewLocalDependency(rel, appDir), &rel, nil
}

// markInstalled flags results already present on disk in the same build.
func markInstalled(results, installed []*pkginfo.PackageInfo) []*pkginfo.PackageInfo {
	byIdentity := make(map[pkginfo.Identity]*pkginfo.PackageInfo, len(installed))
	for _, p := range installed {
		byIdentity[p.Identity()] = p
	}

	out := make([]*pkginfo.PackageInfo, 0, len(results))
	for _, p := range results {
		if old, ok := byIdentity[p.Identity()]; ok && !p.IsInstalled && IsSameBuild(p, old) {
			p = p.Clone()
			p.IsInstalled = true
		}
		out = append(out, p)
	}
	return out
}

func (pl *Pipeline) loader() pkginfo.Loader {
	if pl.Loader == nil {
		return pkginfo.DirLoader{}
	}
	return pl.Loader
}

func (pl *Pipeline) solver() solver.Solver {
	if pl.Solver == nil {
		return &solver.Greedy{Loader: pl.loader(), Support: pl.Support}
	}
	return pl.Solver
}

func (pl *Pipeline) logger() *log.Logger {
	if pl.Logger == nil {
		return output.Discard()
	}
	return pl.Logger
}
