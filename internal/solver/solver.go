// SPDX-License-Identifier: MPL-2.0

// Package solver picks concrete package variants for an application's
// declared dependencies and offers the filters used on a solver result.
package solver

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"

	"github.com/appkg/appkg/pkg/pkginfo"
)

// ErrUnsatisfiable is the sentinel wrapped by UnsatisfiableError.
var ErrUnsatisfiable = errors.New("dependency cannot be satisfied")

type (
	// Solver resolves root's declarations, plus extra requests that take
	// precedence over them, against the candidate index. The result holds one
	// package per identity and never contains root itself.
	Solver interface {
		Solve(ctx context.Context, root *pkginfo.PackageInfo, extra []pkginfo.Dependency, candidates pkginfo.Candidates) ([]*pkginfo.PackageInfo, error)
	}

	// Greedy resolves each identity once, the first time it is reached, to
	// its best-scoring candidate with the highest version matching the
	// constraint. Later constraints on the same identity must accept that
	// choice. Local declarations are loaded from disk with Loader and scored
	// against Support.
	Greedy struct {
		Loader  pkginfo.Loader
		Support pkginfo.Support
	}

	// UnsatisfiableError names the declaration that could not be resolved.
	UnsatisfiableError struct {
		Dependency pkginfo.Dependency
		Reason     string
	}
)

func (e *UnsatisfiableError) Error() string {
	return fmt.Sprintf("cannot satisfy %s: %s", e.Dependency, e.Reason)
}

// Unwrap returns ErrUnsatisfiable for errors.Is() compatibility.
func (e *UnsatisfiableError) Unwrap() error { return ErrUnsatisfiable }

// Solve implements Solver.
func (g *Greedy) Solve(ctx context.Context, root *pkginfo.PackageInfo, extra []pkginfo.Dependency, candidates pkginfo.Candidates) ([]*pkginfo.PackageInfo, error) {
	chosen := make(map[pkginfo.Identity]*pkginfo.PackageInfo)
	requested := make(map[pkginfo.Identity]bool)
	var order []*pkginfo.PackageInfo

	queue := slices.Concat(extra, root.Manifest.Dependencies)
	for i := 0; i < len(queue); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		d := queue[i]
		isRequest := i < len(extra)

		var p *pkginfo.PackageInfo
		if id, ok := d.Identity(); ok {
			if prev, done := chosen[id]; done {
				if requested[id] && !isRequest {
					continue
				}
				if err := accepts(d, prev); err != nil {
					return nil, err
				}
				continue
			}
			var err error
			if p, err = pickRegistry(d, candidates); err != nil {
				return nil, err
			}
		} else {
			var err error
			if p, err = g.loadLocal(ctx, d); err != nil {
				return nil, err
			}
			if prev, done := chosen[p.Identity()]; done {
				if (requested[p.Identity()] && !isRequest) || sameSource(prev, p) {
					continue
				}
				return nil, &UnsatisfiableError{Dependency: d, Reason: fmt.Sprintf("%s is already resolved to %s", p.Identity(), prev.Variant())}
			}
		}

		if p.Identity() == root.Identity() {
			return nil, &UnsatisfiableError{Dependency: d, Reason: "a package cannot depend on itself"}
		}

		chosen[p.Identity()] = p
		if isRequest {
			requested[p.Identity()] = true
		}
		order = append(order, p)
		queue = append(queue, p.Manifest.Dependencies...)
	}

	return order, nil
}

func pickRegistry(d pkginfo.Dependency, candidates pkginfo.Candidates) (*pkginfo.PackageInfo, error) {
	c, err := ParseConstraint(d.VersionReq)
	if err != nil {
		return nil, &UnsatisfiableError{Dependency: d, Reason: err.Error()}
	}
	id, _ := d.Identity()

	var best *pkginfo.PackageInfo
	var bestVersion *Version
	for _, p := range candidates.Variants(id) {
		if p.CompatibleScore < 0 {
			continue
		}
		v, err := ParseVersion(p.Version())
		if err != nil || !c.Matches(v) {
			continue
		}
		if best == nil ||
			p.CompatibleScore > best.CompatibleScore ||
			(p.CompatibleScore == best.CompatibleScore && v.Compare(bestVersion) > 0) {
			best, bestVersion = p, v
		}
	}

	if best == nil {
		return nil, &UnsatisfiableError{Dependency: d, Reason: "no compatible candidate matches the constraint"}
	}
	return best, nil
}

func accepts(d pkginfo.Dependency, prev *pkginfo.PackageInfo) error {
	if prev.IsLocalDependency {
		return nil
	}
	c, err := ParseConstraint(d.VersionReq)
	if err != nil {
		return &UnsatisfiableError{Dependency: d, Reason: err.Error()}
	}
	v, err := ParseVersion(prev.Version())
	if err != nil || !c.Matches(v) {
		return &UnsatisfiableError{Dependency: d, Reason: fmt.Sprintf("already resolved to %s", prev.Variant())}
	}
	return nil
}

func (g *Greedy) loadLocal(ctx context.Context, d pkginfo.Dependency) (*pkginfo.PackageInfo, error) {
	loader := g.Loader
	if loader == nil {
		loader = pkginfo.DirLoader{}
	}

	p, err := loader.LoadFromPath(ctx, d.ResolvedPath())
	if err != nil {
		return nil, fmt.Errorf("failed to load local dependency %s: %w", d.ResolvedPath(), err)
	}
	p = p.Clone()
	p.IsLocalDependency = true
	p.LocalDependencyPath = d.Path
	p.LocalDependencyBaseDir = d.BaseDir
	p.CompatibleScore = pkginfo.SupportsCompatibleScore(p.Supports(), g.Support)
	if p.CompatibleScore < 0 {
		return nil, &UnsatisfiableError{Dependency: d, Reason: fmt.Sprintf("%s does not support %s", p.Variant(), g.Support)}
	}
	return p, nil
}

func sameSource(a, b *pkginfo.PackageInfo) bool {
	return a.IsLocalDependency && b.IsLocalDependency && filepath.Clean(a.URL) == filepath.Clean(b.URL)
}
