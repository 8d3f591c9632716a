// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/appkg/appkg/internal/config"
)

type staticConfig struct {
	cfg config.Config
	err error
}

func (s staticConfig) Load(context.Context, config.LoadOptions) (config.Config, error) {
	return s.cfg, s.err
}

type harness struct {
	app    *App
	stdin  *strings.Reader
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

func newHarness(t *testing.T, cfg config.Config, stdin string) *harness {
	t.Helper()
	h := &harness{
		stdin:  strings.NewReader(stdin),
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
	}
	h.app = NewApp(Dependencies{
		Config: staticConfig{cfg: cfg},
		Stdin:  h.stdin,
		Stdout: h.stdout,
		Stderr: h.stderr,
	})
	return h
}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Registry.CacheDir = t.TempDir()
	return cfg
}

func (h *harness) run(t *testing.T, args ...string) error {
	t.Helper()
	root := NewRootCommand(h.app)
	root.SetArgs(args)
	root.SetOut(h.stdout)
	root.SetErr(h.stderr)
	return root.ExecuteContext(context.Background())
}

func TestGetVersionString(t *testing.T) {
	// Not parallel: subtests mutate package-level Version/Commit/BuildDate vars.

	t.Run("ldflags version", func(t *testing.T) {
		origVersion, origCommit, origBuildDate := Version, Commit, BuildDate
		t.Cleanup(func() {
			Version, Commit, BuildDate = origVersion, origCommit, origBuildDate
		})

		Version = "v1.2.3"
		Commit = "abc1234"
		BuildDate = "2026-06-15T10:00:00Z"

		got := getVersionString()
		want := "v1.2.3 (commit: abc1234, built: 2026-06-15T10:00:00Z)"
		if got != want {
			t.Errorf("getVersionString() = %q, want %q", got, want)
		}
	})

	t.Run("dev build", func(t *testing.T) {
		origVersion := Version
		t.Cleanup(func() { Version = origVersion })

		Version = "dev"
		if got, want := getVersionString(), "dev (built from source)"; got != want {
			t.Errorf("getVersionString() = %q, want %q", got, want)
		}
	})
}

func TestRootCommand_Subcommands(t *testing.T) {
	t.Parallel()

	root := NewRootCommand(NewApp(Dependencies{Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}}))
	for _, name := range []string{"install", "uninstall", "package", "config"} {
		if sub, _, err := root.Find([]string{name}); err != nil || sub.Name() != name {
			t.Errorf("Find(%q) = %v, %v", name, sub, err)
		}
	}
}

func TestRootCommand_ConfigLoadFailure(t *testing.T) {
	t.Parallel()

	h := newHarness(t, config.Config{}, "")
	h.app.Config = staticConfig{err: errors.New("boom")}

	err := h.run(t, "config", "show")
	var exitErr *ExitError
	if !errors.As(err, &exitErr) || exitErr.Code != 1 {
		t.Fatalf("run() error = %v, want an ExitError with code 1", err)
	}
	if got := h.stderr.String(); !strings.Contains(got, "failed to load configuration") || !strings.Contains(got, "boom") {
		t.Errorf("stderr = %q", got)
	}
}

func TestExitError(t *testing.T) {
	t.Parallel()

	cause := errors.New("cause")
	if got := (&ExitError{Code: 2}).Error(); got != "exit status 2" {
		t.Errorf("Error() = %q", got)
	}
	err := &ExitError{Code: 1, Err: cause}
	if err.Error() != "cause" || !errors.Is(err, cause) {
		t.Errorf("ExitError does not wrap its cause: %v", err)
	}
}
