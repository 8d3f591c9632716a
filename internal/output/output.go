// SPDX-License-Identifier: MPL-2.0

// Package output is the line sink every install stage reports through, plus
// the structured debug logger shared by the commands.
package output

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

type (
	// Output receives human-readable progress, conflict and change lines.
	Output interface {
		NormalLine(line string)
		ErrorLine(line string)
	}

	// Console writes normal lines to Out and error lines, styled, to Err.
	// It is safe for concurrent use so parallel installs can share one.
	Console struct {
		mu         sync.Mutex
		out        io.Writer
		err        io.Writer
		errorStyle lipgloss.Style
	}

	// Buffer records lines in memory. Tests use it in place of a Console.
	Buffer struct {
		mu     sync.Mutex
		normal []string
		errors []string
	}
)

// NewConsole returns a Console writing to out and errOut.
func NewConsole(out, errOut io.Writer) *Console {
	return &Console{
		out:        out,
		err:        errOut,
		errorStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")),
	}
}

// NormalLine implements Output.
func (c *Console) NormalLine(line string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, _ = fmt.Fprintln(c.out, line)
}

// ErrorLine implements Output.
func (c *Console) ErrorLine(line string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, _ = fmt.Fprintln(c.err, c.errorStyle.Render(line))
}

// NormalLine implements Output.
func (b *Buffer) NormalLine(line string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.normal = append(b.normal, line)
}

// ErrorLine implements Output.
func (b *Buffer) ErrorLine(line string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.errors = append(b.errors, line)
}

// Lines returns a copy of the normal lines recorded so far.
func (b *Buffer) Lines() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.normal...)
}

// ErrorLines returns a copy of the error lines recorded so far.
func (b *Buffer) ErrorLines() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.errors...)
}

// NewLogger builds the debug logger. Verbose enables debug records.
func NewLogger(w io.Writer, verbose bool) *log.Logger {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(w, log.Options{
		Prefix: "appkg",
		Level:  level,
	})
}

// Discard returns a logger that drops every record.
func Discard() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.FatalLevel})
}
