// SPDX-License-Identifier: MPL-2.0

package cmd

import "fmt"

// ExitError carries the process exit code out of a RunE handler. Execute
// turns it into os.Exit after fang has finished rendering.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

// Unwrap exposes the failure that was already reported to the user.
func (e *ExitError) Unwrap() error { return e.Err }
