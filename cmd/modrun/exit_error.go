// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

// ExitError carries a process exit code out of a RunE handler. The
// handler has already reported the failure.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// reported silences cobra's own error and usage output for a failure the
// command has printed itself, and returns the matching ExitError. fang
// still sees the error; handleError keeps it from printing it again.
func reported(cmd *cobra.Command, code int, err error) error {
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true
	return &ExitError{Code: code, Err: err}
}

// exitCode maps the error returned by the root command to a process exit
// code.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return 1
}

// handleError is the fang error handler. Failures wrapped by reported were
// already printed by their command; everything else, such as flag and
// argument errors, goes through fang's default rendering.
func handleError(w io.Writer, styles fang.Styles, err error) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return
	}
	fang.DefaultErrorHandler(w, styles, err)
}
