package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // A value could not be encoded or decoded
	ExitCommandError = 2 // Bad flags or configuration
)

// ExitError carries the process exit code for an error.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error { return e.Err }

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// Row is one converted value.
type Row struct {
	Input  string `json:"input"`
	Output string `json:"output"`
}

// writeRows prints rows as "input<TAB>output" lines or one JSON document.
func writeRows(w io.Writer, format string, rows []Row) error {
	if format == "json" {
		return json.NewEncoder(w).Encode(struct {
			Status string `json:"status"`
			Data   []Row  `json:"data"`
		}{"ok", rows})
	}
	for _, r := range rows {
		if _, err := fmt.Fprintf(w, "%s\t%s\n", r.Input, r.Output); err != nil {
			return err
		}
	}
	return nil
}
