package exit

import (
	"fmt"
	"io"
)

// Process exit codes.
const (
	CodeOK    = 0
	CodeFalse = 1 // predicate false or nothing selected
	CodeUsage = 2 // invalid arguments, path or query
	CodeIO    = 3 // unreadable or malformed input
)

// Result holds the output destination and exit code for program termination.
// It doubles as an error so commands can return it.
type Result struct {
	Output   io.Writer
	ExitCode int
	Message  string
}

// Error returns the message.
func (r *Result) Error() string {
	return r.Message
}

// Print writes the result message to the configured output destination.
func (r *Result) Print() {
	if r.Output == nil || r.Message == "" {
		return
	}
	fmt.Fprintln(r.Output, r.Message)
}

// False creates a silent result with exit code 1.
func False() *Result {
	return &Result{ExitCode: CodeFalse}
}

// Usagef creates a usage error result with exit code 2.
func Usagef(format string, a ...any) *Result {
	return &Result{ExitCode: CodeUsage, Message: fmt.Sprintf(format, a...)}
}

// IOf creates an input error result with exit code 3.
func IOf(format string, a ...any) *Result {
	return &Result{ExitCode: CodeIO, Message: fmt.Sprintf(format, a...)}
}
