// FILE: logship/src/cmd/logship/output.go
package main

import (
	"fmt"
	"io"
	"os"
)

// OutputHandler writes user-facing messages, silenced in quiet mode
type OutputHandler struct {
	quiet  bool
	stdout io.Writer
	stderr io.Writer
}

var output = &OutputHandler{stdout: os.Stdout, stderr: os.Stderr}

// InitOutputHandler sets quiet mode for the global handler
func InitOutputHandler(quiet bool) {
	output = &OutputHandler{
		quiet:  quiet,
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
}

// Print writes to stdout unless quiet
func (o *OutputHandler) Print(format string, args ...any) {
	if !o.quiet {
		fmt.Fprintf(o.stdout, format, args...)
	}
}

// Error writes to stderr unless quiet
func (o *OutputHandler) Error(format string, args ...any) {
	if !o.quiet {
		fmt.Fprintf(o.stderr, format, args...)
	}
}

// FatalError reports and exits with code
func FatalError(code int, format string, args ...any) {
	output.Error(format, args...)
	os.Exit(code)
}
