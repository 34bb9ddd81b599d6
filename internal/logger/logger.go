// Package logger emits the review pipeline's diagnostic trace.
//
// The trace is off by default and switched on by the --verbose flag; it
// goes to stderr so piped report output stays clean. The engine
// packages stay silent on their own: the services layer narrates
// resolution and application on their behalf, which keeps the pure
// mutation code free of I/O.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
)

var (
	mu      sync.Mutex
	verbose bool
	out     io.Writer = os.Stderr
)

// SetVerbose switches the diagnostic trace on or off.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// SetOutput redirects the trace away from os.Stderr. Tests use this to
// capture what the pipeline reports.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	out = w
}

func emit(prefix, format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	if !verbose {
		return
	}
	fmt.Fprintf(out, prefix+format+"\n", args...)
}

// Debug records one step of the pipeline, such as how a citation
// resolved or why a finding was skipped.
func Debug(format string, args ...any) {
	emit("[DEBUG] ", format, args...)
}

// Warn records a recoverable problem, such as a ledger write failure.
// The batch carries on; the trace keeps the evidence.
func Warn(format string, args ...any) {
	emit("[WARN] ", format, args...)
}

// Section marks the start of a named phase in the trace.
func Section(name string) {
	mu.Lock()
	defer mu.Unlock()
	if verbose {
		fmt.Fprintf(out, "\n=== %s ===\n", name)
	}
}
