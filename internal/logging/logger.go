package logging

import (
	"fmt"
	"io"
	"time"
)

// Logger reports repository updates, skipped children and comparator
// conflicts. It is always given stderr so that the child list printed by
// -list is the only thing on stdout.
type Logger struct {
	Writer  io.Writer
	Verbose bool
}

// New returns a Logger on writer; verbose enables the per-child and
// per-step lines behind -verbose or P2COMPOSITE_VERBOSE.
func New(writer io.Writer, verbose bool) Logger {
	return Logger{Writer: writer, Verbose: verbose}
}

// Infof writes one line. A zero Logger discards everything.
func (l Logger) Infof(format string, args ...any) {
	if l.Writer == nil {
		return
	}
	fmt.Fprintf(l.Writer, format+"\n", args...)
}

// Warnf is used for validation conflicts, shown even without -verbose.
func (l Logger) Warnf(format string, args ...any) {
	l.Infof("Warning: "+format, args...)
}

func (l Logger) Verbosef(format string, args ...any) {
	if !l.Verbose {
		return
	}
	l.Infof("Verbose: "+format, args...)
}

// Measure returns a stop function that logs the elapsed time when called.
func (l Logger) Measure(label string) func() {
	if !l.Verbose {
		return func() {}
	}
	start := time.Now()
	return func() {
		l.Verbosef("%s took %s", label, time.Since(start).Round(time.Millisecond))
	}
}
