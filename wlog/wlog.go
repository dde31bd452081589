// Package wlog provides the logging capability passed into weave
// components. There is no process-wide logger singleton (spec §9 Design
// Notes): every component that can emit a warning or debug notice takes a
// Logger at construction.
package wlog

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

// Logger is the capability components depend on. Levels are deliberately
// few: the core only ever warns (join-field collisions, spec §4.5) or
// logs at debug (source-quirk notices, spec §9).
type Logger interface {
	Debugf(format string, args ...interface{})
	Warnf(format string, args ...interface{})
}

// Noop discards everything; the default for components built as a library
// rather than through the CLI driver.
type Noop struct{}

func (Noop) Debugf(string, ...interface{}) {}
func (Noop) Warnf(string, ...interface{})  {}

// Console writes colorized, leveled lines to the given writer, auto-
// detecting color support the same simplified way as the teacher's
// annotations.OutputFormatter.
type Console struct {
	writer   io.Writer
	useColor bool
	debug    bool
}

// NewConsole builds a Console logger. debug enables Debugf output; it is
// silent by default so that -verbose (or equivalent) must opt in.
func NewConsole(w io.Writer, debug bool) *Console {
	if w == nil {
		w = os.Stderr
	}
	useColor := false
	if f, ok := w.(*os.File); ok {
		useColor = isTerminal(f.Fd())
	}
	return &Console{writer: w, useColor: useColor, debug: debug}
}

func (c *Console) Debugf(format string, args ...interface{}) {
	if !c.debug {
		return
	}
	line := fmt.Sprintf(format, args...)
	if c.useColor {
		fmt.Fprintln(c.writer, color.New(color.FgCyan).Sprintf("debug: %s", line))
		return
	}
	fmt.Fprintf(c.writer, "debug: %s\n", line)
}

func (c *Console) Warnf(format string, args ...interface{}) {
	line := fmt.Sprintf(format, args...)
	if c.useColor {
		fmt.Fprintln(c.writer, color.New(color.FgYellow).Sprintf("warning: %s", line))
		return
	}
	fmt.Fprintf(c.writer, "warning: %s\n", line)
}

// isTerminal is a simplified stdout/stderr check, same heuristic the
// teacher uses in datalog/annotations/output.go rather than pulling in a
// platform-specific terminal-detection dependency.
func isTerminal(fd uintptr) bool {
	return fd == uintptr(1) || fd == uintptr(2)
}
