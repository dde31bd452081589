// Package werrors defines the typed error kinds surfaced by the weave core
// and its surrounding driver shell (spec §7). Each kind is a small struct
// implementing error with Unwrap, so callers can errors.As/errors.Is
// instead of matching on string content.
package werrors

import "fmt"

// Err is the common shape of every weave error kind: a message plus an
// optional wrapped cause.
type Err struct {
	Kind    string
	Message string
	Cause   error
}

func (e *Err) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Err) Unwrap() error { return e.Cause }

// RelationMalformed reports a compound relation used where a bare field
// reference was required by a leaf predicate (spec §4.1).
func RelationMalformed(msg string) *Err {
	return &Err{Kind: "RelationMalformed", Message: msg}
}

// TextQueryCompileError reports a surface-syntax, alias, or data-source
// build failure encountered while compiling a text query (spec §4.8, §7).
// Column is the offending column if known, -1 otherwise.
type TextQueryCompileError struct {
	Err
	Column int
}

// NewTextQueryCompileError builds a compile error at a given column (-1 if
// unknown), optionally wrapping a lower-level cause.
func NewTextQueryCompileError(msg string, column int, cause error) *TextQueryCompileError {
	return &TextQueryCompileError{
		Err:    Err{Kind: "TextQueryCompileError", Message: msg, Cause: cause},
		Column: column,
	}
}

func (e *TextQueryCompileError) Error() string {
	if e.Column >= 0 {
		return fmt.Sprintf("TextQueryCompileError at column %d: %s", e.Column, e.combinedMessage())
	}
	return fmt.Sprintf("TextQueryCompileError: %s", e.combinedMessage())
}

func (e *TextQueryCompileError) combinedMessage() string {
	if e.Err.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Err.Message, e.Err.Cause)
	}
	return e.Err.Message
}

func (e *TextQueryCompileError) Unwrap() error { return e.Err.Cause }

// DataSourceBuildError reports an unknown source type, missing required
// options, or a bad filter literal while building a data source (spec §6).
func DataSourceBuildError(msg string, cause error) *Err {
	return &Err{Kind: "DataSourceBuildError", Message: msg, Cause: cause}
}

// DataSourceError reports a runtime failure producing records from a data
// source (spec §7).
func DataSourceError(msg string, cause error) *Err {
	return &Err{Kind: "DataSourceError", Message: msg, Cause: cause}
}

// ConfigurationError reports a driver-level configuration problem; not part
// of the core, but shared here so the CLI shell can use the same kind.
func ConfigurationError(msg string, cause error) *Err {
	return &Err{Kind: "ConfigurationError", Message: msg, Cause: cause}
}
