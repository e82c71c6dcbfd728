// Package diagnostics defines analyzer-reported errors and the inline
// ---@diagnostic disable/enable filtering machinery. Errors are keyed
// by (FileId, Range) since the core holds no token stream.
package diagnostics

import (
	"fmt"

	"github.com/emmylua-go/semacore/internal/ids"
)

// DiagnosticCode is a stable rule identifier, e.g. "unresolved-require".
type DiagnosticCode string

// DiagnosticError is an analyzer-reported error, stored in the
// diagnostic index and rendered by an external LSP surface.
type DiagnosticError struct {
	File    ids.FileId
	Range   ids.Range
	Code    DiagnosticCode
	Message string
}

func (e *DiagnosticError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func New(file ids.FileId, rng ids.Range, code DiagnosticCode, format string, args ...interface{}) *DiagnosticError {
	return &DiagnosticError{File: file, Range: rng, Code: code, Message: fmt.Sprintf(format, args...)}
}
