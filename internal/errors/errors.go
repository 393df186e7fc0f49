// Package errors defines the error kinds the VM core must distinguish
// and a common representation carrying source location and call-stack
// context for any of them.
package errors

import (
	"fmt"
	"strings"
)

// ErrorType identifies which failure mode produced an error.
type ErrorType string

const (
	TypeError       ErrorType = "TypeError"
	ArithmeticError ErrorType = "ArithmeticError"
	ComparisonError ErrorType = "ComparisonError"
	ConcatError     ErrorType = "ConcatError"
	StackError      ErrorType = "StackError"
	LoadError       ErrorType = "LoadError"
	RuntimeError    ErrorType = "RuntimeError"
)

// SourceLocation is a position in a chunk, taken from a Prototype's
// debug line info when available.
type SourceLocation struct {
	File   string
	Line   int
	Column int
}

// StackFrame is a single entry in a VMError's call stack.
type StackFrame struct {
	Function string
	File     string
	Line     int
}

// VMError is the concrete error type returned by the value, stack,
// loader, and vm packages. A fatal RuntimeError marks an
// internal invariant violation; every other kind is recoverable at
// State.Call's boundary (spec §7's propagation policy).
type VMError struct {
	Type      ErrorType
	Message   string
	Location  SourceLocation
	CallStack []StackFrame
}

func (e *VMError) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s: %s", e.Type, e.Message))
	if e.Location.File != "" {
		sb.WriteString(fmt.Sprintf(" (%s:%d)", e.Location.File, e.Location.Line))
	}
	for _, frame := range e.CallStack {
		if frame.Function != "" {
			sb.WriteString(fmt.Sprintf("\n\tat %s (%s:%d)", frame.Function, frame.File, frame.Line))
		} else {
			sb.WriteString(fmt.Sprintf("\n\tat %s:%d", frame.File, frame.Line))
		}
	}
	return sb.String()
}

// Fatal reports whether the error is a RuntimeError — always fatal,
// never caught by normal error propagation.
func (e *VMError) Fatal() bool {
	return e.Type == RuntimeError
}

func newError(t ErrorType, format string, args ...any) *VMError {
	return &VMError{Type: t, Message: fmt.Sprintf(format, args...)}
}

func NewTypeError(format string, args ...any) *VMError {
	return newError(TypeError, format, args...)
}

func NewArithmeticError(format string, args ...any) *VMError {
	return newError(ArithmeticError, format, args...)
}

func NewComparisonError(format string, args ...any) *VMError {
	return newError(ComparisonError, format, args...)
}

func NewConcatError(format string, args ...any) *VMError {
	return newError(ConcatError, format, args...)
}

func NewStackError(format string, args ...any) *VMError {
	return newError(StackError, format, args...)
}

func NewLoadError(format string, args ...any) *VMError {
	return newError(LoadError, format, args...)
}

func NewRuntimeError(format string, args ...any) *VMError {
	return newError(RuntimeError, format, args...)
}

// WithLocation attaches a source location to e and returns e.
func (e *VMError) WithLocation(file string, line int) *VMError {
	e.Location = SourceLocation{File: file, Line: line}
	return e
}

// PushFrame appends a call-stack frame; frames are pushed as the error
// unwinds, so CallStack runs innermost first.
func (e *VMError) PushFrame(function, file string, line int) *VMError {
	e.CallStack = append(e.CallStack, StackFrame{Function: function, File: file, Line: line})
	return e
}
