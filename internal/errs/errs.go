// Package errs implements the engine's three-way error taxonomy
// (spec.md §7): user-visible JS exceptions, parser-reported syntax
// errors, and engine-internal faults.
package errs

import (
	"fmt"
)

// Position is a source location, produced by the frontend from the
// external parser's own position type.
type Position struct {
	Line   int
	Column int
}

// StackFrame is one frame of a call-stack snapshot.
type StackFrame struct {
	FunctionName string
	FileName     string
	Pos          Position
}

func (f StackFrame) String() string {
	if f.FileName == "" {
		return fmt.Sprintf("%s [line %d, column %d]", f.FunctionName, f.Pos.Line, f.Pos.Column)
	}
	return fmt.Sprintf("%s (%s) [line %d, column %d]", f.FunctionName, f.FileName, f.Pos.Line, f.Pos.Column)
}

// StackTrace is a call stack, ordered oldest (bottom) to newest (top),
// matching the order call frames are pushed during execution.
type StackTrace []StackFrame

func (st StackTrace) String() string {
	var s string
	for i := len(st) - 1; i >= 0; i-- {
		s += st[i].String()
		if i > 0 {
			s += "\n"
		}
	}
	return s
}

func (st StackTrace) Top() *StackFrame {
	if len(st) == 0 {
		return nil
	}
	return &st[len(st)-1]
}

// RuntimeError is a user-visible JS exception (spec.md §7 kind 1): it
// carries the thrown value (an arbitrary ECMAScript Value, not
// necessarily an Error instance - user code can `throw 42`) plus the
// call stack active at the throw site. The interpreter surfaces
// exactly this type to embedders; it is always catchable by a script
// try/catch, and at the Go API boundary it is an ordinary `error`.
type RuntimeError struct {
	// Message holds the thrown value rendered as text ("Name: message"
	// for an error object, its DebugString otherwise), not the value
	// itself: this package sits below internal/value's import and
	// cannot reference value.Value, so interp constructs RuntimeError
	// with the string already rendered and keeps the live Value
	// alongside it via interp.ThrownValue for embedders that need it.
	Message string
	Trace   StackTrace
}

func (e *RuntimeError) Error() string {
	if len(e.Trace) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s\n%s", e.Message, e.Trace.String())
}

// ParseError is a typed parse-failure result (spec.md §7 kind 2). It
// never enters the exception channel: a parse failure happens before
// any script code runs, so there is no try/catch scope to deliver it
// to.
type ParseError struct {
	Reason string
	Start  Position
	End    Position
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("SyntaxError: %s (%d:%d-%d:%d)", e.Reason, e.Start.Line, e.Start.Column, e.End.Line, e.End.Column)
}

// InternalError is an engine-internal fault (spec.md §7 kind 3):
// an assertion failure, an unreachable switch branch, or a request for
// something this engine deliberately does not implement (destructuring,
// async execution - see DESIGN.md's Open Question decisions). It is
// fatal and never catchable by user code; the interpreter's dispatch
// loop returns it directly to its caller instead of routing it through
// handler regions.
type InternalError struct {
	Message string
	Trace   StackTrace
}

func (e *InternalError) Error() string {
	if len(e.Trace) == 0 {
		return "internal error: " + e.Message
	}
	return fmt.Sprintf("internal error: %s\n%s", e.Message, e.Trace.String())
}

func NewInternal(format string, args ...any) *InternalError {
	return &InternalError{Message: fmt.Sprintf(format, args...)}
}
