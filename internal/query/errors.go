package query

import "fmt"

// ErrorKind classifies query failures for status-line display.
type ErrorKind int

const (
	// ErrUnknownColumn means a step referenced a column absent from its
	// input schema.
	ErrUnknownColumn ErrorKind = iota
	// ErrTypeMismatch means an expression combined incompatible types.
	ErrTypeMismatch
	// ErrUnsupportedOperation means the step asked for something the engine
	// does not implement.
	ErrUnsupportedOperation
	// ErrBadExpression means the expression failed to compile.
	ErrBadExpression
)

func (k ErrorKind) String() string {
	switch k {
	case ErrUnknownColumn:
		return "unknown column"
	case ErrTypeMismatch:
		return "type mismatch"
	case ErrUnsupportedOperation:
		return "unsupported operation"
	case ErrBadExpression:
		return "bad expression"
	default:
		return "query error"
	}
}

// Error is a rejected pipeline step. The step is not appended and the prior
// view stays valid; only the message surfaces to the status line.
type Error struct {
	Kind   ErrorKind
	Column string // offending identifier for ErrUnknownColumn
	Detail string
	Err    error
}

func (e *Error) Error() string {
	switch {
	case e.Kind == ErrUnknownColumn && e.Column != "":
		return fmt.Sprintf("%s: %q", e.Kind, e.Column)
	case e.Detail != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Detail, e.Err)
	case e.Detail != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		return e.Kind.String()
	}
}

func (e *Error) Unwrap() error { return e.Err }

func unknownColumn(name string) *Error {
	return &Error{Kind: ErrUnknownColumn, Column: name}
}
