package ir

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind enumerates the error taxonomy of the core. These are kinds, not Go
// types: every failure the builder surfaces is an *Error tagged with one of
// these.
type Kind int

const (
	// TypeMismatch is a value's type failing an operation's precondition,
	// e.g. a non-integer operand to a bitwise op, or a non-pointer to a
	// pointer cast.
	TypeMismatch Kind = iota + 1
	// NotSupported is a requested conversion, object kind, or target that
	// cannot be represented, e.g. a managed class literal or a static array
	// under ArrayModeRejectStatic.
	NotSupported
	// ArgumentNull is a required argument that was the zero value where a
	// non-zero value was required.
	ArgumentNull
	// ArgumentOutOfRange is a precondition violated on an index/count/span.
	ArgumentOutOfRange
	// InvalidState is an operation attempted in a state that forbids it,
	// e.g. sealing an already-sealed block.
	InvalidState
	// Assertion is an internal invariant violation (phi prefix ordering,
	// operand type, block ownership).
	Assertion
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case TypeMismatch:
		return "TypeMismatch"
	case NotSupported:
		return "NotSupported"
	case ArgumentNull:
		return "ArgumentNull"
	case ArgumentOutOfRange:
		return "ArgumentOutOfRange"
	case InvalidState:
		return "InvalidState"
	case Assertion:
		return "Assertion"
	default:
		return "Unknown"
	}
}

// Error is the single error type the core surfaces. It always carries the
// Location of the offending operation, a stable MessageKey callers can
// switch on (e.g. "NotSupportedConversion"), and a stack trace captured at
// construction via github.com/pkg/errors so that a panic-free caller can
// still log where inside the builder the failure originated.
type Error struct {
	Kind       Kind
	Op         string
	MessageKey string
	Location   Location
	cause      error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s (%s) at %s", e.Op, e.MessageKey, e.Kind, e.Location)
}

// Unwrap allows errors.Is/errors.As to see through to the captured stack.
func (e *Error) Unwrap() error { return e.cause }

// newError builds an *Error, attaching a stack trace via pkg/errors so the
// cause chain is walkable with errors.Cause/errors.Unwrap.
func newError(kind Kind, loc Location, op, messageKey string) *Error {
	e := &Error{Kind: kind, Op: op, MessageKey: messageKey, Location: loc}
	e.cause = errors.WithStack(errors.New(messageKey))
	return e
}

func errTypeMismatch(loc Location, op, messageKey string) *Error {
	return newError(TypeMismatch, loc, op, messageKey)
}

func errNotSupported(loc Location, op, messageKey string) *Error {
	return newError(NotSupported, loc, op, messageKey)
}

func errArgumentNull(loc Location, op, arg string) *Error {
	return newError(ArgumentNull, loc, op, arg+" must not be nil/zero")
}

func errArgumentOutOfRange(loc Location, op, arg string) *Error {
	return newError(ArgumentOutOfRange, loc, op, arg+" is out of range")
}

func errInvalidState(loc Location, op, messageKey string) *Error {
	return newError(InvalidState, loc, op, messageKey)
}

// assert panics with an *Error tagged Assertion when cond is false and
// debug assertions are enabled on the context; otherwise it is a no-op, so
// the check is elided entirely unless EnableDebugAssertions is on.
func assert(flags ContextFlags, cond bool, loc Location, op, msg string) {
	if cond || !flags.EnableDebugAssertions {
		return
	}
	panic(newError(Assertion, loc, op, msg))
}
