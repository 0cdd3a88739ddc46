package lang

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"
)

// Predefined errors (sentinel values).
//
// Errors derived from a sentinel with [Error.With] or [Error.Wrap] still
// match it with [errors.Is].
var (
	ErrSyntax           = NewError("syntax error")
	ErrTypeMismatch     = NewError("type mismatch")
	ErrInvalidOperation = NewError("invalid operation")
	ErrDivisionByZero   = NewError("division by zero")
	ErrIllFormedTree    = NewError("ill-formed expression tree")
	ErrEmptyExpression  = NewError("empty expression")
	ErrInvalidLexeme    = NewError("invalid lexeme")
)

// Error represents an error with optional structured logging attributes.
// It implements both error and slog.LogValuer interfaces.
type Error struct {
	base  *Error      // Sentinel this error was derived from
	msg   string
	err   error       // Wrapped error (for errors.Unwrap)
	attrs []slog.Attr // Attributes for structured logging
}

// NewError creates a new Error with a message.
func NewError(msg string) *Error {
	e := &Error{msg: msg}
	e.base = e

	return e
}

// WrapError wraps a standard error into an Error.
// If err already is (or wraps) an *Error, that error is returned.
func WrapError(err error) *Error {
	var ee *Error
	if errors.As(err, &ee) {
		return ee
	}

	return &Error{err: err}
}

// Error implements the error interface.
func (e *Error) Error() string {
	part := make([]string, 0, 2)

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether e was derived from the same sentinel as target.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)

	return ok && e.base != nil && e.base == t.base
}

// LogValue implements slog.LogValuer for rich structured logging.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+2)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	return &Error{
		base:  e.base,
		msg:   e.msg,
		err:   err,
		attrs: e.attrs,
	}
}

// With adds attributes to the error for structured logging.
// This creates a new Error instance to maintain immutability.
func (e *Error) With(attrs ...slog.Attr) *Error {
	newAttrs := make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(newAttrs, e.attrs)
	copy(newAttrs[len(e.attrs):], attrs)

	return &Error{
		base:  e.base,
		msg:   e.msg,
		err:   e.err,
		attrs: newAttrs,
	}
}

// Attr returns the value of the first attribute with the given key.
func (e *Error) Attr(key string) (slog.Value, bool) {
	for _, a := range e.attrs {
		if a.Key == key {
			return a.Value, true
		}
	}

	return slog.Value{}, false
}

// SyntaxError reports a lexical or grammatical violation in an expression.
// It matches [ErrSyntax] with [errors.Is].
type SyntaxError struct {
	Position int    // Character (rune) offset into the expression
	Reason   string // What was wrong at Position
}

func (e *SyntaxError) Error() string {
	return ErrSyntax.msg + " at position " + strconv.Itoa(e.Position) +
		": " + e.Reason
}

// Is reports whether target is [ErrSyntax].
func (e *SyntaxError) Is(target error) bool {
	return ErrSyntax.Is(target)
}

// LogValue implements slog.LogValuer.
func (e *SyntaxError) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("error", ErrSyntax.msg),
		slog.Int("position", e.Position),
		slog.String("reason", e.Reason),
	)
}

func syntaxError(pos int, reason string) *SyntaxError {
	return &SyntaxError{Position: pos, Reason: reason}
}
