package lang

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"
)

func TestError_Is(t *testing.T) {
	derived := ErrInvalidOperation.With(slog.String("operator", "+"))
	wrapped := ErrDivisionByZero.Wrap(errors.New("cause"))

	tests := []struct {
		name   string
		err    error
		target error
		want   bool
	}{
		{"sentinel", ErrSyntax, ErrSyntax, true},
		{"with_attrs", derived, ErrInvalidOperation, true},
		{"with_attrs_other", derived, ErrDivisionByZero, false},
		{"wrapped", wrapped, ErrDivisionByZero, true},
		{"fmt_wrapped", fmt.Errorf("outer: %w", derived), ErrInvalidOperation, true},
		{"syntax_error", syntaxError(3, "bad"), ErrSyntax, true},
		{"syntax_error_other", syntaxError(3, "bad"), ErrTypeMismatch, false},
		{"plain_wrap", WrapError(errors.New("x")), ErrSyntax, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errors.Is(tt.err, tt.target); got != tt.want {
				t.Errorf("errors.Is(%v, %v) = %v, want %v", tt.err, tt.target, got, tt.want)
			}
		})
	}
}

func TestError_Message(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"sentinel", ErrEmptyExpression, "empty expression"},
		{"wrapped", ErrTypeMismatch.Wrap(errors.New("inner")), "type mismatch: inner"},
		{"cause_only", WrapError(errors.New("plain")), "plain"},
		{"syntax", syntaxError(4, "unexpected )"), "syntax error at position 4: unexpected )"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestError_WithIsImmutable(t *testing.T) {
	base := ErrInvalidOperation.With(slog.String("a", "1"))
	_ = base.With(slog.String("b", "2"))

	if _, ok := base.Attr("b"); ok {
		t.Error("With mutated its receiver")
	}

	if v, ok := base.Attr("a"); !ok || v.String() != "1" {
		t.Errorf("Attr(a) = %v, %v", v, ok)
	}
}

func TestWrapError_Unwraps(t *testing.T) {
	inner := ErrDivisionByZero.With(slog.Int64("dividend", 1))
	outer := fmt.Errorf("context: %w", inner)

	if got := WrapError(outer); got != inner {
		t.Errorf("WrapError returned %v, want the inner *Error", got)
	}
}

func TestSyntaxError_As(t *testing.T) {
	_, err := Evaluate("1 + )", nil)

	var se *SyntaxError
	if !errors.As(err, &se) {
		t.Fatalf("error %v is not a *SyntaxError", err)
	}

	if se.Position != 4 {
		t.Errorf("Position = %d, want 4", se.Position)
	}
}

func TestError_LogValue(t *testing.T) {
	var b strings.Builder

	logger := slog.New(slog.NewTextHandler(&b, nil))
	logger.Info("failed",
		slog.Any("error", ErrDivisionByZero.With(slog.String("operator", "/"))),
		slog.Any("syntax", syntaxError(2, "oops")),
	)

	out := b.String()
	for _, want := range []string{
		"error.error=\"division by zero\"",
		"error.operator=/",
		"syntax.position=2",
		"syntax.reason=oops",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q: %s", want, out)
		}
	}
}
