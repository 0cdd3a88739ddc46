package lang

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/ardnew/criteria/log"
)

// demoResolver binds variable bar to 15 and function foo(n) to n*5.
func demoResolver() Resolver {
	return ResolveFunc(func(kind RefKind, name string, args []Value) Value {
		switch {
		case kind == RefVariable && name == "bar":
			return Int(15)

		case kind == RefFunction && name == "foo" && len(args) == 1:
			n, err := args[0].Int()
			if err != nil {
				return None()
			}

			return Int(n * 5)
		}

		return None()
	})
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name string
		expr string
		want any
	}{
		{"precedence", "1 + 2 * 3", int64(7)},
		{"grouping", "(1 + 2) * 3", int64(9)},
		{"left_assoc_sub", "10 - 3 - 2", int64(5)},
		{"left_assoc_div", "100 / 10 / 5", int64(2)},
		{"prefix_neg", "-3 + 4", int64(1)},
		{"prefix_not", "!true == false", true},
		{"prefix_group", "-(2 + 3) * 4", int64(-20)},
		{"prefix_in_operand", "1 + -2 * 3", int64(-5)},
		{"nested_groups", "((1))", int64(1)},
		{"group_in_group", "(2 * (3 + 4)) - 1", int64(13)},
		{"truncating_div", "7 / 2", int64(3)},
		{"truncating_div_neg", "-7 / 2", int64(-3)},
		{"mod_sign_dividend", "-7 % 3", int64(-1)},
		{"mod_positive_dividend", "7 % 3", int64(1)},
		{"relational_chain", "1 < 2 == true", true},
		{"ge", "3 >= 3", true},
		{"gt", "3 > 3", false},
		{"le", "2 <= 3", true},
		{"lt", "4 < 3", false},
		{"eq_string", "'a' == 'a'", true},
		{"ne_string", "'a' != 'b'", true},
		{"eq_bool", "true == true", true},
		{"and_short_circuit", "false && (1/0)", false},
		{"or_short_circuit", "true || (1/0)", true},
		{"and_fallback", "true && 5", int64(5)},
		{"or_fallback", "false || 'x'", "x"},
		{"ternary_true", "true ? 5", int64(5)},
		{"ternary_false", "false ? 5", false},
		{"ternary_false_skips_right", "false ? (1/0)", false},
		{"ternary_non_boolean", "5 ? 1", false},
		{"guard_band_left_assoc", "true || false && false", false},
		{"mixed", "1 + 2 == 3 && 4 > 5 || 6 % 4 == 2", true},
		{"string_escape", `'it\'s'`, "it's"},
		{"whitespace_ignored", " \t1\n+\r2 ", int64(3)},
		{"unresolved_variable", "x", nil},
		{"unresolved_function", "f(1, 2)", nil},
		{"empty", "", nil},
		{
			"demo",
			"!(10 >= 15 || 6 + 3 * 11 - 4 == 12 + -5) ? 'Got It!!!'",
			"Got It!!!",
		},
		{"resolver_round_trip", "(foo(3) == bar) ? 'Got It!!!'", "Got It!!!"},
		{"resolver_spaced_call", "foo (3) == bar", true},
		{"resolver_nested_call", "foo(foo(1)) - bar", int64(10)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Evaluate(tt.expr, demoResolver())
			if err != nil {
				t.Fatalf("Evaluate(%q) error = %v", tt.expr, err)
			}

			if got != tt.want {
				t.Errorf("Evaluate(%q) = %#v, want %#v", tt.expr, got, tt.want)
			}
		})
	}
}

func TestEvaluate_Errors(t *testing.T) {
	tests := []struct {
		name string
		expr string
		want error
	}{
		{"missing_close", "(1 + 2", ErrSyntax},
		{"stray_close", "1 + 2)", ErrSyntax},
		{"trailing_operator", "1 +", ErrSyntax},
		{"trailing_prefix", "1 + -", ErrSyntax},
		{"single_pipe", "true | false", ErrSyntax},
		{"single_amp", "true & false", ErrSyntax},
		{"lone_equals", "1 = 1", ErrSyntax},
		{"unterminated_string", "'abc", ErrSyntax},
		{"adjacent_values", "1 2", ErrSyntax},
		{"adjacent_groups", "(1)(2)", ErrSyntax},
		{"empty_group", "()", ErrSyntax},
		{"double_prefix", "!!true", ErrSyntax},
		{"unknown_character", "1 # 2", ErrSyntax},
		{"expression_argument", "foo(1 + 2)", ErrSyntax},
		{"empty_argument", "foo(1,,2)", ErrSyntax},
		{"trailing_comma", "foo(1,)", ErrSyntax},
		{"unclosed_arguments", "foo(1", ErrSyntax},
		{"number_overflow", "99999999999999999999", ErrSyntax},
		{"whitespace_only", "   ", ErrEmptyExpression},
		{"division_by_zero", "1 / 0", ErrDivisionByZero},
		{"modulo_by_zero", "1 % 0", ErrDivisionByZero},
		{"selected_division_by_zero", "true ? 1/0", ErrDivisionByZero},
		{"compare_number_string", "1 == 'a'", ErrInvalidOperation},
		{"order_strings", "'a' < 'b'", ErrInvalidOperation},
		{"add_booleans", "true + false", ErrInvalidOperation},
		{"not_number", "!5", ErrInvalidOperation},
		{"negate_boolean", "-true", ErrInvalidOperation},
		{"guard_non_boolean", "5 || true", ErrInvalidOperation},
		{"unbound_operand", "x == 1", ErrInvalidOperation},
		{"unbound_equality", "x == y", ErrInvalidOperation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Evaluate(tt.expr, demoResolver())
			if !errors.Is(err, tt.want) {
				t.Fatalf("Evaluate(%q) error = %v, want %v", tt.expr, err, tt.want)
			}

			if got != nil {
				t.Errorf("Evaluate(%q) = %#v on error, want nil", tt.expr, got)
			}
		})
	}
}

func TestEvaluate_KindMismatch(t *testing.T) {
	values := []Value{Bool(true), Int(1), Str("a"), None()}

	operator := func(l, r Value) Resolver {
		return ResolveFunc(func(_ RefKind, name string, _ []Value) Value {
			if name == "l" {
				return l
			}

			return r
		})
	}

	for _, l := range values {
		for _, r := range values {
			for _, op := range []string{"==", "!=", ">=", ">", "<=", "<", "+", "-", "*", "/", "%"} {
				equality := op == "==" || op == "!="
				numeric := l.Kind() == KindNumber && r.Kind() == KindNumber
				same := l.Kind() == r.Kind() && !l.IsNone()

				if (equality && same) || (!equality && numeric) {
					continue
				}

				expr := "l " + op + " r"

				_, err := Evaluate(expr, operator(l, r))
				if !errors.Is(err, ErrInvalidOperation) {
					t.Errorf("%s with l=%v r=%v: error = %v, want %v",
						expr, l, r, err, ErrInvalidOperation)
				}
			}
		}
	}
}

func TestEvaluate_Idempotent(t *testing.T) {
	const expr = "(foo(3) == bar) ? 'Got It!!!'"

	first, err := Evaluate(expr, demoResolver())
	if err != nil {
		t.Fatalf("first Evaluate error = %v", err)
	}

	second, err := Evaluate(expr, demoResolver())
	if err != nil {
		t.Fatalf("second Evaluate error = %v", err)
	}

	if first != second {
		t.Errorf("results differ: %#v != %#v", first, second)
	}
}

func TestEvaluate_Concurrent(t *testing.T) {
	const expr = "!(10 >= 15 || 6 + 3 * 11 - 4 == 12 + -5) ? foo(bar)"

	var wg sync.WaitGroup

	errs := make(chan error, 16)

	for range 16 {
		wg.Go(func() {
			for range 100 {
				got, err := Evaluate(expr, demoResolver())
				if err != nil {
					errs <- err

					return
				}

				if got != int64(75) {
					errs <- errors.New("unexpected result")

					return
				}
			}
		})
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}

func TestEvaluateFunc(t *testing.T) {
	var calls []string

	fn := func(kind RefKind, name string, args []Value) Value {
		calls = append(calls, kind.String()+":"+name)

		if kind == RefFunction {
			return Int(int64(len(args)))
		}

		return Int(2)
	}

	got, err := EvaluateFunc("n(1, 'a', x) * x", fn)
	if err != nil {
		t.Fatalf("EvaluateFunc error = %v", err)
	}

	if got != int64(6) {
		t.Errorf("EvaluateFunc = %#v, want 6", got)
	}

	want := "variable:x function:n variable:x"
	if strings.Join(calls, " ") != want {
		t.Errorf("resolver calls = %v, want %s", calls, want)
	}
}

func TestEvaluate_NilResolver(t *testing.T) {
	got, err := Evaluate("x", nil)
	if err != nil {
		t.Fatalf("Evaluate error = %v", err)
	}

	if got != nil {
		t.Errorf("Evaluate = %#v, want nil", got)
	}
}

func TestInterpreter(t *testing.T) {
	var buf bytes.Buffer

	in := New(
		WithResolver(demoResolver()),
		WithLogger(log.Make(&buf,
			log.WithLevel(log.LevelTrace),
			log.WithFormat(log.FormatJSON),
			log.WithPretty(false),
		)),
	)

	got, err := in.Evaluate(t.Context(), "foo(2) + bar")
	if err != nil {
		t.Fatalf("Evaluate error = %v", err)
	}

	if got != int64(25) {
		t.Errorf("Evaluate = %#v, want 25", got)
	}

	for _, msg := range []string{"parse start", "parse complete", "solve complete"} {
		if !strings.Contains(buf.String(), msg) {
			t.Errorf("log output missing %q:\n%s", msg, buf.String())
		}
	}

	buf.Reset()

	if _, err := in.Evaluate(t.Context(), "1 +"); !errors.Is(err, ErrSyntax) {
		t.Errorf("Evaluate error = %v, want %v", err, ErrSyntax)
	}

	if !strings.Contains(buf.String(), "parse failed") {
		t.Errorf("log output missing parse failure:\n%s", buf.String())
	}
}

func TestInterpreter_Options(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
		want any
	}{
		{"default", nil, nil},
		{"nil_resolver", []Option{WithResolver(nil)}, nil},
		{
			"resolve_func",
			[]Option{WithResolveFunc(func(RefKind, string, []Value) Value {
				return Str("bound")
			})},
			"bound",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := New(tt.opts...)

			got, err := in.Evaluate(t.Context(), "anything")
			if err != nil {
				t.Fatalf("Evaluate error = %v", err)
			}

			if got != tt.want {
				t.Errorf("Evaluate = %#v, want %#v", got, tt.want)
			}
		})
	}
}
