package lang

import (
	"cmp"
	"log/slog"
	"math"
	"strconv"
	"strings"
)

// Kind identifies what a [Value] holds.
type Kind uint8

const (
	KindNone       Kind = iota // none
	KindBoolean                // boolean
	KindNumber                 // number
	KindString                 // string
	KindPrefix                 // prefix
	KindOperation              // operation
	KindGroupOpen              // group-open
	KindGroupClose             // group-close
)

var kindName = [...]string{
	KindNone:       "none",
	KindBoolean:    "boolean",
	KindNumber:     "number",
	KindString:     "string",
	KindPrefix:     "prefix",
	KindOperation:  "operation",
	KindGroupOpen:  "group-open",
	KindGroupClose: "group-close",
}

func (k Kind) String() string {
	if int(k) < len(kindName) {
		return kindName[k]
	}

	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// IsOperand reports whether values of kind k can be evaluation results.
func (k Kind) IsOperand() bool { return k <= KindString }

// Value is an immutable tagged unit: either an operand (none, boolean,
// number, string) or one of the structural tokens produced by the lexer.
//
// The zero Value is None.
type Value struct {
	text string // string payload, or the operator/prefix lexeme
	num  int64  // number payload; 0 or 1 for booleans
	kind Kind
}

// None returns the value representing "no value".
func None() Value { return Value{} }

// Bool returns a boolean value.
func Bool(b bool) Value {
	v := Value{kind: KindBoolean}
	if b {
		v.num = 1
	}

	return v
}

// Int returns a number value.
func Int(n int64) Value { return Value{kind: KindNumber, num: n} }

// Str returns a string value.
func Str(s string) Value { return Value{kind: KindString, text: s} }

// Prefix returns a prefix operator token. Valid lexemes are "!" and "-".
func Prefix(lexeme string) (Value, error) {
	if _, ok := prefixes[lexeme]; !ok {
		return None(), ErrInvalidLexeme.With(
			slog.String("kind", KindPrefix.String()),
			slog.String("lexeme", lexeme),
		)
	}

	return Value{kind: KindPrefix, text: lexeme}, nil
}

// Operation returns a binary operator token.
func Operation(lexeme string) (Value, error) {
	if _, ok := operators[lexeme]; !ok {
		return None(), ErrInvalidLexeme.With(
			slog.String("kind", KindOperation.String()),
			slog.String("lexeme", lexeme),
		)
	}

	return Value{kind: KindOperation, text: lexeme}, nil
}

func groupOpen() Value  { return Value{kind: KindGroupOpen} }
func groupClose() Value { return Value{kind: KindGroupClose} }

// Kind returns the kind of v.
func (v Value) Kind() Kind { return v.kind }

// IsNone reports whether v holds no value.
func (v Value) IsNone() bool { return v.kind == KindNone }

// Lexeme returns the operator text of a prefix or operation token, or the
// empty string for any other kind.
func (v Value) Lexeme() string {
	if v.kind == KindPrefix || v.kind == KindOperation {
		return v.text
	}

	return ""
}

// Bool returns the native boolean held by v.
func (v Value) Bool() (bool, error) {
	if v.kind != KindBoolean {
		return false, v.mismatch(KindBoolean)
	}

	return v.num != 0, nil
}

// Int returns the native integer held by v.
func (v Value) Int() (int64, error) {
	if v.kind != KindNumber {
		return 0, v.mismatch(KindNumber)
	}

	return v.num, nil
}

// Text returns the native string held by v.
func (v Value) Text() (string, error) {
	if v.kind != KindString {
		return "", v.mismatch(KindString)
	}

	return v.text, nil
}

func (v Value) mismatch(want Kind) error {
	return ErrTypeMismatch.With(
		slog.String("want", want.String()),
		slog.String("have", v.kind.String()),
	)
}

// Native returns v as a Go value: nil, bool, int64, or string.
// Structural tokens return their textual form.
func (v Value) Native() any {
	switch v.kind {
	case KindNone:
		return nil
	case KindBoolean:
		return v.num != 0
	case KindNumber:
		return v.num
	case KindString:
		return v.text
	default:
		return v.String()
	}
}

// String renders v the way it would be written in an expression.
func (v Value) String() string {
	switch v.kind {
	case KindNone:
		return "none"
	case KindBoolean:
		return strconv.FormatBool(v.num != 0)
	case KindNumber:
		return strconv.FormatInt(v.num, 10)
	case KindString:
		return quote(v.text)
	case KindPrefix, KindOperation:
		return v.text
	case KindGroupOpen:
		return "("
	case KindGroupClose:
		return ")"
	default:
		return v.kind.String()
	}
}

// LogValue implements slog.LogValuer.
func (v Value) LogValue() slog.Value {
	switch v.kind {
	case KindBoolean:
		return slog.BoolValue(v.num != 0)
	case KindNumber:
		return slog.Int64Value(v.num)
	case KindString:
		return slog.StringValue(v.text)
	default:
		return slog.StringValue(v.String())
	}
}

func quote(s string) string {
	var b strings.Builder

	b.Grow(len(s) + 2)
	b.WriteByte('\'')

	for _, r := range s {
		if r == '\'' || r == '\\' {
			b.WriteByte('\\')
		}

		b.WriteRune(r)
	}

	b.WriteByte('\'')

	return b.String()
}

// FromNative converts a Go value into a Value. Accepted types are nil, bool,
// string, every integer type that fits in int64, and Value itself.
func FromNative(x any) (Value, error) {
	switch n := x.(type) {
	case nil:
		return None(), nil
	case Value:
		return n, nil
	case bool:
		return Bool(n), nil
	case string:
		return Str(n), nil
	case int:
		return Int(int64(n)), nil
	case int8:
		return Int(int64(n)), nil
	case int16:
		return Int(int64(n)), nil
	case int32:
		return Int(int64(n)), nil
	case int64:
		return Int(n), nil
	case uint8:
		return Int(int64(n)), nil
	case uint16:
		return Int(int64(n)), nil
	case uint32:
		return Int(int64(n)), nil
	case uint:
		if uint64(n) <= math.MaxInt64 {
			return Int(int64(n)), nil
		}
	case uint64:
		if n <= math.MaxInt64 {
			return Int(int64(n)), nil
		}
	}

	return None(), ErrTypeMismatch.With(
		slog.String("want", "bool, integer, or string"),
		slog.String("have", typeName(x)),
	)
}

// Equal reports whether v and w hold the same payload. Both must be
// booleans, numbers, or strings of the same kind.
func (v Value) Equal(w Value) (bool, error) {
	if v.kind != w.kind || v.kind == KindNone || !v.kind.IsOperand() {
		return false, invalid("==", v, w)
	}

	return v.num == w.num && v.text == w.text, nil
}

// Compare orders two numbers, returning -1, 0, or +1.
func (v Value) Compare(w Value) (int, error) {
	if v.kind != KindNumber || w.kind != KindNumber {
		return 0, invalid("<=>", v, w)
	}

	return cmp.Compare(v.num, w.num), nil
}

// Add returns v + w.
func (v Value) Add(w Value) (Value, error) { return v.arith("+", w) }

// Sub returns v - w.
func (v Value) Sub(w Value) (Value, error) { return v.arith("-", w) }

// Mul returns v * w.
func (v Value) Mul(w Value) (Value, error) { return v.arith("*", w) }

// Div returns v / w truncated toward zero.
func (v Value) Div(w Value) (Value, error) { return v.arith("/", w) }

// Mod returns the remainder of v / w, with the sign of v.
func (v Value) Mod(w Value) (Value, error) { return v.arith("%", w) }

// Not returns the logical negation of a boolean.
func (v Value) Not() (Value, error) {
	if v.kind != KindBoolean {
		return None(), invalid("!", v)
	}

	return Bool(v.num == 0), nil
}

// Neg returns the arithmetic negation of a number.
func (v Value) Neg() (Value, error) {
	if v.kind != KindNumber {
		return None(), invalid("-", v)
	}

	return Int(-v.num), nil
}

func (v Value) arith(op string, w Value) (Value, error) {
	if v.kind != KindNumber || w.kind != KindNumber {
		return None(), invalid(op, v, w)
	}

	switch op {
	case "+":
		return Int(v.num + w.num), nil
	case "-":
		return Int(v.num - w.num), nil
	case "*":
		return Int(v.num * w.num), nil
	case "/", "%":
		if w.num == 0 {
			return None(), ErrDivisionByZero.With(
				slog.String("operator", op),
				slog.Int64("dividend", v.num),
			)
		}

		if op == "/" {
			return Int(v.num / w.num), nil
		}

		return Int(v.num % w.num), nil
	}

	return None(), invalid(op, v, w)
}

// apply evaluates the binary operator op with both operands already solved.
func (v Value) apply(op string, w Value) (Value, error) {
	switch op {
	case "==", "!=":
		eq, err := v.Equal(w)
		if err != nil {
			return None(), invalid(op, v, w)
		}

		return Bool(eq == (op == "==")), nil

	case ">=", ">", "<=", "<":
		c, err := v.Compare(w)
		if err != nil {
			return None(), invalid(op, v, w)
		}

		switch op {
		case ">=":
			return Bool(c >= 0), nil
		case ">":
			return Bool(c > 0), nil
		case "<=":
			return Bool(c <= 0), nil
		default:
			return Bool(c < 0), nil
		}

	case "+", "-", "*", "/", "%":
		return v.arith(op, w)
	}

	return None(), invalid(op, v, w)
}

func invalid(op string, operands ...Value) error {
	attrs := make([]slog.Attr, 0, len(operands)+1)
	attrs = append(attrs, slog.String("operator", op))

	for i, x := range operands {
		attrs = append(attrs, slog.String("operand"+strconv.Itoa(i), x.kind.String()))
	}

	return ErrInvalidOperation.With(attrs...)
}
