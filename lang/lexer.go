package lang

import (
	"log/slog"
	"math"
	"strings"
	"unicode"
)

// grammar records what kind of token was emitted last. It decides which
// productions are legal for the next character.
type grammar uint8

const (
	afterStart    grammar = iota // nothing emitted yet
	afterPrefix                  // "!" or unary "-"
	afterOperator                // binary operator
	afterOpen                    // "("
	afterValue                   // literal or resolved reference
	afterClose                   // ")"
)

// prefixable reports whether a prefix operator may appear next.
func (g grammar) prefixable() bool {
	return g == afterStart || g == afterOperator || g == afterOpen
}

// operand reports whether a number or identifier may appear next.
func (g grammar) operand() bool {
	return g.prefixable() || g == afterPrefix
}

// produced reports whether the last token yields a value, which a binary
// operator or ")" may follow.
func (g grammar) produced() bool {
	return g == afterValue || g == afterClose
}

// sink consumes the lexer's tokens. [Tree] is the production sink.
type sink interface {
	append(v Value) bool
}

// lexer scans an expression one character at a time, resolving references
// as it meets them and handing each token to a sink.
type lexer struct {
	resolver Resolver
	sink     sink
	src      []rune
	opens    []int // positions of unclosed "("
	pos      int
	count    int // tokens emitted
	last     grammar
}

func newLexer(src string, r Resolver, s sink) *lexer {
	if r == nil {
		r = Default()
	}

	return &lexer{resolver: r, sink: s, src: []rune(src)}
}

func (l *lexer) run() error {
	for l.pos < len(l.src) {
		var err error

		switch r := l.src[l.pos]; {
		case r == '(':
			err = l.open()
		case r == ')':
			err = l.close()
		case r == '\'':
			err = l.scanString()
		case isDigit(r):
			err = l.scanNumber()
		case isLetter(r):
			err = l.scanReference()
		case unicode.IsSpace(r) || unicode.IsControl(r):
			l.pos++
		default:
			err = l.scanOperator()
		}

		if err != nil {
			return err
		}
	}

	return l.finish()
}

func (l *lexer) finish() error {
	if n := len(l.opens); n > 0 {
		return syntaxError(l.opens[n-1], "unclosed group")
	}

	if l.last == afterPrefix || l.last == afterOperator {
		return syntaxError(len(l.src), "unexpected end of expression")
	}

	return nil
}

func (l *lexer) emit(v Value, at int, next grammar) error {
	if !l.sink.append(v) {
		return syntaxError(at, "misplaced "+v.String())
	}

	l.count++
	l.last = next

	return nil
}

func (l *lexer) peek(offset int) rune {
	if i := l.pos + offset; i < len(l.src) {
		return l.src[i]
	}

	return 0
}

func (l *lexer) skipSpace() {
	for l.pos < len(l.src) && unicode.IsSpace(l.src[l.pos]) {
		l.pos++
	}
}

func (l *lexer) open() error {
	at := l.pos
	if !l.last.operand() {
		return syntaxError(at, "unexpected (")
	}

	l.pos++
	l.opens = append(l.opens, at)

	return l.emit(groupOpen(), at, afterOpen)
}

func (l *lexer) close() error {
	at := l.pos
	if len(l.opens) == 0 {
		return syntaxError(at, "unmatched )")
	}

	if !l.last.produced() {
		return syntaxError(at, "unexpected )")
	}

	l.pos++
	l.opens = l.opens[:len(l.opens)-1]

	return l.emit(groupClose(), at, afterClose)
}

func (l *lexer) scanString() error {
	at := l.pos
	if !l.last.prefixable() {
		return syntaxError(at, "unexpected string")
	}

	s, err := l.readString()
	if err != nil {
		return err
	}

	return l.emit(Str(s), at, afterValue)
}

func (l *lexer) scanNumber() error {
	at := l.pos
	if !l.last.operand() {
		return syntaxError(at, "unexpected number")
	}

	n, err := l.readNumber()
	if err != nil {
		return err
	}

	return l.emit(n, at, afterValue)
}

func (l *lexer) scanReference() error {
	at := l.pos
	if !l.last.operand() {
		return syntaxError(at, "unexpected identifier")
	}

	v, err := l.readReference()
	if err != nil {
		return err
	}

	return l.emit(v, at, afterValue)
}

func (l *lexer) scanOperator() error {
	at := l.pos
	r := l.src[at]

	switch r {
	case '!', '-':
		if l.last.prefixable() {
			l.pos++

			p, _ := Prefix(string(r))

			return l.emit(p, at, afterPrefix)
		}

		if r == '-' {
			return l.binary("-", 1)
		}

		if l.peek(1) == '=' {
			return l.binary("!=", 2)
		}

		return syntaxError(at, "expected !=")

	case '|', '&':
		if l.peek(1) != r {
			return syntaxError(at, "expected "+string(r)+string(r))
		}

		return l.binary(string(r)+string(r), 2)

	case '=':
		if l.peek(1) != '=' {
			return syntaxError(at, "expected ==")
		}

		return l.binary("==", 2)

	case '>', '<':
		if l.peek(1) == '=' {
			return l.binary(string(r)+"=", 2)
		}

		return l.binary(string(r), 1)

	case '?', '+', '*', '/', '%':
		return l.binary(string(r), 1)
	}

	return syntaxError(at, "unexpected character "+string(r))
}

// binary emits the operator spanning width characters at the current
// position.
func (l *lexer) binary(lexeme string, width int) error {
	at := l.pos
	if !l.last.produced() {
		return syntaxError(at, "unexpected operator "+lexeme)
	}

	op, err := Operation(lexeme)
	if err != nil {
		return err
	}

	l.pos += width

	return l.emit(op, at, afterOperator)
}

// readString reads a single-quoted literal starting at the opening quote.
// A backslash takes the next character literally.
func (l *lexer) readString() (string, error) {
	at := l.pos

	var b strings.Builder

	for l.pos++; l.pos < len(l.src); l.pos++ {
		switch r := l.src[l.pos]; r {
		case '\'':
			l.pos++

			return b.String(), nil

		case '\\':
			if l.pos++; l.pos >= len(l.src) {
				return "", syntaxError(at, "unterminated string")
			}

			b.WriteRune(l.src[l.pos])

		default:
			b.WriteRune(r)
		}
	}

	return "", syntaxError(at, "unterminated string")
}

func (l *lexer) readNumber() (Value, error) {
	at := l.pos

	var n int64

	for ; l.pos < len(l.src) && isDigit(l.src[l.pos]); l.pos++ {
		d := int64(l.src[l.pos] - '0')
		if n > (math.MaxInt64-d)/10 {
			return None(), syntaxError(at, "number out of range")
		}

		n = n*10 + d
	}

	return Int(n), nil
}

// readReference reads an identifier and resolves it: a boolean keyword, a
// function call if "(" follows, or otherwise a variable.
//
// Whitespace inside an identifier is dropped, so "foo bar" names foobar.
// The keywords true and false are recognized at the first break.
func (l *lexer) readReference() (Value, error) {
	at := l.pos

	var (
		b   strings.Builder
		end int
	)

	for {
		for ; l.pos < len(l.src) && isIdent(l.src[l.pos]); l.pos++ {
			b.WriteRune(l.src[l.pos])
		}

		switch b.String() {
		case "true":
			return Bool(true), nil
		case "false":
			return Bool(false), nil
		}

		end = l.pos
		l.skipSpace()

		if l.pos == end || l.pos >= len(l.src) || !isIdent(l.src[l.pos]) {
			break
		}
	}

	name := b.String()

	if l.peek(0) != '(' {
		l.pos = end

		return l.resolved(at, name, l.resolver.HandleVariable(name))
	}

	args, err := l.readArgs()
	if err != nil {
		return None(), err
	}

	return l.resolved(at, name, l.resolver.HandleFunction(name, args))
}

func (l *lexer) resolved(at int, name string, v Value) (Value, error) {
	if !v.kind.IsOperand() {
		return None(), ErrTypeMismatch.With(
			slog.String("reference", name),
			slog.Int("position", at),
			slog.String("have", v.kind.String()),
		)
	}

	return v, nil
}

// readArgs reads a parenthesized argument list starting at "(". Each
// argument is a single literal or reference, never a general expression.
func (l *lexer) readArgs() ([]Value, error) {
	at := l.pos
	l.pos++
	l.skipSpace()

	var args []Value

	if l.peek(0) == ')' {
		l.pos++

		return args, nil
	}

	for {
		l.skipSpace()

		if l.pos >= len(l.src) {
			return nil, syntaxError(at, "missing ) after arguments")
		}

		var (
			arg Value
			err error
		)

		switch r := l.src[l.pos]; {
		case r == '\'':
			var s string

			s, err = l.readString()
			arg = Str(s)
		case isDigit(r):
			arg, err = l.readNumber()
		case isLetter(r):
			arg, err = l.readReference()
		case r == ',' || r == ')':
			err = syntaxError(l.pos, "empty argument")
		default:
			err = syntaxError(l.pos, "unexpected character "+string(r)+" in arguments")
		}

		if err != nil {
			return nil, err
		}

		args = append(args, arg)

		l.skipSpace()

		switch l.peek(0) {
		case ',':
			l.pos++
		case ')':
			l.pos++

			return args, nil
		case 0:
			if l.pos >= len(l.src) {
				return nil, syntaxError(at, "missing ) after arguments")
			}

			fallthrough
		default:
			return nil, syntaxError(l.pos, "expected , or )")
		}
	}
}

func isDigit(r rune) bool { return '0' <= r && r <= '9' }

func isLetter(r rune) bool { return unicode.IsLetter(r) || r == '_' }

func isIdent(r rune) bool { return isLetter(r) || isDigit(r) }
