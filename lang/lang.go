package lang

import (
	"context"
	"log/slog"

	"github.com/ardnew/criteria/log"
)

// Parse lexes expression and folds its tokens into a tree, resolving each
// reference with r as it is met. A nil r is replaced by [Default].
//
// An expression with no tokens yields [ErrEmptyExpression].
func Parse(expression string, r Resolver) (*Tree, error) {
	t, _, err := parse(expression, r)

	return t, err
}

func parse(expression string, r Resolver) (*Tree, int, error) {
	t := newTree()
	l := newLexer(expression, r, t)

	if err := l.run(); err != nil {
		return nil, l.count, err
	}

	if t.Empty() {
		return nil, 0, ErrEmptyExpression
	}

	return t, l.count, nil
}

// EvaluateValue parses and solves expression. The empty string has no
// value and is not an error.
func EvaluateValue(expression string, r Resolver) (Value, error) {
	if expression == "" {
		return None(), nil
	}

	t, err := Parse(expression, r)
	if err != nil {
		return None(), err
	}

	return t.Solve()
}

// Evaluate parses and solves expression, returning the result as a native
// Go value: nil, bool, int64, or string.
func Evaluate(expression string, r Resolver) (any, error) {
	v, err := EvaluateValue(expression, r)
	if err != nil {
		return nil, err
	}

	return v.Native(), nil
}

// EvaluateFunc is [Evaluate] with a single resolver callback.
func EvaluateFunc(expression string, fn ResolveFunc) (any, error) {
	return Evaluate(expression, fn)
}

// Interpreter evaluates expressions against a fixed resolver and reports
// each stage to its logger at trace level.
//
// An Interpreter holds no per-evaluation state and is safe for concurrent
// use when its resolver is.
type Interpreter struct {
	resolver Resolver
	logger   log.Logger
}

// Option configures an [Interpreter].
type Option func(*Interpreter)

// WithResolver sets the resolver used for variable and function references.
func WithResolver(r Resolver) Option {
	return func(in *Interpreter) {
		in.resolver = r
	}
}

// WithResolveFunc sets a single callback as the resolver.
func WithResolveFunc(fn ResolveFunc) Option {
	return func(in *Interpreter) {
		in.resolver = fn
	}
}

// WithLogger sets the structured logger for trace-level debugging.
// If not provided, the logger is zero-valued and all logging is a no-op.
func WithLogger(logger log.Logger) Option {
	return func(in *Interpreter) {
		in.logger = logger
	}
}

// New returns an Interpreter configured by opts.
func New(opts ...Option) *Interpreter {
	in := &Interpreter{resolver: Default()}

	for _, opt := range opts {
		opt(in)
	}

	if in.resolver == nil {
		in.resolver = Default()
	}

	return in
}

// Resolver returns the resolver the interpreter binds references with.
func (in *Interpreter) Resolver() Resolver { return in.resolver }

// Parse builds the expression tree without solving it.
func (in *Interpreter) Parse(
	ctx context.Context,
	expression string,
) (*Tree, error) {
	in.logger.TraceContext(ctx, "parse start",
		slog.Int("length", len(expression)),
	)

	t, tokens, err := parse(expression, in.resolver)
	if err != nil {
		in.logger.DebugContext(ctx, "parse failed",
			slog.String("expression", expression),
			slog.Int("tokens", tokens),
			slog.Any("error", err),
		)

		return nil, err
	}

	in.logger.TraceContext(ctx, "parse complete",
		slog.Int("tokens", tokens),
		slog.Int("nodes", t.Len()),
	)

	return t, nil
}

// EvaluateValue parses and solves expression.
func (in *Interpreter) EvaluateValue(
	ctx context.Context,
	expression string,
) (Value, error) {
	if expression == "" {
		return None(), nil
	}

	t, err := in.Parse(ctx, expression)
	if err != nil {
		return None(), err
	}

	v, err := t.Solve()
	if err != nil {
		in.logger.DebugContext(ctx, "solve failed",
			slog.String("expression", expression),
			slog.Any("error", err),
		)

		return None(), err
	}

	in.logger.TraceContext(ctx, "solve complete",
		slog.String("kind", v.Kind().String()),
		slog.Any("result", v),
	)

	return v, nil
}

// Evaluate parses and solves expression, returning a native Go value.
func (in *Interpreter) Evaluate(
	ctx context.Context,
	expression string,
) (any, error) {
	v, err := in.EvaluateValue(ctx, expression)
	if err != nil {
		return nil, err
	}

	return v.Native(), nil
}
