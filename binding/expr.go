package binding

import (
	"log/slog"
	"math"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/ardnew/criteria/lang"
)

// Compile returns a function that evaluates the expr-lang program source
// with each of params bound to the corresponding argument. The program also
// sees the variables of t, shadowed by params.
//
// Only params are declared at compile time. Table variables are looked up
// when the function runs, so rebinding one to a value of another kind does
// not invalidate the program.
func (t *Table) Compile(name string, params []string, source string) (Func, error) {
	env := make(map[string]any, len(params))
	for _, p := range params {
		env[p] = nil
	}

	program, err := expr.Compile(source, expr.Env(env), expr.AllowUndefinedVariables())
	if err != nil {
		return nil, ErrCompile.Wrap(err).With(
			slog.String("function", name),
			slog.String("source", source),
		)
	}

	return func(args []lang.Value) (lang.Value, error) {
		if err := arity(name, args, len(params), len(params)); err != nil {
			return lang.None(), err
		}

		return t.run(name, program, params, args)
	}, nil
}

func (t *Table) run(
	name string,
	program *vm.Program,
	params []string,
	args []lang.Value,
) (lang.Value, error) {
	env := t.Snapshot()
	for i, p := range params {
		env[p] = args[i].Native()
	}

	out, err := expr.Run(program, env)
	if err != nil {
		return lang.None(), ErrRun.Wrap(err).With(slog.String("function", name))
	}

	v, err := fromExpr(out)
	if err != nil {
		return lang.None(), ErrRun.Wrap(err).With(slog.String("function", name))
	}

	return v, nil
}

// fromExpr converts an expr-lang result. Division in expr-lang always yields
// a float, so whole floats are accepted as numbers.
func fromExpr(x any) (lang.Value, error) {
	switch f := x.(type) {
	case float64:
		if f == math.Trunc(f) && f >= math.MinInt64 && f < math.MaxInt64 {
			return lang.Int(int64(f)), nil
		}
	case float32:
		return fromExpr(float64(f))
	}

	return lang.FromNative(x)
}
