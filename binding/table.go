package binding

import (
	"log/slog"
	"maps"
	"slices"
	"sync"

	"github.com/ardnew/criteria/lang"
	"github.com/ardnew/criteria/log"
)

// Func implements a function reference. A returned error is logged and the
// reference resolves to [lang.None].
type Func func(args []lang.Value) (lang.Value, error)

// Table binds names to values and functions. It implements [lang.Resolver]
// and is safe for concurrent use.
type Table struct {
	mu     sync.RWMutex
	vars   map[string]lang.Value
	funcs  map[string]Func
	logger log.Logger
}

// Option configures a [Table].
type Option func(*Table)

// WithBuiltins binds the builtin functions (see [Builtins]).
func WithBuiltins() Option {
	return func(t *Table) {
		maps.Copy(t.funcs, Builtins())
	}
}

// WithLogger sets the logger that reports failed function calls.
func WithLogger(logger log.Logger) Option {
	return func(t *Table) { t.logger = logger }
}

// WithVariables binds each entry of vars as with [Table.Set]. Entries that
// cannot be represented as a [lang.Value] are skipped and logged.
func WithVariables(vars map[string]any) Option {
	return func(t *Table) {
		for name, x := range vars {
			if err := t.Set(name, x); err != nil {
				t.logger.Warn("skipped variable",
					slog.String("name", name), slog.Any("error", err))
			}
		}
	}
}

// NewTable returns an empty table configured by opts.
func NewTable(opts ...Option) *Table {
	t := &Table{
		vars:  make(map[string]lang.Value),
		funcs: make(map[string]Func),
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// Set binds name to the Go value x, converted with [lang.FromNative].
func (t *Table) Set(name string, x any) error {
	v, err := lang.FromNative(x)
	if err != nil {
		return ErrInvalidBinding.Wrap(err).With(slog.String("name", name))
	}

	t.SetValue(name, v)

	return nil
}

// SetValue binds name to v. Binding [lang.None] removes the variable.
func (t *Table) SetValue(name string, v lang.Value) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if v.IsNone() {
		delete(t.vars, name)

		return
	}

	t.vars[name] = v
}

// SetFunction binds name to fn. A nil fn removes the function.
func (t *Table) SetFunction(name string, fn Func) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if fn == nil {
		delete(t.funcs, name)

		return
	}

	t.funcs[name] = fn
}

// Variables returns the bound variable names in sorted order.
func (t *Table) Variables() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return slices.Sorted(maps.Keys(t.vars))
}

// Functions returns the bound function names in sorted order.
func (t *Table) Functions() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return slices.Sorted(maps.Keys(t.funcs))
}

// Names returns every bound name, variables and functions, in sorted order.
func (t *Table) Names() []string {
	return slices.Compact(slices.Sorted(slices.Values(
		append(t.Variables(), t.Functions()...))))
}

// Snapshot returns the native form of every bound variable.
func (t *Table) Snapshot() map[string]any {
	t.mu.RLock()
	defer t.mu.RUnlock()

	env := make(map[string]any, len(t.vars))
	for name, v := range t.vars {
		env[name] = v.Native()
	}

	return env
}

// HandleVariable implements [lang.Resolver].
func (t *Table) HandleVariable(name string) lang.Value {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.vars[name]
}

// HandleFunction implements [lang.Resolver].
func (t *Table) HandleFunction(name string, args []lang.Value) lang.Value {
	t.mu.RLock()
	fn, ok := t.funcs[name]
	t.mu.RUnlock()

	if !ok {
		return lang.None()
	}

	v, err := fn(args)
	if err != nil {
		t.logger.Debug("function failed",
			slog.String("name", name),
			slog.Int("args", len(args)),
			slog.Any("error", err))

		return lang.None()
	}

	return v
}

// Chained consults each resolver in order. The first answer that is not
// [lang.None] wins.
type Chained []lang.Resolver

// Chain returns the non-nil resolvers as a [Chained] resolver.
func Chain(resolvers ...lang.Resolver) Chained {
	c := make(Chained, 0, len(resolvers))

	for _, r := range resolvers {
		if r != nil {
			c = append(c, r)
		}
	}

	return c
}

// HandleVariable implements [lang.Resolver].
func (c Chained) HandleVariable(name string) lang.Value {
	for _, r := range c {
		if v := r.HandleVariable(name); !v.IsNone() {
			return v
		}
	}

	return lang.None()
}

// HandleFunction implements [lang.Resolver].
func (c Chained) HandleFunction(name string, args []lang.Value) lang.Value {
	for _, r := range c {
		if v := r.HandleFunction(name, args); !v.IsNone() {
			return v
		}
	}

	return lang.None()
}
