package cli

import (
	"context"
	"errors"
	"log/slog"
	"maps"
	"slices"

	"github.com/alecthomas/kong"

	"github.com/ardnew/criteria/binding"
	"github.com/ardnew/criteria/cli/cmd"
	"github.com/ardnew/criteria/lang"
	"github.com/ardnew/criteria/log"
)

// bindConfig selects the variables and functions expressions are evaluated
// against. Earlier sources take precedence: --var, then --bindings files in
// order, then the --db store.
type bindConfig struct {
	Var      map[string]string `help:"Bind a variable; VALUE is a YAML scalar"   mapsep:"none" placeholder:"NAME=VALUE" short:"D"`
	Bindings []string          `help:"YAML file of variables and functions"                    placeholder:"FILE"       short:"b" type:"existingfile"`
	DB       string            `help:"SQLite store of persistent variables"     name:"db"      placeholder:"PATH"                 type:"path"`
	Builtins bool              `default:"true" help:"Bind the builtin functions" negatable:""`
}

func (bindConfig) group() kong.Group {
	return kong.Group{Key: "bind", Title: "Binding options"}
}

// scope opens every configured binding source. The returned release func
// releases the store and must be called even when err is non-nil.
func (f bindConfig) scope(ctx context.Context) (s cmd.Scope, release func() error, err error) {
	release = func() error { return nil }

	opts := []binding.Option{binding.WithLogger(log.Default())}

	varOpts := slices.Clone(opts)
	if f.Builtins {
		varOpts = append(varOpts, binding.WithBuiltins())
	}

	vars := binding.NewTable(varOpts...)

	for _, name := range slices.Sorted(maps.Keys(f.Var)) {
		v, err := binding.ParseScalar(f.Var[name])
		if err != nil {
			return s, release, err
		}

		vars.SetValue(name, v)
	}

	tables := []*binding.Table{vars}

	for _, path := range f.Bindings {
		t, err := binding.LoadFile(path, opts...)
		if err != nil {
			return s, release, err
		}

		tables = append(tables, t)
	}

	resolvers := make([]lang.Resolver, 0, len(tables)+1)
	for _, t := range tables {
		resolvers = append(resolvers, t)
	}

	var store *binding.Store

	if f.DB != "" {
		store, err = binding.OpenStore(f.DB, binding.WithStoreLogger(log.Default()))
		if err != nil {
			return s, release, err
		}

		release = store.Close
		resolvers = append(resolvers, store)
		s.Store = store
	}

	s.Resolver = binding.Chain(resolvers...)

	s.Variables = func(ctx context.Context) []string {
		var names []string
		for _, t := range tables {
			names = append(names, t.Variables()...)
		}

		if store != nil {
			stored, err := store.Names(ctx)
			if err != nil {
				log.WarnContext(ctx, "store names", slog.Any("error", err))
			}

			names = append(names, stored...)
		}

		slices.Sort(names)

		return slices.Compact(names)
	}

	s.Functions = func(context.Context) []string {
		var names []string
		for _, t := range tables {
			names = append(names, t.Functions()...)
		}

		slices.Sort(names)

		return slices.Compact(names)
	}

	log.DebugContext(ctx, "bindings opened",
		slog.Int("vars", len(f.Var)),
		slog.Int("files", len(f.Bindings)),
		slog.Bool("store", store != nil),
		slog.Bool("builtins", f.Builtins))

	return s, release, nil
}

// releaseScope runs release, joining its error onto *err.
func releaseScope(release func() error, err *error) {
	*err = errors.Join(*err, release())
}
