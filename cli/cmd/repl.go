package cmd

import (
	"context"
	"log/slog"
	"os"

	"github.com/ardnew/criteria/cli/cmd/repl"
	"github.com/ardnew/criteria/lang"
	"github.com/ardnew/criteria/log"
	"github.com/ardnew/criteria/observe"
)

// Repl starts an interactive session.
type Repl struct {
	CacheDir string `default:"${cache}" help:"Directory holding the session history" placeholder:"DIR" type:"path"`
	NoSave   bool   `                   help:"Keep history in memory only"`
}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context) error {
	scope := scopeFrom(ctx)
	logger := log.Default()

	interp := lang.New(lang.WithResolver(scope.Resolver), lang.WithLogger(logger))

	dir := r.CacheDir
	if r.NoSave {
		dir = ""
	} else if dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			logger.WarnContext(ctx, "history disabled", slog.Any("error", err))

			dir = ""
		}
	}

	return repl.Session{
		Evaluator: observe.Instrument(interp, observe.WithLogger(logger)),
		Variables: func() []string { return scope.variables(ctx) },
		Functions: func() []string { return scope.functions(ctx) },
		CacheDir:  dir,
		Logger:    logger,
	}.Run(ctx)
}
