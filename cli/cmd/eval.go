package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/ardnew/criteria/lang"
	"github.com/ardnew/criteria/log"
	"github.com/ardnew/criteria/observe"
)

// Eval evaluates expressions and prints each result.
type Eval struct {
	Exprs   []string `arg:"" help:"Expressions to evaluate (default: one per line of input)" name:"expr" optional:""`
	Tree    bool     `       help:"Print the expression tree instead of the result"                           short:"t"`
	Metrics bool     `       help:"Print evaluation metrics after the last expression"`

	in io.Reader
}

// Run executes the eval command.
func (e *Eval) Run(ctx context.Context) (err error) {
	scope := scopeFrom(ctx)
	logger := log.Default()
	out := stdout(ctx)

	opts := []observe.Option{observe.WithLogger(logger)}

	if e.Metrics {
		rec := observe.NewRecorder()
		defer func() {
			if rerr := reportMetrics(ctx, rec, out); rerr != nil {
				err = errors.Join(err, rerr)
			}
		}()

		opts = append(opts, observe.WithMeterProvider(rec.MeterProvider()))
	}

	interp := lang.New(lang.WithResolver(scope.Resolver), lang.WithLogger(logger))
	eval := observe.Instrument(interp, opts...)

	each := func(expr string) error {
		if e.Tree {
			t, err := interp.Parse(ctx, expr)
			if err != nil {
				return ErrEvaluate.Wrap(err).With(slog.String("expression", expr))
			}

			_, err = fmt.Fprintln(out, t.String())

			return err
		}

		result, err := eval.Evaluate(ctx, expr)
		if err != nil {
			return ErrEvaluate.Wrap(err).With(slog.String("expression", expr))
		}

		_, err = fmt.Fprintln(out, lang.FormatResult(result))

		return err
	}

	if len(e.Exprs) > 0 {
		for _, expr := range e.Exprs {
			if err := each(expr); err != nil {
				return err
			}
		}

		return nil
	}

	return eachLine(e.input(ctx), each)
}

func (e *Eval) input(ctx context.Context) io.Reader {
	if e.in != nil {
		return e.in
	}

	if src := sourceFilesFrom(ctx); src != nil {
		return src
	}

	return os.Stdin
}

// eachLine calls fn with each non-blank line of r.
func eachLine(r io.Reader, fn func(string) error) error {
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if err := fn(line); err != nil {
			return err
		}
	}

	if err := scanner.Err(); err != nil {
		return ErrReadInput.Wrap(err)
	}

	return nil
}
