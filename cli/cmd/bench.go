package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ardnew/criteria/lang"
	"github.com/ardnew/criteria/log"
	"github.com/ardnew/criteria/observe"
)

// DemoExpression is the expression [Bench] times when none is given.
const DemoExpression = `!(10 >= 15 || 6 + 3 * 11 - 4 == 12 + -5) ? 'Got It!!!'`

// benchMarks are the run counts at which elapsed time is reported before
// the final count.
var benchMarks = []int{1000, 5000}

// Bench evaluates one expression repeatedly and reports the elapsed time.
type Bench struct {
	Count   int    `default:"10000" help:"Number of evaluations"                    short:"n"`
	Expr    string `                 help:"Expression to evaluate"                   arg:"" optional:""`
	Metrics bool   `                 help:"Print evaluation metrics after the run"`

	clock func() time.Duration
}

// Run executes the bench command.
func (b *Bench) Run(ctx context.Context) (err error) {
	if b.Count <= 0 {
		return ErrBadCount.With(slog.Int("count", b.Count))
	}

	expr := b.Expr
	if expr == "" {
		expr = DemoExpression
	}

	clock := b.clock
	if clock == nil {
		start := time.Now()
		clock = func() time.Duration { return time.Since(start) }
	}

	resolver := scopeFrom(ctx).Resolver
	out := stdout(ctx)

	evaluate := func(_ context.Context, s string) (any, error) {
		return lang.Evaluate(s, resolver)
	}

	if b.Metrics {
		rec := observe.NewRecorder()
		defer func() {
			if rerr := reportMetrics(ctx, rec, out); rerr != nil {
				err = errors.Join(err, rerr)
			}
		}()

		evaluate = observe.Instrument(
			lang.New(lang.WithResolver(resolver)),
			observe.WithMeterProvider(rec.MeterProvider()),
			observe.WithLogger(log.Default()),
		).Evaluate
	}

	log.DebugContext(ctx, "bench start",
		slog.String("expression", expr), slog.Int("count", b.Count))

	var (
		result any
		mark   int
	)

	i := 0
	for ; i < b.Count; i++ {
		result, err = evaluate(ctx, expr)
		if err != nil {
			return ErrEvaluate.Wrap(err).With(
				slog.String("expression", expr), slog.Int("run", i))
		}

		if mark < len(benchMarks) && i == benchMarks[mark] {
			fmt.Fprintln(out, benchLine(i, clock()))
			mark++
		}
	}

	fmt.Fprintln(out, benchLine(i, clock()))
	fmt.Fprintln(out, lang.FormatResult(result))

	return nil
}

func benchLine(run int, elapsed time.Duration) string {
	return fmt.Sprintf("run %-8d %5dms", run, elapsed.Milliseconds())
}
