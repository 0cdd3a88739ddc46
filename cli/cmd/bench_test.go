package cmd

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestBenchDemo(t *testing.T) {
	ctx, out := testContext(t, nil)

	var ticks time.Duration

	b := Bench{
		Count: 6000,
		clock: func() time.Duration {
			ticks += 10 * time.Millisecond

			return ticks
		},
	}

	if err := b.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := []string{
		"run 1000        10ms",
		"run 5000        20ms",
		"run 6000        30ms",
		"'Got It!!!'",
	}

	got := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("output =\n%s\nwant\n%s", strings.Join(got, "\n"), strings.Join(want, "\n"))
	}
}

func TestBenchExpression(t *testing.T) {
	ctx, out := testContext(t, map[string]any{"n": 7})

	b := Bench{Count: 3, Expr: "n * 6", clock: func() time.Duration { return 0 }}

	if err := b.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if got, want := out.String(), "run 3            0ms\n42\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestBenchErrors(t *testing.T) {
	ctx, _ := testContext(t, nil)

	if err := (&Bench{Count: 0}).Run(ctx); !errors.Is(err, ErrBadCount) {
		t.Errorf("Count 0 error = %v, want ErrBadCount", err)
	}

	if err := (&Bench{Count: 1, Expr: "1 +"}).Run(ctx); !errors.Is(err, ErrEvaluate) {
		t.Errorf("bad expression error = %v, want ErrEvaluate", err)
	}
}

func TestBenchLine(t *testing.T) {
	if got, want := benchLine(10000, 1234*time.Millisecond), "run 10000     1234ms"; got != want {
		t.Errorf("benchLine = %q, want %q", got, want)
	}
}

func TestBenchMetrics(t *testing.T) {
	ctx, out := testContext(t, map[string]any{"n": 7})

	b := Bench{Count: 3, Expr: "n * 6", Metrics: true, clock: func() time.Duration { return 0 }}

	if err := b.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	got := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	if len(got) != 3 || got[1] != "42" {
		t.Fatalf("output = %q", out.String())
	}

	if want := "criteria.evaluations=3 criteria.errors=0 criteria.latency_ms="; !strings.HasPrefix(got[2], want) {
		t.Errorf("metrics = %q, want prefix %q", got[2], want)
	}

	if !strings.HasSuffix(got[2], "/3") {
		t.Errorf("metrics = %q, want 3 latency samples", got[2])
	}
}
