package cmd

import (
	"errors"
	"strings"
	"testing"

	"github.com/ardnew/criteria/lang"
)

func TestEvalArgs(t *testing.T) {
	ctx, out := testContext(t, map[string]any{"age": 42, "name": "ada"})

	e := Eval{Exprs: []string{
		"age >= 18",
		"name == 'ada'",
		"len(name) * 2",
		"missing",
	}}

	if err := e.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := "true\ntrue\n6\n<none>\n"
	if out.String() != want {
		t.Errorf("output = %q, want %q", out.String(), want)
	}
}

func TestEvalInput(t *testing.T) {
	ctx, out := testContext(t, nil)

	e := Eval{in: strings.NewReader("1 + 2\n\n   \n!(1 == 2)\n")}

	if err := e.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if got, want := out.String(), "3\ntrue\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestEvalSourceFiles(t *testing.T) {
	ctx, out := testContext(t, nil)

	path := writeFile(t, t.TempDir(), "exprs.crit", "10 % 4\n'x' != 'y'\n")
	ctx = WithSourceFiles(ctx, []string{path})

	if err := (&Eval{}).Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if got, want := out.String(), "2\ntrue\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestEvalTree(t *testing.T) {
	ctx, out := testContext(t, nil)

	e := Eval{Exprs: []string{"1 + 2 * 3"}, Tree: true}

	if err := e.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if strings.TrimSpace(out.String()) == "" {
		t.Error("tree output is empty")
	}
}

func TestEvalStopsAtFirstError(t *testing.T) {
	ctx, out := testContext(t, nil)

	e := Eval{Exprs: []string{"1", "1 / 0", "2"}}

	err := e.Run(ctx)
	if !errors.Is(err, ErrEvaluate) {
		t.Fatalf("Run() error = %v, want ErrEvaluate", err)
	}

	if !errors.Is(err, lang.ErrDivisionByZero) {
		t.Errorf("Run() error = %v, want it to wrap ErrDivisionByZero", err)
	}

	if got := out.String(); got != "1\n" {
		t.Errorf("output = %q, want only the first result", got)
	}
}

func TestEvalMetrics(t *testing.T) {
	ctx, out := testContext(t, nil)

	e := Eval{Exprs: []string{"1 + 1", "2 > 1", "1 +"}, Metrics: true}

	if err := e.Run(ctx); !errors.Is(err, ErrEvaluate) {
		t.Fatalf("Run() error = %v, want ErrEvaluate", err)
	}

	lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	if len(lines) != 3 || lines[0] != "2" || lines[1] != "true" {
		t.Fatalf("output = %q", out.String())
	}

	if want := "criteria.evaluations=3 criteria.errors=1 "; !strings.HasPrefix(lines[2], want) {
		t.Errorf("metrics = %q, want prefix %q", lines[2], want)
	}
}
