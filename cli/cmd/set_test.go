package cmd

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/ardnew/criteria/binding"
	"github.com/ardnew/criteria/lang"
)

func storeContext(t *testing.T) (context.Context, *binding.Store, func() string) {
	t.Helper()

	store, err := binding.OpenStore(filepath.Join(t.TempDir(), "bindings.db"))
	if err != nil {
		t.Fatalf("OpenStore() error = %v", err)
	}

	t.Cleanup(func() { store.Close() })

	ctx, out := testContext(t, map[string]any{"base": 40})
	s := scopeFrom(ctx)
	s.Resolver = binding.Chain(s.Resolver, store)
	s.Store = store

	return WithScope(ctx, s), store, out.String
}

func TestSet(t *testing.T) {
	ctx, store, out := storeContext(t)

	if err := (&Set{Name: "limit", Value: "10"}).Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if err := (&Set{Name: "answer", Value: "base + 2", Eval: true}).Run(ctx); err != nil {
		t.Fatalf("Run(eval) error = %v", err)
	}

	if got, want := out(), "limit = 10\nanswer = 42\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}

	got, err := store.Get(ctx, "answer")
	if err != nil || got != lang.Int(42) {
		t.Errorf("Get(answer) = (%v, %v), want 42", got, err)
	}

	if err := (&Set{Name: "limit"}).Run(ctx); err != nil {
		t.Fatalf("Run(unset) error = %v", err)
	}

	if got, _ := store.Get(ctx, "limit"); !got.IsNone() {
		t.Errorf("Get(limit) after unset = %v, want none", got)
	}
}

func TestSetErrors(t *testing.T) {
	ctx, _ := testContext(t, nil)

	if err := (&Set{Name: "x", Value: "1"}).Run(ctx); !errors.Is(err, ErrNoStore) {
		t.Errorf("without store error = %v, want ErrNoStore", err)
	}

	ctx, _, _ = storeContext(t)

	for _, name := range []string{"", "1x", "a-b"} {
		if err := (&Set{Name: name, Value: "1"}).Run(ctx); !errors.Is(err, ErrBadName) {
			t.Errorf("name %q error = %v, want ErrBadName", name, err)
		}
	}

	if err := (&Set{Name: "x", Value: "1 +", Eval: true}).Run(ctx); !errors.Is(err, ErrEvaluate) {
		t.Errorf("bad expression error = %v, want ErrEvaluate", err)
	}
}
