package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"unicode"

	"github.com/ardnew/criteria/binding"
	"github.com/ardnew/criteria/lang"
	"github.com/ardnew/criteria/log"
)

// Set stores a variable in the binding store.
type Set struct {
	Name  string `arg:"" help:"Variable name"`
	Value string `arg:"" help:"Value as a YAML scalar; omit, ~, or null to remove" optional:""`
	Eval  bool   `       help:"Store the result of evaluating VALUE as an expression" short:"e"`
}

// Run executes the set command.
func (s *Set) Run(ctx context.Context) error {
	scope := scopeFrom(ctx)
	if scope.Store == nil {
		return ErrNoStore
	}

	if !validName(s.Name) {
		return ErrBadName.With(slog.String("name", s.Name))
	}

	v, err := s.value(scope.Resolver)
	if err != nil {
		return err
	}

	if v.IsNone() {
		log.DebugContext(ctx, "unset", slog.String("name", s.Name))

		return scope.Store.Delete(ctx, s.Name)
	}

	if err := scope.Store.Put(ctx, s.Name, v); err != nil {
		return err
	}

	_, err = fmt.Fprintf(stdout(ctx), "%s = %s\n", s.Name, lang.FormatResult(v))

	return err
}

func (s *Set) value(r lang.Resolver) (lang.Value, error) {
	if !s.Eval {
		return binding.ParseScalar(s.Value)
	}

	v, err := lang.EvaluateValue(s.Value, r)
	if err != nil {
		return lang.None(), ErrEvaluate.Wrap(err).With(slog.String("expression", s.Value))
	}

	return v, nil
}

// validName reports whether name can be referenced in an expression.
func validName(name string) bool {
	for i, r := range name {
		switch {
		case r == '_' || unicode.IsLetter(r):
		case i > 0 && unicode.IsDigit(r):
		default:
			return false
		}
	}

	return name != ""
}
