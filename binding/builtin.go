package binding

import (
	"log/slog"
	"maps"
	"os"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/ardnew/mung"

	"github.com/ardnew/criteria/lang"
)

var builtins = sync.OnceValue(func() map[string]Func {
	return map[string]Func{
		"len":        strlen,
		"upper":      stringFunc("upper", strings.ToUpper),
		"lower":      stringFunc("lower", strings.ToLower),
		"contains":   contains,
		"abs":        abs,
		"min":        extreme("min", -1),
		"max":        extreme("max", 1),
		"env":        env,
		"pathprefix": pathPrefix,
	}
})

// Builtins returns a copy of the builtin functions:
//
//	len(s)                  number of characters in s
//	upper(s), lower(s)      case conversion
//	contains(s, sub)        whether s contains sub
//	abs(n)                  absolute value of n
//	min(n, ...), max(n, ...)  least or greatest argument
//	env(name)               environment variable, none when unset
//	pathprefix(list, s, ...)  prepend each s to a path list, dropping duplicates
func Builtins() map[string]Func {
	return maps.Clone(builtins())
}

// arity checks that lo <= len(args) <= hi. A negative hi means no limit.
func arity(name string, args []lang.Value, lo, hi int) error {
	if n := len(args); n < lo || (hi >= 0 && n > hi) {
		return ErrArity.With(
			slog.String("function", name),
			slog.Int("args", n),
			slog.Int("min", lo),
			slog.Int("max", hi),
		)
	}

	return nil
}

func texts(args []lang.Value) ([]string, error) {
	out := make([]string, len(args))

	for i, a := range args {
		s, err := a.Text()
		if err != nil {
			return nil, err
		}

		out[i] = s
	}

	return out, nil
}

func ints(args []lang.Value) ([]int64, error) {
	out := make([]int64, len(args))

	for i, a := range args {
		n, err := a.Int()
		if err != nil {
			return nil, err
		}

		out[i] = n
	}

	return out, nil
}

func strlen(args []lang.Value) (lang.Value, error) {
	if err := arity("len", args, 1, 1); err != nil {
		return lang.None(), err
	}

	s, err := args[0].Text()
	if err != nil {
		return lang.None(), err
	}

	return lang.Int(int64(utf8.RuneCountInString(s))), nil
}

func stringFunc(name string, fn func(string) string) Func {
	return func(args []lang.Value) (lang.Value, error) {
		if err := arity(name, args, 1, 1); err != nil {
			return lang.None(), err
		}

		s, err := args[0].Text()
		if err != nil {
			return lang.None(), err
		}

		return lang.Str(fn(s)), nil
	}
}

func contains(args []lang.Value) (lang.Value, error) {
	if err := arity("contains", args, 2, 2); err != nil {
		return lang.None(), err
	}

	s, err := texts(args)
	if err != nil {
		return lang.None(), err
	}

	return lang.Bool(strings.Contains(s[0], s[1])), nil
}

func abs(args []lang.Value) (lang.Value, error) {
	if err := arity("abs", args, 1, 1); err != nil {
		return lang.None(), err
	}

	n, err := args[0].Int()
	if err != nil {
		return lang.None(), err
	}

	if n < 0 {
		n = -n
	}

	return lang.Int(n), nil
}

// extreme returns the least (sign < 0) or greatest (sign > 0) argument.
func extreme(name string, sign int) Func {
	return func(args []lang.Value) (lang.Value, error) {
		if err := arity(name, args, 1, -1); err != nil {
			return lang.None(), err
		}

		n, err := ints(args)
		if err != nil {
			return lang.None(), err
		}

		best := n[0]
		for _, x := range n[1:] {
			if (sign < 0 && x < best) || (sign > 0 && x > best) {
				best = x
			}
		}

		return lang.Int(best), nil
	}
}

func env(args []lang.Value) (lang.Value, error) {
	if err := arity("env", args, 1, 1); err != nil {
		return lang.None(), err
	}

	name, err := args[0].Text()
	if err != nil {
		return lang.None(), err
	}

	if s, ok := os.LookupEnv(name); ok {
		return lang.Str(s), nil
	}

	return lang.None(), nil
}

func pathPrefix(args []lang.Value) (lang.Value, error) {
	if err := arity("pathprefix", args, 1, -1); err != nil {
		return lang.None(), err
	}

	s, err := texts(args)
	if err != nil {
		return lang.None(), err
	}

	return lang.Str(mung.Make(
		mung.WithSubjectItems(s[0]),
		mung.WithDelim(string(os.PathListSeparator)),
		mung.WithPrefixItems(s[1:]...),
	).String()), nil
}
