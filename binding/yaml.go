package binding

import (
	"errors"
	"io"
	"log/slog"
	"maps"
	"os"
	"slices"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/criteria/lang"
)

// document is the YAML form of a binding table:
//
//	variables:
//	  limit: 10
//	  owner: alice
//	functions:
//	  double:
//	    params: [n]
//	    expr: n * 2
type document struct {
	Variables map[string]any      `yaml:"variables"`
	Functions map[string]function `yaml:"functions"`
}

type function struct {
	Params []string `yaml:"params"`
	Expr   string   `yaml:"expr"`
}

// Load returns a table configured by opts and populated from the YAML
// document read from r.
func Load(r io.Reader, opts ...Option) (*Table, error) {
	t := NewTable(opts...)
	if err := t.Decode(r); err != nil {
		return nil, err
	}

	return t, nil
}

// LoadFile is [Load] reading the file at path.
func LoadFile(path string, opts ...Option) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ErrDecode.Wrap(err).With(slog.String("path", path))
	}
	defer f.Close()

	t, err := Load(f, opts...)
	if err != nil {
		return nil, ErrDecode.Wrap(err).With(slog.String("path", path))
	}

	return t, nil
}

// Decode adds the variables and functions of the YAML document read from r
// to t. Variables are bound before functions are compiled, so function
// bodies may refer to them.
func (t *Table) Decode(r io.Reader) error {
	var doc document

	if err := yaml.NewDecoder(r, yaml.DisallowUnknownField()).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}

		return ErrDecode.Wrap(err)
	}

	for _, name := range slices.Sorted(maps.Keys(doc.Variables)) {
		if err := t.Set(name, doc.Variables[name]); err != nil {
			return err
		}
	}

	for _, name := range slices.Sorted(maps.Keys(doc.Functions)) {
		def := doc.Functions[name]

		fn, err := t.Compile(name, def.Params, def.Expr)
		if err != nil {
			return err
		}

		t.SetFunction(name, fn)
	}

	t.logger.Debug("bindings decoded",
		slog.Int("variables", len(doc.Variables)),
		slog.Int("functions", len(doc.Functions)))

	return nil
}

// ParseScalar converts s, read as a YAML scalar, to a value. Integers and
// booleans are typed ("10", "true"), quoted or bare text is a string, and
// the empty string, "~", and "null" are [lang.None].
func ParseScalar(s string) (lang.Value, error) {
	var x any

	if err := yaml.Unmarshal([]byte(s), &x); err != nil {
		return lang.None(), ErrDecode.Wrap(err).With(slog.String("scalar", s))
	}

	v, err := lang.FromNative(x)
	if err != nil {
		return lang.None(), ErrInvalidBinding.Wrap(err).With(slog.String("scalar", s))
	}

	return v, nil
}
