package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"
)

// loadConfig is a [kong.ConfigurationLoader] for YAML configuration files.
//
// Top-level keys name flags, with hyphens or underscores between words.
// Command-line flags override config file values:
//
//	log-level: debug
//	log_pretty: false
//	builtins: true
//	var:
//	  limit: 10
//	  region: west
//	bindings:
//	  - ~/.config/criteria/bindings.yaml
func loadConfig(r io.Reader) (kong.Resolver, error) {
	var raw map[string]any

	err := yaml.NewDecoder(r).Decode(&raw)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	cfg := make(config, len(raw))
	for key, value := range raw {
		cfg[normalizeKey(key)] = flagValue(value)
	}

	return cfg, nil
}

// config implements [kong.Resolver] over a decoded configuration file.
type config map[string]any

// Validate implements [kong.Resolver].
func (config) Validate(*kong.Application) error { return nil }

// Resolve implements [kong.Resolver].
func (c config) Resolve(_ *kong.Context, _ *kong.Path, flag *kong.Flag) (any, error) {
	if value, ok := c[normalizeKey(flag.Name)]; ok {
		return value, nil
	}

	return nil, nil
}

func normalizeKey(key string) string {
	return strings.ReplaceAll(strings.ToLower(key), "_", "-")
}

// flagValue converts a decoded YAML value to the form kong maps onto flags.
// Booleans and strings pass through, other scalars are formatted, and
// collections are converted element by element.
func flagValue(value any) any {
	switch v := value.(type) {
	case nil, bool, string:
		return v
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = flagValue(e)
		}

		return out
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, e := range v {
			out[k] = flagValue(e)
		}

		return out
	default:
		return fmt.Sprint(v)
	}
}
