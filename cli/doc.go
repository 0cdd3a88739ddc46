// Package cli contains the command line interface for criteria.
//
// # Usage
//
//	criteria [flags] [eval] EXPR...   evaluate each expression (default)
//	criteria [flags] bench [EXPR]     time repeated evaluation
//	criteria [flags] repl             interactive prompt
//	criteria [flags] set NAME [VALUE] store a variable (requires --db)
//
// With no expressions, eval reads one expression per line from the --source
// files, or from stdin.
//
// # Bindings
//
//   - --var, -D NAME=VALUE: bind a variable; VALUE is a YAML scalar
//   - --bindings, -b FILE: YAML file of variables and expr-lang functions
//   - --db PATH: SQLite store of persistent variables
//   - --[no-]builtins: bind len, upper, lower, contains, abs, min, max,
//     env, and pathprefix
//
// Earlier sources shadow later ones in that order.
//
// # Configuration
//
// Flag defaults are read from config.yaml in the user configuration
// directory (for example ~/.config/criteria/config.yaml). Keys are flag
// names with hyphens or underscores:
//
//	log-level: debug
//	var:
//	  region: west
//
// # Logging Options
//
//   - --log-level: trace, debug, info, warn, or error
//   - --log-format: json or text
//   - --log-time-layout: RFC3339, kitchen, none, or a layout string
//   - --[no-]log-caller, --[no-]log-pretty
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof -o criteria .
//	criteria --pprof-mode=cpu bench
package cli
