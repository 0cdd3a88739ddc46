package cli

import (
	"context"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/criteria/log"
)

// logLevel configures the default logger as kong decodes --log-level, so
// that parse errors are already reported at the requested level.
type logLevel string

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *logLevel) UnmarshalText(text []byte) error {
	*l = logLevel(text)
	log.Config(log.WithLevel(log.ParseLevel(string(*l))))

	return nil
}

// logFormat configures the default logger as kong decodes --log-format.
type logFormat string

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *logFormat) UnmarshalText(text []byte) error {
	*f = logFormat(text)
	log.Config(log.WithFormat(log.ParseFormat(string(*f))))

	return nil
}

type logConfig struct {
	Level      logLevel  `default:"info"    enum:"${logLevelEnum}"  help:"Set log level."`
	Format     logFormat `default:"text"    enum:"${logFormatEnum}" help:"Set log format."`
	TimeLayout string    `default:"RFC3339"                          help:"Set timestamp format (layout name, layout, or none)."`
	Caller     bool      `default:"false"                            help:"Include caller information."       negatable:""`
	Pretty     bool      `default:"true"                             help:"Enable colorized pretty printing." negatable:""`
}

func (*logConfig) vars() kong.Vars {
	return kong.Vars{
		"logLevelEnum":  strings.Join(slices.Collect(log.Levels()), ","),
		"logFormatEnum": strings.Join(slices.Collect(log.Formats()), ","),
	}
}

func (*logConfig) group() kong.Group {
	return kong.Group{Key: "log", Title: "Logging options"}
}

// start applies every parsed logging flag to the default logger. The
// returned func logs the end of the run.
func (f *logConfig) start(ctx context.Context) (stop func()) {
	log.Config(
		log.WithLevel(log.ParseLevel(string(f.Level))),
		log.WithFormat(log.ParseFormat(string(f.Format))),
		log.WithTimeLayout(f.TimeLayout),
		log.WithCaller(f.Caller),
		log.WithPretty(f.Pretty),
	)

	log.DebugContext(ctx, "logger initialized",
		slog.String("level", string(f.Level)),
		slog.String("format", string(f.Format)),
		slog.String("time", f.TimeLayout),
		slog.Bool("caller", f.Caller),
		slog.Bool("pretty", f.Pretty),
	)

	return func() {
		log.TraceContext(ctx, "run complete", slog.Any("cause", context.Cause(ctx)))
	}
}

// logSwitches are the boolean logging flags honored by [logConfig.scan].
// Each applies its value to f and the default logger.
var logSwitches = map[string]func(f *logConfig, on bool){
	"caller": func(f *logConfig, on bool) {
		f.Caller = on
		log.Config(log.WithCaller(on))
	},
	"pretty": func(f *logConfig, on bool) {
		f.Pretty = on
		log.Config(log.WithPretty(on))
	},
}

// scan applies logging flags found anywhere in args before kong parses
// them. Valued flags also configure the logger while kong decodes them, but
// boolean flags are only seen here.
func (f *logConfig) scan(args []string) {
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			return
		}

		on := true

		name, found := strings.CutPrefix(arg, "--log-")
		if !found {
			if name, found = strings.CutPrefix(arg, "--no-log-"); !found {
				continue
			}

			on = false
		}

		name, value, assigned := strings.Cut(name, "=")

		switch name {
		case "level", "format":
			if !assigned && i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				i++
				value = args[i]
			}

			if name == "level" {
				_ = f.Level.UnmarshalText([]byte(value))
			} else {
				_ = f.Format.UnmarshalText([]byte(value))
			}

		default:
			apply, ok := logSwitches[name]
			if !ok {
				continue
			}

			if assigned {
				v, err := strconv.ParseBool(value)
				if err != nil {
					continue
				}

				on = on == v
			}

			apply(f, on)
		}
	}
}
