// Package log provides a concurrency-safe leveled logger built on
// [log/slog].
//
// Loggers are configured once, at creation, with functional options:
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelDebug),
//		log.WithFormat(log.FormatText),
//		log.WithTimeLayout("kitchen"))
//
//	logger.Info("expression parsed", slog.Int("tokens", 7))
//
// [Logger.Wrap] derives a reconfigured copy and [Logger.With] derives a copy
// that adds attributes to every record. The zero [Logger] discards
// everything.
//
// # Levels
//
// Besides the four [log/slog] levels, the package defines [LevelTrace] for
// per-token detail.
//
// # Formats
//
// Records are written as JSON ([FormatJSON], the default) or key=value text
// ([FormatText]). With [WithPretty] either format is colorized for a
// terminal.
//
// # Package Logger
//
// The package-level functions such as [Info] and [DebugContext] write to a
// shared logger on [os.Stderr], reconfigured with [Config]. Functions and
// methods without a context argument use [DefaultContextProvider].
package log
