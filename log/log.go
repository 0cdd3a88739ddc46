package log

import (
	"context"
	"io"
	"log/slog"
	"runtime"
	"time"
)

// Logger is a leveled structured logger built on [slog.Logger].
//
// The zero Logger discards everything, so a Logger field left unset in a
// library type disables its logging.
type Logger struct {
	*slog.Logger
	config
}

// Make creates a [Logger] that writes to w. Without options it uses
// [DefaultFormat], [DefaultLevel], [DefaultTimeLayout], and [DefaultPretty],
// and omits caller information.
func Make(w io.Writer, opts ...Option) Logger {
	cfg := makeConfig(w, opts...)

	return Logger{Logger: slog.New(cfg.handler()), config: cfg}
}

// Wrap returns a copy of l reconfigured by opts. Attributes added to l with
// [Logger.With] are not carried over.
func (l Logger) Wrap(opts ...Option) Logger {
	unlock := l.rlock()
	cfg := l.clone(opts...)
	unlock()

	return Logger{Logger: slog.New(cfg.handler()), config: cfg}
}

// With returns a copy of l that adds attrs to every record.
func (l Logger) With(attrs ...slog.Attr) Logger {
	if l.Logger == nil {
		return l
	}

	unlock := l.rlock()
	cfg := l.clone()
	unlock()

	return Logger{
		Logger: slog.New(l.Handler().WithAttrs(attrs)),
		config: cfg,
	}
}

// Level returns the minimum level l emits.
func (l Logger) Level() Level {
	if l.Logger == nil {
		return DefaultLevel
	}

	defer l.rlock()()

	return l.level
}

// Format returns the output format of l.
func (l Logger) Format() Format {
	if l.Logger == nil {
		return DefaultFormat
	}

	defer l.rlock()()

	return l.format
}

// TraceContext logs at [LevelTrace].
func (l Logger) TraceContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.log(ctx, LevelTrace, msg, attrs)
}

// Trace logs at [LevelTrace] with [DefaultContextProvider].
func (l Logger) Trace(msg string, attrs ...slog.Attr) {
	l.log(DefaultContextProvider(), LevelTrace, msg, attrs)
}

// DebugContext logs at [LevelDebug].
func (l Logger) DebugContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.log(ctx, LevelDebug, msg, attrs)
}

// Debug logs at [LevelDebug] with [DefaultContextProvider].
func (l Logger) Debug(msg string, attrs ...slog.Attr) {
	l.log(DefaultContextProvider(), LevelDebug, msg, attrs)
}

// InfoContext logs at [LevelInfo].
func (l Logger) InfoContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.log(ctx, LevelInfo, msg, attrs)
}

// Info logs at [LevelInfo] with [DefaultContextProvider].
func (l Logger) Info(msg string, attrs ...slog.Attr) {
	l.log(DefaultContextProvider(), LevelInfo, msg, attrs)
}

// WarnContext logs at [LevelWarn].
func (l Logger) WarnContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.log(ctx, LevelWarn, msg, attrs)
}

// Warn logs at [LevelWarn] with [DefaultContextProvider].
func (l Logger) Warn(msg string, attrs ...slog.Attr) {
	l.log(DefaultContextProvider(), LevelWarn, msg, attrs)
}

// ErrorContext logs at [LevelError].
func (l Logger) ErrorContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.log(ctx, LevelError, msg, attrs)
}

// Error logs at [LevelError] with [DefaultContextProvider].
func (l Logger) Error(msg string, attrs ...slog.Attr) {
	l.log(DefaultContextProvider(), LevelError, msg, attrs)
}

// callerSkip is the number of frames between runtime.Callers and the code
// that called a leveled method or function.
const callerSkip = 3

// DefaultContextProvider supplies the context for logging calls that do not
// take one.
var DefaultContextProvider = context.TODO

func (l Logger) log(ctx context.Context, level Level, msg string, attrs []slog.Attr) {
	if l.Logger == nil {
		return
	}

	defer l.rlock()()

	if !l.Enabled(ctx, slog.Level(level)) {
		return
	}

	var pcs [1]uintptr

	runtime.Callers(callerSkip, pcs[:])

	r := slog.NewRecord(time.Now(), slog.Level(level), msg, pcs[0])
	r.AddAttrs(attrs...)

	_ = l.Handler().Handle(ctx, r)
}
