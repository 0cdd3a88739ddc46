package log

import (
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// Option transforms a Logger's configuration. Nil options are skipped.
type Option func(config) config

// FormatTime formats a log record's timestamp. An empty result omits the
// timestamp from the record.
type FormatTime func(time.Time) string

const (
	// DefaultTimeLayout is used when no valid time layout is provided.
	DefaultTimeLayout = time.RFC3339
	// DefaultCaller is the default setting for including caller information.
	DefaultCaller = false
	// DefaultPretty is the default setting for colorized output.
	DefaultPretty = true
)

// config holds the configuration of a Logger. Copies share nothing but the
// output writer; each copy made by clone gets its own mutex.
type config struct {
	mutex      *sync.RWMutex
	output     io.Writer
	formatTime FormatTime
	level      Level
	format     Format
	caller     bool
	pretty     bool
}

func makeConfig(w io.Writer, opts ...Option) config {
	return config{mutex: &sync.RWMutex{}}.with(WithDefaults(w)).with(opts...)
}

// clone copies c with a fresh mutex and applies opts to the copy.
func (c config) clone(opts ...Option) config {
	c.mutex = &sync.RWMutex{}

	return c.with(opts...)
}

func (c config) with(opts ...Option) config {
	for _, opt := range opts {
		if opt != nil {
			c = opt(c)
		}
	}

	return c
}

// update applies fn to c under c's write lock, creating the lock if c has
// none yet.
func (c config) update(fn func(*config)) config {
	if c.mutex == nil {
		c.mutex = &sync.RWMutex{}
	} else {
		c.mutex.Lock()
		defer c.mutex.Unlock()
	}

	fn(&c)

	return c
}

// rlock read-locks c, returning the matching unlock.
func (c *config) rlock() func() {
	if c.mutex == nil {
		c.mutex = &sync.RWMutex{}
	}

	c.mutex.RLock()

	return c.mutex.RUnlock
}

func (c config) handlerOptions() *slog.HandlerOptions {
	return &slog.HandlerOptions{
		AddSource: c.caller,
		Level:     slog.Level(c.level),
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) > 0 {
				return a
			}

			switch a.Key {
			case slog.TimeKey:
				if t, ok := a.Value.Any().(time.Time); ok {
					s := c.formatTime(t)
					if s == "" {
						return slog.Attr{}
					}

					a.Value = slog.StringValue(s)
				}

			case slog.LevelKey:
				if l, ok := a.Value.Any().(slog.Level); ok {
					a.Value = slog.StringValue(strings.ToUpper(Level(l).String()))
				}
			}

			return a
		},
	}
}

func (c config) handler() slog.Handler {
	opts := c.handlerOptions()

	switch {
	case c.format != FormatJSON && c.format != FormatText:
		return slog.DiscardHandler
	case c.pretty:
		return newPrettyHandler(c.output, c.format, opts)
	case c.format == FormatJSON:
		return slog.NewJSONHandler(c.output, opts)
	default:
		return slog.NewTextHandler(c.output, opts)
	}
}

// WithDefaults returns an option that resets every setting to its default
// and directs output to w ([io.Discard] if w is nil).
func WithDefaults(w io.Writer) Option {
	if w == nil {
		w = io.Discard
	}

	return func(c config) config {
		return c.update(func(c *config) {
			c.output = w
			c.formatTime = makeFormatTimeFunc(DefaultTimeLayout)
			c.level = DefaultLevel
			c.format = DefaultFormat
			c.caller = DefaultCaller
			c.pretty = DefaultPretty
		})
	}
}

// WithOutput returns an option that sets the output writer.
// A nil writer discards output.
func WithOutput(w io.Writer) Option {
	if w == nil {
		w = io.Discard
	}

	return func(c config) config {
		return c.update(func(c *config) { c.output = w })
	}
}

// WithLevel returns an option that sets the minimum log level.
func WithLevel(level Level) Option {
	return func(c config) config {
		return c.update(func(c *config) { c.level = level })
	}
}

// WithFormat returns an option that sets the output format.
func WithFormat(format Format) Option {
	return func(c config) config {
		return c.update(func(c *config) { c.format = format })
	}
}

// WithTimeLayout returns an option that sets the timestamp layout.
//
// The layout is either a name from the [time] package, matched without
// regard to case or punctuation ("RFC3339", "rfc-3339-nano", "kitchen"), a
// short alias ("ms", "micro", "nano"), or a literal layout string. The
// empty string and "none" disable timestamps.
func WithTimeLayout(layout string) Option {
	format := makeFormatTimeFunc(layout)

	return func(c config) config {
		return c.update(func(c *config) { c.formatTime = format })
	}
}

// WithCaller returns an option that controls whether records include the
// source location of the logging call.
func WithCaller(enable bool) Option {
	return func(c config) config {
		return c.update(func(c *config) { c.caller = enable })
	}
}

// WithPretty returns an option that controls colorized output.
func WithPretty(enable bool) Option {
	return func(c config) config {
		return c.update(func(c *config) { c.pretty = enable })
	}
}

var timeLayout = map[string]string{
	"rfc3339":     time.RFC3339,
	"rfc3339nano": time.RFC3339Nano,
	"ansic":       time.ANSIC,
	"unixdate":    time.UnixDate,
	"rubydate":    time.RubyDate,
	"rfc822":      time.RFC822,
	"rfc822z":     time.RFC822Z,
	"rfc850":      time.RFC850,
	"kitchen":     time.Kitchen,
	"datetime":    time.DateTime,
	"stamp":       time.Stamp,
	"none":        "",
	"stampmilli":  time.StampMilli,
	"milli":       time.StampMilli,
	"ms":          time.StampMilli,
	"stampmicro":  time.StampMicro,
	"micro":       time.StampMicro,
	"us":          time.StampMicro,
	"stampnano":   time.StampNano,
	"nano":        time.StampNano,
	"ns":          time.StampNano,
}

func makeFormatTimeFunc(layout string) FormatTime {
	key := strings.Map(func(r rune) rune {
		if ('a' <= r && r <= 'z') || ('0' <= r && r <= '9') {
			return r
		}

		return -1
	}, strings.ToLower(layout))

	if named, ok := timeLayout[key]; ok {
		layout = named
	} else if key == "" {
		layout = ""
	}

	if layout == "" {
		return func(time.Time) string { return "" }
	}

	return func(t time.Time) string { return t.Format(layout) }
}
