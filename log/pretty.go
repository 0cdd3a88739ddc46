package log

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"
)

// ANSI color codes for pretty printing.
const (
	colorReset   = "\033[0m"
	colorGray    = "\033[90m"
	colorRed     = "\033[31m"
	colorGreen   = "\033[32m"
	colorYellow  = "\033[33m"
	colorBlue    = "\033[34m"
	colorMagenta = "\033[35m"
	colorCyan    = "\033[36m"
)

// prettyHandler writes colorized records as either key=value text or
// indented JSON-like objects.
type prettyHandler struct {
	opts   slog.HandlerOptions
	format Format
	mu     *sync.Mutex
	w      io.Writer
	attrs  []slog.Attr // already qualified by group
	group  string      // dotted prefix for attrs added later
}

func newPrettyHandler(
	w io.Writer,
	format Format,
	opts *slog.HandlerOptions,
) *prettyHandler {
	return &prettyHandler{
		opts:   *opts,
		format: format,
		mu:     &sync.Mutex{},
		w:      w,
	}
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	min := slog.LevelInfo
	if h.opts.Level != nil {
		min = h.opts.Level.Level()
	}

	return level >= min
}

func (h *prettyHandler) Handle(_ context.Context, r slog.Record) error {
	attrs := make([]slog.Attr, 0, 4+len(h.attrs)+r.NumAttrs())

	if !r.Time.IsZero() {
		attrs = h.appendBuiltin(attrs, slog.Time(slog.TimeKey, r.Time))
	}

	attrs = h.appendBuiltin(attrs, slog.Any(slog.LevelKey, r.Level))

	if h.opts.AddSource {
		if src := r.Source(); src != nil && src.File != "" {
			attrs = h.appendBuiltin(attrs,
				slog.String(slog.SourceKey, fmt.Sprintf("%s:%d", src.File, src.Line)))
		}
	}

	attrs = h.appendBuiltin(attrs, slog.String(slog.MessageKey, r.Message))
	attrs = append(attrs, h.attrs...)

	r.Attrs(func(a slog.Attr) bool {
		attrs = h.appendQualified(attrs, h.group, a)

		return true
	})

	buf := new(bytes.Buffer)

	if h.format == FormatJSON {
		writeObject(buf, attrs)
	} else {
		writeLine(buf, attrs)
	}

	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.w.Write(buf.Bytes())

	return err
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}

	c := *h
	c.attrs = h.attrs[:len(h.attrs):len(h.attrs)]

	for _, a := range attrs {
		c.attrs = h.appendQualified(c.attrs, h.group, a)
	}

	return &c
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	c := *h
	c.group = qualify(h.group, name)

	return &c
}

// appendBuiltin passes a built-in attribute through ReplaceAttr.
func (h *prettyHandler) appendBuiltin(attrs []slog.Attr, a slog.Attr) []slog.Attr {
	if h.opts.ReplaceAttr != nil {
		a = h.opts.ReplaceAttr(nil, a)
	}

	if a.Key == "" {
		return attrs
	}

	return append(attrs, a)
}

// appendQualified flattens a into attrs, prefixing keys with group.
func (h *prettyHandler) appendQualified(
	attrs []slog.Attr,
	group string,
	a slog.Attr,
) []slog.Attr {
	a.Value = a.Value.Resolve()

	if a.Value.Kind() == slog.KindGroup {
		sub := qualify(group, a.Key)
		for _, g := range a.Value.Group() {
			attrs = h.appendQualified(attrs, sub, g)
		}

		return attrs
	}

	if a.Key == "" {
		return attrs
	}

	a.Key = qualify(group, a.Key)

	return append(attrs, a)
}

func qualify(group, key string) string {
	switch {
	case group == "":
		return key
	case key == "":
		return group
	default:
		return group + "." + key
	}
}

func writeLine(buf *bytes.Buffer, attrs []slog.Attr) {
	for i, a := range attrs {
		if i > 0 {
			buf.WriteByte(' ')
		}

		buf.WriteString(colorGray)
		buf.WriteString(a.Key)
		buf.WriteString(colorReset)
		buf.WriteByte('=')
		writeValue(buf, a.Value)
	}
}

func writeObject(buf *bytes.Buffer, attrs []slog.Attr) {
	buf.WriteString("{\n")

	for i, a := range attrs {
		if i > 0 {
			buf.WriteString(",\n")
		}

		buf.WriteString("  ")
		buf.WriteString(colorGray)
		buf.WriteString(strconv.Quote(a.Key))
		buf.WriteString(colorReset)
		buf.WriteString(": ")

		color, text := colorize(a.Value)
		if a.Value.Kind() == slog.KindString {
			text = strconv.Quote(text)
		}

		buf.WriteString(color)
		buf.WriteString(text)
		buf.WriteString(colorReset)
	}

	buf.WriteString("\n}")
}

func writeValue(buf *bytes.Buffer, v slog.Value) {
	color, text := colorize(v)

	buf.WriteString(color)
	buf.WriteString(text)
	buf.WriteString(colorReset)
}

func colorize(v slog.Value) (color, text string) {
	switch v.Kind() {
	case slog.KindInt64:
		return colorYellow, strconv.FormatInt(v.Int64(), 10)

	case slog.KindUint64:
		return colorYellow, strconv.FormatUint(v.Uint64(), 10)

	case slog.KindFloat64:
		return colorYellow, strconv.FormatFloat(v.Float64(), 'g', -1, 64)

	case slog.KindBool:
		if v.Bool() {
			return colorGreen, "true"
		}

		return colorRed, "false"

	case slog.KindDuration:
		return colorMagenta, v.Duration().String()

	case slog.KindTime:
		return colorBlue, v.Time().Format(time.RFC3339)

	case slog.KindAny:
		switch x := v.Any().(type) {
		case slog.Level:
			return levelColor(x), strings.ToUpper(Level(x).String())
		case nil:
			return colorGray, "null"
		case error:
			return colorRed, x.Error()
		}
	}

	text = v.String()
	if c, ok := levelNameColor(text); ok {
		return c, text
	}

	return colorCyan, text
}

func levelColor(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return colorRed
	case level >= slog.LevelWarn:
		return colorYellow
	case level >= slog.LevelInfo:
		return colorGreen
	case level >= slog.LevelDebug:
		return colorBlue
	default:
		return colorMagenta
	}
}

// levelNameColor recognizes level names rewritten to strings by
// ReplaceAttr.
func levelNameColor(s string) (string, bool) {
	for l, name := range levelName {
		if s == strings.ToUpper(name) {
			return levelColor(slog.Level(l)), true
		}
	}

	return "", false
}
