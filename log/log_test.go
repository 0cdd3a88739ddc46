package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

func decode(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()

	var records []map[string]any

	for line := range strings.Lines(buf.String()) {
		var rec map[string]any
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			t.Fatalf("invalid JSON record %q: %v", line, err)
		}

		records = append(records, rec)
	}

	return records
}

func plainJSON(buf *bytes.Buffer, opts ...Option) Logger {
	return Make(buf, append([]Option{WithFormat(FormatJSON), WithPretty(false)}, opts...)...)
}

func TestMake_Defaults(t *testing.T) {
	logger := Make(nil)

	if logger.level != DefaultLevel {
		t.Errorf("level = %v, want %v", logger.level, DefaultLevel)
	}

	if logger.format != DefaultFormat {
		t.Errorf("format = %v, want %v", logger.format, DefaultFormat)
	}

	if logger.caller != DefaultCaller {
		t.Errorf("caller = %v, want %v", logger.caller, DefaultCaller)
	}

	if logger.pretty != DefaultPretty {
		t.Errorf("pretty = %v, want %v", logger.pretty, DefaultPretty)
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	tests := []struct {
		name   string
		log    func(Logger, string, ...slog.Attr)
		min    Level
		want   string
		logged bool
	}{
		{"trace at trace", (Logger).Trace, LevelTrace, "TRACE", true},
		{"trace at debug", (Logger).Trace, LevelDebug, "", false},
		{"debug at debug", (Logger).Debug, LevelDebug, "DEBUG", true},
		{"debug at info", (Logger).Debug, LevelInfo, "", false},
		{"info at info", (Logger).Info, LevelInfo, "INFO", true},
		{"warn at error", (Logger).Warn, LevelError, "", false},
		{"warn at warn", (Logger).Warn, LevelWarn, "WARN", true},
		{"error at error", (Logger).Error, LevelError, "ERROR", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer

			tt.log(plainJSON(&buf, WithLevel(tt.min)), "message")

			if !tt.logged {
				if buf.Len() != 0 {
					t.Fatalf("unexpected output: %s", buf.String())
				}

				return
			}

			recs := decode(t, &buf)
			if len(recs) != 1 {
				t.Fatalf("got %d records, want 1", len(recs))
			}

			if recs[0]["level"] != tt.want {
				t.Errorf("level = %v, want %s", recs[0]["level"], tt.want)
			}
		})
	}
}

func TestLogger_ZeroValue(t *testing.T) {
	var logger Logger

	logger.Info("dropped")
	logger.TraceContext(t.Context(), "dropped")

	if got := logger.With(slog.Int("n", 1)); got.Logger != nil {
		t.Error("With on zero Logger returned a live logger")
	}

	if logger.Level() != DefaultLevel {
		t.Errorf("Level() = %v, want %v", logger.Level(), DefaultLevel)
	}

	if logger.Format() != DefaultFormat {
		t.Errorf("Format() = %v, want %v", logger.Format(), DefaultFormat)
	}
}

func TestLogger_Wrap(t *testing.T) {
	var buf bytes.Buffer

	base := plainJSON(&buf, WithLevel(LevelError))
	wrapped := base.Wrap(WithLevel(LevelDebug))

	if base.Level() != LevelError {
		t.Errorf("base level changed to %v", base.Level())
	}

	if wrapped.Level() != LevelDebug {
		t.Errorf("wrapped level = %v, want debug", wrapped.Level())
	}

	base.Debug("hidden")
	wrapped.Debug("shown")

	recs := decode(t, &buf)
	if len(recs) != 1 || recs[0]["msg"] != "shown" {
		t.Fatalf("records = %v", recs)
	}
}

func TestLogger_NilOption(t *testing.T) {
	var buf bytes.Buffer

	logger := plainJSON(&buf, nil, WithLevel(LevelWarn), nil)
	if logger.Level() != LevelWarn {
		t.Errorf("level = %v, want warn", logger.Level())
	}

	wrapped := logger.Wrap(nil)
	if wrapped.Level() != LevelWarn {
		t.Errorf("wrapped level = %v, want warn", wrapped.Level())
	}

	wrapped.Warn("kept")

	recs := decode(t, &buf)
	if len(recs) != 1 || recs[0]["msg"] != "kept" {
		t.Fatalf("records = %v", recs)
	}
}

func TestLogger_With(t *testing.T) {
	var buf bytes.Buffer

	logger := plainJSON(&buf).With(slog.String("component", "parser"))
	logger.Info("parsed", slog.Int("tokens", 3))

	recs := decode(t, &buf)
	if len(recs) != 1 {
		t.Fatalf("got %d records, want 1", len(recs))
	}

	if recs[0]["component"] != "parser" {
		t.Errorf("component = %v", recs[0]["component"])
	}

	if recs[0]["tokens"] != float64(3) {
		t.Errorf("tokens = %v", recs[0]["tokens"])
	}
}

func TestLogger_Caller(t *testing.T) {
	var buf bytes.Buffer

	plainJSON(&buf, WithCaller(true)).Info("here")

	recs := decode(t, &buf)
	if len(recs) != 1 {
		t.Fatalf("got %d records, want 1", len(recs))
	}

	src, ok := recs[0]["source"].(map[string]any)
	if !ok {
		t.Fatalf("source missing: %v", recs[0])
	}

	if file, _ := src["file"].(string); !strings.HasSuffix(file, "log_test.go") {
		t.Errorf("source file = %q, want log_test.go", file)
	}
}

func TestLogger_TimeLayout(t *testing.T) {
	tests := []struct {
		layout string
		check  func(any) bool
	}{
		{"none", func(v any) bool { return v == nil }},
		{"", func(v any) bool { return v == nil }},
		{"RFC-3339", func(v any) bool { s, _ := v.(string); return strings.Contains(s, "T") }},
		{"2006", func(v any) bool { s, _ := v.(string); return len(s) == 4 }},
	}

	for _, tt := range tests {
		t.Run(tt.layout, func(t *testing.T) {
			var buf bytes.Buffer

			plainJSON(&buf, WithTimeLayout(tt.layout)).Info("tick")

			recs := decode(t, &buf)
			if !tt.check(recs[0]["time"]) {
				t.Errorf("time = %v", recs[0]["time"])
			}
		})
	}
}

func TestLogger_TextFormat(t *testing.T) {
	var buf bytes.Buffer

	Make(&buf, WithFormat(FormatText), WithPretty(false)).
		Warn("careful", slog.String("key", "value"))

	out := buf.String()
	for _, want := range []string{"level=WARN", "msg=careful", "key=value"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
}

func TestLogger_Concurrent(t *testing.T) {
	var (
		buf syncBuffer
		wg  sync.WaitGroup
	)

	logger := Make(&buf, WithFormat(FormatJSON), WithPretty(false))

	for i := range 16 {
		wg.Go(func() {
			logger.Info("worker", slog.Int("id", i))
		})
	}

	wg.Wait()

	if n := strings.Count(buf.String(), "\n"); n != 16 {
		t.Errorf("got %d lines, want 16", n)
	}
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.String()
}
