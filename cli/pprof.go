//go:build pprof

package cli

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/criteria/log"
	"github.com/ardnew/criteria/profile"
)

type pprofConfig struct {
	Mode string `default:""            enum:",${pprofModeEnum}" help:"Enable profiling (${enum})" placeholder:"MODE" short:"p"`
	Dir  string `default:"${pprofDir}"                          help:"Profile output directory"                             type:"path"`
}

func (pprofConfig) vars() kong.Vars {
	return kong.Vars{
		"pprofModeEnum": strings.Join(profile.Modes(), ","),
		"pprofDir":      filepath.Join(cacheDir(), profile.Tag),
	}
}

func (pprofConfig) group() kong.Group {
	return kong.Group{Key: "pprof", Title: "Profiling (pprof)"}
}

// start starts the profiler selected by --pprof-mode, if any.
func (f pprofConfig) start(ctx context.Context) (stop func()) {
	p := profile.Profiler{Mode: f.Mode, Dir: f.Dir, Quiet: true}
	if !p.Enabled() {
		return func() {}
	}

	attrs := []slog.Attr{slog.String("mode", f.Mode), slog.String("dir", f.Dir)}

	log.DebugContext(ctx, "pprof start", attrs...)

	s := p.Start()

	return func() {
		s.Stop()
		log.DebugContext(ctx, "pprof stop", attrs...)
	}
}
