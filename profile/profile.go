package profile

// Tag is the build tag that enables profiling, and the name of the
// default profile output directory.
const Tag = "pprof"

// Stopper ends a profiling session and flushes its output.
type Stopper interface{ Stop() }

// Profiler configures one profiling session.
type Profiler struct {
	// Mode is one of [Modes]. Empty disables profiling.
	Mode string
	// Dir receives the profile. Empty uses a temporary directory.
	Dir string
	// Quiet suppresses the profiler's own start and stop messages.
	Quiet bool
}

// Enabled reports whether Start would begin profiling.
func (p Profiler) Enabled() bool {
	_, ok := mode(p.Mode)

	return ok
}

type ignore struct{}

func (ignore) Stop() {}
