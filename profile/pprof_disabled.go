//go:build !pprof

package profile

// Modes returns nil when built without the pprof tag.
func Modes() []string { return nil }

func mode(string) (struct{}, bool) { return struct{}{}, false }

// Start does nothing when built without the pprof tag.
func (Profiler) Start() Stopper { return ignore{} }
