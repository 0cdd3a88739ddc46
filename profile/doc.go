// Package profile starts optional runtime profiling with
// [github.com/pkg/profile].
//
// Profiling is compiled in only with the pprof build tag:
//
//	go build -tags pprof -o criteria .
//	criteria --pprof-mode=cpu bench
//
// Without the tag, [Modes] is empty and [Profiler.Start] does nothing.
// Profiles are written to [Profiler.Dir] under the name of the mode, for
// example cpu.pprof, and inspected with "go tool pprof".
package profile
