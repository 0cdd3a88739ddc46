package cmd

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/ardnew/criteria/lang"
)

type contextKey struct{}

// WithContext returns a copy of ctx carrying ktx.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, _ := ctx.Value(contextKey{}).(*kong.Context)

	return ktx
}

// stdout returns the writer commands print results to.
func stdout(ctx context.Context) io.Writer {
	if ktx := kongContextFrom(ctx); ktx != nil && ktx.Stdout != nil {
		return ktx.Stdout
	}

	return os.Stdout
}

// Scope is the set of bindings every command evaluates against.
type Scope struct {
	// Resolver binds references. Nil means [lang.Default].
	Resolver lang.Resolver
	// Variables and Functions list bound names for completion. Either may
	// be nil.
	Variables func(context.Context) []string
	Functions func(context.Context) []string
	// Store persists variables for later runs. Nil when no store is open.
	Store Store
}

// Store persists variable bindings. [*binding.Store] implements it.
type Store interface {
	Put(ctx context.Context, name string, v lang.Value) error
	Delete(ctx context.Context, name string) error
}

type scopeKey struct{}

// WithScope returns a copy of ctx carrying s.
func WithScope(ctx context.Context, s Scope) context.Context {
	return context.WithValue(ctx, scopeKey{}, s)
}

func scopeFrom(ctx context.Context) Scope {
	s, _ := ctx.Value(scopeKey{}).(Scope)
	if s.Resolver == nil {
		s.Resolver = lang.Default()
	}

	return s
}

func (s Scope) variables(ctx context.Context) []string {
	if s.Variables == nil {
		return nil
	}

	return s.Variables(ctx)
}

func (s Scope) functions(ctx context.Context) []string {
	if s.Functions == nil {
		return nil
	}

	return s.Functions(ctx)
}

type sourceFilesKey struct{}

// SourceFiles reads expression files in order, followed by stdin when "-"
// was named.
type SourceFiles interface {
	IsZero() bool
	io.Reader
}

type sourceFiles struct {
	read     []io.Reader
	hasStdin bool
	reader   io.Reader
}

func (s *sourceFiles) IsZero() bool { return len(s.read) == 0 && !s.hasStdin }

func (s *sourceFiles) Read(p []byte) (int, error) {
	if s.reader == nil {
		readers := s.read
		if s.hasStdin {
			readers = append(readers, os.Stdin)
		}

		s.reader = io.MultiReader(readers...)
	}

	return s.reader.Read(p)
}

// fileKey identifies a file by device and inode, so the same file named
// twice (through a symlink or a relative path) is read once.
type fileKey struct {
	dev uint64
	ino uint64
}

const stdinSource = "-"

// WithSourceFiles returns a copy of ctx carrying a reader over sources.
// Duplicates are dropped and every "-" collapses to one stdin reader placed
// last.
func WithSourceFiles(ctx context.Context, sources []string) context.Context {
	return context.WithValue(ctx, sourceFilesKey{}, buildSourceFiles(sources))
}

func buildSourceFiles(sources []string) SourceFiles {
	if len(sources) == 0 {
		return nil
	}

	var srcs sourceFiles

	seen := make(map[fileKey]struct{})

	stdinInfo, _ := os.Stdin.Stat()
	stdinKey, _ := makeFileKey(stdinInfo)

	for _, src := range sources {
		if src == stdinSource {
			seen[stdinKey] = struct{}{}

			continue
		}

		if r, ok := openUniqueFile(src, seen); ok {
			srcs.read = append(srcs.read, r)
		}
	}

	_, srcs.hasStdin = seen[stdinKey]

	if srcs.IsZero() {
		return nil
	}

	return &srcs
}

func openUniqueFile(path string, seen map[fileKey]struct{}) (io.Reader, bool) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, false
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, false
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return nil, false
	}

	key, ok := makeFileKey(info)
	if !ok {
		return nil, false
	}

	if _, dup := seen[key]; dup {
		return nil, false
	}

	seen[key] = struct{}{}

	f, err := os.Open(resolved)
	if err != nil {
		return nil, false
	}

	return f, true
}

func makeFileKey(info os.FileInfo) (fileKey, bool) {
	if info == nil {
		return fileKey{}, false
	}

	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return fileKey{}, false
	}

	return fileKey{dev: stat.Dev, ino: stat.Ino}, true
}

func sourceFilesFrom(ctx context.Context) SourceFiles {
	r, _ := ctx.Value(sourceFilesKey{}).(SourceFiles)

	return r
}
