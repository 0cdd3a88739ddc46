package cli

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/ardnew/criteria/pkg"
)

const (
	// baseConfig is the base name of the configuration file.
	baseConfig = "config.yaml"
	// baseStore is the base name of the default binding store.
	baseStore = "bindings.db"
)

var defaultDirMode os.FileMode = 0o700

// basePrefix is the name of the per-user configuration and cache
// directories: the executable's base name without extension or leading
// dots. Debugger builds use [pkg.Name].
var basePrefix = sync.OnceValue(
	func() string {
		id := os.Args[0]
		if exe, err := os.Executable(); err == nil {
			id = exe
		}

		id = filepath.Base(id)
		id = strings.TrimSuffix(id, filepath.Ext(id))

		id = regexp.MustCompile(`^__debug_bin\d*$`).ReplaceAllString(id, pkg.Name)
		id = strings.TrimLeft(id, ".")

		if id == "" {
			return pkg.Name
		}

		return id
	},
)

// userDir returns filepath.Join(base(), basePrefix()), falling back to
// fallback under the home directory, then to the working directory.
func userDir(base func() (string, error), fallback string) string {
	dir, err := base()
	if err != nil {
		if dir, err = os.UserHomeDir(); err == nil {
			dir = filepath.Join(dir, fallback)
		} else if dir, err = os.Getwd(); err != nil {
			dir = "."
		}
	}

	return filepath.Join(dir, basePrefix())
}

var configDir = sync.OnceValue(func() string {
	return userDir(os.UserConfigDir, ".config")
})

var cacheDir = sync.OnceValue(func() string {
	return userDir(os.UserCacheDir, ".cache")
})

// configPath joins elem to the configuration directory.
func configPath(elem ...string) string {
	return filepath.Join(append([]string{configDir()}, elem...)...)
}

// mkdirAllRequired creates the configuration and cache directories.
func mkdirAllRequired() error {
	for _, dir := range []string{configDir(), cacheDir()} {
		if err := os.MkdirAll(dir, defaultDirMode); err != nil {
			return err
		}
	}

	return nil
}
