package pkg

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
)

// DirMode is the permission mode for directories created by [MkdirAll].
const DirMode os.FileMode = 0o700

// Prefix returns the base name used for the configuration and cache
// directories and as the prefix of environment variable identifiers.
//
// By default, Prefix is the base name of the executable file unless it matches
// one of the following substitution rules:
//   - "__debug_bin" (default output of the dlv debugger): replaced with [Name]
//   - "^\.+" (dot-prefixed names): remove the dot prefix
//
// An executable name that reduces to the empty string is replaced with [Name].
//
//nolint:gochecknoglobals
var Prefix = sync.OnceValue(
	func() string {
		id := os.Args[0]
		exe, err := os.Executable()
		if err == nil {
			id = exe
		}

		ext := filepath.Ext(filepath.Base(id))
		id = strings.TrimSuffix(filepath.Base(id), ext)

		for rex, rep := range map[*regexp.Regexp]string{
			regexp.MustCompile(`^__debug_bin\d+$`): Name, // default output from dlv
			regexp.MustCompile(`^\.+`):             "",   // remove leading dot(s)
		} {
			id = rex.ReplaceAllString(id, rep)
		}

		if id == "" {
			return Name
		}

		return id
	},
)

// userDir returns the directory named Prefix under base, falling back to
// fallback under the home directory, then to the working directory.
func userDir(base func() (string, error), fallback string) string {
	dir, err := base()
	if err != nil {
		dir, err = os.UserHomeDir()
		if err == nil {
			dir = filepath.Join(dir, fallback)
		} else {
			dir, err = os.Getwd()
			if err != nil {
				dir = "."
			}
		}
	}

	return filepath.Join(dir, Prefix())
}

// ConfigDir returns the configuration directory path.
//
//nolint:gochecknoglobals
var ConfigDir = sync.OnceValue(
	func() string { return userDir(os.UserConfigDir, ".config") },
)

// CacheDir returns the cache directory path used for transient files.
//
//nolint:gochecknoglobals
var CacheDir = sync.OnceValue(
	func() string { return userDir(os.UserCacheDir, ".cache") },
)

// ConfigPath joins elem onto [ConfigDir].
func ConfigPath(elem ...string) string {
	return filepath.Join(append([]string{ConfigDir()}, elem...)...)
}

// EnvIdentifier returns the environment variable identifier for name,
// for example "RECLINE_PATH" for "path".
func EnvIdentifier(name string) string {
	id := strings.ToUpper(Prefix() + "_" + name)

	return strings.Map(func(r rune) rune {
		if r == '-' || r == '.' || r == ' ' {
			return '_'
		}

		return r
	}, id)
}

// MkdirAll creates the configuration and cache directories.
func MkdirAll() error {
	for _, dir := range []string{ConfigDir(), CacheDir()} {
		if err := os.MkdirAll(dir, DirMode); err != nil {
			return err
		}
	}

	return nil
}
