// Package filesystem locates the per-user bugsqa directory.
package filesystem

import (
	"os"
	"path/filepath"
	"strings"
)

// AppDirName is the directory under $HOME holding config and shell history.
const AppDirName = ".bugsqa"

// UserHomeDir returns the current user's home directory, or "." when it cannot be determined.
func UserHomeDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return "."
}

// AppDir returns ~/.bugsqa.
func AppDir() string {
	return filepath.Join(UserHomeDir(), AppDirName)
}

// AppPath joins elem onto AppDir.
func AppPath(elem ...string) string {
	return filepath.Join(append([]string{AppDir()}, elem...)...)
}

// ExpandPath resolves a leading "~/" and cleans relative paths.
func ExpandPath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if rest, ok := strings.CutPrefix(path, "~/"); ok {
		return filepath.Join(UserHomeDir(), rest)
	}
	return filepath.Clean(path)
}
