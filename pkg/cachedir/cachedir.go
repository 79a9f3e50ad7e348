// Package cachedir locates and manages the directory holding the cache
// database.
package cachedir

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

const (
	appName = "gloss-word"
	dbFile  = "entries.sqlite"
)

// ErrNotFound is returned by Clear when there is no cache directory.
var ErrNotFound = errors.New("Cache directory not found")

// Resolve returns override when set, else the platform cache directory for
// the application.
func Resolve(override string) (string, error) {
	if override != "" {
		return override, nil
	}
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("resolve cache directory: %w", err)
	}
	return filepath.Join(base, appName), nil
}

// Dir is a cache directory on some filesystem.
type Dir struct {
	fs   afero.Fs
	path string
}

// New returns a Dir rooted at path on fs.
func New(fs afero.Fs, path string) *Dir {
	return &Dir{fs: fs, path: path}
}

// Path returns the directory path.
func (d *Dir) Path() string { return d.path }

// DBPath returns the path of the cache database inside the directory.
func (d *Dir) DBPath() string { return filepath.Join(d.path, dbFile) }

// Ensure creates the directory if it does not exist yet.
func (d *Dir) Ensure() error {
	if err := d.fs.MkdirAll(d.path, 0o755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}
	return nil
}

// Clear deletes the directory and everything in it.
func (d *Dir) Clear() error {
	ok, err := afero.DirExists(d.fs, d.path)
	if err != nil {
		return fmt.Errorf("stat cache directory: %w", err)
	}
	if !ok {
		return ErrNotFound
	}
	if err := d.fs.RemoveAll(d.path); err != nil {
		return fmt.Errorf("delete cache directory: %w", err)
	}
	return nil
}
