// Package workspace gives the migration a view of the project directory:
// the real filesystem, or an in-memory overlay for dry runs.
package workspace

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/conn-castle/capmigrate/internal/fsutil"
)

// System is the filesystem surface the migration uses.
type System interface {
	Stat(name string) (os.FileInfo, error)
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte, perm os.FileMode) error
	RemoveAll(path string) error
	Rename(oldpath string, newpath string) error
	// Glob returns the files under dir matching a slash-separated doublestar
	// pattern, as sorted paths joined onto dir.
	Glob(dir string, pattern string) ([]string, error)
}

// RealSystem implements System using the OS filesystem.
type RealSystem struct{}

// Stat returns a FileInfo describing the named file.
func (RealSystem) Stat(name string) (os.FileInfo, error) {
	return os.Stat(name)
}

// ReadFile reads the named file and returns the contents.
func (RealSystem) ReadFile(name string) ([]byte, error) {
	return os.ReadFile(name)
}

// WriteFile replaces the named file atomically.
func (RealSystem) WriteFile(name string, data []byte, perm os.FileMode) error {
	return fsutil.WriteFileAtomic(name, data, perm)
}

// RemoveAll removes path and any children it contains.
func (RealSystem) RemoveAll(path string) error {
	return os.RemoveAll(path)
}

// Rename renames (moves) oldpath to newpath.
func (RealSystem) Rename(oldpath string, newpath string) error {
	return os.Rename(oldpath, newpath)
}

// Glob expands pattern relative to dir.
func (RealSystem) Glob(dir string, pattern string) ([]string, error) {
	pattern = cleanPattern(pattern)
	if pattern == "" {
		return nil, nil
	}
	matches, err := doublestar.Glob(os.DirFS(dir), pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, filepath.Join(dir, filepath.FromSlash(m)))
	}
	sort.Strings(out)
	return out, nil
}

// cleanPattern turns a manifest-style pattern into an fs.FS pattern.
// Patterns that escape the directory yield "".
func cleanPattern(pattern string) string {
	pattern = filepath.ToSlash(strings.TrimSpace(pattern))
	for strings.HasPrefix(pattern, "./") {
		pattern = strings.TrimPrefix(pattern, "./")
	}
	pattern = strings.TrimSuffix(pattern, "/")
	if pattern == "" || strings.HasPrefix(pattern, "/") || !doublestar.ValidatePattern(pattern) {
		return ""
	}
	for _, part := range strings.Split(pattern, "/") {
		if part == ".." {
			return ""
		}
	}
	return pattern
}

// Exists reports whether name exists in sys.
func Exists(sys System, name string) bool {
	_, err := sys.Stat(name)
	return err == nil
}
