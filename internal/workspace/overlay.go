package workspace

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
)

// Change is one file-level difference between an Overlay and its base.
type Change struct {
	Path string
	// RenamedFrom is set when Path was produced by renaming another file.
	RenamedFrom string
	Before      string
	After       string
	Created     bool
	Removed     bool
}

type overlayEntry struct {
	data        []byte
	perm        os.FileMode
	removed     bool
	renamedTo   string
	renamedFrom string
}

// Overlay is a System that reads through to a base System and keeps every
// mutation in memory. Changes lists what a real run would have done.
type Overlay struct {
	base    System
	entries map[string]*overlayEntry
	order   []string
}

// NewOverlay returns an Overlay on top of base.
func NewOverlay(base System) *Overlay {
	if base == nil {
		base = RealSystem{}
	}
	return &Overlay{base: base, entries: make(map[string]*overlayEntry)}
}

func (o *Overlay) entry(name string) *overlayEntry {
	name = filepath.Clean(name)
	e, ok := o.entries[name]
	if !ok {
		e = &overlayEntry{}
		o.entries[name] = e
		o.order = append(o.order, name)
	}
	return e
}

// removedAncestor reports whether name or one of its parents was removed.
func (o *Overlay) removedAncestor(name string) bool {
	name = filepath.Clean(name)
	for p := name; ; {
		if e, ok := o.entries[p]; ok {
			if e.removed {
				return true
			}
			if p == name && e.data != nil {
				return false
			}
		}
		parent := filepath.Dir(p)
		if parent == p {
			return false
		}
		p = parent
	}
}

// Stat describes name as it looks in the overlay.
func (o *Overlay) Stat(name string) (os.FileInfo, error) {
	clean := filepath.Clean(name)
	if e, ok := o.entries[clean]; ok && !e.removed && e.data != nil {
		return memInfo{name: filepath.Base(clean), size: int64(len(e.data)), mode: e.perm}, nil
	}
	if o.removedAncestor(clean) {
		return nil, &fs.PathError{Op: "stat", Path: name, Err: fs.ErrNotExist}
	}
	return o.base.Stat(name)
}

// ReadFile returns the overlay content of name, falling back to the base.
func (o *Overlay) ReadFile(name string) ([]byte, error) {
	clean := filepath.Clean(name)
	if e, ok := o.entries[clean]; ok && !e.removed && e.data != nil {
		return append([]byte(nil), e.data...), nil
	}
	if o.removedAncestor(clean) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	return o.base.ReadFile(name)
}

// WriteFile records new content for name.
func (o *Overlay) WriteFile(name string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(filepath.Clean(name))
	if info, err := o.Stat(dir); err != nil {
		return &fs.PathError{Op: "write", Path: name, Err: fs.ErrNotExist}
	} else if !info.IsDir() {
		return &fs.PathError{Op: "write", Path: name, Err: errors.New("not a directory")}
	}
	e := o.entry(name)
	e.data = append([]byte{}, data...)
	e.perm = perm
	e.removed = false
	return nil
}

// RemoveAll hides path and everything below it.
func (o *Overlay) RemoveAll(path string) error {
	clean := filepath.Clean(path)
	prefix := clean + string(filepath.Separator)
	for name, e := range o.entries {
		if strings.HasPrefix(name, prefix) {
			e.removed = true
			e.data = nil
		}
	}
	e := o.entry(clean)
	e.removed = true
	e.data = nil
	return nil
}

// Rename moves a file within the overlay.
func (o *Overlay) Rename(oldpath string, newpath string) error {
	data, err := o.ReadFile(oldpath)
	if err != nil {
		return &os.LinkError{Op: "rename", Old: oldpath, New: newpath, Err: fs.ErrNotExist}
	}
	perm := os.FileMode(0o644)
	if info, statErr := o.Stat(oldpath); statErr == nil {
		perm = info.Mode().Perm()
	}
	if err := o.WriteFile(newpath, data, perm); err != nil {
		return err
	}
	oldClean := filepath.Clean(oldpath)
	newEntry := o.entry(newpath)
	if from := o.entry(oldClean).renamedFrom; from != "" {
		newEntry.renamedFrom = from
	} else {
		newEntry.renamedFrom = oldClean
	}
	old := o.entry(oldClean)
	old.removed = true
	old.data = nil
	old.renamedTo = filepath.Clean(newpath)
	return nil
}

// Glob merges base matches with files written to the overlay and drops
// removed ones.
func (o *Overlay) Glob(dir string, pattern string) ([]string, error) {
	base, err := o.base.Glob(dir, pattern)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	out := make([]string, 0, len(base))
	for _, p := range base {
		if o.removedAncestor(p) {
			continue
		}
		seen[filepath.Clean(p)] = true
		out = append(out, p)
	}
	clean := cleanPattern(pattern)
	if clean == "" {
		sort.Strings(out)
		return out, nil
	}
	for _, name := range o.order {
		e := o.entries[name]
		if e.removed || e.data == nil || seen[name] {
			continue
		}
		rel, relErr := filepath.Rel(dir, name)
		if relErr != nil || strings.HasPrefix(rel, "..") {
			continue
		}
		if ok, _ := doublestar.Match(clean, filepath.ToSlash(rel)); ok {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out, nil
}

// Changes lists the differences against the base in first-touched order.
// Writes that leave a file byte-identical are omitted.
func (o *Overlay) Changes() []Change {
	var out []Change
	for _, name := range o.order {
		e := o.entries[name]
		switch {
		case e.removed:
			if e.renamedTo != "" || !Exists(o.base, name) {
				continue
			}
			before, _ := o.base.ReadFile(name)
			out = append(out, Change{Path: name, Before: string(before), Removed: true})
		case e.renamedFrom != "":
			before, _ := o.base.ReadFile(e.renamedFrom)
			out = append(out, Change{Path: name, RenamedFrom: e.renamedFrom, Before: string(before), After: string(e.data)})
		case e.data != nil:
			before, err := o.base.ReadFile(name)
			if err == nil && string(before) == string(e.data) {
				continue
			}
			out = append(out, Change{Path: name, Before: string(before), After: string(e.data), Created: err != nil})
		}
	}
	return out
}

type memInfo struct {
	name string
	size int64
	mode os.FileMode
}

func (m memInfo) Name() string       { return m.name }
func (m memInfo) Size() int64        { return m.size }
func (m memInfo) Mode() os.FileMode  { return m.mode }
func (m memInfo) ModTime() time.Time { return time.Time{} }
func (m memInfo) IsDir() bool        { return false }
func (m memInfo) Sys() any           { return nil }
