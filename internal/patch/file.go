package patch

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/conn-castle/capmigrate/internal/messages"
	"github.com/conn-castle/capmigrate/internal/report"
)

// System abstracts the file operations the patcher needs.
type System interface {
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte, perm os.FileMode) error
}

// Edit describes one conditional file update. Build it with Replace or Remove.
type Edit struct {
	Start       string
	End         string
	Replacement string
	// SkipIfMissing suppresses the warning when Start does not occur.
	SkipIfMissing bool

	remove bool
	toEOL  bool
}

// Replace returns an Edit that sets every region between start and end to value.
func Replace(start string, end string, value string) Edit {
	return Edit{Start: start, End: end, Replacement: value}
}

// ReplaceLine returns an Edit that sets everything after start up to the end
// of its line to value.
func ReplaceLine(start string, value string) Edit {
	return Edit{Start: start, Replacement: value, toEOL: true}
}

// Remove returns an Edit that deletes the brace-balanced block starting at marker.
func Remove(marker string) Edit {
	return Edit{Start: marker, remove: true}
}

// Quiet returns a copy of e that does not warn when its marker is absent.
func (e Edit) Quiet() Edit {
	e.SkipIfMissing = true
	return e
}

// Patcher reads, patches and writes project files, reporting problems
// through a recorder instead of failing the run.
type Patcher struct {
	sys  System
	rec  *report.Recorder
	root string
}

// NewPatcher returns a Patcher. root is used to shorten paths in log lines.
func NewPatcher(sys System, rec *report.Recorder, root string) *Patcher {
	if rec == nil {
		rec = report.NewRecorder(nil, nil)
	}
	return &Patcher{sys: sys, rec: rec, root: root}
}

// Recorder returns the recorder the patcher reports through.
func (p *Patcher) Recorder() *report.Recorder {
	return p.rec
}

// Display returns path relative to the project root when possible.
func (p *Patcher) Display(path string) string {
	if p.root == "" {
		return path
	}
	rel, err := filepath.Rel(p.root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return filepath.ToSlash(rel)
}

// ReadText loads path. Missing and unreadable files are reported as
// warnings and ok is false.
func (p *Patcher) ReadText(path string) (text string, ok bool) {
	data, err := p.sys.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			p.rec.Warn(report.KindMissingFile, p.Display(path), messages.FileNotFoundFmt, p.Display(path))
			return "", false
		}
		p.rec.Warn(report.KindUnreadableFile, p.Display(path), messages.FileUnreadableFmt, p.Display(path), err)
		return "", false
	}
	return string(data), true
}

// WriteText stores text at path, reporting a failure as an unreadable-file issue.
func (p *Patcher) WriteText(path string, text string) bool {
	if err := p.sys.WriteFile(path, []byte(text), 0o644); err != nil {
		p.rec.Warn(report.KindUnreadableFile, p.Display(path), messages.FileWriteFailedFmt, p.Display(path), err)
		return false
	}
	return true
}

// apply runs the edit on text without reporting.
func (e Edit) apply(text string) (string, error) {
	switch {
	case e.remove:
		updated, _, err := RemoveBlock(text, e.Start)
		return updated, err
	case e.toEOL:
		return SetAllToEOL(text, e.Start, e.Replacement)
	default:
		return SetAll(text, e.Start, e.End, e.Replacement)
	}
}

// ApplyText applies e to text held in memory; display names the file in
// reports. ok is false when the start marker is absent or the edit failed,
// and text comes back unchanged. A failure is reported as a warning, and so
// is an absent marker unless e.SkipIfMissing is set, in which case it is
// recorded as a no-op.
func (p *Patcher) ApplyText(display string, text string, e Edit) (updated string, ok bool) {
	if e.Start == "" || !strings.Contains(text, e.Start) {
		if e.SkipIfMissing {
			p.rec.Noop(display, messages.PatchMarkerAbsentFmt, e.Start, display)
		} else {
			p.rec.Warn(report.KindMarkerNotFound, display, messages.MarkerNotFoundFmt, e.Start, display)
		}
		return text, false
	}
	updated, err := e.apply(text)
	if err != nil {
		p.rec.Warn(report.KindMarkerNotFound, display, messages.PatchFailedFmt, e.Start, display, err)
		return text, false
	}
	return updated, true
}

// UpdateFile applies e to the file at path and writes it back when it changed.
//
// It reports whether the start marker was found and the edit was carried
// out. A missing file, an unreadable file, or an absent marker is reported
// and yields false; see ApplyText for how an absent marker is reported.
func (p *Patcher) UpdateFile(path string, e Edit) bool {
	text, ok := p.ReadText(path)
	if !ok {
		return false
	}
	display := p.Display(path)
	updated, ok := p.ApplyText(display, text, e)
	if !ok {
		return false
	}
	if updated == text {
		p.rec.Noop(display, messages.PatchUnchangedFmt, display, e.Start)
		return true
	}
	if !p.WriteText(path, updated) {
		return false
	}
	if e.remove {
		p.rec.Applied(display, messages.PatchRemovedBlockFmt, e.Start, display)
	} else {
		p.rec.Applied(display, messages.PatchUpdatedFmt, display, e.Start, e.Replacement)
	}
	return true
}
