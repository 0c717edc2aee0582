// Package deps clears installed framework packages and lock files and
// reinstalls the project's dependencies.
package deps

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/conn-castle/capmigrate/internal/messages"
	"github.com/conn-castle/capmigrate/internal/report"
	"github.com/conn-castle/capmigrate/internal/subprocess"
	"github.com/conn-castle/capmigrate/internal/workspace"
)

// InstalledPackagesDir holds the installed framework packages.
var InstalledPackagesDir = filepath.Join("node_modules", "@capacitor")

// Options configures a refresh.
type Options struct {
	// LockFiles are removed before installing, relative to the project directory.
	LockFiles []string
	// Install is the install command argv, e.g. ["npm", "install"].
	Install []string
}

// Refresher removes stale install state and reruns the package manager.
type Refresher struct {
	sys    workspace.System
	runner subprocess.Runner
	rec    *report.Recorder
	dir    string
}

// NewRefresher returns a Refresher for the project in dir.
func NewRefresher(sys workspace.System, runner subprocess.Runner, rec *report.Recorder, dir string) *Refresher {
	return &Refresher{sys: sys, runner: runner, rec: rec, dir: dir}
}

// Refresh deletes node_modules/@capacitor and the lock files, then runs
// the install command. Failures are recorded and never stop the run.
func (r *Refresher) Refresh(ctx context.Context, opts Options) {
	for _, rel := range append([]string{InstalledPackagesDir}, opts.LockFiles...) {
		r.remove(rel)
	}
	if len(opts.Install) == 0 {
		r.rec.Skipped("", messages.DepsSkipped)
		return
	}
	command := strings.Join(opts.Install, " ")
	r.rec.Log().Infof(messages.DepsRunningFmt, command)
	if err := r.runner.Run(ctx, r.dir, opts.Install[0], opts.Install[1:]...); err != nil {
		r.rec.Log().Debugf(messages.DepsInstallErrorFmt, command, err)
		r.rec.Warn(report.KindCommandFailed, "", messages.DepsInstallFailed, command)
		return
	}
	r.rec.Applied("", messages.DepsRunningFmt, command)
}

func (r *Refresher) remove(rel string) {
	path := filepath.Join(r.dir, rel)
	display := filepath.ToSlash(rel)
	if !workspace.Exists(r.sys, path) {
		return
	}
	if err := r.sys.RemoveAll(path); err != nil {
		r.rec.Warn(report.KindUnreadableFile, display, messages.FileRemoveFailedFmt, display, err)
		return
	}
	r.rec.Applied(display, messages.DepsRemovedFmt, display)
}
