// Package migrate runs a migration step against a plugin project: manifest,
// dependency refresh, Android and iOS, in that order.
package migrate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/conn-castle/capmigrate/internal/android"
	"github.com/conn-castle/capmigrate/internal/config"
	"github.com/conn-castle/capmigrate/internal/deps"
	"github.com/conn-castle/capmigrate/internal/ios"
	"github.com/conn-castle/capmigrate/internal/logger"
	"github.com/conn-castle/capmigrate/internal/manifest"
	"github.com/conn-castle/capmigrate/internal/messages"
	"github.com/conn-castle/capmigrate/internal/report"
	"github.com/conn-castle/capmigrate/internal/steps"
	"github.com/conn-castle/capmigrate/internal/subprocess"
	"github.com/conn-castle/capmigrate/internal/workspace"
)

// ErrDirRequired is returned when Options.Dir is empty.
var ErrDirRequired = errors.New(messages.MigrateDirRequired)

// Options configures a run.
type Options struct {
	// Dir is the plugin project directory.
	Dir  string
	Step steps.Step
	// Config holds project overrides; nil means defaults.
	Config *config.Config
	// DryRun applies every change to an in-memory overlay and records
	// commands instead of running them.
	DryRun bool
	// SkipInstall skips removing installed packages and reinstalling.
	SkipInstall bool
	Log         *logger.Logger
	// System is the filesystem; nil uses the real one.
	System workspace.System
	// Runner runs external commands when not in a dry run; nil uses
	// subprocess.ExecRunner writing to CommandOutput.
	Runner        subprocess.Runner
	CommandOutput io.Writer
}

// Result is the outcome of Run.
type Result struct {
	Report report.Report
	// Changes lists the file changes of a dry run.
	Changes []workspace.Change
	// Commands lists the commands a dry run would have run.
	Commands []subprocess.Command
}

// FatalError is a failure that stopped the run in Stage.
type FatalError struct {
	Stage string
	Err   error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf(messages.MigrateFatalFmt, e.Stage, e.Err)
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

// Run migrates the project in opts.Dir to opts.Step.
//
// Recoverable problems end up in the report and Run still returns nil.
// A failure that stops the run, including a panic inside a stage, is
// returned as a *FatalError and also recorded in the report.
func Run(ctx context.Context, opts Options) (res Result, err error) {
	if opts.Dir == "" {
		return Result{}, ErrDirRequired
	}
	r := newRun(opts)
	defer func() {
		if p := recover(); p != nil {
			err = &FatalError{Stage: r.stage, Err: fmt.Errorf(messages.MigratePanicFmt, p)}
		}
		var fatal *FatalError
		if errors.As(err, &fatal) {
			r.rec.Fail(err)
		}
		res = r.result()
	}()

	r.rec.Log().Infof(messages.MigrateStartFmt, opts.Dir, opts.Step.Name, opts.Step.CoreVersion)
	for _, stage := range []struct {
		name string
		run  func(context.Context) error
	}{
		{messages.MigrateStageManifest, r.updateManifest},
		{messages.MigrateStageDeps, r.refreshDependencies},
		{messages.MigrateStageAndroid, r.updateAndroid},
		{messages.MigrateStageIOS, r.updateIOS},
	} {
		r.stage = stage.name
		if err := ctx.Err(); err != nil {
			return res, &FatalError{Stage: stage.name, Err: err}
		}
		if err := stage.run(ctx); err != nil {
			return res, &FatalError{Stage: stage.name, Err: err}
		}
	}
	r.stage = ""

	if r.report.HasIssues() {
		r.rec.Log().Warnf(messages.MigrateDoneWithIssuesFmt, opts.Step.Name, len(r.report.Issues))
	} else {
		r.rec.Log().Successf(messages.MigrateDoneFmt, opts.Step.Name)
	}
	return res, nil
}

type run struct {
	opts    Options
	cfg     *config.Config
	sys     workspace.System
	overlay *workspace.Overlay
	runner  subprocess.Runner
	dryRun  *subprocess.DryRunRunner
	report  *report.Report
	rec     *report.Recorder
	stage   string
	doc     *manifest.Document
}

func newRun(opts Options) *run {
	r := &run{opts: opts, cfg: opts.Config}
	if r.cfg == nil {
		r.cfg = &config.Config{}
	}
	log := opts.Log
	if log == nil {
		log = logger.Discard()
	}
	r.report = &report.Report{Target: opts.Step.ID, Dir: opts.Dir, DryRun: opts.DryRun}
	r.rec = report.NewRecorder(log, r.report)

	r.sys = opts.System
	if r.sys == nil {
		r.sys = workspace.RealSystem{}
	}
	r.runner = opts.Runner
	if r.runner == nil {
		r.runner = subprocess.ExecRunner{Output: opts.CommandOutput}
	}
	if opts.DryRun {
		r.overlay = workspace.NewOverlay(r.sys)
		r.sys = r.overlay
		r.dryRun = &subprocess.DryRunRunner{Log: log}
		r.runner = r.dryRun
	}
	return r
}

func (r *run) result() Result {
	res := Result{Report: *r.report}
	if r.overlay != nil {
		res.Changes = r.overlay.Changes()
	}
	if r.dryRun != nil {
		res.Commands = append([]subprocess.Command(nil), r.dryRun.Commands...)
	}
	return res
}

func (r *run) updateManifest(context.Context) error {
	rec := r.rec.Stage(messages.MigrateStageManifest)
	doc, err := manifest.NewUpdater(r.sys, rec, r.opts.Dir, r.opts.Step).Update()
	if err != nil {
		return err
	}
	r.doc = doc
	return nil
}

func (r *run) refreshDependencies(ctx context.Context) error {
	rec := r.rec.Stage(messages.MigrateStageDeps)
	if r.opts.SkipInstall || r.cfg.SkipInstall {
		rec.Skipped("", messages.DepsSkipped)
		return nil
	}
	deps.NewRefresher(r.sys, r.runner, rec, r.opts.Dir).Refresh(ctx, deps.Options{
		LockFiles: r.cfg.Locks(),
		Install:   r.cfg.InstallArgs(),
	})
	return nil
}

func (r *run) updateAndroid(ctx context.Context) error {
	rec := r.rec.Stage(messages.MigrateStageAndroid)
	dir, ok := r.nativeDir(rec, manifest.PlatformAndroid, r.cfg.Android.Skip, messages.AndroidNoSource, messages.AndroidDisabledFmt, messages.AndroidMissingDirFmt)
	if !ok {
		return nil
	}
	rec.Log().Infof("%s", messages.AndroidUpdating)
	a := r.opts.Step.Android
	if r.cfg.Android.WrapperMode != "" {
		a.WrapperMode = r.cfg.Android.WrapperMode
	}
	a = a.WithVariables(r.cfg.VariableOverrides())
	return android.NewUpdater(r.sys, r.runner, rec, r.opts.Dir).Update(ctx, dir, a)
}

func (r *run) updateIOS(context.Context) error {
	rec := r.rec.Stage(messages.MigrateStageIOS)
	dir, ok := r.nativeDir(rec, manifest.PlatformIOS, r.cfg.IOS.Skip, messages.IOSNoSource, messages.IOSDisabledFmt, messages.IOSMissingDirFmt)
	if !ok {
		return nil
	}
	rec.Log().Infof("%s", messages.IOSUpdating)
	ios.NewUpdater(r.sys, rec, r.opts.Dir).Update(dir, r.opts.Step, r.doc.Files())
	return nil
}

// nativeDir resolves capacitor.<platform>.src. ok is false, with a skipped
// entry recorded, when the platform is absent, disabled or missing on disk.
func (r *run) nativeDir(rec *report.Recorder, platform string, skip bool, noSource string, disabledFmt string, missingFmt string) (string, bool) {
	src, ok := r.doc.NativeSrc(platform)
	if !ok || src == "" {
		rec.Skipped("", "%s", noSource)
		return "", false
	}
	if skip {
		rec.Skipped(src, disabledFmt, r.cfg.Source())
		return "", false
	}
	dir := filepath.FromSlash(src)
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(r.opts.Dir, dir)
	}
	if !workspace.Exists(r.sys, dir) {
		rec.Skipped(src, missingFmt, src)
		return "", false
	}
	return dir, true
}
