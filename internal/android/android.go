// Package android applies the Android half of a migration step: the Gradle
// wrapper upgrade and the build.gradle rewrite.
package android

import (
	"context"
	"path/filepath"
	"runtime"

	"github.com/conn-castle/capmigrate/internal/messages"
	"github.com/conn-castle/capmigrate/internal/patch"
	"github.com/conn-castle/capmigrate/internal/report"
	"github.com/conn-castle/capmigrate/internal/steps"
	"github.com/conn-castle/capmigrate/internal/subprocess"
	"github.com/conn-castle/capmigrate/internal/workspace"
)

// Files inside the Android project directory.
var (
	BuildGradleFile       = "build.gradle"
	ManifestFile          = filepath.Join("src", "main", "AndroidManifest.xml")
	WrapperPropertiesFile = filepath.Join("gradle", "wrapper", "gradle-wrapper.properties")
)

// Updater migrates one Android project directory.
type Updater struct {
	sys     workspace.System
	runner  subprocess.Runner
	rec     *report.Recorder
	patcher *patch.Patcher
	goos    string
}

// NewUpdater returns an Updater. root is the plugin directory, used to
// shorten paths in the report.
func NewUpdater(sys workspace.System, runner subprocess.Runner, rec *report.Recorder, root string) *Updater {
	if sys == nil {
		sys = workspace.RealSystem{}
	}
	if rec == nil {
		rec = report.NewRecorder(nil, nil)
	}
	return &Updater{
		sys:     sys,
		runner:  runner,
		rec:     rec,
		patcher: patch.NewPatcher(sys, rec, root),
		goos:    runtime.GOOS,
	}
}

// Update upgrades the wrapper in dir and then rewrites dir/build.gradle.
// Only a failed wrapper command is returned; file problems are recorded
// and the update carries on.
func (u *Updater) Update(ctx context.Context, dir string, a steps.Android) error {
	u.rec.Log().Infof("%s", messages.AndroidWrapperUpdating)
	if err := u.UpgradeWrapper(ctx, dir, a); err != nil {
		return err
	}
	u.rec.Log().Infof("%s", messages.AndroidBuildGradle)
	u.UpdateBuildGradle(dir, a)
	return nil
}
