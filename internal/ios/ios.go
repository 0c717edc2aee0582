// Package ios applies the iOS half of a migration step: deployment targets
// in the Xcode project, Podfile, Swift package manifest and podspec.
package ios

import (
	"path/filepath"
	"strings"

	"github.com/conn-castle/capmigrate/internal/messages"
	"github.com/conn-castle/capmigrate/internal/patch"
	"github.com/conn-castle/capmigrate/internal/report"
	"github.com/conn-castle/capmigrate/internal/steps"
	"github.com/conn-castle/capmigrate/internal/workspace"
)

// Files patched by Update. ProjectFile and PodfileName live in the iOS
// directory; PackageSwiftFile and podspecs live in the plugin root.
var (
	ProjectFile      = filepath.Join("Plugin.xcodeproj", "project.pbxproj")
	PodfileName      = "Podfile"
	PackageSwiftFile = "Package.swift"
)

const (
	deploymentTargetStart = "IPHONEOS_DEPLOYMENT_TARGET = "
	deploymentTargetEnd   = ";"
	podfilePlatformStart  = "platform :ios, '"
	podfilePlatformEnd    = "'"
	spmPlatformStart      = "[.iOS(.v"
	spmPlatformEnd        = ")],"

	// SwiftPMPackageStart opens the capacitor-swift-pm dependency in Package.swift.
	SwiftPMPackageStart = `.package(url: "https://github.com/ionic-team/capacitor-swift-pm.git",`
	swiftPMPackageEnd   = ")"

	podspecTargetKey       = "s.ios.deployment_target"
	podspecFallbackPattern = "*.podspec"
)

// Updater migrates the iOS side of one plugin.
type Updater struct {
	sys     workspace.System
	rec     *report.Recorder
	patcher *patch.Patcher
	root    string
}

// NewUpdater returns an Updater for the plugin in root.
func NewUpdater(sys workspace.System, rec *report.Recorder, root string) *Updater {
	if sys == nil {
		sys = workspace.RealSystem{}
	}
	if rec == nil {
		rec = report.NewRecorder(nil, nil)
	}
	return &Updater{sys: sys, rec: rec, patcher: patch.NewPatcher(sys, rec, root), root: root}
}

// Update patches the iOS directory dir and the plugin root for step.
// files is the package.json files list used to locate the podspec.
// Every problem is recorded; nothing here stops the run.
func (u *Updater) Update(dir string, step steps.Step, files []string) {
	target := step.IOS.DeploymentTarget
	if target != "" {
		u.patcher.UpdateFile(filepath.Join(dir, ProjectFile), patch.Replace(deploymentTargetStart, deploymentTargetEnd, target))
		u.patcher.UpdateFile(filepath.Join(dir, PodfileName), patch.Replace(podfilePlatformStart, podfilePlatformEnd, target))
	}
	packageSwift := filepath.Join(u.root, PackageSwiftFile)
	if step.IOS.SPMPlatform != "" {
		u.patcher.UpdateFile(packageSwift, patch.Replace(spmPlatformStart, spmPlatformEnd, step.IOS.SPMPlatform))
	}
	if step.SwiftPMVersion != "" {
		u.patcher.UpdateFile(packageSwift, patch.Replace(SwiftPMPackageStart, swiftPMPackageEnd, ` from: "`+step.SwiftPMVersion+`"`))
	}
	if target != "" && step.IOS.PreviousDeploymentTarget != "" {
		u.UpdatePodspecs(files, step.IOS.PreviousDeploymentTarget, target)
	}
}

// UpdatePodspecs moves s.ios.deployment_target from previous to target in
// the podspec named by files, or in the root *.podspec files when none is.
func (u *Updater) UpdatePodspecs(files []string, previous string, target string) {
	podspecs := u.findPodspecs(files)
	if len(podspecs) == 0 {
		u.rec.Warn(report.KindMissingFile, "", messages.IOSPodspecNotFound)
		return
	}
	for _, path := range podspecs {
		u.updatePodspec(path, previous, target)
	}
}

func (u *Updater) findPodspecs(files []string) []string {
	for _, entry := range files {
		if strings.HasPrefix(entry, "!") || !strings.Contains(entry, ".podspec") {
			continue
		}
		matches, err := u.sys.Glob(u.root, entry)
		if err != nil {
			u.rec.Log().Debugf(messages.IOSGlobFailedFmt, entry, err)
			continue
		}
		if len(matches) > 0 {
			return matches
		}
	}
	matches, err := u.sys.Glob(u.root, podspecFallbackPattern)
	if err != nil {
		u.rec.Log().Debugf(messages.IOSGlobFailedFmt, podspecFallbackPattern, err)
		return nil
	}
	return matches
}

func (u *Updater) updatePodspec(path string, previous string, target string) {
	text, ok := u.patcher.ReadText(path)
	if !ok {
		return
	}
	display := u.patcher.Display(path)
	updated := strings.ReplaceAll(text, podspecTargetKey+"  =", podspecTargetKey+" =")
	for _, quote := range []string{"'", `"`} {
		updated = strings.ReplaceAll(updated,
			podspecTargetKey+" = "+quote+previous+quote,
			podspecTargetKey+" = "+quote+target+quote)
	}
	if updated == text {
		u.rec.Noop(display, messages.IOSPodspecCurrentFmt, display, previous)
		return
	}
	if !u.patcher.WriteText(path, updated) {
		return
	}
	u.rec.Applied(display, messages.IOSPodspecFmt, target, display)
}
