package android

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/conn-castle/capmigrate/internal/messages"
	"github.com/conn-castle/capmigrate/internal/patch"
	"github.com/conn-castle/capmigrate/internal/report"
	"github.com/conn-castle/capmigrate/internal/rewrite"
	"github.com/conn-castle/capmigrate/internal/steps"
	"github.com/conn-castle/capmigrate/internal/versiongate"
)

const (
	kotlinVersionStart = "ext.kotlin_version = "
	kotlinStdlibStart  = `implementation "org.jetbrains.kotlin:kotlin-stdlib`
	kotlinStdlibEnd    = `"`
	kotlinStdlibValue  = ":$kotlin_version"
)

var (
	compileSdkVersionRE = regexp.MustCompile(`\bcompileSdkVersion\b`)
	javaCompatRE        = regexp.MustCompile(`\b(sourceCompatibility|targetCompatibility)([ \t]*=?[ \t]*)JavaVersion\.VERSION_(\d+(?:_\d+)?)`)
)

// KotlinVersionLookup is the ext.kotlin_version value that prefers the
// version defined by the consuming app.
func KotlinVersionLookup(version string) string {
	return `project.hasProperty("kotlin_version") ? rootProject.ext.kotlin_version : '` + version + `'`
}

// VariableMarkers returns the region markers of a variable declared with
// the `project.hasProperty(...) ? rootProject.ext.<v> : <default>` idiom.
// Numeric defaults run to the end of the line and get an empty end marker;
// string defaults are quoted.
func VariableMarkers(v steps.Variable) (start string, end string) {
	lookup := "project.hasProperty('" + v.Name + "') ? rootProject.ext." + v.Name + " : "
	if v.Numeric {
		return lookup, ""
	}
	return v.Name + " = " + lookup + "'", "'"
}

// UpdateBuildGradle rewrites dir/build.gradle for a in a single pass and
// writes it once. Every edit is recorded; a missing file is an issue.
func (u *Updater) UpdateBuildGradle(dir string, a steps.Android) {
	path := filepath.Join(dir, BuildGradleFile)
	text, ok := u.patcher.ReadText(path)
	if !ok {
		return
	}
	s := &buildScript{text: text, display: u.patcher.Display(path)}

	s.collapseAssignSpacing()
	if a.RenameCompileSdkVersion {
		s.rewrite(messages.RewriteCompileSdk, func(text string) string {
			return compileSdkVersionRE.ReplaceAllString(text, "compileSdk")
		})
	}
	if a.RelocateNamespace {
		u.relocateNamespace(dir, s)
	}
	for _, marker := range a.RemoveBlocks {
		u.removeBlock(s, marker)
	}
	if a.JavaVersion > 0 {
		u.setJavaVersion(s, a.JavaVersion)
	}
	for _, cp := range a.SortedClasspaths() {
		u.setClasspath(s, cp)
	}
	for _, v := range a.Variables() {
		start, end := VariableMarkers(v)
		u.gate(s, v.Name, start, end, v.Value)
	}
	if a.KotlinVersion != "" {
		u.setKotlinVersion(s, a.KotlinVersion)
	}
	if a.NormalizePropertySyntax {
		s.rewrite(messages.RewritePropertySyntax, func(text string) string {
			return rewrite.NormalizePropertySyntax(text, rewrite.DefaultProperties)
		})
	}
	if a.MigrateKotlinOptions {
		s.rewrite(messages.RewriteKotlinOptions, func(text string) string {
			updated, _ := rewrite.MigrateKotlinOptions(text)
			return updated
		})
	}

	if s.text == text {
		u.rec.Noop(s.display, messages.AndroidScriptCurrent, s.display)
		return
	}
	if !u.patcher.WriteText(path, s.text) {
		return
	}
	for _, detail := range s.applied {
		u.rec.Applied(s.display, "%s", detail)
	}
}

// buildScript is the in-memory build.gradle being rewritten. Applied edits
// are held back until the file is written.
type buildScript struct {
	text    string
	display string
	applied []string
}

func (s *buildScript) apply(updated string, format string, args ...any) {
	if updated == s.text {
		return
	}
	s.text = updated
	s.applied = append(s.applied, fmt.Sprintf(format, args...))
}

func (s *buildScript) rewrite(name string, fn func(string) string) {
	s.apply(fn(s.text), messages.AndroidRewriteFmt, name, s.display)
}

func (s *buildScript) collapseAssignSpacing() {
	s.rewrite(messages.RewriteAssignSpacing, func(text string) string {
		for strings.Contains(text, " =  ") {
			text = strings.ReplaceAll(text, " =  ", " = ")
		}
		return text
	})
}

func (u *Updater) relocateNamespace(dir string, s *buildScript) {
	path := filepath.Join(dir, ManifestFile)
	manifestXML, ok := u.patcher.ReadText(path)
	if !ok {
		return
	}
	newManifest, newGradle, applied := rewrite.RelocateNamespace(manifestXML, s.text)
	if !applied {
		return
	}
	if !u.patcher.WriteText(path, newManifest) {
		return
	}
	pkg, _ := rewrite.NamespaceOf(manifestXML)
	s.apply(newGradle, messages.AndroidNamespaceFmt, pkg, u.patcher.Display(path), s.display)
}

// removeBlock drops the block opened on the first line containing marker.
// A script without the block is already migrated.
func (u *Updater) removeBlock(s *buildScript, marker string) {
	updated, ok := u.patcher.ApplyText(s.display, s.text, patch.Remove(marker).Quiet())
	if !ok {
		return
	}
	s.apply(updated, messages.PatchRemovedBlockFmt, marker, s.display)
}

// setJavaVersion raises sourceCompatibility and targetCompatibility to
// JavaVersion.VERSION_<version>. Legacy names such as VERSION_1_8 count
// as their minor number.
func (u *Updater) setJavaVersion(s *buildScript, version int) {
	want := fmt.Sprintf(messages.AndroidJavaVersionFmt, version)
	updated := javaCompatRE.ReplaceAllStringFunc(s.text, func(match string) string {
		m := javaCompatRE.FindStringSubmatch(match)
		if javaVersionNumber(m[3]) >= version {
			u.rec.Noop(s.display, messages.AndroidKeptNewerFmt, m[1], "JavaVersion.VERSION_"+m[3], want)
			return match
		}
		return m[1] + m[2] + want
	})
	s.apply(updated, messages.AndroidSetFmt, "sourceCompatibility/targetCompatibility", want)
}

func javaVersionNumber(name string) int {
	if rest, ok := strings.CutPrefix(name, "1_"); ok {
		name = rest
	}
	n, err := strconv.Atoi(name)
	if err != nil {
		return 0
	}
	return n
}

// setClasspath gates a classpath coordinate in either quote style.
func (u *Updater) setClasspath(s *buildScript, cp steps.Classpath) {
	for _, quote := range []string{"'", `"`} {
		u.gate(s, cp.Coordinate, "classpath "+quote+cp.Coordinate+":", quote, cp.Version)
	}
}

// gate overwrites each region between start and end with value unless it
// already holds a value at least as new. An empty end runs the region to
// the end of its line. An absent region is silent.
func (u *Updater) gate(s *buildScript, name string, start string, end string, value string) {
	var (
		updated, existing string
		result            versiongate.Result
		err               error
	)
	if end == "" {
		updated, existing, result = versiongate.UpgradeLineIfNewer(s.text, start, value)
	} else {
		updated, existing, result, err = versiongate.UpgradeIfNewer(s.text, start, end, value)
	}
	if err != nil {
		u.rec.Warn(report.KindMarkerNotFound, s.display, messages.PatchFailedFmt, start, s.display, err)
		return
	}
	switch result {
	case versiongate.Upgraded:
		s.apply(updated, messages.AndroidSetFmt, name, value)
	case versiongate.UpToDate:
		u.rec.Noop(s.display, messages.AndroidKeptNewerFmt, name, strings.TrimSpace(existing), value)
	case versiongate.Incomparable:
		u.rec.Skipped(s.display, messages.AndroidIncomparableFmt, name, strings.TrimSpace(existing), value)
	}
}

func (u *Updater) setKotlinVersion(s *buildScript, version string) {
	updated, err := patch.SetAllToEOL(s.text, kotlinVersionStart, KotlinVersionLookup(version))
	if err != nil {
		u.rec.Warn(report.KindMarkerNotFound, s.display, messages.PatchFailedFmt, kotlinVersionStart, s.display, err)
		return
	}
	s.apply(updated, messages.AndroidRewriteFmt, messages.RewriteKotlinVersion, s.display)

	updated, err = patch.SetAll(s.text, kotlinStdlibStart, kotlinStdlibEnd, kotlinStdlibValue)
	if err != nil {
		u.rec.Warn(report.KindMarkerNotFound, s.display, messages.PatchFailedFmt, kotlinStdlibStart, s.display, err)
		return
	}
	s.apply(updated, messages.AndroidRewriteFmt, messages.RewriteKotlinStdlib, s.display)
}
