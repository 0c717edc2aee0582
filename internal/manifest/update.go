package manifest

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/conn-castle/capmigrate/internal/messages"
	"github.com/conn-castle/capmigrate/internal/report"
	"github.com/conn-castle/capmigrate/internal/steps"
	"github.com/conn-castle/capmigrate/internal/workspace"
)

// FileName is the manifest file name inside the project directory.
const FileName = "package.json"

// CorePackages are the framework packages pinned to the step's core version.
var CorePackages = []string{"@capacitor/ios", "@capacitor/android", "@capacitor/core", "@capacitor/cli"}

var coreSections = []string{SectionDevDependencies, SectionDependencies, SectionPeerDependencies}

const (
	rollupConfigJS  = "rollup.config.js"
	rollupConfigMJS = "rollup.config.mjs"
	prettierIgnore  = ".prettierignore"
	gitIgnore       = ".gitignore"
	prettierJavaArg = "--plugin=prettier-plugin-java"
	prettierScript  = `"prettier \"**/*.{css,html,ts,js,java}\"`
)

// Updater applies a step's manifest changes to a project.
type Updater struct {
	sys  workspace.System
	rec  *report.Recorder
	dir  string
	step steps.Step
}

// NewUpdater returns an Updater for the project in dir.
func NewUpdater(sys workspace.System, rec *report.Recorder, dir string, step steps.Step) *Updater {
	return &Updater{sys: sys, rec: rec, dir: dir, step: step}
}

// Load reads and parses the project manifest.
func Load(sys workspace.System, dir string) (*Document, error) {
	path := filepath.Join(dir, FileName)
	data, err := sys.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf(messages.ManifestReadFailedFmt, FileName, err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf(messages.ManifestInvalidFmt, FileName, err)
	}
	return doc, nil
}

// Update rewrites package.json and its companion files for the step and
// returns the updated document. A missing or invalid manifest is an error;
// everything else is reported through the recorder.
func (u *Updater) Update() (*Document, error) {
	u.rec.Log().Infof(messages.ManifestUpdating)
	path := filepath.Join(u.dir, FileName)
	original, err := u.sys.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf(messages.ManifestReadFailedFmt, FileName, err)
	}
	doc, err := Parse(original)
	if err != nil {
		return nil, fmt.Errorf(messages.ManifestInvalidFmt, FileName, err)
	}

	changed := false
	for _, name := range CorePackages {
		for _, section := range coreSections {
			if !doc.HasDependency(section, name) {
				continue
			}
			set, err := u.setDependency(doc, section, name, u.step.CoreVersion)
			if err != nil {
				return nil, fmt.Errorf(messages.ManifestInvalidFmt, FileName, err)
			}
			changed = changed || set
		}
	}

	for _, rule := range u.step.Packages {
		if rule.Requires != "" && !doc.HasDependency(SectionDevDependencies, rule.Requires) {
			continue
		}
		for _, section := range rule.Sections {
			if !rule.Add && !doc.HasDependency(section, rule.Name) {
				continue
			}
			set, err := u.setDependency(doc, section, rule.Name, rule.Version)
			if err != nil {
				return nil, fmt.Errorf(messages.ManifestInvalidFmt, FileName, err)
			}
			changed = changed || set
		}
	}

	if from := u.step.ManifestVersionFrom; from != "" && u.step.ManifestVersionTo != "" {
		if current, ok := doc.Version(); ok && strings.HasPrefix(current, from) && current != u.step.ManifestVersionTo {
			if err := doc.SetVersion(u.step.ManifestVersionTo); err != nil {
				return nil, fmt.Errorf(messages.ManifestInvalidFmt, FileName, err)
			}
			u.rec.Applied(FileName, messages.ManifestVersionBumpFmt, current, u.step.ManifestVersionTo)
			changed = true
		}
	}

	text := string(original)
	if changed {
		encoded, err := doc.Marshal()
		if err != nil {
			return nil, fmt.Errorf(messages.ManifestInvalidFmt, FileName, err)
		}
		text = string(encoded)
	}

	if u.step.RenameRollupConfig {
		text = u.renameRollupConfig(text)
	}
	if u.prettierEnabled(doc) {
		text = u.updatePrettier(text)
	}

	if text == string(original) {
		u.rec.Noop(FileName, messages.ManifestUnchangedFmt, FileName)
		return doc, nil
	}
	if err := u.sys.WriteFile(path, []byte(text), 0o644); err != nil {
		return nil, fmt.Errorf(messages.ManifestWriteFailedFmt, FileName, err)
	}
	// Reparse so callers see the written text, including text-level edits.
	written, err := Parse([]byte(text))
	if err != nil {
		return doc, nil
	}
	return written, nil
}

func (u *Updater) setDependency(doc *Document, section string, name string, version string) (bool, error) {
	set, err := doc.SetDependency(section, name, version)
	if err != nil {
		return false, err
	}
	if set {
		u.rec.Applied(FileName, messages.ManifestDependencySetFmt, section, name, version)
	} else {
		u.rec.Noop(FileName, messages.ManifestDependencyCurrentFmt, section, name, version)
	}
	return set, nil
}

func (u *Updater) renameRollupConfig(text string) string {
	if !strings.Contains(text, rollupConfigJS) {
		return text
	}
	oldPath := filepath.Join(u.dir, rollupConfigJS)
	newPath := filepath.Join(u.dir, rollupConfigMJS)
	if err := u.sys.Rename(oldPath, newPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			u.rec.Warn(report.KindMissingFile, rollupConfigJS, messages.FileNotFoundFmt, rollupConfigJS)
		} else {
			u.rec.Warn(report.KindUnreadableFile, rollupConfigJS, messages.FileRenameFailedFmt, rollupConfigJS, rollupConfigMJS, err)
		}
		return text
	}
	u.rec.Applied(rollupConfigMJS, messages.ManifestRollupRenamedFmt, rollupConfigJS, rollupConfigMJS)
	return strings.ReplaceAll(text, rollupConfigJS, rollupConfigMJS)
}

func (u *Updater) prettierEnabled(doc *Document) bool {
	p := u.step.Prettier
	if !p.Enabled {
		return false
	}
	return p.Requires == "" || doc.HasDependency(SectionDevDependencies, p.Requires)
}

func (u *Updater) updatePrettier(text string) string {
	if !strings.Contains(text, prettierJavaArg) && strings.Contains(text, prettierScript) {
		text = strings.Replace(text, prettierScript, prettierScript+" "+prettierJavaArg, 1)
		u.rec.Applied(FileName, messages.ManifestPrettierScriptFmt, FileName)
	}

	ignorePath := filepath.Join(u.dir, prettierIgnore)
	ignoreData, err := u.sys.ReadFile(ignorePath)
	if err != nil {
		return text
	}
	gitData, err := u.sys.ReadFile(filepath.Join(u.dir, gitIgnore))
	if err != nil {
		return text
	}
	ignoreText, gitText := string(ignoreData), string(gitData)
	if ignoreText == "" || gitText == "" {
		return text
	}
	cleaned := ignoreText
	for _, entry := range []string{"build", "dist"} {
		if strings.Contains(gitText, entry) {
			cleaned = removeLine(cleaned, entry)
		}
	}
	switch {
	case strings.TrimSpace(cleaned) == "":
		if err := u.sys.RemoveAll(ignorePath); err != nil {
			u.rec.Warn(report.KindUnreadableFile, prettierIgnore, messages.FileRemoveFailedFmt, prettierIgnore, err)
			return text
		}
		u.rec.Applied(prettierIgnore, messages.ManifestPrettierIgnoreRmFmt, prettierIgnore)
	case cleaned != ignoreText:
		if err := u.sys.WriteFile(ignorePath, []byte(cleaned), 0o644); err != nil {
			u.rec.Warn(report.KindUnreadableFile, prettierIgnore, messages.FileWriteFailedFmt, prettierIgnore, err)
			return text
		}
		u.rec.Applied(prettierIgnore, messages.ManifestPrettierIgnoreFmt, prettierIgnore)
	}
	return text
}

// removeLine drops the first line of text that is exactly entry.
func removeLine(text string, entry string) string {
	lines := strings.SplitAfter(text, "\n")
	for i, line := range lines {
		if strings.TrimRight(line, "\r\n") == entry {
			return strings.Join(append(lines[:i:i], lines[i+1:]...), "")
		}
	}
	return text
}
