package android

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/conn-castle/capmigrate/internal/messages"
	"github.com/conn-castle/capmigrate/internal/patch"
	"github.com/conn-castle/capmigrate/internal/steps"
)

// ErrWrapper is returned when the wrapper regeneration command fails.
var ErrWrapper = errors.New(messages.AndroidWrapperFailed)

const distributionURLKey = "distributionUrl="

// The first wrapper run only refreshes the properties file.
const wrapperRuns = 2

// WrapperArgs returns the gradlew arguments that regenerate the wrapper.
func WrapperArgs(gradleVersion string) []string {
	return []string{"wrapper", "--distribution-type", "all", "--gradle-version", gradleVersion, "--warning-mode", "all"}
}

// DistributionURL returns the escaped distributionUrl value for gradleVersion.
func DistributionURL(gradleVersion string) string {
	return `https\://services.gradle.org/distributions/gradle-` + gradleVersion + `-all.zip`
}

// WrapperScript returns the wrapper script path for goos, relative to the
// Android directory.
func WrapperScript(goos string) string {
	if goos == "windows" {
		return `.\gradlew.bat`
	}
	return "./gradlew"
}

// UpgradeWrapper moves the Gradle wrapper in dir to a.GradleVersion.
//
// In command mode the wrapper task runs twice and any failure is returned
// wrapped in ErrWrapper. In properties mode only distributionUrl is
// rewritten and problems are recorded as issues.
func (u *Updater) UpgradeWrapper(ctx context.Context, dir string, a steps.Android) error {
	display := u.patcher.Display(dir)
	if a.GradleVersion == "" {
		u.rec.Skipped(display, messages.AndroidNoGradleVersion)
		return nil
	}
	if a.WrapperMode == steps.WrapperModeProperties {
		u.patcher.UpdateFile(filepath.Join(dir, WrapperPropertiesFile), patch.ReplaceLine(distributionURLKey, DistributionURL(a.GradleVersion)))
		return nil
	}

	script := WrapperScript(u.goos)
	args := WrapperArgs(a.GradleVersion)
	for range wrapperRuns {
		if err := u.runner.Run(ctx, dir, script, args...); err != nil {
			return fmt.Errorf("%w: %w", ErrWrapper, err)
		}
	}
	u.rec.Applied(display, messages.AndroidWrapperRanFmt, script, strings.Join(args, " "), display)
	return nil
}
