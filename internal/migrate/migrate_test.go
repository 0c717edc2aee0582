package migrate

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conn-castle/capmigrate/internal/config"
	"github.com/conn-castle/capmigrate/internal/logger"
	"github.com/conn-castle/capmigrate/internal/report"
	"github.com/conn-castle/capmigrate/internal/steps"
	"github.com/conn-castle/capmigrate/internal/testutil"
	"github.com/conn-castle/capmigrate/internal/workspace"
)

const pluginPackageJSON = `{
  "name": "capacitor-plugin-example",
  "version": "7.0.1",
  "files": [
    "android/src/main/",
    "ios/Sources",
    "ExamplePlugin.podspec"
  ],
  "scripts": {
    "build": "tsc && rollup -c rollup.config.js"
  },
  "devDependencies": {
    "@capacitor/android": "^7.0.0",
    "@capacitor/core": "^7.0.0",
    "@capacitor/ios": "^7.0.0",
    "rollup": "^4.0.0"
  },
  "peerDependencies": {
    "@capacitor/core": ">=7.0.0"
  },
  "capacitor": {
    "ios": {
      "src": "ios"
    },
    "android": {
      "src": "android"
    }
  }
}
`

const pluginBuildGradle = `buildscript {
    dependencies {
        classpath 'com.android.tools.build:gradle:8.7.2'
    }
}

android {
    namespace "com.example.plugin"
    compileSdkVersion project.hasProperty('compileSdkVersion') ? rootProject.ext.compileSdkVersion : 35
    defaultConfig {
        minSdkVersion project.hasProperty('minSdkVersion') ? rootProject.ext.minSdkVersion : 23
    }
}
`

type fixture struct {
	root       string
	npmLog     string
	gradlewLog string
	cfg        *config.Config
}

func writeFixture(t *testing.T) fixture {
	t.Helper()
	root := t.TempDir()
	bin := t.TempDir()
	f := fixture{
		root:       root,
		npmLog:     filepath.Join(bin, "npm.log"),
		gradlewLog: filepath.Join(bin, "gradlew.log"),
	}
	testutil.WriteFiles(t, root, map[string]string{
		"package.json":                         pluginPackageJSON,
		"package-lock.json":                    "{}",
		"rollup.config.js":                     "export default {};\n",
		"android/build.gradle":                 pluginBuildGradle,
		"ios/Plugin.xcodeproj/project.pbxproj": "IPHONEOS_DEPLOYMENT_TARGET = 14.0;\n",
		"ios/Podfile":                          "platform :ios, '14.0'\n",
		"Package.swift":                        "platforms: [.iOS(.v14)],\n.package(url: \"https://github.com/ionic-team/capacitor-swift-pm.git\", from: \"7.0.0\")\n",
		"ExamplePlugin.podspec":                "s.ios.deployment_target  = '14.0'\n",
	})
	testutil.WriteRecordingStub(t, bin, "npm", f.npmLog, 0)
	testutil.WriteRecordingStub(t, filepath.Join(root, "android"), "gradlew", f.gradlewLog, 0)
	f.cfg = &config.Config{InstallCommand: filepath.Join(bin, "npm") + " install"}
	return f
}

func latest(t *testing.T) steps.Step {
	t.Helper()
	table, err := steps.Default()
	require.NoError(t, err)
	return table.Latest()
}

func testLogger(buf *bytes.Buffer) *logger.Logger {
	disabled := false
	return logger.New(buf, logger.Options{Color: &disabled})
}

func TestRun_Capacitor8(t *testing.T) {
	f := writeFixture(t)
	var logs bytes.Buffer

	res, err := Run(context.Background(), Options{Dir: f.root, Step: latest(t), Config: f.cfg, Log: testLogger(&logs)})
	require.NoError(t, err)

	assert.Empty(t, res.Report.Issues)
	assert.Equal(t, "8", res.Report.Target)
	assert.Equal(t, 0, res.Report.ExitCode())
	assert.Nil(t, res.Changes)

	pkg := testutil.ReadFile(t, f.root, "package.json")
	assert.Contains(t, pkg, `"@capacitor/core": "next"`)
	assert.Contains(t, pkg, `"version": "8.0.0"`)
	assert.Contains(t, pkg, "rollup -c rollup.config.mjs")
	assert.FileExists(t, filepath.Join(f.root, "rollup.config.mjs"))
	assert.NoFileExists(t, filepath.Join(f.root, "package-lock.json"))

	npmCalls := testutil.ReadCalls(t, f.npmLog)
	require.Len(t, npmCalls, 1)
	assert.Equal(t, f.root, npmCalls[0].Dir)
	assert.Len(t, testutil.ReadCalls(t, f.gradlewLog), 2)

	gradle := testutil.ReadFile(t, f.root, "android/build.gradle")
	assert.Contains(t, gradle, "classpath 'com.android.tools.build:gradle:8.13.0'")
	assert.Contains(t, gradle, "compileSdk = project.hasProperty('compileSdk') ? rootProject.ext.compileSdk : 36\n")
	assert.Contains(t, gradle, "minSdkVersion project.hasProperty('minSdkVersion') ? rootProject.ext.minSdkVersion : 24\n")

	assert.Equal(t, "IPHONEOS_DEPLOYMENT_TARGET = 15.0;\n", testutil.ReadFile(t, f.root, "ios/Plugin.xcodeproj/project.pbxproj"))
	assert.Equal(t, "s.ios.deployment_target = '15.0'\n", testutil.ReadFile(t, f.root, "ExamplePlugin.podspec"))

	stages := map[string]bool{}
	for _, e := range res.Report.Entries {
		stages[e.Stage] = true
	}
	assert.Equal(t, map[string]bool{"manifest": true, "dependencies": true, "android": true, "ios": true}, stages)
	assert.Contains(t, logs.String(), "[success] Plugin migrated to Capacitor 8!")
}

func TestRun_DryRunLeavesProjectUntouched(t *testing.T) {
	f := writeFixture(t)

	res, err := Run(context.Background(), Options{Dir: f.root, Step: latest(t), Config: f.cfg, DryRun: true})
	require.NoError(t, err)

	assert.True(t, res.Report.DryRun)
	assert.Equal(t, pluginPackageJSON, testutil.ReadFile(t, f.root, "package.json"))
	assert.Equal(t, pluginBuildGradle, testutil.ReadFile(t, f.root, "android/build.gradle"))
	assert.FileExists(t, filepath.Join(f.root, "package-lock.json"))
	assert.Nil(t, testutil.ReadCalls(t, f.npmLog))
	assert.Nil(t, testutil.ReadCalls(t, f.gradlewLog))

	require.Len(t, res.Commands, 3)
	assert.Equal(t, "install", res.Commands[0].Args[0])
	assert.Equal(t, "./gradlew", res.Commands[1].Name)

	paths := map[string]workspace.Change{}
	for _, c := range res.Changes {
		paths[c.Path] = c
	}
	assert.Contains(t, paths, filepath.Join(f.root, "package.json"))
	assert.Contains(t, paths, filepath.Join(f.root, "android", "build.gradle"))
	assert.Contains(t, paths, filepath.Join(f.root, "Package.swift"))
	assert.True(t, paths[filepath.Join(f.root, "package-lock.json")].Removed)
	assert.Equal(t, filepath.Join(f.root, "rollup.config.js"), paths[filepath.Join(f.root, "rollup.config.mjs")].RenamedFrom)
}

func TestRun_MissingManifestIsFatal(t *testing.T) {
	res, err := Run(context.Background(), Options{Dir: t.TempDir(), Step: latest(t)})

	var fatal *FatalError
	require.ErrorAs(t, err, &fatal)
	assert.Equal(t, "manifest", fatal.Stage)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Equal(t, 1, res.Report.ExitCode())
	assert.Equal(t, err.Error(), res.Report.Fatal)
}

func TestRun_WrapperFailureStopsBeforeIOS(t *testing.T) {
	f := writeFixture(t)
	testutil.WriteStubWithExit(t, filepath.Join(f.root, "android"), "gradlew", 1)

	res, err := Run(context.Background(), Options{Dir: f.root, Step: latest(t), Config: f.cfg})

	var fatal *FatalError
	require.ErrorAs(t, err, &fatal)
	assert.Equal(t, "android", fatal.Stage)
	assert.NotEmpty(t, res.Report.Fatal)
	assert.Equal(t, "platform :ios, '14.0'\n", testutil.ReadFile(t, f.root, "ios/Podfile"))
	assert.Contains(t, testutil.ReadFile(t, f.root, "package.json"), `"@capacitor/core": "next"`)
}

func TestRun_InstallFailureContinues(t *testing.T) {
	f := writeFixture(t)
	bin := t.TempDir()
	testutil.WriteStubWithExit(t, bin, "npm", 1)
	f.cfg.InstallCommand = filepath.Join(bin, "npm") + " install"

	res, err := Run(context.Background(), Options{Dir: f.root, Step: latest(t), Config: f.cfg})
	require.NoError(t, err)

	require.Len(t, res.Report.Issues, 1)
	assert.Equal(t, report.KindCommandFailed, res.Report.Issues[0].Kind)
	assert.Equal(t, "platform :ios, '15.0'\n", testutil.ReadFile(t, f.root, "ios/Podfile"))
}

func TestRun_ConfigSkipsStages(t *testing.T) {
	f := writeFixture(t)
	f.cfg.SkipInstall = true
	f.cfg.Android.Skip = true
	f.cfg.IOS.Skip = true

	res, err := Run(context.Background(), Options{Dir: f.root, Step: latest(t), Config: f.cfg})
	require.NoError(t, err)

	assert.Nil(t, testutil.ReadCalls(t, f.npmLog))
	assert.Nil(t, testutil.ReadCalls(t, f.gradlewLog))
	assert.FileExists(t, filepath.Join(f.root, "package-lock.json"))
	assert.Equal(t, pluginBuildGradle, testutil.ReadFile(t, f.root, "android/build.gradle"))
	assert.Equal(t, "platform :ios, '14.0'\n", testutil.ReadFile(t, f.root, "ios/Podfile"))

	skipped := map[string]report.Status{}
	for _, e := range res.Report.Entries {
		if e.Stage != "manifest" {
			skipped[e.Stage] = e.Status
		}
	}
	assert.Equal(t, map[string]report.Status{
		"dependencies": report.StatusSkipped,
		"android":      report.StatusSkipped,
		"ios":          report.StatusSkipped,
	}, skipped)
}

func TestRun_NativeSourcesAbsent(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFiles(t, dir, map[string]string{
		"package.json": "{\n  \"name\": \"web-only\",\n  \"capacitor\": {\n    \"android\": {\n      \"src\": \"android\"\n    }\n  }\n}\n",
	})

	res, err := Run(context.Background(), Options{Dir: dir, Step: latest(t), SkipInstall: true})
	require.NoError(t, err)

	assert.Empty(t, res.Report.Issues)
	var details []string
	for _, e := range res.Report.Entries {
		if e.Status == report.StatusSkipped {
			details = append(details, e.Detail)
		}
	}
	assert.Contains(t, details, "Android directory android not found; skipping Android updates.")
	assert.Contains(t, details, "package.json has no capacitor.ios.src; skipping iOS updates.")
}

type panicSystem struct {
	workspace.RealSystem
}

func (panicSystem) ReadFile(string) ([]byte, error) {
	panic("disk on fire")
}

func TestRun_PanicBecomesFatal(t *testing.T) {
	res, err := Run(context.Background(), Options{Dir: t.TempDir(), Step: latest(t), System: panicSystem{}})

	var fatal *FatalError
	require.ErrorAs(t, err, &fatal)
	assert.Equal(t, "manifest", fatal.Stage)
	assert.Contains(t, err.Error(), "unexpected failure: disk on fire")
	assert.Equal(t, err.Error(), res.Report.Fatal)
}

func TestRun_CancelledContext(t *testing.T) {
	f := writeFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, Options{Dir: f.root, Step: latest(t), Config: f.cfg})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, pluginPackageJSON, testutil.ReadFile(t, f.root, "package.json"))
}

func TestRun_DirRequired(t *testing.T) {
	_, err := Run(context.Background(), Options{Step: latest(t)})
	assert.True(t, errors.Is(err, ErrDirRequired))
}

func TestResolveStep(t *testing.T) {
	table, err := steps.Default()
	require.NoError(t, err)

	step, err := ResolveStep(table, "", nil)
	require.NoError(t, err)
	assert.Equal(t, table.Latest().ID, step.ID)

	step, err = ResolveStep(table, "", &config.Config{Target: "6"})
	require.NoError(t, err)
	assert.Equal(t, "6", step.ID)

	step, err = ResolveStep(table, "v7", &config.Config{Target: "6"})
	require.NoError(t, err)
	assert.Equal(t, "7", step.ID)

	_, err = ResolveStep(table, "3", nil)
	assert.Error(t, err)
}
