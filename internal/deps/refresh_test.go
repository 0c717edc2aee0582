package deps

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conn-castle/capmigrate/internal/logger"
	"github.com/conn-castle/capmigrate/internal/report"
	"github.com/conn-castle/capmigrate/internal/subprocess"
	"github.com/conn-castle/capmigrate/internal/testutil"
	"github.com/conn-castle/capmigrate/internal/workspace"
)

func newRecorder(t *testing.T) (*report.Recorder, *report.Report, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	disabled := false
	rep := &report.Report{}
	return report.NewRecorder(logger.New(&buf, logger.Options{Color: &disabled}), rep), rep, &buf
}

func TestRefresh_RemovesAndInstalls(t *testing.T) {
	dir := t.TempDir()
	bin := t.TempDir()
	logPath := filepath.Join(bin, "calls.log")
	testutil.WriteRecordingStub(t, bin, "npm", logPath, 0)
	testutil.WriteFiles(t, dir, map[string]string{
		"node_modules/@capacitor/core/package.json": "{}",
		"node_modules/rollup/package.json":          "{}",
		"package-lock.json":                         "{}",
	})

	rec, rep, _ := newRecorder(t)
	NewRefresher(workspace.RealSystem{}, subprocess.ExecRunner{}, rec, dir).Refresh(context.Background(), Options{
		LockFiles: []string{"package-lock.json", "yarn.lock"},
		Install:   []string{filepath.Join(bin, "npm"), "install"},
	})

	assert.NoDirExists(t, filepath.Join(dir, "node_modules", "@capacitor"))
	assert.DirExists(t, filepath.Join(dir, "node_modules", "rollup"))
	assert.NoFileExists(t, filepath.Join(dir, "package-lock.json"))

	calls := testutil.ReadCalls(t, logPath)
	require.Len(t, calls, 1)
	assert.Equal(t, "install", calls[0].Args)

	assert.Empty(t, rep.Issues)
	require.Len(t, rep.Entries, 3)
	assert.Equal(t, "node_modules/@capacitor", rep.Entries[0].Path)
	assert.Equal(t, "package-lock.json", rep.Entries[1].Path)
	assert.Equal(t, report.StatusApplied, rep.Entries[2].Status)
}

func TestRefresh_InstallFailureWarnsAndContinues(t *testing.T) {
	dir := t.TempDir()
	bin := t.TempDir()
	testutil.WriteStubWithOutput(t, bin, "npm", "ERR! 404", 1)
	npm := filepath.Join(bin, "npm")

	rec, rep, logs := newRecorder(t)
	NewRefresher(workspace.RealSystem{}, subprocess.ExecRunner{}, rec, dir).Refresh(context.Background(), Options{
		Install: []string{npm, "install"},
	})

	require.Len(t, rep.Issues, 1)
	assert.Equal(t, report.KindCommandFailed, rep.Issues[0].Kind)
	assert.Equal(t, npm+" install failed, please, install the dependencies using your package manager of choice", rep.Issues[0].Message)
	assert.Contains(t, logs.String(), "[warn] ")
	assert.Equal(t, "", rep.Fatal)
}

func TestRefresh_DefaultMessageNamesNpm(t *testing.T) {
	rec, rep, _ := newRecorder(t)
	runner := failingRunner{err: errors.New("exit status 1")}

	NewRefresher(workspace.RealSystem{}, runner, rec, t.TempDir()).Refresh(context.Background(), Options{
		Install: []string{"npm", "install"},
	})

	require.Len(t, rep.Issues, 1)
	assert.Equal(t, "npm install failed, please, install the dependencies using your package manager of choice", rep.Issues[0].Message)
}

type failingRunner struct{ err error }

func (f failingRunner) Run(context.Context, string, string, ...string) error { return f.err }

func TestRefresh_NoInstallCommandSkips(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFiles(t, dir, map[string]string{"package-lock.json": "{}"})
	rec, rep, _ := newRecorder(t)
	runner := &subprocess.DryRunRunner{Log: logger.Discard()}

	NewRefresher(workspace.RealSystem{}, runner, rec, dir).Refresh(context.Background(), Options{
		LockFiles: []string{"package-lock.json"},
	})

	assert.Empty(t, runner.Commands)
	assert.NoFileExists(t, filepath.Join(dir, "package-lock.json"))
	require.Len(t, rep.Entries, 2)
	assert.Equal(t, report.StatusSkipped, rep.Entries[1].Status)
}

func TestRefresh_DryRun(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFiles(t, dir, map[string]string{"package-lock.json": "{}"})
	overlay := workspace.NewOverlay(workspace.RealSystem{})
	runner := &subprocess.DryRunRunner{Log: logger.Discard()}
	rec, _, _ := newRecorder(t)

	NewRefresher(overlay, runner, rec, dir).Refresh(context.Background(), Options{
		LockFiles: []string{"package-lock.json"},
		Install:   []string{"npm", "install"},
	})

	_, err := os.Stat(filepath.Join(dir, "package-lock.json"))
	require.NoError(t, err)
	require.Len(t, runner.Commands, 1)
	assert.Equal(t, "npm install", runner.Commands[0].String())
	require.Len(t, overlay.Changes(), 1)
	assert.True(t, overlay.Changes()[0].Removed)
}
