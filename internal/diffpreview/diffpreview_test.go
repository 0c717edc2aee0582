package diffpreview

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conn-castle/capmigrate/internal/workspace"
)

func TestNormalizeMaxLines(t *testing.T) {
	assert.Equal(t, DefaultMaxLines, normalizeMaxLines(0))
	assert.Equal(t, DefaultMaxLines, normalizeMaxLines(-1))
	assert.Equal(t, 7, normalizeMaxLines(7))
}

func TestRenderTruncatedUnifiedDiff(t *testing.T) {
	diff, truncated := renderTruncatedUnifiedDiff("from.txt", "to.txt", "a\nb\nc\n", "a\nx\ny\nz\n", 2)

	assert.True(t, truncated)
	lines := strings.Split(strings.TrimRight(diff, "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "--- from.txt", lines[0])
	assert.Equal(t, "... (truncated to 2 lines; rerun with --diff-lines <n> to see more)", lines[2])
}

func TestRenderTruncatedUnifiedDiff_Unchanged(t *testing.T) {
	diff, truncated := renderTruncatedUnifiedDiff("a", "a", "same\n", "same\n", 10)
	assert.False(t, truncated)
	assert.Equal(t, "", diff)
}

func TestBuild(t *testing.T) {
	root := filepath.Join(string(filepath.Separator), "work", "plugin")
	changes := []workspace.Change{
		{Path: filepath.Join(root, "ios", "Podfile"), Before: "platform :ios, '14.0'\n", After: "platform :ios, '15.0'\n"},
		{Path: filepath.Join(root, "package-lock.json"), Before: "{}\n", Removed: true},
		{Path: filepath.Join(root, "rollup.config.mjs"), RenamedFrom: filepath.Join(root, "rollup.config.js"), Before: "x\n", After: "x\n"},
		{Path: filepath.Join(root, "android", "src", "main", "AndroidManifest.xml"), After: "<manifest/>\n", Created: true},
	}

	previews := Build(root, changes, 0)

	require.Len(t, previews, 4)
	assert.Equal(t, "ios/Podfile", previews[0].Path)
	assert.Contains(t, previews[0].UnifiedDiff, "--- ios/Podfile\n+++ ios/Podfile\n")
	assert.Contains(t, previews[0].UnifiedDiff, "-platform :ios, '14.0'\n+platform :ios, '15.0'\n")
	assert.Equal(t, "--- package-lock.json (removed)\n", previews[1].UnifiedDiff)
	assert.Equal(t, "--- rollup.config.js -> rollup.config.mjs (renamed)\n", previews[2].UnifiedDiff)
	assert.Contains(t, previews[3].UnifiedDiff, "--- /dev/null\n+++ android/src/main/AndroidManifest.xml\n")
	assert.Contains(t, previews[3].UnifiedDiff, "+<manifest/>\n")
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, nil))
	assert.Equal(t, "Dry run: no files were written and no commands were run.\n  - (no file changes)\n", buf.String())

	buf.Reset()
	require.NoError(t, Write(&buf, []Preview{{Path: "a", UnifiedDiff: "--- a (removed)\n"}}))
	assert.Equal(t, "Dry run: no files were written and no commands were run.\n--- a (removed)\n", buf.String())
}
