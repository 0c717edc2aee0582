// Package diffpreview renders dry-run file changes as truncated unified diffs.
package diffpreview

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/aymanbagabas/go-udiff"

	"github.com/conn-castle/capmigrate/internal/messages"
	"github.com/conn-castle/capmigrate/internal/workspace"
)

// DefaultMaxLines is the default maximum number of diff lines shown per file.
const DefaultMaxLines = 40

const devNull = "/dev/null"

// Preview is the rendered diff of one changed file.
type Preview struct {
	Path        string
	UnifiedDiff string
	Truncated   bool
}

func normalizeMaxLines(value int) int {
	if value <= 0 {
		return DefaultMaxLines
	}
	return value
}

// Build renders one preview per change. Paths are shown relative to root.
func Build(root string, changes []workspace.Change, maxLines int) []Preview {
	out := make([]Preview, 0, len(changes))
	for _, change := range changes {
		out = append(out, buildOne(root, change, maxLines))
	}
	return out
}

func buildOne(root string, change workspace.Change, maxLines int) Preview {
	rel := relPath(root, change.Path)
	switch {
	case change.Removed:
		return Preview{Path: rel, UnifiedDiff: fmt.Sprintf(messages.DryRunRemovedFmt, rel)}
	case change.RenamedFrom != "":
		from := relPath(root, change.RenamedFrom)
		header := fmt.Sprintf(messages.DryRunRenamedFmt, from, rel)
		rendered, truncated := renderTruncatedUnifiedDiff(from, rel, change.Before, change.After, maxLines)
		return Preview{Path: rel, UnifiedDiff: header + rendered, Truncated: truncated}
	case change.Created:
		rendered, truncated := renderTruncatedUnifiedDiff(devNull, rel, "", change.After, maxLines)
		return Preview{Path: rel, UnifiedDiff: rendered, Truncated: truncated}
	default:
		rendered, truncated := renderTruncatedUnifiedDiff(rel, rel, change.Before, change.After, maxLines)
		return Preview{Path: rel, UnifiedDiff: rendered, Truncated: truncated}
	}
}

// Write prints the dry-run header followed by every preview.
func Write(w io.Writer, previews []Preview) error {
	if _, err := fmt.Fprintln(w, messages.DryRunHeader); err != nil {
		return err
	}
	if len(previews) == 0 {
		_, err := fmt.Fprintln(w, messages.DryRunNoChanges)
		return err
	}
	for _, preview := range previews {
		if _, err := io.WriteString(w, preview.UnifiedDiff); err != nil {
			return err
		}
	}
	return nil
}

func relPath(root string, path string) string {
	if root == "" {
		return filepath.ToSlash(path)
	}
	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

func renderTruncatedUnifiedDiff(fromName string, toName string, fromContent string, toContent string, maxLines int) (string, bool) {
	limit := normalizeMaxLines(maxLines)
	diff := udiff.Unified(fromName, toName, fromContent, toContent)
	lines := splitDiffLines(diff)
	if len(lines) <= limit {
		return ensureTrailingNewline(strings.Join(lines, "\n")), false
	}
	truncated := append(lines[:limit:limit], fmt.Sprintf(messages.DryRunTruncatedFmt, limit))
	return ensureTrailingNewline(strings.Join(truncated, "\n")), true
}

func splitDiffLines(content string) []string {
	trimmed := strings.TrimRight(content, "\n")
	if trimmed == "" {
		return []string{}
	}
	return strings.Split(trimmed, "\n")
}

func ensureTrailingNewline(content string) string {
	if content == "" {
		return ""
	}
	if strings.HasSuffix(content, "\n") {
		return content
	}
	return content + "\n"
}
