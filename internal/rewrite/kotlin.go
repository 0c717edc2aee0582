package rewrite

import (
	"regexp"
	"strings"
)

// JvmTargetImport is the import the compilerOptions form needs.
const JvmTargetImport = "import org.jetbrains.kotlin.gradle.dsl.JvmTarget"

var (
	kotlinOptionsRE = regexp.MustCompile(`kotlinOptions\s*\{\s*jvmTarget\s*=\s*['"](\d+\.?\d*)['"][\s\S]*?\}`)
	kotlinBlockRE   = regexp.MustCompile(`(?m)^kotlin\s*\{([^}]*(?:\{[^}]*\}[^}]*)*)\}`)
	androidBlockRE  = regexp.MustCompile(`android\s*\{[\s\S]*?\n\}`)
	blankRunRE      = regexp.MustCompile(`\n\s*\n\s*\n`)
)

// MigrateKotlinOptions replaces a deprecated `kotlinOptions { jvmTarget = '17' }`
// block with `compilerOptions { jvmTarget = JvmTarget.JVM_17 }`.
//
// The new block goes inside an existing top-level `kotlin { }` block, or into
// a new one placed right after the `android { }` block. The JvmTarget import
// is added before the first line of code when missing, and runs of blank
// lines are collapsed. It reports false and returns text unchanged when no
// old block exists or there is nowhere to put the new one.
func MigrateKotlinOptions(text string) (string, bool) {
	m := kotlinOptionsRE.FindStringSubmatchIndex(text)
	if m == nil {
		return text, false
	}
	target := text[m[2]:m[3]]
	block := "    compilerOptions {\n        jvmTarget = JvmTarget.JVM_" + strings.Replace(target, ".", "_", 1) + "\n    }"

	start, end := wholeLines(text, m[0], m[1])
	result := text[:start] + text[end:]
	if !strings.Contains(result, JvmTargetImport) {
		result = insertBeforeFirstCodeLine(result, JvmTargetImport)
	}
	result = blankRunRE.ReplaceAllString(result, "\n\n")

	if kb := kotlinBlockRE.FindStringSubmatchIndex(result); kb != nil {
		if strings.Contains(result[kb[0]:kb[1]], "compilerOptions") {
			return result, true
		}
		body := strings.TrimRight(result[kb[2]:kb[3]], " \t\r\n")
		return result[:kb[0]] + "kotlin {" + body + "\n" + block + "\n}" + result[kb[1]:], true
	}

	am := androidBlockRE.FindStringIndex(result)
	if am == nil {
		return text, false
	}
	return result[:am[1]] + "\n\nkotlin {\n" + block + "\n}" + result[am[1]:], true
}

// wholeLines widens [start, end) to full lines when nothing but
// indentation precedes start and nothing but a line break follows end.
func wholeLines(text string, start int, end int) (int, int) {
	lineStart := strings.LastIndexByte(text[:start], '\n') + 1
	if strings.TrimLeft(text[lineStart:start], " \t") != "" {
		return start, end
	}
	switch {
	case strings.HasPrefix(text[end:], "\r\n"):
		return lineStart, end + 2
	case strings.HasPrefix(text[end:], "\n"):
		return lineStart, end + 1
	case end == len(text):
		return lineStart, end
	}
	return start, end
}

// insertBeforeFirstCodeLine inserts line before the first line that is not
// blank and not part of a comment. text is returned unchanged when it has
// no code lines.
func insertBeforeFirstCodeLine(text string, line string) string {
	lines := strings.Split(text, "\n")
	inComment := false
	for i, l := range lines {
		trimmed := strings.TrimSpace(l)
		if inComment {
			if strings.Contains(trimmed, "*/") {
				inComment = false
			}
			continue
		}
		if trimmed == "" || strings.HasPrefix(trimmed, "//") {
			continue
		}
		if strings.HasPrefix(trimmed, "/*") {
			inComment = !strings.Contains(trimmed, "*/")
			continue
		}
		out := make([]string, 0, len(lines)+1)
		out = append(out, lines[:i]...)
		out = append(out, line)
		out = append(out, lines[i:]...)
		return strings.Join(out, "\n")
	}
	return text
}
