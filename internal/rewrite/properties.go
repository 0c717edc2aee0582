// Package rewrite holds structural rewrites of Gradle build scripts that go
// beyond setting a single value: syntax migrations, block moves and
// declaration relocation. Every rewrite is idempotent.
package rewrite

import (
	"regexp"
	"strings"
)

// DefaultProperties lists the Gradle properties whose space-separated
// assignment form is deprecated.
var DefaultProperties = []string{
	"namespace",
	"compileSdk",
	"testInstrumentationRunner",
	"versionName",
	"versionCode",
	"url",
	"abortOnError",
	"warningsAsErrors",
	"lintConfig",
	"minifyEnabled",
	"debugSymbolLevel",
	"path",
	"version",
	"baseline",
	"sourceCompatibility",
	"targetCompatibility",
}

// NormalizePropertySyntax rewrites `name value` to `name = value` for every
// property in props.
//
// An occurrence is left alone when the next non-blank character is '=', '{'
// or ':' or the line ends, and when the property is not the first thing in
// its statement (only whitespace, '{' or ';' may precede it on the line).
// The second rule keeps comments and chained calls such as
// `id 'com.android.library' version '8.0.0'` intact.
func NormalizePropertySyntax(text string, props []string) string {
	for _, prop := range props {
		if prop == "" {
			continue
		}
		re := regexp.MustCompile(`\b(` + regexp.QuoteMeta(prop) + `)[ \t]+([^=\t {:\r\n])`)
		text = assignMatches(text, re)
	}
	return text
}

func assignMatches(text string, re *regexp.Regexp) string {
	matches := re.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return text
	}
	var b strings.Builder
	last := 0
	for _, m := range matches {
		if !startsStatement(text, m[0]) {
			continue
		}
		b.WriteString(text[last:m[0]])
		b.WriteString(text[m[2]:m[3]])
		b.WriteString(" = ")
		b.WriteString(text[m[4]:m[5]])
		last = m[1]
	}
	b.WriteString(text[last:])
	return b.String()
}

func startsStatement(text string, at int) bool {
	lineStart := strings.LastIndexByte(text[:at], '\n') + 1
	before := strings.TrimSpace(text[lineStart:at])
	return before == "" || strings.HasSuffix(before, "{") || strings.HasSuffix(before, ";")
}
