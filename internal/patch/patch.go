// Package patch implements marker-delimited text surgery on files that are
// treated as opaque text: build scripts, property files and project files.
//
// A region is the text strictly between the end of a start marker and the
// next occurrence of an end marker. Markers are literal substrings, never
// patterns. Everything outside the regions is preserved byte for byte.
package patch

import (
	"errors"
	"fmt"
	"strings"

	"github.com/conn-castle/capmigrate/internal/messages"
)

var (
	// ErrEmptyMarker is returned when a start or end marker is empty.
	ErrEmptyMarker = errors.New(messages.PatchEmptyMarker)
	// ErrEndMarkerNotFound is returned when a start marker has no end marker after it.
	ErrEndMarkerNotFound = errors.New("end marker not found")
	// ErrUnbalancedBlock is returned when a removed block never closes its braces.
	ErrUnbalancedBlock = errors.New("unbalanced block")
)

// Span is the byte range [Start, End) of one region.
type Span struct {
	Start int
	End   int
}

// Regions returns every region delimited by start and end, left to right.
//
// After each region the search resumes at its end marker, so regions never
// overlap. If a start occurrence lacks a following end marker, the regions
// found before it are returned with an error wrapping ErrEndMarkerNotFound.
func Regions(text string, start string, end string) ([]Span, error) {
	if start == "" || end == "" {
		return nil, ErrEmptyMarker
	}
	var spans []Span
	cursor := 0
	for {
		found := strings.Index(text[cursor:], start)
		if found < 0 {
			return spans, nil
		}
		insertAt := cursor + found + len(start)
		endAt := strings.Index(text[insertAt:], end)
		if endAt < 0 {
			return spans, fmt.Errorf("%w: "+messages.PatchEndMarkerNotFoundFmt, ErrEndMarkerNotFound, end, start, insertAt)
		}
		cursor = insertAt + endAt
		spans = append(spans, Span{Start: insertAt, End: cursor})
	}
}

// LineRegions returns every region running from start to the end of its
// line. The region stops before "\n" or "\r\n", whichever ends that line,
// and a final line without a terminator ends at the end of text.
func LineRegions(text string, start string) []Span {
	if start == "" {
		return nil
	}
	var spans []Span
	cursor := 0
	for {
		found := strings.Index(text[cursor:], start)
		if found < 0 {
			return spans
		}
		insertAt := cursor + found + len(start)
		lineEnd := len(text)
		if nl := strings.IndexByte(text[insertAt:], '\n'); nl >= 0 {
			lineEnd = insertAt + nl
			if lineEnd > insertAt && text[lineEnd-1] == '\r' {
				lineEnd--
			}
		}
		spans = append(spans, Span{Start: insertAt, End: lineEnd})
		cursor = lineEnd
	}
}

// ReplaceSpans sets every span of text to replacement. spans must be
// ordered and must not overlap.
func ReplaceSpans(text string, spans []Span, replacement string) string {
	if len(spans) == 0 {
		return text
	}
	var b strings.Builder
	cursor := 0
	for _, sp := range spans {
		b.WriteString(text[cursor:sp.Start])
		b.WriteString(replacement)
		cursor = sp.End
	}
	b.WriteString(text[cursor:])
	return b.String()
}

// SetAll replaces every region delimited by start and end with replacement.
//
// Regions are processed left to right. After each replacement the search
// resumes right after the inserted text, so a replacement containing start is
// never matched again. If start does not occur the text is returned unchanged.
// If any start occurrence lacks a following end marker, SetAll returns the
// original text and an error wrapping ErrEndMarkerNotFound.
func SetAll(text string, start string, end string, replacement string) (string, error) {
	spans, err := Regions(text, start, end)
	if err != nil {
		return text, err
	}
	return ReplaceSpans(text, spans, replacement), nil
}

// LineEnding returns "\r\n" when text uses Windows line endings and "\n" otherwise.
// Use it for lines inserted into text. Regions that run to the end of a line
// use LineRegions instead, since one file may mix both endings.
func LineEnding(text string) string {
	if strings.Contains(text, "\r\n") {
		return "\r\n"
	}
	return "\n"
}

// SetAllToEOL replaces every region from start to the end of its line.
// Each line keeps its own line ending, and a final line without a
// terminator is treated as ending at the end of text.
func SetAllToEOL(text string, start string, replacement string) (string, error) {
	if start == "" {
		return text, ErrEmptyMarker
	}
	return ReplaceSpans(text, LineRegions(text, start), replacement), nil
}
