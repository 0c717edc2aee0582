package patch

import (
	"fmt"
	"strings"

	"github.com/conn-castle/capmigrate/internal/messages"
)

// RemoveBlock deletes the brace-delimited block that starts on the first line
// containing marker.
//
// Starting at that line, a running count of '{' minus '}' is kept line by
// line; the removed range ends on the line where the count returns to zero.
// A marker line with balanced braces (or none) is removed on its own.
// removed is false when marker does not occur. When the count never returns
// to zero the text is returned unchanged with an error wrapping
// ErrUnbalancedBlock. Braces inside strings and comments are counted too.
func RemoveBlock(text string, marker string) (result string, removed bool, err error) {
	if marker == "" {
		return text, false, ErrEmptyMarker
	}
	lines := strings.SplitAfter(text, "\n")
	first := -1
	for i, line := range lines {
		if strings.Contains(line, marker) {
			first = i
			break
		}
	}
	if first < 0 {
		return text, false, nil
	}

	balance := 0
	for last := first; last < len(lines); last++ {
		balance += strings.Count(lines[last], "{") - strings.Count(lines[last], "}")
		if balance != 0 {
			continue
		}
		var b strings.Builder
		for _, line := range lines[:first] {
			b.WriteString(line)
		}
		for _, line := range lines[last+1:] {
			b.WriteString(line)
		}
		return b.String(), true, nil
	}
	return text, false, fmt.Errorf("%w: "+messages.PatchUnbalancedBlockFmt, ErrUnbalancedBlock, first+1, marker)
}
