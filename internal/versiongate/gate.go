// Package versiongate overwrites a version value in text only when the new
// value does not lower it.
package versiongate

import (
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/conn-castle/capmigrate/internal/patch"
)

// Result describes what UpgradeIfNewer decided.
type Result int

const (
	// NotFound means the prefix/suffix region does not exist in the text.
	NotFound Result = iota
	// Upgraded means the region was overwritten with the candidate.
	Upgraded
	// UpToDate means the existing value is already at or above the candidate.
	UpToDate
	// Incomparable means the values cannot be ordered and nothing was written.
	Incomparable
)

func (r Result) String() string {
	switch r {
	case Upgraded:
		return "upgraded"
	case UpToDate:
		return "up_to_date"
	case Incomparable:
		return "incomparable"
	default:
		return "not_found"
	}
}

// ShouldUpgrade compares an existing value with a candidate.
//
// A candidate that is a strict semantic version upgrades an existing strict
// semantic version when candidate >= existing. A candidate that is a plain
// integer upgrades an existing integer only when candidate > existing.
// Any other combination is Incomparable. Surrounding whitespace in existing
// is ignored.
func ShouldUpgrade(existing string, candidate string) Result {
	existing = strings.TrimSpace(existing)
	candidate = strings.TrimSpace(candidate)

	if want, err := semver.StrictNewVersion(candidate); err == nil {
		have, err := semver.StrictNewVersion(existing)
		if err != nil {
			return Incomparable
		}
		if want.Compare(have) >= 0 {
			return Upgraded
		}
		return UpToDate
	}

	want, err := strconv.ParseInt(candidate, 10, 64)
	if err != nil {
		return Incomparable
	}
	have, err := strconv.ParseInt(existing, 10, 64)
	if err != nil {
		return Incomparable
	}
	if want > have {
		return Upgraded
	}
	return UpToDate
}

// UpgradeIfNewer overwrites each region between prefix and suffix with
// candidate when that region's value is lower than candidate. Regions that
// already hold a value at least as new, or one that cannot be compared, are
// left alone.
//
// existing and result describe the first region ("" and NotFound when there
// is none); result is Upgraded whenever any region was rewritten. The text is
// returned unchanged otherwise, and an equal value reports UpToDate. An error
// is returned only when the region engine fails (a region without a suffix);
// the text is unchanged in that case.
func UpgradeIfNewer(text string, prefix string, suffix string, candidate string) (updated string, existing string, result Result, err error) {
	spans, err := patch.Regions(text, prefix, suffix)
	if err != nil {
		if len(spans) > 0 {
			existing = text[spans[0].Start:spans[0].End]
		}
		return text, existing, Incomparable, err
	}
	return upgradeSpans(text, spans, candidate)
}

// UpgradeLineIfNewer is UpgradeIfNewer for values that run from prefix to
// the end of their line. Line endings are never part of a value.
func UpgradeLineIfNewer(text string, prefix string, candidate string) (updated string, existing string, result Result) {
	updated, existing, result, _ = upgradeSpans(text, patch.LineRegions(text, prefix), candidate)
	return updated, existing, result
}

func upgradeSpans(text string, spans []patch.Span, candidate string) (string, string, Result, error) {
	if len(spans) == 0 {
		return text, "", NotFound, nil
	}
	existing := text[spans[0].Start:spans[0].End]
	result := ShouldUpgrade(existing, candidate)
	var raise []patch.Span
	for _, sp := range spans {
		value := text[sp.Start:sp.End]
		if value != candidate && ShouldUpgrade(value, candidate) == Upgraded {
			raise = append(raise, sp)
		}
	}
	if len(raise) == 0 {
		if result == Upgraded {
			result = UpToDate
		}
		return text, existing, result, nil
	}
	return patch.ReplaceSpans(text, raise, candidate), existing, Upgraded, nil
}
