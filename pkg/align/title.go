package align

import (
	"regexp"
	"strconv"
	"strings"
)

// Title normalization and number extraction.
//
// The pinned policy: strip one trailing file-extension token and one
// trailing "(copy)" marker, then take the LAST maximal run of decimal digits
// anywhere in the remainder. "Last run anywhere" is the most tolerant rule
// for arbitrary prefixes and suffixes ("IMG_0042 final" -> 42).
var (
	// A trailing extension must contain at least one letter so numeric
	// suffixes like "take.2" are not mistaken for file extensions.
	extensionPattern = regexp.MustCompile(`\.[A-Za-z][A-Za-z0-9]{0,4}$`)

	// A trailing duplicate marker as produced by copy-paste on most hosts.
	// Numeric parentheticals like "(2)" are kept: they are usually the
	// sequence number the user is sorting by.
	copyPattern = regexp.MustCompile(`(?i)\s*\(copy\)$`)

	digitsPattern = regexp.MustCompile(`[0-9]+`)
)

// ExtractNumber parses the ordering number out of an item title.
// It returns false if the normalized title contains no digits.
//
// Leading zeros are discarded ("007" parses as 7), and a title that is all
// zeros parses as 0. Digit runs too large for int64 are treated as absent.
func ExtractNumber(title string) (int64, bool) {
	s := strings.TrimSpace(title)
	s = extensionPattern.ReplaceAllString(s, "")
	s = copyPattern.ReplaceAllString(s, "")

	runs := digitsPattern.FindAllString(s, -1)
	if len(runs) == 0 {
		return 0, false
	}

	raw := strings.TrimLeft(runs[len(runs)-1], "0")
	if raw == "" {
		return 0, true
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
