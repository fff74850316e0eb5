// Package normalize turns raw spreadsheet cell text into typed values.
package normalize

import (
	"strconv"
	"strings"
	"unicode"
)

// BasePlaceholders are the "not collected" tokens every network uses.
var BasePlaceholders = []string{"-", "s", "s/"}

// UppercasePlaceholders are added by networks whose sheets also use capitals.
var UppercasePlaceholders = []string{"S", "S/"}

// PlaceholderSet holds the tokens that mark a cell as not applicable.
type PlaceholderSet map[string]struct{}

// NewPlaceholderSet builds a set from the given token lists.
func NewPlaceholderSet(lists ...[]string) PlaceholderSet {
	set := make(PlaceholderSet)
	for _, list := range lists {
		for _, token := range list {
			set[token] = struct{}{}
		}
	}
	return set
}

// IsUsable reports whether raw carries a value: it is non-empty and not one
// of the placeholder tokens. Comparison is exact, no trimming.
func IsUsable(raw string, placeholders PlaceholderSet) bool {
	if raw == "" {
		return false
	}
	_, placeholder := placeholders[raw]
	return !placeholder
}

// ParseCount strips '.' and ',' thousands separators and parses the leading
// base-10 integer. Text without a leading integer yields false.
func ParseCount(raw string) (int64, bool) {
	cleaned := strings.NewReplacer(".", "", ",", "").Replace(raw)
	cleaned = strings.TrimLeftFunc(cleaned, unicode.IsSpace)

	end := 0
	if end < len(cleaned) && (cleaned[end] == '-' || cleaned[end] == '+') {
		end++
	}
	digitsStart := end
	for end < len(cleaned) && cleaned[end] >= '0' && cleaned[end] <= '9' {
		end++
	}
	if end == digitsStart {
		return 0, false
	}

	n, err := strconv.ParseInt(cleaned[:end], 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// CollapseNewlines replaces line breaks inside a cell with single spaces.
func CollapseNewlines(raw string) string {
	raw = strings.ReplaceAll(raw, "\r\n", " ")
	return strings.NewReplacer("\n", " ", "\r", " ").Replace(raw)
}
