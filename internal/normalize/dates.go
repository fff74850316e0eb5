package normalize

import (
	"strconv"
	"strings"
	"time"
)

// ParseDate reads a DD/MM/YYYY cell. The result is the calendar date at
// midnight UTC; days beyond the month's length roll over into the next month.
// Years below 100 are read as 19xx, so "24/12/94" is 1994.
func ParseDate(raw string) (time.Time, bool) {
	parts := strings.Split(raw, "/")
	if len(parts) != 3 {
		return time.Time{}, false
	}

	day, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || day < 1 || day > 31 {
		return time.Time{}, false
	}
	month, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || month < 1 || month > 12 {
		return time.Time{}, false
	}
	year, err := strconv.Atoi(strings.TrimSpace(parts[2]))
	if err != nil || year < 0 {
		return time.Time{}, false
	}
	if year < 100 {
		year += 1900
	}

	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), true
}

// DateCarrier carries the last successfully parsed date of one import run so
// rows with a missing or malformed date reuse it. The zero value is ready to use.
type DateCarrier struct {
	last  time.Time
	valid bool
}

// Resolve returns the date of raw, or the carried date when raw does not
// parse. It reports false only when no date has parsed yet in this run.
func (c *DateCarrier) Resolve(raw string) (time.Time, bool) {
	if d, ok := ParseDate(raw); ok {
		c.last = d
		c.valid = true
		return d, true
	}
	return c.last, c.valid
}

// Last returns the carried date.
func (c *DateCarrier) Last() (time.Time, bool) {
	return c.last, c.valid
}
