// Package dateutil provides date validation and resolution utilities.
package dateutil

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidDate indicates a value that does not parse as a calendar date.
var ErrInvalidDate = errors.New("invalid date")

// ISOFormat is the required layout for modification dates (yyyy-mm-dd).
const ISOFormat = "2006-01-02"

// ParseISODate parses a strict yyyy-mm-dd calendar date.
// Returns ErrInvalidDate for anything else, including out-of-range
// components like 2024-13-40.
func ParseISODate(value string) (time.Time, error) {
	t, err := time.Parse(ISOFormat, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q (expected yyyy-mm-dd)", ErrInvalidDate, value)
	}
	return t, nil
}

// ResolveDate handles the "auto" shortcut for date values.
//   - "auto" (case-insensitive) resolves to the current date in yyyy-mm-dd
//   - anything else must already be a valid yyyy-mm-dd date
//
// The time parameter allows injecting a fixed time for testing.
func ResolveDate(value string, now time.Time) (string, error) {
	if strings.EqualFold(value, "auto") {
		return now.Format(ISOFormat), nil
	}
	if _, err := ParseISODate(value); err != nil {
		return "", err
	}
	return value, nil
}
