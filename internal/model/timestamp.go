package model

import (
	"fmt"
	"strings"
	"time"
)

// TimestampLayout is the zone-less form meal dates are written in.
const TimestampLayout = "2006-01-02T15:04:05.999999999"

var parseLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	time.RFC3339Nano,
}

// FormatTimestamp renders t as UTC wall-clock time without a zone suffix.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// ParseTimestamp accepts the zone-less layouts written by this service, the
// minute-precision form used by API callers, and RFC 3339. Zoned values are
// converted to UTC; zone-less values are taken as UTC.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range parseLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
}
