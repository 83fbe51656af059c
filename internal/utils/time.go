package utils

import (
	"time"
)

const layoutDateTime = "2006-01-02 15:04:05"

// NowUTC returns current time in UTC.
func NowUTC() time.Time {
	return time.Now().UTC()
}

// FormatDateTime formats t as "YYYY-MM-DD HH:MM:SS UTC"; nil and zero
// times render as "-".
func FormatDateTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "-"
	}
	return t.UTC().Format(layoutDateTime) + " UTC"
}
