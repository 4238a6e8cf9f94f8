// Package utils provides shared utility functions
package utils

import (
	"time"

	"github.com/dustin/go-humanize"
)

// TimeLayout is how timestamps appear in listings
const TimeLayout = "2006-01-02 15:04:05"

// FormatBytes renders a byte count with binary units, e.g. "1.5 KiB"
func FormatBytes(bytes uint64) string {
	return humanize.IBytes(bytes)
}

// FormatFileSize renders an object size. Unknown sizes (negative) show as "-".
func FormatFileSize(size int64) string {
	if size < 0 {
		return "-"
	}
	return FormatBytes(uint64(size))
}

// FormatTime renders t in UTC; the zero time renders empty
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(TimeLayout)
}
