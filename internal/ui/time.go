package ui

import (
	"fmt"
	"time"
)

// TimestampLayout is the absolute format used for task timestamps.
const TimestampLayout = "2006-01-02 15:04"

// FormatTimestamp renders t in local time, or "-" when t is zero.
func FormatTimestamp(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(TimestampLayout)
}

// FormatTimeAgo returns a compact age string like "2m ago".
// Times in the future render as "in 2m".
func FormatTimeAgo(then time.Time, now time.Time) string {
	if then.IsZero() {
		return "-"
	}
	age := now.Sub(then)
	if age < 0 {
		return "in " + FormatDurationShort(-age)
	}
	return FormatDurationShort(age) + " ago"
}

// FormatDurationShort formats a duration using short units (s/m/h/d).
func FormatDurationShort(duration time.Duration) string {
	if duration < 0 {
		duration = 0
	}

	seconds := int64(duration.Truncate(time.Second).Seconds())
	if seconds < 60 {
		return fmt.Sprintf("%ds", seconds)
	}

	minutes := seconds / 60
	if minutes < 60 {
		return fmt.Sprintf("%dm", minutes)
	}

	hours := minutes / 60
	if hours < 24 {
		return fmt.Sprintf("%dh", hours)
	}

	return fmt.Sprintf("%dd", hours/24)
}
