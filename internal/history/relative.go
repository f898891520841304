package history

import (
	"fmt"
	"time"
)

const (
	secondsPerMinute = 60
	secondsPerHour   = 60 * secondsPerMinute
	secondsPerDay    = 24 * secondsPerHour
	secondsPerMonth  = 30 * secondsPerDay
	secondsPerYear   = 365 * secondsPerDay
)

// FormatRelativeTime describes how long before now the instant past was,
// using whole units: "just now", "N minutes ago", ..., "N years ago".
// Months are 30 days and years 365 days.
func FormatRelativeTime(past, now time.Time) string {
	secs := int64(now.Sub(past) / time.Second)

	switch {
	case secs < secondsPerMinute:
		return "just now"
	case secs < secondsPerHour:
		return fmt.Sprintf("%d minutes ago", secs/secondsPerMinute)
	case secs < secondsPerDay:
		return fmt.Sprintf("%d hours ago", secs/secondsPerHour)
	case secs < secondsPerMonth:
		return fmt.Sprintf("%d days ago", secs/secondsPerDay)
	case secs < secondsPerYear:
		return fmt.Sprintf("%d months ago", secs/secondsPerMonth)
	default:
		return fmt.Sprintf("%d years ago", secs/secondsPerYear)
	}
}

// RelativeTime is FormatRelativeTime against the current time.
func RelativeTime(past time.Time) string {
	return FormatRelativeTime(past, time.Now())
}
