// Package timeutil renders ticket timestamps for people: whole days outstanding
// and coarse "3 days ago" style ages.
package timeutil

import (
	"fmt"
	"time"
)

const day = 24 * time.Hour

// Fixed-width units, largest first. Months and years are not calendar aware.
var units = []struct {
	name    string
	seconds int64
}{
	{"year", 31536000},
	{"month", 2592000},
	{"week", 604800},
	{"day", 86400},
	{"hour", 3600},
	{"minute", 60},
}

// DaysSince returns the whole days elapsed between from and now, truncating
// partial days. A zero from, or one in the future, yields 0.
func DaysSince(from, now time.Time) int {
	if from.IsZero() {
		return 0
	}
	d := now.Sub(from)
	if d < 0 {
		return 0
	}
	return int(d / day)
}

// TimeAgo picks the largest unit with a count of at least one and renders
// "<n> <unit>(s) ago". Anything under a minute is "Just now".
func TimeAgo(from, now time.Time) string {
	if from.IsZero() {
		return "Unknown"
	}
	diff := int64(now.Sub(from) / time.Second)
	for _, u := range units {
		n := diff / u.seconds
		if n < 1 {
			continue
		}
		if n == 1 {
			return fmt.Sprintf("1 %s ago", u.name)
		}
		return fmt.Sprintf("%d %ss ago", n, u.name)
	}
	return "Just now"
}

// FormatDate renders t like "Mar 4, 2025", or "N/A" for the zero time.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return "N/A"
	}
	return t.Format("Jan 2, 2006")
}

// FormatDateTime renders t like "Mar 4, 2025, 09:05 PM", or "N/A" for the zero time.
func FormatDateTime(t time.Time) string {
	if t.IsZero() {
		return "N/A"
	}
	return t.Format("Jan 2, 2006, 03:04 PM")
}
