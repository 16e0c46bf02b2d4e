package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var now = time.Date(2025, 3, 4, 21, 5, 0, 0, time.UTC)

func ago(secs int) time.Time { return now.Add(-time.Duration(secs) * time.Second) }

func TestDaysSince(t *testing.T) {
	cases := []struct {
		name string
		from time.Time
		want int
	}{
		{"now", now, 0},
		{"one day and change", ago(90000), 1},
		{"just under a day", ago(86399), 0},
		{"exactly two days", ago(2 * 86400), 2},
		{"future", now.Add(time.Hour), 0},
		{"zero time", time.Time{}, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, DaysSince(tc.from, now))
		})
	}
}

func TestTimeAgo(t *testing.T) {
	cases := []struct {
		secs int
		want string
	}{
		{0, "Just now"},
		{30, "Just now"},
		{59, "Just now"},
		{60, "1 minute ago"},
		{150, "2 minutes ago"},
		{3661, "1 hour ago"},
		{7200, "2 hours ago"},
		{86400, "1 day ago"},
		{3 * 86400, "3 days ago"},
		{604800, "1 week ago"},
		{2592000, "1 month ago"},
		{2 * 31536000, "2 years ago"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, TimeAgo(ago(tc.secs), now), "secs=%d", tc.secs)
	}

	assert.Equal(t, "Just now", TimeAgo(now.Add(time.Minute), now))
	assert.Equal(t, "Unknown", TimeAgo(time.Time{}, now))
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "Mar 4, 2025", FormatDate(now))
	assert.Equal(t, "Mar 4, 2025, 09:05 PM", FormatDateTime(now))
	assert.Equal(t, "N/A", FormatDate(time.Time{}))
	assert.Equal(t, "N/A", FormatDateTime(time.Time{}))
}
