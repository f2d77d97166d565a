package history

import (
	"fmt"
	"time"
)

const unknown = "Unknown"

// TimeAgo renders t relative to now ("5 minutes ago", "2 weeks ago").
// Months are 30 days and years 365.
func TimeAgo(t, now time.Time) string {
	if t.IsZero() {
		return unknown
	}
	d := now.Sub(t)
	mins := int(d / time.Minute)
	hours := int(d / time.Hour)
	days := int(d / (24 * time.Hour))

	switch {
	case mins < 1:
		return "Just now"
	case mins < 60:
		return plural(mins, "minute")
	case hours < 24:
		return plural(hours, "hour")
	case days < 7:
		return plural(days, "day")
	case days < 30:
		return plural(days/7, "week")
	case days < 365:
		return plural(days/30, "month")
	default:
		return plural(days/365, "year")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit + " ago"
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}

// FormatDate renders t as "Jan 15, 2024".
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return unknown
	}
	return t.Format("Jan 2, 2006")
}

// FormatDateTime renders t as "Jan 15, 2024 at 3:45 PM".
func FormatDateTime(t time.Time) string {
	if t.IsZero() {
		return unknown
	}
	return t.Format("Jan 2, 2006 at 3:04 PM")
}
