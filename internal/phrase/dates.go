// ABOUTME: Relative and explicit date-range phrases ("last week", "between A and B")
// ABOUTME: Ranges are half-open [Start, End) in UTC; invalid ranges are dropped

package phrase

import (
	"strings"
	"time"
)

const dayLayout = "2006-01-02"

// DateRange is a half-open interval [Start, End).
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the range.
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && t.Before(r.End)
}

// ParseDateRange recognizes "last week", "last month", "today", "yesterday" and
// "between YYYY-MM-DD and YYYY-MM-DD" (end date inclusive, so End is the next midnight).
// Phrases are checked in that order. It reports false when nothing matches or Start >= End.
func ParseDateRange(msg string, now time.Time) (DateRange, bool) {
	lower := Normalize(msg)
	now = now.UTC()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	var r DateRange
	switch {
	case strings.Contains(lower, "last week"):
		r = DateRange{Start: now.AddDate(0, 0, -7), End: now}
	case strings.Contains(lower, "last month"):
		r = DateRange{Start: now.AddDate(0, 0, -30), End: now}
	case strings.Contains(lower, "today"):
		r = DateRange{Start: midnight, End: now}
	case strings.Contains(lower, "yesterday"):
		r = DateRange{Start: midnight.AddDate(0, 0, -1), End: midnight}
	case strings.Contains(lower, "between") && strings.Contains(lower, "and"):
		var ok bool
		if r, ok = explicitRange(lower); !ok {
			return DateRange{}, false
		}
	default:
		return DateRange{}, false
	}

	if !r.Start.Before(r.End) {
		return DateRange{}, false
	}
	return r, true
}

// explicitRange reads the first two ISO dates. Impossible calendar dates fail the parse.
func explicitRange(lower string) (DateRange, bool) {
	dates := dateISORe.FindAllString(lower, 2)
	if len(dates) < 2 {
		return DateRange{}, false
	}
	start, err := time.ParseInLocation(dayLayout, dates[0], time.UTC)
	if err != nil {
		return DateRange{}, false
	}
	end, err := time.ParseInLocation(dayLayout, dates[1], time.UTC)
	if err != nil {
		return DateRange{}, false
	}
	return DateRange{Start: start, End: end.AddDate(0, 0, 1)}, true
}
