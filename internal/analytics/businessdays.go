// Package analytics measures how long closed audits took, in business days.
package analytics

import "time"

// BusinessDaysBetween counts Monday to Friday calendar days from start to end
// inclusive, ignoring time of day. Both bounds are read as calendar dates in
// loc (UTC when nil). The result is at least 1, also for reversed ranges and
// for zero (unparseable) bounds, which count as 0 before that floor.
func BusinessDaysBetween(start, end time.Time, loc *time.Location) int {
	if start.IsZero() || end.IsZero() {
		return max(0, 1)
	}
	if loc == nil {
		loc = time.UTC
	}
	day := truncateDay(start.In(loc))
	last := truncateDay(end.In(loc))

	count := 0
	for !day.After(last) {
		if wd := day.Weekday(); wd != time.Saturday && wd != time.Sunday {
			count++
		}
		day = day.AddDate(0, 0, 1)
	}
	return max(count, 1)
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
