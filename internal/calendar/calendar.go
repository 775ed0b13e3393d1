package calendar

import (
	"fmt"
	"time"
)

const DateLayout = "2006-01-02"

// DateOf truncates t to its calendar date in t's own location and returns
// that date at UTC midnight, so dates from different zones compare by value.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func IsWeekend(d time.Time) bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// ChargeableDays counts the days in [start, end] that are neither a weekend
// nor a holiday. Holidays outside the range, on weekends, or listed twice
// are ignored. end before start is a caller bug and panics.
func ChargeableDays(start, end time.Time, holidays []Holiday) int {
	start, end = DateOf(start), DateOf(end)
	if end.Before(start) {
		panic(fmt.Sprintf("calendar: end %s before start %s", end.Format(DateLayout), start.Format(DateLayout)))
	}

	off := make(map[time.Time]struct{}, len(holidays))
	for _, h := range holidays {
		off[DateOf(h.Date)] = struct{}{}
	}

	days := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if IsWeekend(d) {
			continue
		}
		if _, ok := off[d]; ok {
			continue
		}
		days++
	}
	return days
}
