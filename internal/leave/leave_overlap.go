package leave

import "time"

// DateRange is an inclusive span of calendar dates.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Overlaps uses inclusive bounds: [a,b] and [c,d] overlap iff a <= d and c <= b.
// Ranges that only touch end-to-start on consecutive days do not overlap.
func (r DateRange) Overlaps(other DateRange) bool {
	return !r.Start.After(other.End) && !other.Start.After(r.End)
}

// HasOverlap reports whether candidate intersects any pending or approved
// request in existing. Rejected requests never block a period.
func HasOverlap(candidate DateRange, existing []Leave) bool {
	for _, l := range existing {
		if !l.Status.IsActive() {
			continue
		}
		if candidate.Overlaps(l.Period()) {
			return true
		}
	}
	return false
}
