package schedule

import (
	"time"

	"github.com/google/uuid"
)

// Occupant is one unit of consumed capacity: a confirmed appointment or a
// live reservation hold. The interval is already buffer-expanded. Callers
// pre-filter to a surrounding time window and exclude canceled, no-show and
// soft-deleted appointments; expiry of holds is evaluated here so that a
// stale hold stops counting the moment its TTL passes, purged or not.
type Occupant struct {
	ID        uuid.UUID
	Interval  Interval
	ExpiresAt *time.Time // nil for confirmed appointments
}

func (o Occupant) countsAt(now time.Time) bool {
	return o.ExpiresAt == nil || o.ExpiresAt.After(now)
}

// CountOverlapping counts occupants whose effective interval overlaps iv at
// evaluation time now. exclude skips one occupant by ID (an appointment being
// rescheduled must not compete with its own current slot).
func CountOverlapping(iv Interval, occupants []Occupant, now time.Time, exclude uuid.UUID) int {
	n := 0
	for _, o := range occupants {
		if exclude != uuid.Nil && o.ID == exclude {
			continue
		}
		if !o.countsAt(now) {
			continue
		}
		if o.Interval.Overlaps(iv) {
			n++
		}
	}
	return n
}

// PrefilterWindow pads a range so a storage prefilter on raw slot intervals
// cannot miss occupants whose buffer-expanded interval reaches into it.
func PrefilterWindow(svc Service, iv Interval) Interval {
	pad := svc.BufferBefore() + svc.BufferAfter()
	return Interval{
		Start: iv.Start.Add(-pad),
		End:   iv.End.Add(pad),
	}
}

// ExpandOccupants widens each occupant's raw slot to its effective interval
// using the service's current buffer configuration.
func ExpandOccupants(svc Service, occupants []Occupant) {
	for i := range occupants {
		occupants[i].Interval = svc.Expand(occupants[i].Interval)
	}
}

// Remaining returns max(0, max - overlapping) for the buffer-expanded
// interval iv.
func Remaining(iv Interval, occupants []Occupant, max int, now time.Time, exclude uuid.UUID) int {
	left := max - CountOverlapping(iv, occupants, now, exclude)
	if left < 0 {
		return 0
	}
	return left
}
