package schedule

import (
	"time"

	"github.com/google/uuid"
)

// SlotReason explains why a returned slot is not bookable. Slots inside
// off-time are never returned at all; "full" is the only surfaced reason.
type SlotReason string

const SlotReasonFull SlotReason = "full"

// Slot is one candidate booking interval of exactly the service's duration.
type Slot struct {
	Start             time.Time
	End               time.Time
	Available         bool
	RemainingCapacity int
	Reason            SlotReason
}

type SlotOptions struct {
	// BypassAdvanceWindow skips the maximum-lookahead cutoff, for
	// staff-initiated bookings. Lead-time and off-time checks still apply.
	BypassAdvanceWindow bool
}

// GenerateSlots enumerates grain-aligned candidate slots for svc between
// from and to. Each open window of each day produces its own candidates;
// a window that the duration does not evenly divide simply yields fewer
// trailing slots. Candidates whose buffer-expanded interval crosses a
// closed day, holiday or break are dropped before capacity is evaluated.
func (s *BusinessSchedule) GenerateSlots(svc Service, from, to time.Time, occupants []Occupant, now time.Time, opts SlotOptions) []Slot {
	earliest := now.Add(s.minLeadTime)
	horizon := now.Add(s.maxAdvance)
	capacity := s.CapacityFor(svc)

	var slots []Slot
	for day := s.startOfDay(from); day.Before(to); day = s.nextDay(day) {
		blocks := s.hardBlocks(day.Add(-svc.BufferBefore()), s.nextDay(day).Add(svc.BufferAfter()))

		for _, w := range s.openWindows(day) {
			for start := w.Start; !start.Add(svc.Duration() + svc.BufferAfter()).After(w.End); start = start.Add(s.grain) {
				if start.Before(from) || !start.Before(to) {
					continue
				}
				if start.Before(earliest) {
					continue
				}
				if !opts.BypassAdvanceWindow && start.After(horizon) {
					// Candidates are emitted in strictly ascending start
					// order: windows come sorted from construction and days
					// advance monotonically, so everything after this point
					// is past the horizon too.
					return slots
				}

				slot := Interval{Start: start, End: start.Add(svc.Duration())}
				expanded := svc.Expand(slot)
				if overlapsAny(expanded, blocks) {
					continue
				}

				remaining := Remaining(expanded, occupants, capacity, now, uuid.Nil)
				out := Slot{
					Start:             slot.Start,
					End:               slot.End,
					Available:         remaining > 0,
					RemainingCapacity: remaining,
				}
				if remaining == 0 {
					out.Reason = SlotReasonFull
				}
				slots = append(slots, out)
			}
		}
	}
	return slots
}

func overlapsAny(iv Interval, blocks []BlockedInterval) bool {
	for _, b := range blocks {
		if b.Interval.Overlaps(iv) {
			return true
		}
	}
	return false
}
