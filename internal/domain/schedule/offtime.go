package schedule

import "time"

// BlockReason classifies why an interval is not bookable.
type BlockReason string

const (
	ReasonClosedDay    BlockReason = "closed"
	ReasonHoliday      BlockReason = "holiday"
	ReasonBreak        BlockReason = "break"
	ReasonOutsideHours BlockReason = "outside_hours"
)

func (r BlockReason) Message() string {
	switch r {
	case ReasonClosedDay:
		return "the business is closed on this day"
	case ReasonHoliday:
		return "the business is closed for a holiday or exception"
	case ReasonBreak:
		return "the time falls in a break between opening hours"
	case ReasonOutsideHours:
		return "the time is outside opening hours"
	default:
		return "the time is not bookable"
	}
}

// BlockedInterval is one off-time span with the reason it is blocked.
type BlockedInterval struct {
	Interval Interval
	Reason   BlockReason
}

// BlockedIntervals materializes every off-time span inside [from, to):
// fully-closed days, holiday closures, breaks between segmented hours, and
// the margins outside opening hours. Output is ordered by start time.
func (s *BusinessSchedule) BlockedIntervals(from, to time.Time) []BlockedInterval {
	var out []BlockedInterval

	for day := s.startOfDay(from); day.Before(to); day = s.nextDay(day) {
		end := s.nextDay(day)
		windows := s.openWindows(day)

		if len(windows) == 0 {
			reason := ReasonClosedDay
			if ex, ok := s.exceptions[dateKey(day)]; ok && ex.Closed {
				reason = ReasonHoliday
			}
			out = append(out, BlockedInterval{Interval: Interval{Start: day, End: end}, Reason: reason})
			continue
		}

		cursor := day
		for i, w := range windows {
			if cursor.Before(w.Start) {
				reason := ReasonOutsideHours
				if i > 0 {
					reason = ReasonBreak
				}
				out = append(out, BlockedInterval{Interval: Interval{Start: cursor, End: w.Start}, Reason: reason})
			}
			cursor = w.End
		}
		if cursor.Before(end) {
			out = append(out, BlockedInterval{Interval: Interval{Start: cursor, End: end}, Reason: ReasonOutsideHours})
		}
	}

	// Clip to the requested range.
	clipped := out[:0]
	for _, b := range out {
		if !b.Interval.Overlaps(Interval{Start: from, End: to}) {
			continue
		}
		if b.Interval.Start.Before(from) {
			b.Interval.Start = from
		}
		if b.Interval.End.After(to) {
			b.Interval.End = to
		}
		clipped = append(clipped, b)
	}
	return clipped
}

// FirstBlocking returns the earliest blocked interval overlapping iv, or nil
// when iv is fully inside open hours. The result names the reason so callers
// can surface a useful off-time error.
func (s *BusinessSchedule) FirstBlocking(iv Interval) *BlockedInterval {
	for _, b := range s.BlockedIntervals(iv.Start, iv.End) {
		if b.Interval.Overlaps(iv) {
			blocked := b
			return &blocked
		}
	}
	return nil
}

// hardBlocks returns only the off-time that buffers must not cross: closed
// days, holiday closures and breaks. Outside-hours margins are excluded, so
// a buffer may spill past opening or closing time of an open day.
func (s *BusinessSchedule) hardBlocks(from, to time.Time) []BlockedInterval {
	all := s.BlockedIntervals(from, to)
	hard := all[:0]
	for _, b := range all {
		if b.Reason != ReasonOutsideHours {
			hard = append(hard, b)
		}
	}
	return hard
}

// CheckBookable validates a concrete slot against off-time rules: the slot
// must lie inside one open window with room for the trailing buffer before
// close, and the buffer-expanded interval must not cross a closed day,
// holiday or break. Returns the first violating blocked interval, nil when
// bookable. Capacity is deliberately not consulted here: closed trumps full.
func (s *BusinessSchedule) CheckBookable(svc Service, slot Interval) *BlockedInterval {
	windows := s.openWindows(slot.Start)

	fits := false
	for _, w := range windows {
		if !slot.Start.Before(w.Start) && !slot.Start.Add(svc.Duration()+svc.BufferAfter()).After(w.End) {
			fits = true
			break
		}
	}
	if !fits {
		if b := s.FirstBlocking(slot); b != nil {
			return b
		}
		// Slot is in open hours but overruns the closing buffer; report the
		// trailing margin as the blocker.
		if b := s.FirstBlocking(Interval{Start: slot.Start, End: s.nextDay(slot.Start)}); b != nil {
			return b
		}
		return &BlockedInterval{
			Interval: Interval{Start: s.nextDay(slot.Start), End: s.nextDay(s.nextDay(slot.Start))},
			Reason:   ReasonOutsideHours,
		}
	}

	expanded := svc.Expand(slot)
	for _, b := range s.hardBlocks(expanded.Start, expanded.End) {
		if b.Interval.Overlaps(expanded) {
			blocked := b
			return &blocked
		}
	}
	return nil
}
