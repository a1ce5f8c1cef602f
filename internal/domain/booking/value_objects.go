package booking

import (
	"fmt"
	"time"

	"slotbook/internal/domain/schedule"

	"github.com/google/uuid"
)

var (
	ErrInvalidTimeSlot = fmt.Errorf("end must be after start")
	ErrNotGrainAligned = fmt.Errorf("slot boundaries must be aligned to the scheduling grain")
)

// TimeSlot is a validated booking interval. Boundaries must align to the
// business's grain; misaligned input is rejected, never rounded.
type TimeSlot struct {
	start time.Time
	end   time.Time
}

func NewTimeSlot(start, end time.Time, grain time.Duration, loc *time.Location) (TimeSlot, error) {
	if !end.After(start) {
		return TimeSlot{}, ErrInvalidTimeSlot
	}
	if !alignedToGrain(start, grain, loc) || !alignedToGrain(end, grain, loc) {
		return TimeSlot{}, ErrNotGrainAligned
	}
	return TimeSlot{start: start, end: end}, nil
}

// alignedToGrain measures t from midnight of its own calendar day in the
// business's timezone. Open windows are laid out on that same local grid, so
// fractional UTC offsets (+05:45, +05:30) do not shift the check.
func alignedToGrain(t time.Time, grain time.Duration, loc *time.Location) bool {
	local := t.In(loc)
	midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return local.Sub(midnight)%grain == 0
}

func ReconstructTimeSlot(start, end time.Time) TimeSlot {
	return TimeSlot{start: start, end: end}
}

func (ts TimeSlot) Start() time.Time { return ts.start }
func (ts TimeSlot) End() time.Time   { return ts.end }

func (ts TimeSlot) Duration() time.Duration {
	return ts.end.Sub(ts.start)
}

func (ts TimeSlot) Interval() schedule.Interval {
	return schedule.Interval{Start: ts.start, End: ts.end}
}

// Customer is the booked party: a registered customer or a guest contact.
type Customer struct {
	CustomerID *uuid.UUID
	GuestName  string
	GuestEmail string
}

func (c Customer) IsGuest() bool {
	return c.CustomerID == nil
}
