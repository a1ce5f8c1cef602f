package schedule

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidTimezone    = errors.New("invalid timezone")
	ErrInvalidGrain       = errors.New("grain must be a positive number of minutes")
	ErrInvalidWindow      = errors.New("open time must be before close time")
	ErrUnalignedWindow    = errors.New("open/close times must be aligned to the grain")
	ErrOverlappingRules   = errors.New("availability rules for a weekday must not overlap")
	ErrDuplicateException = errors.New("at most one exception per date")
)

// TimeOfDay is minutes since midnight in the business's timezone.
type TimeOfDay int

func NewTimeOfDay(hour, minute int) TimeOfDay {
	return TimeOfDay(hour*60 + minute)
}

func (t TimeOfDay) on(day time.Time, loc *time.Location) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), 0, int(t), 0, 0, loc)
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// Window is an open/close pair within a single day.
type Window struct {
	Open  TimeOfDay
	Close TimeOfDay
}

// Rule is one weekly availability window. A weekday with no rules is closed;
// a weekday may carry several rules (segmented hours).
type Rule struct {
	Weekday time.Weekday
	Window  Window
}

// Exception overrides the weekly rule for one calendar date: either fully
// closed, or alternate hours (e.g. holiday hours).
type Exception struct {
	Date   time.Time // calendar date; only year/month/day are significant
	Closed bool
	Window Window
}

// BusinessSchedule is the fully-resolved booking configuration for one
// business: weekly hours, dated exceptions and the booking policy knobs.
// It is built once per request from storage; all lookups afterwards are
// map accesses, never re-scans.
type BusinessSchedule struct {
	businessID    uuid.UUID
	loc           *time.Location
	grain         time.Duration
	minLeadTime   time.Duration
	maxAdvance    time.Duration
	maxConcurrent int

	weekly     map[time.Weekday][]Window
	exceptions map[string]Exception // keyed by YYYY-MM-DD in loc
}

type ScheduleParams struct {
	BusinessID    uuid.UUID
	Timezone      string
	Grain         time.Duration
	MinLeadTime   time.Duration
	MaxAdvance    time.Duration
	MaxConcurrent int
	Rules         []Rule
	Exceptions    []Exception
}

func NewBusinessSchedule(p ScheduleParams) (*BusinessSchedule, error) {
	loc, err := time.LoadLocation(p.Timezone)
	if err != nil {
		return nil, ErrInvalidTimezone
	}
	if p.Grain < time.Minute || p.Grain%time.Minute != 0 {
		return nil, ErrInvalidGrain
	}

	weekly := make(map[time.Weekday][]Window)
	for _, r := range p.Rules {
		if err := validateWindow(r.Window, p.Grain); err != nil {
			return nil, err
		}
		weekly[r.Weekday] = append(weekly[r.Weekday], r.Window)
	}
	for day, windows := range weekly {
		sort.Slice(windows, func(i, j int) bool { return windows[i].Open < windows[j].Open })
		for i := 1; i < len(windows); i++ {
			if windows[i].Open < windows[i-1].Close {
				return nil, ErrOverlappingRules
			}
		}
		weekly[day] = windows
	}

	exceptions := make(map[string]Exception, len(p.Exceptions))
	for _, ex := range p.Exceptions {
		if !ex.Closed {
			if err := validateWindow(ex.Window, p.Grain); err != nil {
				return nil, err
			}
		}
		key := dateKey(ex.Date.In(loc))
		if _, dup := exceptions[key]; dup {
			return nil, ErrDuplicateException
		}
		exceptions[key] = ex
	}

	return &BusinessSchedule{
		businessID:    p.BusinessID,
		loc:           loc,
		grain:         p.Grain,
		minLeadTime:   p.MinLeadTime,
		maxAdvance:    p.MaxAdvance,
		maxConcurrent: p.MaxConcurrent,
		weekly:        weekly,
		exceptions:    exceptions,
	}, nil
}

func validateWindow(w Window, grain time.Duration) error {
	if w.Open >= w.Close || w.Open < 0 || w.Close > 24*60 {
		return ErrInvalidWindow
	}
	grainMin := int(grain / time.Minute)
	if int(w.Open)%grainMin != 0 || int(w.Close)%grainMin != 0 {
		return ErrUnalignedWindow
	}
	return nil
}

func dateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

func (s *BusinessSchedule) BusinessID() uuid.UUID      { return s.businessID }
func (s *BusinessSchedule) Location() *time.Location   { return s.loc }
func (s *BusinessSchedule) Grain() time.Duration       { return s.grain }
func (s *BusinessSchedule) MinLeadTime() time.Duration { return s.minLeadTime }
func (s *BusinessSchedule) MaxAdvance() time.Duration  { return s.maxAdvance }
func (s *BusinessSchedule) MaxConcurrent() int         { return s.maxConcurrent }

// CapacityFor resolves the effective simultaneous-booking maximum for a
// service, falling back to the business-level default.
func (s *BusinessSchedule) CapacityFor(svc Service) int {
	if svc.MaxConcurrent() > 0 {
		return svc.MaxConcurrent()
	}
	return s.maxConcurrent
}

// startOfDay normalizes t to midnight of its calendar day in the business's
// timezone.
func (s *BusinessSchedule) startOfDay(t time.Time) time.Time {
	local := t.In(s.loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.loc)
}

func (s *BusinessSchedule) nextDay(day time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day()+1, 0, 0, 0, 0, s.loc)
}

// openWindows returns the open intervals for the calendar day containing t,
// with exceptions taking precedence over weekly rules. An empty result means
// the day is fully closed.
func (s *BusinessSchedule) openWindows(day time.Time) []Interval {
	day = s.startOfDay(day)

	if ex, ok := s.exceptions[dateKey(day)]; ok {
		if ex.Closed {
			return nil
		}
		return []Interval{{
			Start: ex.Window.Open.on(day, s.loc),
			End:   ex.Window.Close.on(day, s.loc),
		}}
	}

	windows := s.weekly[day.Weekday()]
	out := make([]Interval, 0, len(windows))
	for _, w := range windows {
		out = append(out, Interval{
			Start: w.Open.on(day, s.loc),
			End:   w.Close.on(day, s.loc),
		})
	}
	return out
}
