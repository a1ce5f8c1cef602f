//go:build unit || e2e

package builder

import (
	"time"

	"slotbook/internal/domain/schedule"

	"github.com/google/uuid"
)

// ScheduleBuilder assembles a BusinessSchedule with sensible weekday hours
// so tests only state what they care about.
type ScheduleBuilder struct {
	BusinessID    uuid.UUID
	Timezone      string
	Grain         time.Duration
	MinLeadTime   time.Duration
	MaxAdvance    time.Duration
	MaxConcurrent int
	Rules         []schedule.Rule
	Exceptions    []schedule.Exception
}

func NewScheduleBuilder() *ScheduleBuilder {
	b := &ScheduleBuilder{
		BusinessID:    uuid.New(),
		Timezone:      "UTC",
		Grain:         30 * time.Minute,
		MinLeadTime:   time.Hour,
		MaxAdvance:    30 * 24 * time.Hour,
		MaxConcurrent: 2,
	}
	for wd := time.Monday; wd <= time.Friday; wd++ {
		b.Rules = append(b.Rules, schedule.Rule{
			Weekday: wd,
			Window:  schedule.Window{Open: schedule.NewTimeOfDay(9, 0), Close: schedule.NewTimeOfDay(17, 0)},
		})
	}
	return b
}

func (b *ScheduleBuilder) With(mutate func(*ScheduleBuilder)) *ScheduleBuilder {
	mutate(b)
	return b
}

func (b *ScheduleBuilder) BuildDomain() (*schedule.BusinessSchedule, error) {
	return schedule.NewBusinessSchedule(schedule.ScheduleParams{
		BusinessID:    b.BusinessID,
		Timezone:      b.Timezone,
		Grain:         b.Grain,
		MinLeadTime:   b.MinLeadTime,
		MaxAdvance:    b.MaxAdvance,
		MaxConcurrent: b.MaxConcurrent,
		Rules:         b.Rules,
		Exceptions:    b.Exceptions,
	})
}

// Fluent builder methods
func (b *ScheduleBuilder) WithBusinessID(id uuid.UUID) *ScheduleBuilder {
	b.BusinessID = id
	return b
}

func (b *ScheduleBuilder) WithTimezone(tz string) *ScheduleBuilder {
	b.Timezone = tz
	return b
}

func (b *ScheduleBuilder) WithGrain(grain time.Duration) *ScheduleBuilder {
	b.Grain = grain
	return b
}

func (b *ScheduleBuilder) WithMinLeadTime(d time.Duration) *ScheduleBuilder {
	b.MinLeadTime = d
	return b
}

func (b *ScheduleBuilder) WithMaxAdvance(d time.Duration) *ScheduleBuilder {
	b.MaxAdvance = d
	return b
}

func (b *ScheduleBuilder) WithMaxConcurrent(n int) *ScheduleBuilder {
	b.MaxConcurrent = n
	return b
}

func (b *ScheduleBuilder) WithRules(rules ...schedule.Rule) *ScheduleBuilder {
	b.Rules = rules
	return b
}

func (b *ScheduleBuilder) WithExceptions(exceptions ...schedule.Exception) *ScheduleBuilder {
	b.Exceptions = exceptions
	return b
}

// WithBreak replaces the hours of one weekday with two segments around a
// midday break.
func (b *ScheduleBuilder) WithBreak(weekday time.Weekday, breakStart, breakEnd schedule.TimeOfDay) *ScheduleBuilder {
	kept := b.Rules[:0]
	for _, r := range b.Rules {
		if r.Weekday != weekday {
			kept = append(kept, r)
		}
	}
	b.Rules = append(kept,
		schedule.Rule{Weekday: weekday, Window: schedule.Window{Open: schedule.NewTimeOfDay(9, 0), Close: breakStart}},
		schedule.Rule{Weekday: weekday, Window: schedule.Window{Open: breakEnd, Close: schedule.NewTimeOfDay(17, 0)}},
	)
	return b
}

func (b *ScheduleBuilder) WithHolidayOn(date time.Time) *ScheduleBuilder {
	b.Exceptions = append(b.Exceptions, schedule.Exception{Date: date, Closed: true})
	return b
}

// ServiceBuilder assembles a bookable service matched to the default
// schedule grain.
type ServiceBuilder struct {
	ID            uuid.UUID
	Name          string
	Duration      time.Duration
	BufferBefore  time.Duration
	BufferAfter   time.Duration
	MaxConcurrent int
	Grain         time.Duration
}

func NewServiceBuilder() *ServiceBuilder {
	return &ServiceBuilder{
		ID:       uuid.New(),
		Name:     "Consultation",
		Duration: 30 * time.Minute,
		Grain:    30 * time.Minute,
	}
}

func (b *ServiceBuilder) With(mutate func(*ServiceBuilder)) *ServiceBuilder {
	mutate(b)
	return b
}

func (b *ServiceBuilder) BuildDomain() (schedule.Service, error) {
	return schedule.NewService(b.ID, b.Name, b.Duration, b.BufferBefore, b.BufferAfter, b.MaxConcurrent, b.Grain)
}

func (b *ServiceBuilder) WithID(id uuid.UUID) *ServiceBuilder {
	b.ID = id
	return b
}

func (b *ServiceBuilder) WithName(name string) *ServiceBuilder {
	b.Name = name
	return b
}

func (b *ServiceBuilder) WithDuration(d time.Duration) *ServiceBuilder {
	b.Duration = d
	return b
}

func (b *ServiceBuilder) WithBuffers(before, after time.Duration) *ServiceBuilder {
	b.BufferBefore = before
	b.BufferAfter = after
	return b
}

func (b *ServiceBuilder) WithMaxConcurrent(n int) *ServiceBuilder {
	b.MaxConcurrent = n
	return b
}

func (b *ServiceBuilder) WithGrain(grain time.Duration) *ServiceBuilder {
	b.Grain = grain
	return b
}
