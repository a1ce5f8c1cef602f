//go:build unit

package schedule_test

import (
	"testing"
	"time"

	"slotbook/internal/domain/schedule"
	"slotbook/tests/common/builder"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scheduleCase struct {
	name   string
	mutate func(*builder.ScheduleBuilder)
	errIs  error
}

func TestNewBusinessSchedule(t *testing.T) {
	t.Run("basic success case", func(t *testing.T) {
		sched, err := builder.NewScheduleBuilder().BuildDomain()
		require.NoError(t, err)
		require.NotNil(t, sched)

		assert.Equal(t, 30*time.Minute, sched.Grain())
		assert.Equal(t, time.Hour, sched.MinLeadTime())
		assert.Equal(t, 30*24*time.Hour, sched.MaxAdvance())
		assert.Equal(t, 2, sched.MaxConcurrent())
		assert.Equal(t, time.UTC, sched.Location())
	})

	t.Run("validation", func(t *testing.T) {
		runScheduleCases(t, []scheduleCase{
			{
				name:   "unknown timezone",
				mutate: func(b *builder.ScheduleBuilder) { b.WithTimezone("Mars/Olympus") },
				errIs:  schedule.ErrInvalidTimezone,
			},
			{
				name:   "zero grain",
				mutate: func(b *builder.ScheduleBuilder) { b.WithGrain(0) },
				errIs:  schedule.ErrInvalidGrain,
			},
			{
				name:   "sub-minute grain",
				mutate: func(b *builder.ScheduleBuilder) { b.WithGrain(30 * time.Second) },
				errIs:  schedule.ErrInvalidGrain,
			},
			{
				name: "open after close",
				mutate: func(b *builder.ScheduleBuilder) {
					b.WithRules(schedule.Rule{
						Weekday: time.Monday,
						Window:  schedule.Window{Open: schedule.NewTimeOfDay(17, 0), Close: schedule.NewTimeOfDay(9, 0)},
					})
				},
				errIs: schedule.ErrInvalidWindow,
			},
			{
				name: "window not grain aligned",
				mutate: func(b *builder.ScheduleBuilder) {
					b.WithRules(schedule.Rule{
						Weekday: time.Monday,
						Window:  schedule.Window{Open: schedule.NewTimeOfDay(9, 15), Close: schedule.NewTimeOfDay(17, 0)},
					})
				},
				errIs: schedule.ErrUnalignedWindow,
			},
			{
				name: "overlapping rules on one weekday",
				mutate: func(b *builder.ScheduleBuilder) {
					b.WithRules(
						schedule.Rule{Weekday: time.Monday, Window: schedule.Window{Open: schedule.NewTimeOfDay(9, 0), Close: schedule.NewTimeOfDay(13, 0)}},
						schedule.Rule{Weekday: time.Monday, Window: schedule.Window{Open: schedule.NewTimeOfDay(12, 0), Close: schedule.NewTimeOfDay(17, 0)}},
					)
				},
				errIs: schedule.ErrOverlappingRules,
			},
			{
				name: "touching rules on one weekday are allowed",
				mutate: func(b *builder.ScheduleBuilder) {
					b.WithRules(
						schedule.Rule{Weekday: time.Monday, Window: schedule.Window{Open: schedule.NewTimeOfDay(9, 0), Close: schedule.NewTimeOfDay(12, 0)}},
						schedule.Rule{Weekday: time.Monday, Window: schedule.Window{Open: schedule.NewTimeOfDay(12, 0), Close: schedule.NewTimeOfDay(17, 0)}},
					)
				},
			},
			{
				name: "duplicate exception dates",
				mutate: func(b *builder.ScheduleBuilder) {
					date := time.Date(2030, 6, 4, 0, 0, 0, 0, time.UTC)
					b.WithExceptions(
						schedule.Exception{Date: date, Closed: true},
						schedule.Exception{Date: date, Closed: true},
					)
				},
				errIs: schedule.ErrDuplicateException,
			},
			{
				name: "open exception with invalid window",
				mutate: func(b *builder.ScheduleBuilder) {
					b.WithExceptions(schedule.Exception{
						Date:   time.Date(2030, 6, 4, 0, 0, 0, 0, time.UTC),
						Window: schedule.Window{Open: schedule.NewTimeOfDay(14, 0), Close: schedule.NewTimeOfDay(10, 0)},
					})
				},
				errIs: schedule.ErrInvalidWindow,
			},
		})
	})

	t.Run("capacity falls back to the business default", func(t *testing.T) {
		sched, err := builder.NewScheduleBuilder().WithMaxConcurrent(3).BuildDomain()
		require.NoError(t, err)

		inherit, err := builder.NewServiceBuilder().WithMaxConcurrent(0).BuildDomain()
		require.NoError(t, err)
		override, err := builder.NewServiceBuilder().WithMaxConcurrent(1).BuildDomain()
		require.NoError(t, err)

		assert.Equal(t, 3, sched.CapacityFor(inherit))
		assert.Equal(t, 1, sched.CapacityFor(override))
	})
}

func TestNewService(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*builder.ServiceBuilder)
		errIs  error
	}{
		{
			name:   "defaults are valid",
			mutate: func(b *builder.ServiceBuilder) {},
		},
		{
			name:   "empty name",
			mutate: func(b *builder.ServiceBuilder) { b.WithName("") },
			errIs:  schedule.ErrServiceNameEmpty,
		},
		{
			name:   "zero duration",
			mutate: func(b *builder.ServiceBuilder) { b.WithDuration(0) },
			errIs:  schedule.ErrInvalidDuration,
		},
		{
			name:   "duration not a grain multiple",
			mutate: func(b *builder.ServiceBuilder) { b.WithDuration(45 * time.Minute) },
			errIs:  schedule.ErrInvalidDuration,
		},
		{
			name:   "negative buffer",
			mutate: func(b *builder.ServiceBuilder) { b.WithBuffers(-30*time.Minute, 0) },
			errIs:  schedule.ErrInvalidBuffer,
		},
		{
			name:   "buffer not a grain multiple",
			mutate: func(b *builder.ServiceBuilder) { b.WithBuffers(0, 10*time.Minute) },
			errIs:  schedule.ErrInvalidBuffer,
		},
		{
			name:   "negative max concurrent",
			mutate: func(b *builder.ServiceBuilder) { b.WithMaxConcurrent(-1) },
			errIs:  schedule.ErrInvalidMaxCount,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			svc, err := builder.NewServiceBuilder().With(c.mutate).BuildDomain()
			if c.errIs == nil {
				require.NoError(t, err)
				assert.NotEqual(t, "", svc.Name())
			} else {
				require.ErrorIs(t, err, c.errIs)
			}
		})
	}
}

func TestServiceExpand(t *testing.T) {
	svc, err := builder.NewServiceBuilder().WithBuffers(30*time.Minute, time.Hour).BuildDomain()
	require.NoError(t, err)

	start := time.Date(2030, 6, 4, 10, 0, 0, 0, time.UTC)
	expanded := svc.Expand(schedule.Interval{Start: start, End: start.Add(30 * time.Minute)})

	assert.Equal(t, start.Add(-30*time.Minute), expanded.Start)
	assert.Equal(t, start.Add(90*time.Minute), expanded.End)
}

func runScheduleCases(t *testing.T, cases []scheduleCase) {
	t.Helper()
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			actual, err := builder.NewScheduleBuilder().With(c.mutate).BuildDomain()

			if c.errIs == nil {
				require.NoError(t, err)
				require.NotNil(t, actual)
			} else {
				require.Nil(t, actual)
				require.ErrorIs(t, err, c.errIs)
			}
		})
	}
}
