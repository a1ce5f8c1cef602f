//go:build unit

package schedule_test

import (
	"testing"
	"time"

	"slotbook/internal/domain/schedule"
	"slotbook/tests/common/builder"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSlots(t *testing.T) {
	// Two days before the target Tuesday; far from lead-time and advance
	// cutoffs unless a subtest moves it.
	now := time.Date(2030, 6, 2, 12, 0, 0, 0, time.UTC)
	dayRange := func() (time.Time, time.Time) {
		return tuesday, tuesday.AddDate(0, 0, 1)
	}

	t.Run("full open day yields one slot per grain step", func(t *testing.T) {
		sched, err := builder.NewScheduleBuilder().BuildDomain()
		require.NoError(t, err)
		svc, err := builder.NewServiceBuilder().BuildDomain()
		require.NoError(t, err)

		from, to := dayRange()
		slots := sched.GenerateSlots(svc, from, to, nil, now, schedule.SlotOptions{})

		// 09:00 through 16:30 inclusive.
		require.Len(t, slots, 16)
		assert.Equal(t, at(tuesday, 9, 0), slots[0].Start)
		assert.Equal(t, at(tuesday, 9, 30), slots[0].End)
		assert.Equal(t, at(tuesday, 16, 30), slots[15].Start)
		for _, s := range slots {
			assert.True(t, s.Available)
			assert.Equal(t, 2, s.RemainingCapacity)
		}
	})

	t.Run("trailing buffer shortens the end of the day", func(t *testing.T) {
		sched, err := builder.NewScheduleBuilder().BuildDomain()
		require.NoError(t, err)
		svc, err := builder.NewServiceBuilder().WithBuffers(0, 30*time.Minute).BuildDomain()
		require.NoError(t, err)

		from, to := dayRange()
		slots := sched.GenerateSlots(svc, from, to, nil, now, schedule.SlotOptions{})

		require.Len(t, slots, 15)
		assert.Equal(t, at(tuesday, 16, 0), slots[14].Start)
	})

	t.Run("lead time hides the earliest slots", func(t *testing.T) {
		sched, err := builder.NewScheduleBuilder().BuildDomain()
		require.NoError(t, err)
		svc, err := builder.NewServiceBuilder().BuildDomain()
		require.NoError(t, err)

		sameMorning := at(tuesday, 8, 50)
		from, to := dayRange()
		slots := sched.GenerateSlots(svc, from, to, nil, sameMorning, schedule.SlotOptions{})

		// Earliest bookable start is 09:50, so 09:00 and 09:30 are gone.
		require.Len(t, slots, 14)
		assert.Equal(t, at(tuesday, 10, 0), slots[0].Start)
	})

	t.Run("advance window cuts the range off", func(t *testing.T) {
		sched, err := builder.NewScheduleBuilder().BuildDomain()
		require.NoError(t, err)
		svc, err := builder.NewServiceBuilder().BuildDomain()
		require.NoError(t, err)

		farPast := time.Date(2030, 5, 1, 0, 0, 0, 0, time.UTC)
		from, to := dayRange()

		slots := sched.GenerateSlots(svc, from, to, nil, farPast, schedule.SlotOptions{})
		assert.Empty(t, slots)

		slots = sched.GenerateSlots(svc, from, to, nil, farPast, schedule.SlotOptions{BypassAdvanceWindow: true})
		assert.Len(t, slots, 16)
	})

	t.Run("mid-day horizon keeps earlier windows despite rule declaration order", func(t *testing.T) {
		// The afternoon rule is declared before the morning one; windows are
		// sorted at construction, so the horizon cutoff inside the morning
		// window must not drop the morning slots.
		sched, err := builder.NewScheduleBuilder().
			WithRules(
				schedule.Rule{Weekday: time.Tuesday, Window: schedule.Window{Open: schedule.NewTimeOfDay(13, 0), Close: schedule.NewTimeOfDay(17, 0)}},
				schedule.Rule{Weekday: time.Tuesday, Window: schedule.Window{Open: schedule.NewTimeOfDay(9, 0), Close: schedule.NewTimeOfDay(12, 0)}},
			).
			BuildDomain()
		require.NoError(t, err)
		svc, err := builder.NewServiceBuilder().BuildDomain()
		require.NoError(t, err)

		// Horizon (now + 30d) lands at 10:00 on the Tuesday.
		cutoffNow := at(tuesday, 10, 0).AddDate(0, 0, -30)
		from, to := dayRange()
		slots := sched.GenerateSlots(svc, from, to, nil, cutoffNow, schedule.SlotOptions{})

		require.Len(t, slots, 3)
		assert.Equal(t, at(tuesday, 9, 0), slots[0].Start)
		assert.Equal(t, at(tuesday, 9, 30), slots[1].Start)
		assert.Equal(t, at(tuesday, 10, 0), slots[2].Start)
	})

	t.Run("closed exception yields no slots", func(t *testing.T) {
		sched, err := builder.NewScheduleBuilder().WithHolidayOn(tuesday).BuildDomain()
		require.NoError(t, err)
		svc, err := builder.NewServiceBuilder().BuildDomain()
		require.NoError(t, err)

		from, to := dayRange()
		slots := sched.GenerateSlots(svc, from, to, nil, now, schedule.SlotOptions{})
		assert.Empty(t, slots)
	})

	t.Run("segmented hours skip the break", func(t *testing.T) {
		sched, err := builder.NewScheduleBuilder().
			WithBreak(time.Tuesday, schedule.NewTimeOfDay(12, 0), schedule.NewTimeOfDay(13, 0)).
			BuildDomain()
		require.NoError(t, err)
		svc, err := builder.NewServiceBuilder().BuildDomain()
		require.NoError(t, err)

		from, to := dayRange()
		slots := sched.GenerateSlots(svc, from, to, nil, now, schedule.SlotOptions{})

		// 6 slots before the break, 8 after.
		require.Len(t, slots, 14)
		assert.Equal(t, at(tuesday, 11, 30), slots[5].Start)
		assert.Equal(t, at(tuesday, 13, 0), slots[6].Start)
	})

	t.Run("occupants at the limit mark the slot full", func(t *testing.T) {
		sched, err := builder.NewScheduleBuilder().BuildDomain()
		require.NoError(t, err)
		svc, err := builder.NewServiceBuilder().BuildDomain()
		require.NoError(t, err)

		busy := schedule.Interval{Start: at(tuesday, 10, 0), End: at(tuesday, 10, 30)}
		occupants := []schedule.Occupant{
			{ID: uuid.New(), Interval: busy},
			{ID: uuid.New(), Interval: busy},
		}

		from, to := dayRange()
		slots := sched.GenerateSlots(svc, from, to, occupants, now, schedule.SlotOptions{})
		require.Len(t, slots, 16)

		full := slots[2] // 10:00
		assert.Equal(t, at(tuesday, 10, 0), full.Start)
		assert.False(t, full.Available)
		assert.Equal(t, 0, full.RemainingCapacity)
		assert.Equal(t, schedule.SlotReasonFull, full.Reason)

		next := slots[3] // 10:30
		assert.True(t, next.Available)
		assert.Equal(t, 2, next.RemainingCapacity)
	})

	t.Run("expired hold does not reduce capacity", func(t *testing.T) {
		sched, err := builder.NewScheduleBuilder().BuildDomain()
		require.NoError(t, err)
		svc, err := builder.NewServiceBuilder().BuildDomain()
		require.NoError(t, err)

		expired := now.Add(-time.Minute)
		occupants := []schedule.Occupant{
			{
				ID:        uuid.New(),
				Interval:  schedule.Interval{Start: at(tuesday, 10, 0), End: at(tuesday, 10, 30)},
				ExpiresAt: &expired,
			},
		}

		from, to := dayRange()
		slots := sched.GenerateSlots(svc, from, to, occupants, now, schedule.SlotOptions{})
		require.Len(t, slots, 16)
		assert.Equal(t, 2, slots[2].RemainingCapacity)
	})
}
