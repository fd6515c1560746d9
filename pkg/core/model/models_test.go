package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParticipantType_IsValid(t *testing.T) {
	assert.True(t, TypeJunior.IsValid())
	assert.True(t, TypeSenior.IsValid())
	assert.False(t, ParticipantType("intermediate").IsValid())
	assert.False(t, ParticipantType("").IsValid())
}

func TestTimeSlot_IsEmpty(t *testing.T) {
	slot := TimeSlot{Time: "06:00", Type: TypeJunior}
	assert.True(t, slot.IsEmpty())

	slot.Assigned = []string{"p1", "p2"}
	assert.False(t, slot.IsEmpty())
}

func TestTimeSlot_HasFixed(t *testing.T) {
	slot := TimeSlot{Assigned: []string{"p1", "p2"}, Fixed: []bool{false, false}}
	assert.False(t, slot.HasFixed())

	slot.Fixed[1] = true
	assert.True(t, slot.HasFixed())

	assert.False(t, (&TimeSlot{}).HasFixed())
}

func TestDaySchedule_Weekday(t *testing.T) {
	day := DaySchedule{Date: "2026-06-01"}
	wd, err := day.Weekday()
	require.NoError(t, err)
	assert.Equal(t, time.Monday, wd)

	bad := DaySchedule{Date: "June 1st"}
	_, err = bad.Weekday()
	assert.Error(t, err)
}

func TestWeekOfMonth_Boundaries(t *testing.T) {
	cases := []struct {
		date string
		want int
	}{
		{"2026-06-01", 0},
		{"2026-06-07", 0},
		{"2026-06-08", 1},
		{"2026-06-14", 1},
		{"2026-06-28", 3},
		{"2026-06-30", 4},
	}
	for _, tc := range cases {
		parsed, err := time.Parse("2006-01-02", tc.date)
		require.NoError(t, err)
		assert.Equal(t, tc.want, WeekOfMonth(parsed), tc.date)
	}
}
