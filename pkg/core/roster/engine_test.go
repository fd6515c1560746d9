package roster

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhward/serviceroster/pkg/core/model"
)

// June 2026: the 1st is a Monday, the 4th a Thursday.
var juneMondays = []string{"2026-06-01", "2026-06-08", "2026-06-15", "2026-06-22", "2026-06-29"}
var juneThursdays = []string{"2026-06-04", "2026-06-11", "2026-06-18", "2026-06-25"}

func engineConfig() Config {
	return Config{
		Template: map[time.Weekday][]TemplateSlot{
			time.Monday: {
				{Time: "06:00", Type: model.TypeJunior, Key: "junior_0600", Mode: ModeSequential},
				{Time: "10:00", Type: model.TypeJunior, Key: "junior_1000", Mode: ModeSequential},
			},
			time.Thursday: {
				{Time: "10:00", Type: model.TypeJunior, Key: "junior_thu_1000", Mode: ModeSequential},
			},
		},
		CoreCategories: map[model.ParticipantType]model.CategoryKey{
			model.TypeJunior: "junior_0600",
		},
		MaxAssignments: 3,
	}
}

func junior(id, grade string, copyType model.CopyType) model.Participant {
	return model.Participant{
		ID:       id,
		Name:     "Junior " + id,
		Type:     model.TypeJunior,
		CopyType: copyType,
		Grade:    grade,
		IsActive: true,
	}
}

func slotOn(timeStr string, key model.CategoryKey) model.TimeSlot {
	return model.TimeSlot{Time: timeStr, Type: model.TypeJunior, CategoryKey: key}
}

// mondaySchedule builds the standard test month: every Monday gets a core
// 06:00 slot and a general 10:00 slot.
func mondaySchedule() []model.DaySchedule {
	var days []model.DaySchedule
	for _, date := range juneMondays {
		days = append(days, model.DaySchedule{
			Date: date,
			TimeSlots: []model.TimeSlot{
				slotOn("06:00", "junior_0600"),
				slotOn("10:00", "junior_1000"),
			},
		})
	}
	return days
}

func generateWith(t *testing.T, in Input, seed int64) *Outcome {
	t.Helper()
	in.Year = 2026
	in.Month = time.June
	in.Rand = rand.New(rand.NewSource(seed))
	out, err := Generate(in)
	require.NoError(t, err)
	return out
}

func TestGenerate_RejectsEmptySchedule(t *testing.T) {
	_, err := Generate(Input{
		Year: 2026, Month: time.June,
		Participants: []model.Participant{junior("j1", "3", model.CopyLarge)},
		Config:       engineConfig(),
	})
	assert.ErrorContains(t, err, "empty")
}

func TestGenerate_RejectsNoActiveParticipants(t *testing.T) {
	inactive := junior("j1", "3", model.CopyLarge)
	inactive.IsActive = false

	_, err := Generate(Input{
		Year: 2026, Month: time.June,
		Schedule:     mondaySchedule(),
		Participants: []model.Participant{inactive},
		Config:       engineConfig(),
	})
	assert.ErrorContains(t, err, "no active participants")
}

func TestGenerate_RejectsBadMaxAssignments(t *testing.T) {
	cfg := engineConfig()
	cfg.MaxAssignments = 0

	_, err := Generate(Input{
		Year: 2026, Month: time.June,
		Schedule:     mondaySchedule(),
		Participants: []model.Participant{junior("j1", "3", model.CopyLarge)},
		Config:       cfg,
	})
	assert.ErrorContains(t, err, "max assignments")
}

func TestGenerate_StructuralInvariants(t *testing.T) {
	participants := []model.Participant{
		junior("j1", "3", model.CopyLarge),
		junior("j2", "3", model.CopyLarge),
		junior("j3", "2", model.CopyLarge),
		junior("j4", "2", model.CopyLarge),
		junior("j5", "1", model.CopyLarge),
		junior("j6", "1", model.CopySmall),
		junior("j7", "2", model.CopySmall),
		junior("j8", "3", model.CopySmall),
	}

	out := generateWith(t, Input{
		Schedule:     mondaySchedule(),
		Participants: participants,
		Config:       engineConfig(),
	}, 42)

	assert.Empty(t, out.ValidationErrors)

	byID := make(map[string]model.Participant)
	for _, p := range participants {
		byID[p.ID] = p
	}

	for _, day := range out.Schedule {
		seen := make(map[string]bool)
		for _, slot := range day.TimeSlots {
			require.Contains(t, []int{0, 2}, len(slot.Assigned), "slot %s %s", day.Date, slot.Time)
			if len(slot.Assigned) == 0 {
				continue
			}

			smalls := 0
			for _, id := range slot.Assigned {
				p, ok := byID[id]
				require.True(t, ok, "unknown participant %s", id)
				assert.Equal(t, slot.Type, p.Type)
				assert.False(t, seen[id], "participant %s assigned twice on %s", id, day.Date)
				seen[id] = true
				if p.CopyType == model.CopySmall {
					smalls++
				}
			}
			assert.LessOrEqual(t, smalls, 1, "two small-copy participants in one slot")

			// A lone small-copy participant always sits at index 1.
			if smalls == 1 {
				assert.Equal(t, model.CopySmall, byID[slot.Assigned[1]].CopyType)
			}

			assert.Equal(t, len(slot.Assigned), len(slot.AssignedNames))
		}
	}

	for _, p := range participants {
		assert.LessOrEqual(t, out.Counts[p.ID][model.TotalKey], maxEqualizeTarget,
			"participant %s over the equalizer ceiling", p.ID)
	}
}

func TestGenerate_DeterministicWithSameSeed(t *testing.T) {
	participants := []model.Participant{
		junior("j1", "3", model.CopyLarge),
		junior("j2", "3", model.CopyLarge),
		junior("j3", "2", model.CopyLarge),
		junior("j4", "2", model.CopySmall),
		junior("j5", "1", model.CopyLarge),
		junior("j6", "1", model.CopyLarge),
	}

	first := generateWith(t, Input{
		Schedule:     mondaySchedule(),
		Participants: participants,
		Config:       engineConfig(),
	}, 7)
	second := generateWith(t, Input{
		Schedule:     mondaySchedule(),
		Participants: participants,
		Config:       engineConfig(),
	}, 7)

	assert.Equal(t, first.Schedule, second.Schedule)
	assert.Equal(t, first.Counts, second.Counts)
}

func TestGenerate_AbsenteesGetCoreSlotsFirst(t *testing.T) {
	participants := []model.Participant{
		junior("j1", "3", model.CopyLarge),
		junior("j2", "3", model.CopyLarge),
		junior("j3", "2", model.CopyLarge),
		junior("j4", "2", model.CopyLarge),
		junior("j5", "1", model.CopyLarge),
		junior("j6", "1", model.CopyLarge),
	}

	out := generateWith(t, Input{
		Schedule:     mondaySchedule(),
		Participants: participants,
		Absentees:    map[string]bool{"j5": true, "j6": true},
		Config:       engineConfig(),
	}, 11)

	// Both absentees pair up in core slots across two different weeks.
	assert.GreaterOrEqual(t, out.Counts["j5"]["junior_0600"], 2)
	assert.GreaterOrEqual(t, out.Counts["j6"]["junior_0600"], 2)

	// The first two Monday core slots carry the absentee pair.
	firstCore := out.Schedule[0].TimeSlots[0]
	assert.ElementsMatch(t, []string{"j5", "j6"}, firstCore.Assigned)
}

func TestGenerate_FixedAssignmentsSurvive(t *testing.T) {
	schedule := mondaySchedule()
	schedule[0].TimeSlots[0].Assigned = []string{"j1", "j2"}
	schedule[0].TimeSlots[0].AssignedNames = []string{"Junior j1", "Junior j2"}
	schedule[0].TimeSlots[0].Fixed = []bool{true, true}

	participants := []model.Participant{
		junior("j1", "3", model.CopyLarge),
		junior("j2", "3", model.CopyLarge),
		junior("j3", "2", model.CopyLarge),
		junior("j4", "2", model.CopyLarge),
	}

	out := generateWith(t, Input{
		Schedule:     schedule,
		Participants: participants,
		Config:       engineConfig(),
	}, 3)

	pinned := out.Schedule[0].TimeSlots[0]
	assert.Equal(t, []string{"j1", "j2"}, pinned.Assigned)
	assert.Equal(t, []bool{true, true}, pinned.Fixed)

	// The pinned pair counts toward j1's month totals.
	assert.GreaterOrEqual(t, out.Counts["j1"]["junior_0600"], 1)
}

func TestGenerate_EveryoneReachesMinimum(t *testing.T) {
	// No core slots in the month; plenty of general capacity spread over
	// five Mondays and four Thursdays.
	var schedule []model.DaySchedule
	for _, date := range juneMondays {
		schedule = append(schedule, model.DaySchedule{
			Date:      date,
			TimeSlots: []model.TimeSlot{slotOn("10:00", "junior_1000")},
		})
	}
	for _, date := range juneThursdays {
		schedule = append(schedule, model.DaySchedule{
			Date:      date,
			TimeSlots: []model.TimeSlot{slotOn("10:00", "junior_thu_1000")},
		})
	}

	participants := []model.Participant{
		junior("j1", "3", model.CopyLarge),
		junior("j2", "3", model.CopyLarge),
		junior("j3", "2", model.CopyLarge),
		junior("j4", "2", model.CopyLarge),
		junior("j5", "1", model.CopyLarge),
		junior("j6", "1", model.CopyLarge),
	}

	out := generateWith(t, Input{
		Schedule:     schedule,
		Participants: participants,
		Config:       engineConfig(),
	}, 21)

	for _, p := range participants {
		assert.GreaterOrEqual(t, out.Counts[p.ID][model.TotalKey], minAssignments,
			"participant %s below minimum", p.ID)
	}
}

func TestGenerate_InactiveParticipantsNeverAssigned(t *testing.T) {
	inactive := junior("j9", "3", model.CopyLarge)
	inactive.IsActive = false

	participants := []model.Participant{
		junior("j1", "3", model.CopyLarge),
		junior("j2", "3", model.CopyLarge),
		junior("j3", "2", model.CopyLarge),
		junior("j4", "2", model.CopyLarge),
		inactive,
	}

	out := generateWith(t, Input{
		Schedule:     mondaySchedule(),
		Participants: participants,
		Config:       engineConfig(),
	}, 99)

	assert.Equal(t, 0, out.Counts["j9"][model.TotalKey])
	for _, day := range out.Schedule {
		for _, slot := range day.TimeSlots {
			assert.NotContains(t, slot.Assigned, "j9")
		}
	}
}

func TestGenerate_PrevMonthFairnessShiftsSelection(t *testing.T) {
	// j1 carried a heavy previous month; under the sequential ranking it
	// should not lead the first general slot over an untouched peer.
	participants := []model.Participant{
		junior("j1", "3", model.CopyLarge),
		junior("j2", "3", model.CopyLarge),
		junior("j3", "3", model.CopyLarge),
		junior("j4", "3", model.CopyLarge),
	}
	prev := map[string]map[model.CategoryKey]int{
		"j1": {"junior_1000": 3, "junior_0600": 2},
	}

	var schedule []model.DaySchedule
	for _, date := range juneMondays[:2] {
		schedule = append(schedule, model.DaySchedule{
			Date:      date,
			TimeSlots: []model.TimeSlot{slotOn("10:00", "junior_1000")},
		})
	}

	out := generateWith(t, Input{
		Schedule:     schedule,
		Participants: participants,
		PrevCounts:   prev,
		Config:       engineConfig(),
	}, 5)

	firstSlot := out.Schedule[0].TimeSlots[0]
	require.Len(t, firstSlot.Assigned, 2)
	assert.NotContains(t, firstSlot.Assigned, "j1")
}

func TestGenerate_DoesNotMutateInputSchedule(t *testing.T) {
	schedule := mondaySchedule()
	participants := []model.Participant{
		junior("j1", "3", model.CopyLarge),
		junior("j2", "3", model.CopyLarge),
	}

	generateWith(t, Input{
		Schedule:     schedule,
		Participants: participants,
		Config:       engineConfig(),
	}, 1)

	for _, day := range schedule {
		for _, slot := range day.TimeSlots {
			assert.Empty(t, slot.Assigned, "input schedule was mutated")
		}
	}
}

func TestGenerate_SummaryListsEveryParticipant(t *testing.T) {
	participants := []model.Participant{
		junior("j1", "3", model.CopyLarge),
		junior("j2", "3", model.CopyLarge),
		junior("j3", "2", model.CopyLarge),
		junior("j4", "2", model.CopyLarge),
	}

	out := generateWith(t, Input{
		Schedule:     mondaySchedule(),
		Participants: participants,
		Config:       engineConfig(),
	}, 8)

	for _, p := range participants {
		assert.Contains(t, out.Summary, p.Name)
	}
	assert.Contains(t, out.Summary, "Distribution:")
	assert.Contains(t, out.Summary, "junior assignment summary:")
}

func TestGenerate_LoneAbsenteePairsWithRegulars(t *testing.T) {
	// One absentee, three core slots in distinct weeks: the absentee ends
	// with exactly two core assignments, partnered by regulars.
	var schedule []model.DaySchedule
	for _, date := range juneMondays[:3] {
		schedule = append(schedule, model.DaySchedule{
			Date: date,
			TimeSlots: []model.TimeSlot{
				slotOn("06:00", "junior_0600"),
				slotOn("10:00", "junior_1000"),
			},
		})
	}

	participants := []model.Participant{
		junior("j1", "3", model.CopyLarge),
		junior("j2", "3", model.CopyLarge),
		junior("j3", "2", model.CopyLarge),
		junior("j4", "2", model.CopyLarge),
		junior("j5", "1", model.CopyLarge),
	}

	out := generateWith(t, Input{
		Schedule:     schedule,
		Participants: participants,
		Absentees:    map[string]bool{"j5": true},
		Config:       engineConfig(),
	}, 17)

	assert.Equal(t, 2, out.Counts["j5"]["junior_0600"])
}

func TestGenerate_BothTypesFilledSameDay(t *testing.T) {
	cfg := engineConfig()
	cfg.CoreCategories[model.TypeSenior] = "senior_1900"

	schedule := []model.DaySchedule{
		{Date: "2026-06-01", TimeSlots: []model.TimeSlot{
			slotOn("06:00", "junior_0600"),
			{Time: "19:00", Type: model.TypeSenior, CategoryKey: "senior_1900"},
		}},
	}

	senior := func(id string) model.Participant {
		return model.Participant{
			ID: id, Name: "Senior " + id, Type: model.TypeSenior,
			CopyType: model.CopyLarge, Grade: "3", IsActive: true,
		}
	}
	participants := []model.Participant{
		junior("j1", "3", model.CopyLarge),
		junior("j2", "3", model.CopyLarge),
		senior("s1"),
		senior("s2"),
	}

	out := generateWith(t, Input{
		Schedule:     schedule,
		Participants: participants,
		Config:       cfg,
	}, 4)

	require.Len(t, out.Schedule, 1)
	for _, slot := range out.Schedule[0].TimeSlots {
		require.Len(t, slot.Assigned, 2, "slot %s unfilled", slot.Time)
	}
	for _, p := range participants {
		assert.GreaterOrEqual(t, out.Counts[p.ID][model.TotalKey], 1, p.ID)
	}
	assert.Empty(t, out.ValidationErrors)
}

func TestGenerate_SlotStaysEmptyOverIllegalPair(t *testing.T) {
	// The only two candidates are both small-copy: the slot must stay
	// empty rather than pair them.
	schedule := []model.DaySchedule{
		{Date: "2026-06-01", TimeSlots: []model.TimeSlot{
			slotOn("10:00", "junior_1000"),
		}},
	}
	participants := []model.Participant{
		junior("j1", "3", model.CopySmall),
		junior("j2", "3", model.CopySmall),
	}

	out := generateWith(t, Input{
		Schedule:     schedule,
		Participants: participants,
		Config:       engineConfig(),
	}, 6)

	assert.Empty(t, out.Schedule[0].TimeSlots[0].Assigned)
	assert.Empty(t, out.ValidationErrors)
}

func TestGenerate_CountRowsExcludeTotalsAndZeroes(t *testing.T) {
	participants := []model.Participant{
		junior("j1", "3", model.CopyLarge),
		junior("j2", "3", model.CopyLarge),
		junior("j3", "2", model.CopyLarge),
		junior("j4", "2", model.CopyLarge),
	}

	out := generateWith(t, Input{
		Schedule:     mondaySchedule(),
		Participants: participants,
		Config:       engineConfig(),
	}, 13)

	for _, row := range out.CountRows {
		assert.NotEqual(t, model.TotalKey, row.CategoryKey)
		assert.Greater(t, row.Count, 0)
	}
}
