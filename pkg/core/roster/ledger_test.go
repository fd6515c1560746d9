package roster

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/danielhward/serviceroster/pkg/core/model"
)

func ledgerParticipants() []model.Participant {
	return []model.Participant{
		{ID: "p1", Name: "One", Type: model.TypeJunior, IsActive: true},
		{ID: "p2", Name: "Two", Type: model.TypeJunior, IsActive: true},
		{ID: "p3", Name: "Three", Type: model.TypeJunior, IsActive: false},
	}
}

func TestNewLedger_SeedsZeroCounts(t *testing.T) {
	keys := []model.CategoryKey{"junior_0600", "junior_1000"}
	l := NewLedger(ledgerParticipants(), keys, nil)

	for _, id := range []string{"p1", "p2", "p3"} {
		assert.Equal(t, 0, l.Count(id, "junior_0600"))
		assert.Equal(t, 0, l.Count(id, "junior_1000"))
		assert.Equal(t, 0, l.Total(id))
	}
}

func TestNewLedger_PrevTotals(t *testing.T) {
	prev := map[string]map[model.CategoryKey]int{
		"p1": {"junior_0600": 2, "junior_1000": 1},
	}
	l := NewLedger(ledgerParticipants(), []model.CategoryKey{"junior_0600"}, prev)

	assert.Equal(t, 3, l.PrevTotal("p1"))
	assert.Equal(t, 2, l.PrevCount("p1", "junior_0600"))
	assert.Equal(t, 0, l.PrevTotal("p2"))
}

func TestLedger_RecordUpdatesOccupancy(t *testing.T) {
	l := NewLedger(ledgerParticipants(), []model.CategoryKey{"junior_0600"}, nil)

	l.Record("p1", "junior_0600", "2026-06-01", 0)

	assert.Equal(t, 1, l.Count("p1", "junior_0600"))
	assert.Equal(t, 1, l.Total("p1"))
	assert.True(t, l.AssignedOn("2026-06-01", "p1"))
	assert.True(t, l.UsedWeek("p1", 0))
	assert.False(t, l.UsedWeek("p1", 1))
	assert.False(t, l.UsedCoreWeek("p1", 0))
}

func TestLedger_CoreWeeksAreSeparateUntilMerged(t *testing.T) {
	l := NewLedger(ledgerParticipants(), []model.CategoryKey{"junior_0600"}, nil)

	l.RecordCore("p1", "junior_0600", "2026-06-01", 0)

	assert.True(t, l.UsedCoreWeek("p1", 0))
	assert.False(t, l.UsedWeek("p1", 0))
	assert.Equal(t, 1, l.Total("p1"))

	l.MergeCoreWeeks()
	assert.True(t, l.UsedWeek("p1", 0))
}

func TestLedger_SeedOccupancyCountsPinnedAssignments(t *testing.T) {
	l := NewLedger(ledgerParticipants(), []model.CategoryKey{"junior_0600"}, nil)

	l.SeedOccupancy("p2", "junior_0600", "2026-06-08", 1)

	assert.Equal(t, 1, l.Total("p2"))
	assert.True(t, l.AssignedOn("2026-06-08", "p2"))
	assert.True(t, l.UsedWeek("p2", 1))
}
