package roster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhward/serviceroster/pkg/core/model"
)

func TestBuildSummary_RendersTypeSectionsAndRows(t *testing.T) {
	participants := []model.Participant{
		{ID: "j1", Name: "Alice", Type: model.TypeJunior, Grade: "3", IsActive: true},
		{ID: "j2", Name: "Bob", Type: model.TypeJunior, Grade: "2", IsActive: true},
		{ID: "s1", Name: "Carol", Type: model.TypeSenior, Grade: "3", IsActive: true},
	}
	keys := []model.CategoryKey{"junior_0600", "junior_1000", "senior_1900"}
	ledger := NewLedger(participants, keys, nil)
	cfg := &Config{
		CoreCategories: map[model.ParticipantType]model.CategoryKey{
			model.TypeJunior: "junior_0600",
			model.TypeSenior: "senior_1900",
		},
	}

	ledger.Record("j1", "junior_0600", "2026-06-01", 0)
	ledger.Record("j1", "junior_1000", "2026-06-08", 1)
	ledger.Record("j2", "junior_1000", "2026-06-01", 0)
	ledger.Record("s1", "senior_1900", "2026-06-01", 0)

	summary, rows := buildSummary(participants, ledger, cfg)

	assert.Contains(t, summary, "junior assignment summary:")
	assert.Contains(t, summary, "senior assignment summary:")
	assert.Contains(t, summary, "Alice (ID: j1): 2 total (junior_0600: 1, junior_1000: 1)")
	assert.Contains(t, summary, "Bob (ID: j2): 1 total (junior_1000: 1)")
	assert.Contains(t, summary, "Distribution:")
	assert.Contains(t, summary, "Core category junior_0600:")

	// Persisted rows carry only non-zero category counts, never totals.
	require.Len(t, rows, 4)
	for _, row := range rows {
		assert.NotEqual(t, model.TotalKey, row.CategoryKey)
		assert.Greater(t, row.Count, 0)
	}
}

func TestCoreStats(t *testing.T) {
	avg, minC, maxC, stddev := coreStats([]int{1, 2, 3})

	assert.InDelta(t, 2.0, avg, 0.001)
	assert.Equal(t, 1, minC)
	assert.Equal(t, 3, maxC)
	assert.InDelta(t, 0.8165, stddev, 0.001)
}

func TestCoreStats_Uniform(t *testing.T) {
	avg, minC, maxC, stddev := coreStats([]int{2, 2, 2, 2})

	assert.InDelta(t, 2.0, avg, 0.001)
	assert.Equal(t, 2, minC)
	assert.Equal(t, 2, maxC)
	assert.InDelta(t, 0.0, stddev, 0.001)
}
