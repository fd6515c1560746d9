package roster

import (
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/danielhward/serviceroster/pkg/core/model"
)

// SelectionMode controls how Phase 3 picks candidates for a slot category.
type SelectionMode string

const (
	ModeSequential SelectionMode = "sequential"
	ModeRandom     SelectionMode = "random"
)

// TemplateSlot describes one recurring slot role from the month template.
type TemplateSlot struct {
	Time string
	Type model.ParticipantType
	Key  model.CategoryKey
	Mode SelectionMode
}

// TemplateOverride injects extra slots on matching dates (e.g. a
// vacation-period session). AppliesTo is evaluated against "2006-01-02"
// date strings.
type TemplateOverride struct {
	AppliesTo func(date string) bool
	Slots     []TemplateSlot
}

// Config carries the category table and caps the engine works against.
// Built once from application configuration and validated there.
type Config struct {
	// Template maps weekdays to their declared recurring slots. Used to
	// derive category keys for slots that arrive without one.
	Template map[time.Weekday][]TemplateSlot

	// CoreCategories names the highest-priority category per participant
	// type, subject to absentee-priority filling.
	CoreCategories map[model.ParticipantType]model.CategoryKey

	// ExtraCategoryKeys are seeded into the ledger even when absent from
	// the month's schedule (fallback and vacation keys).
	ExtraCategoryKeys []model.CategoryKey

	Overrides []TemplateOverride

	// MaxAssignments is the per-participant total cap enforced in the
	// strict phases (1-3). The equalizer later relaxes past it level by
	// level up to maxEqualizeTarget; both bounds are intentional.
	MaxAssignments int
}

// IsCore reports whether a category key is a core category.
func (c *Config) IsCore(key model.CategoryKey) bool {
	for _, core := range c.CoreCategories {
		if core == key {
			return true
		}
	}
	return false
}

// ModeFor returns the declared selection mode for a category key.
// Unknown keys (fallback-derived ones) default to random.
func (c *Config) ModeFor(key model.CategoryKey) SelectionMode {
	for _, slots := range c.Template {
		for _, s := range slots {
			if s.Key == key {
				return s.Mode
			}
		}
	}
	for _, o := range c.Overrides {
		for _, s := range o.Slots {
			if s.Key == key {
				return s.Mode
			}
		}
	}
	return ModeRandom
}

// Input is everything one generation run needs. The engine never reaches
// outside it: repositories are the caller's concern and randomness is
// injected so tests can pin outcomes.
type Input struct {
	Year  int
	Month time.Month

	// Schedule is the month's confirmed slot template. The engine works
	// on a copy; the caller's slice is not mutated.
	Schedule []model.DaySchedule

	// Participants is the full registry. Inactive participants are seeded
	// into the ledger but never assigned.
	Participants []model.Participant

	// PrevCounts maps participant ID to previous-month category counts.
	PrevCounts map[string]map[model.CategoryKey]int

	// Absentees holds IDs of participants absent at least once in the
	// previous month.
	Absentees map[string]bool

	Config Config
	Rand   *rand.Rand
	Logger *zap.Logger
}

// AssignmentCounts maps participant ID to per-category counts, including
// the reserved total key.
type AssignmentCounts map[string]map[model.CategoryKey]int

// CountRow is one persisted assignment count.
type CountRow struct {
	ParticipantID string
	CategoryKey   model.CategoryKey
	Count         int
}

// SlotValidationError reports one invariant violation in the final schedule.
type SlotValidationError struct {
	Date        string
	Time        string
	Description string
}

// Outcome is the result of a generation run. Empty slots and under-target
// participants are not errors; the summary surfaces them for human review.
type Outcome struct {
	Schedule         []model.DaySchedule
	Counts           AssignmentCounts
	CountRows        []CountRow
	Summary          string
	ValidationErrors []SlotValidationError
}

// slotRef points at a slot inside the working calendar together with its
// date context, so phases can walk flat slot lists without re-parsing dates.
type slotRef struct {
	date string
	week int
	slot *model.TimeSlot
}
