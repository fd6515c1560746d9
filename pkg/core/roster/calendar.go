package roster

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/danielhward/serviceroster/pkg/core/model"
)

// calendar is the engine's working copy of the month: per-day slot lists,
// the flat core-slot view used by the core phases, and the category key
// universe discovered while building.
type calendar struct {
	days      []*model.DaySchedule
	weekOf    map[string]int
	coreSlots []slotRef

	// keys holds every category key seen in the month plus the configured
	// extra keys, for ledger seeding.
	keys []model.CategoryKey

	// pinned are assignments that arrived fixed and survive the rebuild.
	pinned []slotRef
}

// buildCalendar expands the confirmed schedule into the working calendar:
// clears every non-fixed assignment, injects override slots for matching
// dates, derives missing category keys from the weekday template (falling
// back to a type+time key), and extracts the date/time-sorted core slots.
func buildCalendar(schedule []model.DaySchedule, cfg *Config) (*calendar, error) {
	cal := &calendar{
		weekOf: make(map[string]int, len(schedule)),
	}

	seen := make(map[model.CategoryKey]bool)

	for _, src := range schedule {
		date, err := time.Parse("2006-01-02", src.Date)
		if err != nil {
			return nil, fmt.Errorf("invalid schedule date %q: %w", src.Date, err)
		}

		day := &model.DaySchedule{
			Date:      src.Date,
			TimeSlots: make([]model.TimeSlot, len(src.TimeSlots)),
		}
		copy(day.TimeSlots, src.TimeSlots)

		for _, override := range cfg.Overrides {
			if override.AppliesTo == nil || !override.AppliesTo(src.Date) {
				continue
			}
			for _, ts := range override.Slots {
				if hasSlot(day.TimeSlots, ts.Time, ts.Type) {
					continue
				}
				day.TimeSlots = append(day.TimeSlots, model.TimeSlot{
					Time:        ts.Time,
					Type:        ts.Type,
					CategoryKey: ts.Key,
				})
			}
		}

		for i := range day.TimeSlots {
			slot := &day.TimeSlots[i]

			if slot.HasFixed() && len(slot.Assigned) == 2 {
				// Pinned pair: keep, but still normalize the key below.
			} else {
				slot.Assigned = nil
				slot.AssignedNames = nil
				slot.Fixed = nil
			}

			if slot.CategoryKey == "" {
				slot.CategoryKey = deriveCategoryKey(cfg, date.Weekday(), slot)
			}
			seen[slot.CategoryKey] = true
		}

		sort.SliceStable(day.TimeSlots, func(i, j int) bool {
			return day.TimeSlots[i].Time < day.TimeSlots[j].Time
		})

		cal.days = append(cal.days, day)
		cal.weekOf[src.Date] = model.WeekOfMonth(date)
	}

	sort.SliceStable(cal.days, func(i, j int) bool {
		return cal.days[i].Date < cal.days[j].Date
	})

	// Slot addresses are stable from here on; collect the flat views.
	for _, day := range cal.days {
		for i := range day.TimeSlots {
			slot := &day.TimeSlots[i]
			ref := slotRef{date: day.Date, week: cal.weekOf[day.Date], slot: slot}
			if cfg.IsCore(slot.CategoryKey) {
				cal.coreSlots = append(cal.coreSlots, ref)
			}
			if len(slot.Assigned) == 2 {
				cal.pinned = append(cal.pinned, ref)
			}
		}
	}

	sort.SliceStable(cal.coreSlots, func(i, j int) bool {
		if cal.coreSlots[i].date != cal.coreSlots[j].date {
			return cal.coreSlots[i].date < cal.coreSlots[j].date
		}
		return cal.coreSlots[i].slot.Time < cal.coreSlots[j].slot.Time
	})

	for key := range seen {
		cal.keys = append(cal.keys, key)
	}
	for _, key := range cfg.ExtraCategoryKeys {
		if !seen[key] {
			cal.keys = append(cal.keys, key)
			seen[key] = true
		}
	}
	sort.Slice(cal.keys, func(i, j int) bool { return cal.keys[i] < cal.keys[j] })

	return cal, nil
}

// deriveCategoryKey looks the slot up in the weekday template; slots the
// template does not know get a type+time fallback key.
func deriveCategoryKey(cfg *Config, weekday time.Weekday, slot *model.TimeSlot) model.CategoryKey {
	for _, ts := range cfg.Template[weekday] {
		if ts.Time == slot.Time && ts.Type == slot.Type {
			return ts.Key
		}
	}
	return model.CategoryKey(fmt.Sprintf("%s_%s", slot.Type, strings.ReplaceAll(slot.Time, ":", "")))
}

// emptySlots returns refs to every currently unassigned slot, optionally
// excluding core categories.
func (cal *calendar) emptySlots(cfg *Config, excludeCore bool) []slotRef {
	var refs []slotRef
	for _, day := range cal.days {
		for i := range day.TimeSlots {
			slot := &day.TimeSlots[i]
			if !slot.IsEmpty() {
				continue
			}
			if excludeCore && cfg.IsCore(slot.CategoryKey) {
				continue
			}
			refs = append(refs, slotRef{date: day.Date, week: cal.weekOf[day.Date], slot: slot})
		}
	}
	return refs
}

// snapshot deep-copies the working days back into a plain schedule for
// the outcome.
func (cal *calendar) snapshot() []model.DaySchedule {
	out := make([]model.DaySchedule, len(cal.days))
	for i, day := range cal.days {
		out[i] = model.DaySchedule{
			Date:      day.Date,
			TimeSlots: make([]model.TimeSlot, len(day.TimeSlots)),
		}
		copy(out[i].TimeSlots, day.TimeSlots)
	}
	return out
}

func hasSlot(slots []model.TimeSlot, timeStr string, ptype model.ParticipantType) bool {
	for i := range slots {
		if slots[i].Time == timeStr && slots[i].Type == ptype {
			return true
		}
	}
	return false
}
