package services

import (
	"fmt"
	"sort"
	"time"

	"github.com/teambition/rrule-go"
	"go.uber.org/zap"

	"github.com/danielhward/serviceroster/internal/config"
	"github.com/danielhward/serviceroster/pkg/core/model"
	"github.com/danielhward/serviceroster/pkg/core/roster"
	"github.com/danielhward/serviceroster/pkg/db"
)

// previousMonth returns the year and month immediately before the given one
func previousMonth(year, month int) (int, int) {
	if month == 1 {
		return year - 1, 12
	}
	return year, month - 1
}

// groupSlotsByDay converts flat schedule slot rows into per-day schedules,
// ordered by date with slots ordered by time within each day.
func groupSlotsByDay(slots []db.ScheduleSlot) []model.DaySchedule {
	byDate := make(map[string][]model.TimeSlot)
	for _, s := range slots {
		byDate[s.Date] = append(byDate[s.Date], model.TimeSlot{
			Time:          s.Time,
			Type:          model.ParticipantType(s.Type),
			CategoryKey:   model.CategoryKey(s.CategoryKey),
			Assigned:      s.Assigned,
			AssignedNames: s.AssignedNames,
			Fixed:         s.Fixed,
		})
	}

	dates := make([]string, 0, len(byDate))
	for date := range byDate {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	days := make([]model.DaySchedule, 0, len(dates))
	for _, date := range dates {
		daySlots := byDate[date]
		sort.SliceStable(daySlots, func(i, j int) bool {
			return daySlots[i].Time < daySlots[j].Time
		})
		days = append(days, model.DaySchedule{Date: date, TimeSlots: daySlots})
	}
	return days
}

// toScheduleSlots flattens per-day schedules back into slot rows for storage
func toScheduleSlots(year, month int, days []model.DaySchedule) []db.ScheduleSlot {
	var slots []db.ScheduleSlot
	for _, day := range days {
		for _, ts := range day.TimeSlots {
			slots = append(slots, db.ScheduleSlot{
				Year:          year,
				Month:         month,
				Date:          day.Date,
				Time:          ts.Time,
				Type:          string(ts.Type),
				CategoryKey:   string(ts.CategoryKey),
				Assigned:      ts.Assigned,
				AssignedNames: ts.AssignedNames,
				Fixed:         ts.Fixed,
			})
		}
	}
	return slots
}

// toModelParticipants converts registry rows to domain participants
func toModelParticipants(rows []db.Participant) []model.Participant {
	participants := make([]model.Participant, len(rows))
	for i, r := range rows {
		participants[i] = model.Participant{
			ID:       r.ID,
			Name:     r.Name,
			Gender:   r.Gender,
			Type:     model.ParticipantType(r.Type),
			CopyType: model.CopyType(r.CopyType),
			Grade:    r.Grade,
			IsActive: r.IsActive,
		}
	}
	return participants
}

// buildPrevCounts indexes previous-month count rows by participant and category
func buildPrevCounts(rows []db.AssignmentCount) map[string]map[model.CategoryKey]int {
	counts := make(map[string]map[model.CategoryKey]int)
	for _, r := range rows {
		if counts[r.ParticipantID] == nil {
			counts[r.ParticipantID] = make(map[model.CategoryKey]int)
		}
		counts[r.ParticipantID][model.CategoryKey(r.CategoryKey)] = r.Count
	}
	return counts
}

// toCountRows converts engine count rows to storage rows
func toCountRows(year, month int, rows []roster.CountRow) []db.AssignmentCount {
	counts := make([]db.AssignmentCount, len(rows))
	for i, r := range rows {
		counts[i] = db.AssignmentCount{
			Year:          year,
			Month:         month,
			ParticipantID: r.ParticipantID,
			CategoryKey:   string(r.CategoryKey),
			Count:         r.Count,
		}
	}
	return counts
}

// buildRosterConfig converts application configuration into the engine's
// category table, including RRULE-based template overrides resolved against
// the target month.
func buildRosterConfig(cfg *config.Config, year int, month time.Month, logger *zap.Logger) (roster.Config, error) {
	template := make(map[time.Weekday][]roster.TemplateSlot, len(cfg.Template))
	for dayName, slots := range cfg.Template {
		weekday, ok := config.ParseWeekday(dayName)
		if !ok {
			return roster.Config{}, fmt.Errorf("unknown weekday name in template: %s", dayName)
		}
		converted := make([]roster.TemplateSlot, len(slots))
		for i, s := range slots {
			converted[i] = roster.TemplateSlot{
				Time: s.Time,
				Type: model.ParticipantType(s.Type),
				Key:  model.CategoryKey(s.CategoryKey),
				Mode: roster.SelectionMode(s.Mode),
			}
		}
		template[weekday] = converted
	}

	coreCategories := make(map[model.ParticipantType]model.CategoryKey, len(cfg.CoreCategories))
	for ptype, key := range cfg.CoreCategories {
		coreCategories[model.ParticipantType(ptype)] = model.CategoryKey(key)
	}

	extraKeys := make([]model.CategoryKey, len(cfg.ExtraCategoryKeys))
	for i, k := range cfg.ExtraCategoryKeys {
		extraKeys[i] = model.CategoryKey(k)
	}

	overrides, err := convertTemplateOverrides(cfg.TemplateOverrides, year, month, logger)
	if err != nil {
		return roster.Config{}, err
	}

	return roster.Config{
		Template:          template,
		CoreCategories:    coreCategories,
		ExtraCategoryKeys: extraKeys,
		Overrides:         overrides,
		MaxAssignments:    cfg.MaxAssignments,
	}, nil
}

// convertTemplateOverrides converts config.TemplateOverride to roster.TemplateOverride
// RRule strings are parsed and converted to date-matching functions scoped to
// the target month, with a small buffer either side for edge cases.
func convertTemplateOverrides(configOverrides []config.TemplateOverride, year int, month time.Month, logger *zap.Logger) ([]roster.TemplateOverride, error) {
	result := make([]roster.TemplateOverride, 0, len(configOverrides))

	monthStart := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, -1)

	for i, override := range configOverrides {
		rule, err := rrule.StrToRRule(override.RRule)
		if err != nil {
			return nil, fmt.Errorf("failed to parse rrule for override %d: %w", i, err)
		}

		slots := make([]roster.TemplateSlot, len(override.Slots))
		for j, s := range override.Slots {
			slots[j] = roster.TemplateSlot{
				Time: s.Time,
				Type: model.ParticipantType(s.Type),
				Key:  model.CategoryKey(s.CategoryKey),
				Mode: roster.SelectionMode(s.Mode),
			}
		}

		// Capture the rule by value to avoid closure issues
		ruleForClosure := rule
		appliesTo := func(dateStr string) bool {
			searchStart := monthStart.AddDate(0, 0, -7)
			searchEnd := monthEnd.AddDate(0, 0, 7)

			ruleForClosure.DTStart(searchStart)

			occurrences := ruleForClosure.Between(searchStart, searchEnd, true)
			for _, occurrence := range occurrences {
				if occurrence.Format("2006-01-02") == dateStr {
					return true
				}
			}
			return false
		}

		result = append(result, roster.TemplateOverride{
			AppliesTo: appliesTo,
			Slots:     slots,
		})

		logger.Debug("Converted template override",
			zap.Int("index", i),
			zap.String("rrule", override.RRule),
			zap.Int("slot_count", len(override.Slots)))
	}

	return result, nil
}
