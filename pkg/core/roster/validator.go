package roster

import (
	"fmt"

	"github.com/danielhward/serviceroster/pkg/core/model"
)

// ValidateSchedule checks the generated schedule against the engine's
// structural invariants. Violations are reported, never repaired: an empty
// slot is a legitimate outcome, a malformed one is a bug.
func ValidateSchedule(schedule []model.DaySchedule, byID map[string]model.Participant, ceiling int) []SlotValidationError {
	var errs []SlotValidationError
	totals := make(map[string]int)

	for _, day := range schedule {
		seenToday := make(map[string]string)

		for _, slot := range day.TimeSlots {
			if len(slot.Assigned) != 0 && len(slot.Assigned) != 2 {
				errs = append(errs, SlotValidationError{
					Date: day.Date, Time: slot.Time,
					Description: fmt.Sprintf("slot has %d assigned participants, want 0 or 2", len(slot.Assigned)),
				})
				continue
			}

			smallCount := 0
			for _, id := range slot.Assigned {
				totals[id]++

				if prevTime, dup := seenToday[id]; dup {
					errs = append(errs, SlotValidationError{
						Date: day.Date, Time: slot.Time,
						Description: fmt.Sprintf("participant %s already assigned at %s the same day", id, prevTime),
					})
				}
				seenToday[id] = slot.Time

				p, known := byID[id]
				if !known {
					errs = append(errs, SlotValidationError{
						Date: day.Date, Time: slot.Time,
						Description: fmt.Sprintf("unknown participant %s", id),
					})
					continue
				}
				if p.Type != slot.Type {
					errs = append(errs, SlotValidationError{
						Date: day.Date, Time: slot.Time,
						Description: fmt.Sprintf("participant %s has type %s, slot wants %s", id, p.Type, slot.Type),
					})
				}
				if p.CopyType == model.CopySmall {
					smallCount++
				}
			}

			if smallCount == 2 {
				errs = append(errs, SlotValidationError{
					Date: day.Date, Time: slot.Time,
					Description: "two small-copy participants paired in one slot",
				})
			}
		}
	}

	for id, total := range totals {
		if total > ceiling {
			errs = append(errs, SlotValidationError{
				Description: fmt.Sprintf("participant %s holds %d assignments, ceiling is %d", id, total, ceiling),
			})
		}
	}

	return errs
}
