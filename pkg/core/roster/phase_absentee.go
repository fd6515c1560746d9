package roster

import (
	"go.uber.org/zap"

	"github.com/danielhward/serviceroster/pkg/core/model"
)

// runAbsenteePhase (Phase 1) places each previous-month absentee into two
// core-category slots of their type, paired with another absentee where
// possible and with a regular otherwise. Partner search is first-match,
// not globally optimal. Falling short of two is logged, not fatal.
func (e *engine) runAbsenteePhase() {
	e.log.Info("Phase 1: absentee core priority", zap.Int("absentees", len(e.absentees)))

	for _, absentee := range e.absentees {
		made := e.absenteeCore[absentee.ID]
		if made >= minAssignments {
			continue
		}

		for _, ref := range e.cal.coreSlots {
			if made >= minAssignments {
				break
			}
			if !ref.slot.IsEmpty() || ref.slot.Type != absentee.Type {
				continue
			}
			if !e.coreEligible(absentee, ref) {
				continue
			}

			partner, ok := e.findAbsenteePartner(absentee, ref)
			if !ok {
				continue
			}

			e.assign(ref, absentee, partner, true)
			e.absenteeCore[absentee.ID]++
			e.absenteeCore[partner.ID]++
			made++
		}

		if made < minAssignments {
			e.log.Debug("Phase 1: absentee under core target",
				zap.String("participant", absentee.Name),
				zap.Int("core_assignments", made))
		}
	}
}

// coreEligible applies the Phase 1/2 occupancy checks for a core slot.
// The weekly check appears twice on purpose: once unconditionally against
// the core scratch set, then again (joined with the month-wide set) gated
// on already holding two assignments. Observed behavior, kept as is.
func (e *engine) coreEligible(p model.Participant, ref slotRef) bool {
	if e.ledger.AssignedOn(ref.date, p.ID) {
		return false
	}
	if e.ledger.UsedCoreWeek(p.ID, ref.week) {
		return false
	}
	total := e.ledger.Total(p.ID)
	if total >= e.cfg.MaxAssignments {
		return false
	}
	if total >= minAssignments && (e.ledger.UsedCoreWeek(p.ID, ref.week) || e.ledger.UsedWeek(p.ID, ref.week)) {
		return false
	}
	return true
}

// findAbsenteePartner scans the other absentees for the first legal
// partner, widening to regulars when no absentee can take the slot.
func (e *engine) findAbsenteePartner(anchor model.Participant, ref slotRef) (model.Participant, bool) {
	for _, other := range e.absentees {
		if other.ID == anchor.ID {
			continue
		}
		if e.absenteeCore[other.ID] >= minAssignments {
			continue
		}
		if other.Type != ref.slot.Type {
			continue
		}
		if !e.coreEligible(other, ref) {
			continue
		}
		if !pairingAllowed(anchor, other) {
			continue
		}
		return other, true
	}

	for _, other := range e.regulars {
		if other.Type != ref.slot.Type {
			continue
		}
		if !e.coreEligible(other, ref) {
			continue
		}
		if !pairingAllowed(anchor, other) {
			continue
		}
		return other, true
	}

	return model.Participant{}, false
}

// runAbsenteeBackfill gives absentees who missed the two-core target a
// shot at non-core slots before the general equalizer runs, so they do not
// end the month nearly empty-handed.
func (e *engine) runAbsenteeBackfill() {
	var pending []model.Participant
	for _, p := range e.absentees {
		if e.absenteeCore[p.ID] < minAssignments &&
			e.ledger.Total(p.ID) < e.cfg.MaxAssignments &&
			e.ledger.Total(p.ID) < minAssignments {
			pending = append(pending, p)
		}
	}
	if len(pending) == 0 {
		return
	}
	e.log.Info("Absentee non-core backfill", zap.Int("pending", len(pending)))

	for _, absentee := range pending {
		for _, day := range e.cal.days {
			if e.ledger.Total(absentee.ID) >= minAssignments {
				break
			}
			week := e.cal.weekOf[day.Date]
			if e.ledger.AssignedOn(day.Date, absentee.ID) {
				continue
			}
			if e.ledger.Total(absentee.ID) == 1 && e.ledger.UsedWeek(absentee.ID, week) {
				continue
			}

			for i := range day.TimeSlots {
				slot := &day.TimeSlots[i]
				if !slot.IsEmpty() || e.cfg.IsCore(slot.CategoryKey) {
					continue
				}
				if slot.Type != absentee.Type {
					continue
				}
				if e.ledger.Total(absentee.ID) >= minAssignments {
					break
				}
				if e.ledger.AssignedOn(day.Date, absentee.ID) {
					break
				}

				ref := slotRef{date: day.Date, week: week, slot: slot}
				partner, ok := e.findBackfillPartner(absentee, ref)
				if !ok {
					continue
				}
				e.assign(ref, absentee, partner, false)
				break
			}
		}
	}
}

func (e *engine) findBackfillPartner(anchor model.Participant, ref slotRef) (model.Participant, bool) {
	for _, p := range e.pool(ref.slot.Type) {
		if p.ID == anchor.ID || e.ledger.AssignedOn(ref.date, p.ID) {
			continue
		}
		total := e.ledger.Total(p.ID)
		if total >= e.cfg.MaxAssignments {
			continue
		}
		if total >= 1 && e.ledger.UsedWeek(p.ID, ref.week) {
			continue
		}
		if !pairingAllowed(anchor, p) {
			continue
		}
		return p, true
	}
	return model.Participant{}, false
}
