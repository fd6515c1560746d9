package roster

import (
	"sort"

	"go.uber.org/zap"

	"github.com/danielhward/serviceroster/pkg/core/model"
)

// runEnsureMinimum (Phase 4, first stage) pushes every active participant
// to at least two assignments, consuming slots earlier phases left empty.
// Distinguishing rule: a participant still below the two-assignment floor
// may take a second slot in a week they have already used; the exception
// disappears once they reach two. A hard iteration ceiling guarantees
// termination.
func (e *engine) runEnsureMinimum() {
	slots := e.cal.emptySlots(e.cfg, false)
	e.shuffleRefs(slots)

	needing := e.belowTotal(minAssignments, nil)
	e.log.Info("Phase 4: ensure minimum assignments",
		zap.Int("below_minimum", len(needing)),
		zap.Int("empty_slots", len(slots)))

	unplaceable := make(map[string]bool)
	maxIterations := len(needing)*len(slots) + 10

	for iter := 0; iter < maxIterations; iter++ {
		needing = e.belowTotal(minAssignments, unplaceable)
		if len(needing) == 0 || len(slots) == 0 {
			return
		}

		sort.SliceStable(needing, func(i, j int) bool {
			a, b := needing[i], needing[j]
			if ta, tb := e.ledger.Total(a.ID), e.ledger.Total(b.ID); ta != tb {
				return ta < tb
			}
			if pa, pb := e.ledger.PrevTotal(a.ID), e.ledger.PrevTotal(b.ID); pa != pb {
				return pa < pb
			}
			return a.ID < b.ID
		})

		anchor := needing[0]
		placed := false
		for i, ref := range slots {
			if anchor.Type != ref.slot.Type {
				continue
			}
			if e.ledger.AssignedOn(ref.date, anchor.ID) {
				continue
			}
			if e.ledger.Total(anchor.ID) == 1 && e.ledger.UsedWeek(anchor.ID, ref.week) {
				continue
			}

			partner, ok := e.findMinimumPartner(anchor, needing, ref)
			if !ok {
				continue
			}

			e.assign(ref, anchor, partner, false)
			slots = append(slots[:i], slots[i+1:]...)
			placed = true
			break
		}

		if !placed {
			unplaceable[anchor.ID] = true
			e.log.Debug("Phase 4: no slot or partner for participant",
				zap.String("participant", anchor.Name),
				zap.Int("total", e.ledger.Total(anchor.ID)))
		}
	}
	e.log.Warn("Phase 4: iteration ceiling reached")
}

// findMinimumPartner searches the below-minimum list first, then widens to
// the full active population (still below two), ranked by fewest totals.
func (e *engine) findMinimumPartner(anchor model.Participant, needing []model.Participant, ref slotRef) (model.Participant, bool) {
	eligible := func(p model.Participant) bool {
		if p.ID == anchor.ID || p.Type != ref.slot.Type {
			return false
		}
		if e.ledger.Total(p.ID) >= minAssignments {
			return false
		}
		if e.ledger.AssignedOn(ref.date, p.ID) {
			return false
		}
		if e.ledger.Total(p.ID) == 1 && e.ledger.UsedWeek(p.ID, ref.week) {
			return false
		}
		return pairingAllowed(anchor, p)
	}

	for _, p := range needing {
		if eligible(p) {
			return p, true
		}
	}

	var widened []model.Participant
	for _, p := range e.active {
		if eligible(p) {
			widened = append(widened, p)
		}
	}
	if len(widened) == 0 {
		return model.Participant{}, false
	}
	sort.SliceStable(widened, func(i, j int) bool {
		return e.ledger.Total(widened[i].ID) < e.ledger.Total(widened[j].ID)
	})
	return widened[0], true
}

// runEqualizeTarget (Phase 4, second stage) runs one incremental-ceiling
// pass: participants below the target level get additional assignments
// from remaining empty slots, now requiring full weekly uniqueness, with
// partners drawn from anyone below the same target.
func (e *engine) runEqualizeTarget(target int) {
	below := e.belowTotal(target, nil)
	if len(below) == 0 {
		return
	}

	ties := e.drawTies(below)
	sort.SliceStable(below, func(i, j int) bool {
		a, b := below[i], below[j]
		if pa, pb := e.ledger.PrevTotal(a.ID), e.ledger.PrevTotal(b.ID); pa != pb {
			return pa < pb
		}
		return ties[a.ID] < ties[b.ID]
	})

	slots := e.cal.emptySlots(e.cfg, false)
	e.shuffleRefs(slots)
	e.log.Info("Phase 4: incremental target pass",
		zap.Int("target", target),
		zap.Int("below_target", len(below)),
		zap.Int("empty_slots", len(slots)))

	idx := 0
	for idx < len(below) && len(slots) > 0 {
		anchor := below[idx]
		if e.ledger.Total(anchor.ID) >= target {
			idx++
			continue
		}

		placed := false
		for i, ref := range slots {
			if anchor.Type != ref.slot.Type {
				continue
			}
			if e.ledger.AssignedOn(ref.date, anchor.ID) {
				continue
			}
			if e.ledger.UsedWeek(anchor.ID, ref.week) {
				continue
			}

			partner, ok := e.findTargetPartner(anchor, target, ref)
			if !ok {
				continue
			}

			e.assign(ref, anchor, partner, false)
			slots = append(slots[:i], slots[i+1:]...)
			placed = true
			break
		}

		idx++
		if placed && e.ledger.Total(anchor.ID) >= target {
			below = e.belowTotal(target, nil)
			newTies := e.drawTies(below)
			sort.SliceStable(below, func(i, j int) bool {
				a, b := below[i], below[j]
				if pa, pb := e.ledger.PrevTotal(a.ID), e.ledger.PrevTotal(b.ID); pa != pb {
					return pa < pb
				}
				return newTies[a.ID] < newTies[b.ID]
			})
			idx = 0
		}
	}
}

// findTargetPartner picks the fewest-total legal partner below the target.
func (e *engine) findTargetPartner(anchor model.Participant, target int, ref slotRef) (model.Participant, bool) {
	var eligible []model.Participant
	for _, p := range e.active {
		if p.ID == anchor.ID || p.Type != ref.slot.Type {
			continue
		}
		if e.ledger.Total(p.ID) >= target {
			continue
		}
		if e.ledger.AssignedOn(ref.date, p.ID) {
			continue
		}
		if e.ledger.UsedWeek(p.ID, ref.week) {
			continue
		}
		if !pairingAllowed(anchor, p) {
			continue
		}
		eligible = append(eligible, p)
	}
	if len(eligible) == 0 {
		return model.Participant{}, false
	}
	sort.SliceStable(eligible, func(i, j int) bool {
		return e.ledger.Total(eligible[i].ID) < e.ledger.Total(eligible[j].ID)
	})
	return eligible[0], true
}

// belowTotal returns active participants whose total is under the limit,
// excluding any in skip.
func (e *engine) belowTotal(limit int, skip map[string]bool) []model.Participant {
	var out []model.Participant
	for _, p := range e.active {
		if skip[p.ID] {
			continue
		}
		if e.ledger.Total(p.ID) < limit {
			out = append(out, p)
		}
	}
	return out
}
