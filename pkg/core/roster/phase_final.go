package roster

import (
	"sort"

	"go.uber.org/zap"

	"github.com/danielhward/serviceroster/pkg/core/model"
)

// runFinalFill (Phase 5) is the constraint-relaxed escape valve: any slot
// still empty gets a random pair subject only to type match, daily
// uniqueness, and pairing legality. Weekly and monthly caps are ignored.
// Candidates with the fewest totals still go first to keep the residual
// spread somewhat fair.
func (e *engine) runFinalFill() {
	slots := e.cal.emptySlots(e.cfg, false)
	if len(slots) == 0 {
		return
	}
	e.log.Info("Phase 5: final random fill", zap.Int("empty_slots", len(slots)))
	e.shuffleRefs(slots)

	for _, ref := range slots {
		if !ref.slot.IsEmpty() {
			continue
		}

		cands := e.relaxedCandidates(ref, "")
		var anchor, partner model.Participant
		found := false
		for _, a := range cands {
			partners := e.relaxedCandidates(ref, a.ID)
			for _, p := range partners {
				if pairingAllowed(a, p) {
					anchor, partner = a, p
					found = true
					break
				}
			}
			if found {
				break
			}
		}
		if !found {
			e.log.Debug("Phase 5: slot left unfilled",
				zap.String("date", ref.date),
				zap.String("slot_time", ref.slot.Time))
			continue
		}

		e.assign(ref, anchor, partner, false)
	}
}

// relaxedCandidates lists active participants of the slot's type who are
// free that day, ranked by fewest current totals with random tie-break.
func (e *engine) relaxedCandidates(ref slotRef, excludeID string) []model.Participant {
	var out []model.Participant
	for _, p := range e.active {
		if p.ID == excludeID || p.Type != ref.slot.Type {
			continue
		}
		if e.ledger.AssignedOn(ref.date, p.ID) {
			continue
		}
		out = append(out, p)
	}
	ties := e.drawTies(out)
	sort.SliceStable(out, func(i, j int) bool {
		if ta, tb := e.ledger.Total(out[i].ID), e.ledger.Total(out[j].ID); ta != tb {
			return ta < tb
		}
		return ties[out[i].ID] < ties[out[j].ID]
	})
	return out
}
