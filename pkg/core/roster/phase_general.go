package roster

import (
	"go.uber.org/zap"

	"github.com/danielhward/serviceroster/pkg/core/model"
)

// runGeneralPhase (Phase 3) fills every remaining non-core slot in
// date/time order, using the selection mode declared for the slot's
// category. Each assignment updates the ledger immediately, so later
// slots in the same pass observe it.
func (e *engine) runGeneralPhase() {
	e.log.Info("Phase 3: general slot fill")

	for _, day := range e.cal.days {
		week := e.cal.weekOf[day.Date]

		for i := range day.TimeSlots {
			slot := &day.TimeSlots[i]
			if e.cfg.IsCore(slot.CategoryKey) || !slot.IsEmpty() {
				continue
			}

			pool := e.pool(slot.Type)
			if len(pool) < 2 {
				continue
			}

			ref := slotRef{date: day.Date, week: week, slot: slot}
			var a, b model.Participant
			var ok bool
			switch e.cfg.ModeFor(slot.CategoryKey) {
			case ModeSequential:
				a, b, ok = e.pickSequential(pool, ref)
			default:
				a, b, ok = e.pickRandom(pool, ref)
			}
			if !ok {
				e.log.Debug("Phase 3: slot left empty",
					zap.String("date", day.Date),
					zap.String("slot_time", slot.Time),
					zap.String("category", string(slot.CategoryKey)))
				continue
			}

			e.assign(ref, a, b, false)
		}
	}
}

// generalEligible applies the Phase 3 occupancy filter: free today, under
// the month cap, and not reusing a week once holding two assignments.
func (e *engine) generalEligible(p model.Participant, ref slotRef) bool {
	if e.ledger.AssignedOn(ref.date, p.ID) {
		return false
	}
	total := e.ledger.Total(p.ID)
	if total >= e.cfg.MaxAssignments {
		return false
	}
	if total >= minAssignments && e.ledger.UsedWeek(p.ID, ref.week) {
		return false
	}
	return true
}

// pickSequential ranks eligible candidates deterministically and anchors
// the first, pairing it with the first partner of a different grade, or
// any legal same-grade partner as fallback.
func (e *engine) pickSequential(pool []model.Participant, ref slotRef) (model.Participant, model.Participant, bool) {
	cands := e.rankedCandidates(pool, ref, rankOptions{})
	if len(cands) < 2 {
		return model.Participant{}, model.Participant{}, false
	}

	for i := range cands {
		anchor := cands[i].p
		partner, ok := scanPartner(anchor, cands[i+1:])
		if ok {
			return anchor, partner, true
		}
	}
	return model.Participant{}, model.Participant{}, false
}

// pickRandom ranks with first-timer priority and random tie-breaks, then
// takes the first legally pairable ranked pair. If none exists it retries
// with a grade-diversity-first scan over the full eligible pool.
func (e *engine) pickRandom(pool []model.Participant, ref slotRef) (model.Participant, model.Participant, bool) {
	cands := e.rankedCandidates(pool, ref, rankOptions{prioritizeZeroTotal: true, randomTie: true})
	if len(cands) < 2 {
		return model.Participant{}, model.Participant{}, false
	}

	for i := range cands {
		for j := i + 1; j < len(cands); j++ {
			if pairingAllowed(cands[i].p, cands[j].p) {
				return cands[i].p, cands[j].p, true
			}
		}
	}

	// Fallback: same pool, but prefer grade diversity when pairing.
	for i := range cands {
		anchor := cands[i].p
		partner, ok := scanPartner(anchor, cands[i+1:])
		if ok {
			return anchor, partner, true
		}
	}
	return model.Participant{}, model.Participant{}, false
}

// rankedCandidates filters the pool for slot eligibility and sorts by the
// composite fairness ranking.
func (e *engine) rankedCandidates(pool []model.Participant, ref slotRef, opts rankOptions) []candidate {
	var cands []candidate
	for _, p := range pool {
		if !e.generalEligible(p, ref) {
			continue
		}
		cands = append(cands, enhance(p, ref.slot.CategoryKey, e.ledger, e.cfg, e.rng))
	}
	sortCandidates(cands, e.ledger, opts)
	return cands
}

// scanPartner walks ranked candidates after the anchor, preferring a
// different grade; the first same-grade legal partner is the fallback.
func scanPartner(anchor model.Participant, rest []candidate) (model.Participant, bool) {
	var sameGrade *model.Participant
	for i := range rest {
		p := rest[i].p
		if !pairingAllowed(anchor, p) {
			continue
		}
		if p.Grade != anchor.Grade {
			return p, true
		}
		if sameGrade == nil {
			sameGrade = &rest[i].p
		}
	}
	if sameGrade != nil {
		return *sameGrade, true
	}
	return model.Participant{}, false
}
