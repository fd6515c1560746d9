package roster

import (
	"sort"

	"go.uber.org/zap"

	"github.com/danielhward/serviceroster/pkg/core/model"
)

// runCoreFillPhase (Phase 2) fills core slots Phase 1 left empty, drawing
// from regulars ranked to favor those least recently placed in the core
// category. A bounded candidate pool slightly above twice the open slot
// count widens the fairness opportunity.
func (e *engine) runCoreFillPhase() {
	var open []slotRef
	for _, ref := range e.cal.coreSlots {
		if ref.slot.IsEmpty() {
			open = append(open, ref)
		}
	}
	e.log.Info("Phase 2: regular core fill", zap.Int("open_slots", len(open)))
	if len(open) == 0 {
		return
	}

	pool := e.selectCorePool(len(open))
	assigned := make(map[string]bool)

	for _, ref := range open {
		if !ref.slot.IsEmpty() {
			continue
		}

		for i, anchor := range pool {
			if assigned[anchor.ID] || anchor.Type != ref.slot.Type {
				continue
			}
			if !e.coreEligible(anchor, ref) {
				continue
			}

			partner, ok := e.findCorePartner(anchor, pool, i, assigned, ref)
			if !ok {
				continue
			}

			e.assign(ref, anchor, partner, true)
			assigned[anchor.ID] = true
			assigned[partner.ID] = true
			break
		}
	}
}

// selectCorePool ranks regulars for core duty and trims to a bounded pool:
// twice the open slots, inflated by 30% of the regular population. Ranking
// weights current-month core assignments double so same-month repeats sink.
func (e *engine) selectCorePool(openSlots int) []model.Participant {
	ranked := make([]model.Participant, len(e.regulars))
	copy(ranked, e.regulars)

	ties := e.drawTies(ranked)
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		scoreA := e.coreScore(a)
		scoreB := e.coreScore(b)
		if scoreA != scoreB {
			return scoreA < scoreB
		}
		if pa, pb := e.ledger.PrevTotal(a.ID), e.ledger.PrevTotal(b.ID); pa != pb {
			return pa < pb
		}
		if ga, gb := gradeNum(a.Grade), gradeNum(b.Grade); ga != gb {
			return ga > gb
		}
		return ties[a.ID] < ties[b.ID]
	})

	need := openSlots * 2
	need += (len(ranked)*3 + 9) / 10 // ceil(30%)
	if need > len(ranked) {
		need = len(ranked)
	}
	pool := ranked[:need]

	// Inside the pool, least current-month core assignments go first.
	poolTies := e.drawTies(pool)
	sort.SliceStable(pool, func(i, j int) bool {
		a, b := pool[i], pool[j]
		ca := e.ledger.Count(a.ID, e.cfg.CoreCategories[a.Type])
		cb := e.ledger.Count(b.ID, e.cfg.CoreCategories[b.Type])
		if ca != cb {
			return ca < cb
		}
		if ga, gb := gradeNum(a.Grade), gradeNum(b.Grade); ga != gb {
			return ga > gb
		}
		return poolTies[a.ID] < poolTies[b.ID]
	})

	return pool
}

// coreScore combines previous-month core count with double-weighted
// current-month core count; lower scores rank first.
func (e *engine) coreScore(p model.Participant) int {
	coreKey := e.cfg.CoreCategories[p.Type]
	return e.ledger.PrevCount(p.ID, coreKey) + e.ledger.Count(p.ID, coreKey)*2
}

// findCorePartner picks the anchor's partner from the pool, preferring a
// different grade over the same grade.
func (e *engine) findCorePartner(anchor model.Participant, pool []model.Participant, anchorIdx int, assigned map[string]bool, ref slotRef) (model.Participant, bool) {
	var eligible []model.Participant
	for i, p := range pool {
		if i == anchorIdx || p.Type != ref.slot.Type || assigned[p.ID] {
			continue
		}
		if !e.coreEligible(p, ref) {
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

	ties := e.drawTies(eligible)
	sort.SliceStable(eligible, func(i, j int) bool {
		a, b := eligible[i], eligible[j]
		coreA := e.cfg.CoreCategories[a.Type]
		coreB := e.cfg.CoreCategories[b.Type]
		if ca, cb := e.ledger.Count(a.ID, coreA), e.ledger.Count(b.ID, coreB); ca != cb {
			return ca < cb
		}
		if pa, pb := e.ledger.PrevCount(a.ID, coreA), e.ledger.PrevCount(b.ID, coreB); pa != pb {
			return pa < pb
		}
		if ta, tb := e.ledger.Total(a.ID), e.ledger.Total(b.ID); ta != tb {
			return ta < tb
		}
		return ties[a.ID] < ties[b.ID]
	})

	for _, p := range eligible {
		if p.Grade != anchor.Grade {
			return p, true
		}
	}
	return eligible[0], true
}

// drawTies pre-draws random tiebreak values keyed by participant ID, so
// comparators stay strict weak orderings.
func (e *engine) drawTies(ps []model.Participant) map[string]float64 {
	ties := make(map[string]float64, len(ps))
	for _, p := range ps {
		ties[p.ID] = e.rng.Float64()
	}
	return ties
}
