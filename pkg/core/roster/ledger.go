package roster

import "github.com/danielhward/serviceroster/pkg/core/model"

// Ledger is the mutable per-run record of assignment counts and occupancy.
// Every phase reads and updates it; it never outlives a generation run.
type Ledger struct {
	counts map[string]map[model.CategoryKey]int

	// prevTotals caches the summed previous-month counts per participant.
	prevCounts map[string]map[model.CategoryKey]int
	prevTotals map[string]int

	// weekly holds, per participant, the week-of-month indices already
	// carrying an assignment. coreWeekly is the scratch equivalent used
	// by the core phases (1-2) and merged into weekly afterwards.
	weekly     map[string]map[int]bool
	coreWeekly map[string]map[int]bool

	// daily holds, per date, the participants already assigned that day.
	daily map[string]map[string]bool
}

// NewLedger seeds a fresh ledger: zero counts for every participant and
// every known category key, empty occupancy for active participants.
func NewLedger(participants []model.Participant, categoryKeys []model.CategoryKey, prevCounts map[string]map[model.CategoryKey]int) *Ledger {
	l := &Ledger{
		counts:     make(map[string]map[model.CategoryKey]int, len(participants)),
		prevCounts: prevCounts,
		prevTotals: make(map[string]int, len(prevCounts)),
		weekly:     make(map[string]map[int]bool),
		coreWeekly: make(map[string]map[int]bool),
		daily:      make(map[string]map[string]bool),
	}

	for _, p := range participants {
		byKey := make(map[model.CategoryKey]int, len(categoryKeys)+1)
		for _, key := range categoryKeys {
			byKey[key] = 0
		}
		byKey[model.TotalKey] = 0
		l.counts[p.ID] = byKey

		if p.IsActive {
			l.weekly[p.ID] = make(map[int]bool)
			l.coreWeekly[p.ID] = make(map[int]bool)
		}
	}

	for id, byKey := range prevCounts {
		total := 0
		for _, n := range byKey {
			total += n
		}
		l.prevTotals[id] = total
	}

	return l
}

// Count returns the participant's current-month count for a category.
func (l *Ledger) Count(id string, key model.CategoryKey) int {
	return l.counts[id][key]
}

// Total returns the participant's current-month total assignment count.
func (l *Ledger) Total(id string) int {
	return l.counts[id][model.TotalKey]
}

// PrevCount returns the participant's previous-month count for a category.
func (l *Ledger) PrevCount(id string, key model.CategoryKey) int {
	return l.prevCounts[id][key]
}

// PrevTotal returns the participant's previous-month total.
func (l *Ledger) PrevTotal(id string) int {
	return l.prevTotals[id]
}

// AssignedOn reports whether the participant already holds an assignment
// on the given date.
func (l *Ledger) AssignedOn(date, id string) bool {
	return l.daily[date][id]
}

// UsedWeek reports whether the participant holds an assignment in the
// given week-of-month outside the core phases.
func (l *Ledger) UsedWeek(id string, week int) bool {
	return l.weekly[id][week]
}

// UsedCoreWeek reports week occupancy recorded during the core phases.
func (l *Ledger) UsedCoreWeek(id string, week int) bool {
	return l.coreWeekly[id][week]
}

// Record credits one assignment: bumps the category and total counts and
// marks daily and weekly occupancy.
func (l *Ledger) Record(id string, key model.CategoryKey, date string, week int) {
	l.bump(id, key)
	l.markDaily(date, id)
	if l.weekly[id] == nil {
		l.weekly[id] = make(map[int]bool)
	}
	l.weekly[id][week] = true
}

// RecordCore credits one core-phase assignment. Week occupancy goes to the
// core scratch set; MergeCoreWeeks folds it into the main set once the core
// phases finish.
func (l *Ledger) RecordCore(id string, key model.CategoryKey, date string, week int) {
	l.bump(id, key)
	l.markDaily(date, id)
	if l.coreWeekly[id] == nil {
		l.coreWeekly[id] = make(map[int]bool)
	}
	l.coreWeekly[id][week] = true
}

// MergeCoreWeeks folds core-phase week occupancy into the main weekly set.
func (l *Ledger) MergeCoreWeeks() {
	for id, weeks := range l.coreWeekly {
		if l.weekly[id] == nil {
			l.weekly[id] = make(map[int]bool)
		}
		for week := range weeks {
			l.weekly[id][week] = true
		}
	}
}

// SeedOccupancy records occupancy and counts for an assignment already
// present in the incoming schedule (an externally pinned one).
func (l *Ledger) SeedOccupancy(id string, key model.CategoryKey, date string, week int) {
	l.Record(id, key, date, week)
}

// Counts returns the underlying count table.
func (l *Ledger) Counts() AssignmentCounts {
	return l.counts
}

func (l *Ledger) bump(id string, key model.CategoryKey) {
	byKey := l.counts[id]
	if byKey == nil {
		byKey = make(map[model.CategoryKey]int)
		l.counts[id] = byKey
	}
	if key != "" {
		byKey[key]++
	}
	byKey[model.TotalKey]++
}

func (l *Ledger) markDaily(date, id string) {
	if l.daily[date] == nil {
		l.daily[date] = make(map[string]bool)
	}
	l.daily[date][id] = true
}
