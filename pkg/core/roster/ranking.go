package roster

import (
	"math/rand"
	"sort"
	"strconv"
	"strings"

	"github.com/danielhward/serviceroster/pkg/core/model"
)

// candidate is a participant enriched with the fairness signals the
// ranking comparator needs for a specific slot category.
type candidate struct {
	p model.Participant

	prevCategoryCount    int
	prevTotal            int
	currentCategoryCount int

	// crossPreference spreads load across categories: -1 for a core slot
	// when the participant already served core last month, +1 for a
	// non-core slot in the same situation.
	crossPreference int

	// tie is a pre-drawn random value so tie-breaking stays a strict
	// weak ordering under sort.
	tie float64
}

// enhance builds candidate data for a participant against a slot category.
func enhance(p model.Participant, key model.CategoryKey, ledger *Ledger, cfg *Config, rng *rand.Rand) candidate {
	c := candidate{
		p:         p,
		prevTotal: ledger.PrevTotal(p.ID),
		tie:       rng.Float64(),
	}
	if key != "" {
		c.prevCategoryCount = ledger.PrevCount(p.ID, key)
		c.currentCategoryCount = ledger.Count(p.ID, key)

		coreKey := cfg.CoreCategories[p.Type]
		if coreKey != "" && ledger.PrevCount(p.ID, coreKey) > 0 {
			if key == coreKey {
				c.crossPreference = -1
			} else {
				c.crossPreference = 1
			}
		}
	}
	return c
}

// rankOptions tunes the comparator for the two Phase 3 modes.
type rankOptions struct {
	// prioritizeZeroTotal puts participants with no assignment this month
	// ahead of everyone who already has one.
	prioritizeZeroTotal bool

	// randomTie breaks final ties randomly instead of by ID.
	randomTie bool
}

// sortCandidates orders candidates by the composite fairness ranking:
// previous-month category count, cross-preference, previous-month total,
// current-month category count, grade descending, then ID or random.
func sortCandidates(cands []candidate, ledger *Ledger, opts rankOptions) {
	sort.SliceStable(cands, func(i, j int) bool {
		return lessCandidate(cands[i], cands[j], ledger, opts)
	})
}

func lessCandidate(a, b candidate, ledger *Ledger, opts rankOptions) bool {
	if opts.prioritizeZeroTotal {
		totalA := ledger.Total(a.p.ID)
		totalB := ledger.Total(b.p.ID)
		if totalA == 0 && totalB > 0 {
			return true
		}
		if totalA > 0 && totalB == 0 {
			return false
		}
		if opts.randomTie && totalA > 0 && totalB > 0 {
			if totalA == 1 && totalB > 1 {
				return true
			}
			if totalA > 1 && totalB == 1 {
				return false
			}
		}
	}
	if a.prevCategoryCount != b.prevCategoryCount {
		return a.prevCategoryCount < b.prevCategoryCount
	}
	if a.crossPreference != b.crossPreference {
		return a.crossPreference > b.crossPreference
	}
	if a.prevTotal != b.prevTotal {
		return a.prevTotal < b.prevTotal
	}
	if a.currentCategoryCount != b.currentCategoryCount {
		return a.currentCategoryCount < b.currentCategoryCount
	}
	if ga, gb := gradeNum(a.p.Grade), gradeNum(b.p.Grade); ga != gb {
		return ga > gb
	}
	if opts.randomTie {
		return a.tie < b.tie
	}
	return a.p.ID < b.p.ID
}

// gradeNum extracts the numeric part of a free-form grade string.
// Non-numeric grades rank as zero.
func gradeNum(grade string) int {
	var digits strings.Builder
	for _, r := range grade {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return 0
	}
	n, err := strconv.Atoi(digits.String())
	if err != nil {
		return 0
	}
	return n
}
