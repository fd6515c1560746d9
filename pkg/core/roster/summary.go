package roster

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/danielhward/serviceroster/pkg/core/model"
)

// buildSummary renders the human-readable distribution report and collects
// the count rows for persistence. Pure reporting; no constraint logic.
func buildSummary(participants []model.Participant, ledger *Ledger, cfg *Config) (string, []CountRow) {
	var b strings.Builder

	for _, ptype := range []model.ParticipantType{model.TypeJunior, model.TypeSenior} {
		var members []model.Participant
		for _, p := range participants {
			if p.Type == ptype {
				members = append(members, p)
			}
		}
		if len(members) == 0 {
			continue
		}

		fmt.Fprintf(&b, "%s assignment summary:\n", ptype)

		histogram := make(map[int]int)
		var coreCounts []int
		coreKey := cfg.CoreCategories[ptype]

		for _, p := range members {
			total := ledger.Total(p.ID)

			var details []string
			keys := make([]model.CategoryKey, 0)
			for key := range ledger.Counts()[p.ID] {
				if key != model.TotalKey && ledger.Count(p.ID, key) > 0 {
					keys = append(keys, key)
				}
			}
			sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
			for _, key := range keys {
				details = append(details, fmt.Sprintf("%s: %d", key, ledger.Count(p.ID, key)))
			}

			line := fmt.Sprintf("%s (ID: %s): %d total", p.Name, p.ID, total)
			if len(details) > 0 {
				line += fmt.Sprintf(" (%s)", strings.Join(details, ", "))
			}
			b.WriteString(line)
			b.WriteByte('\n')

			histogram[total]++
			if p.IsActive {
				coreCounts = append(coreCounts, ledger.Count(p.ID, coreKey))
			}
		}

		totals := make([]int, 0, len(histogram))
		for total := range histogram {
			totals = append(totals, total)
		}
		sort.Ints(totals)
		var parts []string
		for _, total := range totals {
			parts = append(parts, fmt.Sprintf("%dx: %d participants", total, histogram[total]))
		}
		fmt.Fprintf(&b, "Distribution: %s\n", strings.Join(parts, ", "))

		if coreKey != "" && len(coreCounts) > 0 {
			avg, minC, maxC, stddev := coreStats(coreCounts)
			fmt.Fprintf(&b, "Core category %s: avg %.2f, min %d, max %d, stddev %.2f\n",
				coreKey, avg, minC, maxC, stddev)
		}
		b.WriteByte('\n')
	}

	var rows []CountRow
	ids := make([]string, 0, len(participants))
	for _, p := range participants {
		ids = append(ids, p.ID)
	}
	for _, id := range ids {
		keys := make([]model.CategoryKey, 0)
		for key := range ledger.Counts()[id] {
			if key != model.TotalKey && ledger.Count(id, key) > 0 {
				keys = append(keys, key)
			}
		}
		sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
		for _, key := range keys {
			rows = append(rows, CountRow{ParticipantID: id, CategoryKey: key, Count: ledger.Count(id, key)})
		}
	}

	return strings.TrimRight(b.String(), "\n"), rows
}

// coreStats computes the spread of core-category assignments for a type.
func coreStats(counts []int) (avg float64, minC, maxC int, stddev float64) {
	minC = counts[0]
	maxC = counts[0]
	sum := 0
	for _, n := range counts {
		sum += n
		if n < minC {
			minC = n
		}
		if n > maxC {
			maxC = n
		}
	}
	avg = float64(sum) / float64(len(counts))

	variance := 0.0
	for _, n := range counts {
		d := float64(n) - avg
		variance += d * d
	}
	variance /= float64(len(counts))
	stddev = math.Sqrt(variance)
	return avg, minC, maxC, stddev
}
