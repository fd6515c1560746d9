package roster

import (
	"fmt"
	"math/rand"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/danielhward/serviceroster/pkg/core/model"
)

const (
	// minAssignments is the floor the equalizer pushes every active
	// participant toward before raising target levels.
	minAssignments = 2

	// maxEqualizeTarget is the last equalizer target level. It sits above
	// MaxAssignments on purpose: the equalizer trades the strict cap for
	// fewer empty slots, one level at a time.
	maxEqualizeTarget = 5
)

// engine holds the shared state of one generation run. Phases execute
// strictly in sequence; nothing here is safe for concurrent use.
type engine struct {
	cfg *Config
	log *zap.Logger
	rng *rand.Rand

	byID      map[string]model.Participant
	active    []model.Participant
	absentees []model.Participant
	regulars  []model.Participant

	ledger *Ledger
	cal    *calendar

	// absenteeCore tracks core-category assignments made to absentees in
	// Phase 1, so the backfill step knows who fell short of two.
	absenteeCore map[string]int
}

// Generate runs the five-phase assignment pipeline over the given month.
// The input schedule is not mutated; all persistence is the caller's job.
// Shortage of eligible participants is an outcome, not an error.
func Generate(in Input) (*Outcome, error) {
	log := in.Logger
	if log == nil {
		log = zap.NewNop()
	}
	rng := in.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if in.Config.MaxAssignments <= 0 {
		return nil, fmt.Errorf("max assignments must be positive, got %d", in.Config.MaxAssignments)
	}
	if len(in.Schedule) == 0 {
		return nil, fmt.Errorf("schedule for %d-%02d is empty", in.Year, in.Month)
	}

	cal, err := buildCalendar(in.Schedule, &in.Config)
	if err != nil {
		return nil, fmt.Errorf("failed to build slot calendar: %w", err)
	}

	byID := make(map[string]model.Participant, len(in.Participants))
	for _, p := range in.Participants {
		byID[p.ID] = p
	}

	active := make([]model.Participant, 0, len(in.Participants))
	for _, p := range in.Participants {
		if p.IsActive {
			active = append(active, p)
		}
	}
	if len(active) == 0 {
		return nil, fmt.Errorf("no active participants")
	}

	// Higher grades go first; ties keep registry order.
	sort.SliceStable(active, func(i, j int) bool {
		return gradeNum(active[i].Grade) > gradeNum(active[j].Grade)
	})

	ledger := NewLedger(in.Participants, cal.keys, in.PrevCounts)
	for _, ref := range cal.pinned {
		for _, id := range ref.slot.Assigned {
			ledger.SeedOccupancy(id, ref.slot.CategoryKey, ref.date, ref.week)
		}
	}

	e := &engine{
		cfg:          &in.Config,
		log:          log,
		rng:          rng,
		byID:         byID,
		active:       active,
		ledger:       ledger,
		cal:          cal,
		absenteeCore: make(map[string]int),
	}
	for _, p := range active {
		if in.Absentees[p.ID] {
			e.absentees = append(e.absentees, p)
		} else {
			e.regulars = append(e.regulars, p)
		}
	}

	log.Info("Starting schedule generation",
		zap.Int("year", in.Year),
		zap.Int("month", int(in.Month)),
		zap.Int("days", len(cal.days)),
		zap.Int("core_slots", len(cal.coreSlots)),
		zap.Int("active_participants", len(active)),
		zap.Int("absentees", len(e.absentees)))

	e.runAbsenteePhase()
	e.runCoreFillPhase()
	ledger.MergeCoreWeeks()
	e.runGeneralPhase()
	e.runAbsenteeBackfill()
	e.runEnsureMinimum()
	for target := in.Config.MaxAssignments; target <= maxEqualizeTarget; target++ {
		e.runEqualizeTarget(target)
	}
	e.runFinalFill()

	schedule := cal.snapshot()
	validationErrors := ValidateSchedule(schedule, byID, maxEqualizeTarget)
	for _, verr := range validationErrors {
		log.Warn("Schedule invariant violation",
			zap.String("date", verr.Date),
			zap.String("slot_time", verr.Time),
			zap.String("description", verr.Description))
	}

	summary, rows := buildSummary(in.Participants, ledger, e.cfg)

	for _, absentee := range e.absentees {
		if e.absenteeCore[absentee.ID] < minAssignments {
			log.Warn("Absentee below core target",
				zap.String("participant", absentee.Name),
				zap.Int("core_assignments", e.absenteeCore[absentee.ID]),
				zap.Int("total_assignments", ledger.Total(absentee.ID)))
		}
	}

	return &Outcome{
		Schedule:         schedule,
		Counts:           ledger.Counts(),
		CountRows:        rows,
		Summary:          summary,
		ValidationErrors: validationErrors,
	}, nil
}

// assign fills a slot with an ordered pair and credits the ledger. Core
// phase assignments record week occupancy into the core scratch set.
func (e *engine) assign(ref slotRef, a, b model.Participant, corePhase bool) {
	first, second := orderPair(a, b)
	ref.slot.Assigned = []string{first.ID, second.ID}
	ref.slot.AssignedNames = []string{first.Name, second.Name}
	ref.slot.Fixed = []bool{false, false}

	for _, id := range ref.slot.Assigned {
		if corePhase {
			e.ledger.RecordCore(id, ref.slot.CategoryKey, ref.date, ref.week)
		} else {
			e.ledger.Record(id, ref.slot.CategoryKey, ref.date, ref.week)
		}
	}
}

// shuffleRefs shuffles a slot list in place using the injected source.
func (e *engine) shuffleRefs(refs []slotRef) {
	e.rng.Shuffle(len(refs), func(i, j int) {
		refs[i], refs[j] = refs[j], refs[i]
	})
}

// pool returns the active participants matching a slot type.
func (e *engine) pool(ptype model.ParticipantType) []model.Participant {
	var out []model.Participant
	for _, p := range e.active {
		if p.Type == ptype {
			out = append(out, p)
		}
	}
	return out
}
