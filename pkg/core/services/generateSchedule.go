package services

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/danielhward/serviceroster/internal/config"
	"github.com/danielhward/serviceroster/pkg/core/model"
	"github.com/danielhward/serviceroster/pkg/core/roster"
	"github.com/danielhward/serviceroster/pkg/db"
)

// GenerateScheduleResult contains the generation results
type GenerateScheduleResult struct {
	Year             int
	Month            int
	Schedule         []model.DaySchedule
	Summary          string
	ValidationErrors []roster.SlotValidationError
	Saved            bool
}

// GenerateScheduleStore defines the database operations needed for generating a schedule
type GenerateScheduleStore interface {
	GetParticipants(ctx context.Context) ([]db.Participant, error)
	GetSchedule(ctx context.Context, year, month int) ([]db.ScheduleSlot, error)
	SaveSchedule(ctx context.Context, year, month int, slots []db.ScheduleSlot) error
	IsScheduleConfirmed(ctx context.Context, year, month int) (bool, error)
	GetMonthlyAssignmentCounts(ctx context.Context, year, month int) ([]db.AssignmentCount, error)
	SaveMonthlyAssignmentCounts(ctx context.Context, year, month int, counts []db.AssignmentCount) error
	GetAbsentees(ctx context.Context, year, month int) ([]string, error)
}

// GenerateSchedule runs the assignment engine for a month and persists the
// resulting schedule and counts. If dryRun is true nothing is written. A
// non-zero seed pins the engine's randomness for reproducible runs.
func GenerateSchedule(
	ctx context.Context,
	database GenerateScheduleStore,
	cfg *config.Config,
	logger *zap.Logger,
	year, month int,
	dryRun bool,
	seed int64,
) (*GenerateScheduleResult, error) {
	logger.Debug("Starting generateSchedule",
		zap.Int("year", year),
		zap.Int("month", month),
		zap.Bool("dry_run", dryRun),
		zap.Int64("seed", seed))

	if month < 1 || month > 12 {
		return nil, fmt.Errorf("month must be between 1 and 12, got %d", month)
	}

	if cfg.BlockWhenConfirmed {
		confirmed, err := database.IsScheduleConfirmed(ctx, year, month)
		if err != nil {
			return nil, fmt.Errorf("failed to check schedule confirmation: %w", err)
		}
		if confirmed {
			return nil, fmt.Errorf("%w: %d-%02d", ErrScheduleConfirmed, year, month)
		}
	}

	// Step 1: fetch the month's slot template
	logger.Debug("Fetching schedule slots")
	slotRows, err := database.GetSchedule(ctx, year, month)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch schedule: %w", err)
	}
	if len(slotRows) == 0 {
		return nil, fmt.Errorf("%w: %d-%02d", ErrNoConfirmedSchedule, year, month)
	}
	schedule := groupSlotsByDay(slotRows)
	logger.Debug("Grouped schedule", zap.Int("days", len(schedule)), zap.Int("slots", len(slotRows)))

	// Step 2: fetch the participant registry
	logger.Debug("Fetching participants")
	participantRows, err := database.GetParticipants(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch participants: %w", err)
	}
	participants := toModelParticipants(participantRows)

	activeCount := 0
	for _, p := range participants {
		if p.IsActive {
			activeCount++
		}
	}
	logger.Debug("Found participants",
		zap.Int("total", len(participants)),
		zap.Int("active", activeCount))
	if activeCount == 0 {
		return nil, ErrNoActiveParticipants
	}

	// Step 3: fetch previous-month counts and absences
	prevYear, prevMonth := previousMonth(year, month)
	logger.Debug("Fetching previous month data",
		zap.Int("prev_year", prevYear),
		zap.Int("prev_month", prevMonth))

	countRows, err := database.GetMonthlyAssignmentCounts(ctx, prevYear, prevMonth)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch previous month counts: %w", err)
	}
	prevCounts := buildPrevCounts(countRows)

	absentIDs, err := database.GetAbsentees(ctx, prevYear, prevMonth)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch absentees: %w", err)
	}
	absentees := make(map[string]bool, len(absentIDs))
	for _, id := range absentIDs {
		absentees[id] = true
	}
	logger.Debug("Previous month data",
		zap.Int("count_rows", len(countRows)),
		zap.Int("absentees", len(absentees)))

	// Step 4: build the engine configuration
	rosterCfg, err := buildRosterConfig(cfg, year, time.Month(month), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to build roster config: %w", err)
	}

	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	// Step 5: run the assignment engine
	logger.Info("Running assignment engine")
	outcome, err := roster.Generate(roster.Input{
		Year:         year,
		Month:        time.Month(month),
		Schedule:     schedule,
		Participants: participants,
		PrevCounts:   prevCounts,
		Absentees:    absentees,
		Config:       rosterCfg,
		Rand:         rng,
		Logger:       logger,
	})
	if err != nil {
		return nil, fmt.Errorf("schedule generation failed: %w", err)
	}

	logger.Info("Generation completed",
		zap.Int("validation_errors", len(outcome.ValidationErrors)))

	shouldSave := !dryRun
	if shouldSave {
		logger.Info("Saving schedule to database")
		if err := database.SaveSchedule(ctx, year, month, toScheduleSlots(year, month, outcome.Schedule)); err != nil {
			return nil, fmt.Errorf("failed to save schedule: %w", err)
		}
		if err := database.SaveMonthlyAssignmentCounts(ctx, year, month, toCountRows(year, month, outcome.CountRows)); err != nil {
			return nil, fmt.Errorf("failed to save assignment counts: %w", err)
		}
		logger.Info("Schedule saved", zap.Int("count_rows", len(outcome.CountRows)))
	} else {
		logger.Info("Dry run mode - schedule not saved")
	}

	return &GenerateScheduleResult{
		Year:             year,
		Month:            month,
		Schedule:         outcome.Schedule,
		Summary:          outcome.Summary,
		ValidationErrors: outcome.ValidationErrors,
		Saved:            shouldSave,
	}, nil
}
