package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/danielhward/serviceroster/pkg/core/model"
	"github.com/danielhward/serviceroster/pkg/db"
)

// ViewScheduleResult contains a month's stored schedule
type ViewScheduleResult struct {
	Year      int
	Month     int
	Schedule  []model.DaySchedule
	Confirmed bool
}

// ViewScheduleStore defines the database operations needed for viewing a schedule
type ViewScheduleStore interface {
	GetSchedule(ctx context.Context, year, month int) ([]db.ScheduleSlot, error)
	IsScheduleConfirmed(ctx context.Context, year, month int) (bool, error)
}

// ViewSchedule fetches the stored schedule for a month
func ViewSchedule(
	ctx context.Context,
	database ViewScheduleStore,
	logger *zap.Logger,
	year, month int,
) (*ViewScheduleResult, error) {
	logger.Debug("Starting viewSchedule", zap.Int("year", year), zap.Int("month", month))

	if month < 1 || month > 12 {
		return nil, fmt.Errorf("month must be between 1 and 12, got %d", month)
	}

	slotRows, err := database.GetSchedule(ctx, year, month)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch schedule: %w", err)
	}
	if len(slotRows) == 0 {
		return nil, fmt.Errorf("%w: %d-%02d", ErrNoConfirmedSchedule, year, month)
	}

	confirmed, err := database.IsScheduleConfirmed(ctx, year, month)
	if err != nil {
		return nil, fmt.Errorf("failed to check schedule confirmation: %w", err)
	}

	return &ViewScheduleResult{
		Year:      year,
		Month:     month,
		Schedule:  groupSlotsByDay(slotRows),
		Confirmed: confirmed,
	}, nil
}
