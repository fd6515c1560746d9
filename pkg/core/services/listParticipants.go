package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/danielhward/serviceroster/pkg/core/model"
	"github.com/danielhward/serviceroster/pkg/db"
)

// ListParticipantsStore defines the database operations needed for listing participants
type ListParticipantsStore interface {
	GetParticipants(ctx context.Context) ([]db.Participant, error)
}

// ListParticipants fetches the participant registry. When activeOnly is set
// inactive participants are filtered out.
func ListParticipants(
	ctx context.Context,
	database ListParticipantsStore,
	logger *zap.Logger,
	activeOnly bool,
) ([]model.Participant, error) {
	logger.Debug("Starting listParticipants", zap.Bool("active_only", activeOnly))

	rows, err := database.GetParticipants(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch participants: %w", err)
	}

	participants := toModelParticipants(rows)
	if !activeOnly {
		return participants, nil
	}

	active := make([]model.Participant, 0, len(participants))
	for _, p := range participants {
		if p.IsActive {
			active = append(active, p)
		}
	}
	return active, nil
}
