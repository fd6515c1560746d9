package postgres

import (
	"context"
	"fmt"

	"github.com/danielhward/serviceroster/pkg/db"
)

// GetParticipants retrieves all participant registry records
func (d *DB) GetParticipants(ctx context.Context) ([]db.Participant, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, name, gender, type, copy_type, grade, is_active
		FROM participant
		ORDER BY grade DESC, name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query participants: %w", err)
	}
	defer rows.Close()

	var participants []db.Participant
	for rows.Next() {
		var p db.Participant
		var grade *string
		if err := rows.Scan(&p.ID, &p.Name, &p.Gender, &p.Type, &p.CopyType, &grade, &p.IsActive); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		if grade != nil {
			p.Grade = *grade
		}
		participants = append(participants, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating participants: %w", err)
	}

	return participants, nil
}
