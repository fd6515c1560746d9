package postgres

import (
	"context"
	"fmt"
)

// GetAbsentees retrieves the IDs of participants recorded absent in a month
func (d *DB) GetAbsentees(ctx context.Context, year, month int) ([]string, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT participant_id
		FROM absence
		WHERE year = $1 AND month = $2
	`, year, month)
	if err != nil {
		return nil, fmt.Errorf("failed to query absences: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan absence: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating absences: %w", err)
	}

	return ids, nil
}
