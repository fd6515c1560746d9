package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/danielhward/serviceroster/pkg/db"
)

// GetMonthlyAssignmentCounts retrieves all assignment counts for a month
func (d *DB) GetMonthlyAssignmentCounts(ctx context.Context, year, month int) ([]db.AssignmentCount, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, year, month, participant_id, category_key, count
		FROM monthly_assignment_count
		WHERE year = $1 AND month = $2
	`, year, month)
	if err != nil {
		return nil, fmt.Errorf("failed to query assignment counts: %w", err)
	}
	defer rows.Close()

	var counts []db.AssignmentCount
	for rows.Next() {
		var c db.AssignmentCount
		if err := rows.Scan(&c.ID, &c.Year, &c.Month, &c.ParticipantID, &c.CategoryKey, &c.Count); err != nil {
			return nil, fmt.Errorf("failed to scan assignment count: %w", err)
		}
		counts = append(counts, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating assignment counts: %w", err)
	}

	return counts, nil
}

// SaveMonthlyAssignmentCounts replaces the stored counts for a month
func (d *DB) SaveMonthlyAssignmentCounts(ctx context.Context, year, month int, counts []db.AssignmentCount) error {
	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `DELETE FROM monthly_assignment_count WHERE year = $1 AND month = $2`, year, month)
	if err != nil {
		return fmt.Errorf("failed to delete existing counts: %w", err)
	}

	for _, c := range counts {
		id := c.ID
		if id == "" {
			id = uuid.New().String()
		}
		_, err := tx.Exec(ctx, `
			INSERT INTO monthly_assignment_count (id, year, month, participant_id, category_key, count)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, id, year, month, c.ParticipantID, c.CategoryKey, c.Count)
		if err != nil {
			return fmt.Errorf("failed to insert assignment count: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
