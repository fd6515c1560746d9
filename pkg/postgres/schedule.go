package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/danielhward/serviceroster/pkg/db"
)

// GetSchedule retrieves all slot records for a month
func (d *DB) GetSchedule(ctx context.Context, year, month int) ([]db.ScheduleSlot, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, year, month, slot_date, slot_time, type, category_key, assigned, assigned_names, fixed
		FROM schedule_slot
		WHERE year = $1 AND month = $2
		ORDER BY slot_date, slot_time
	`, year, month)
	if err != nil {
		return nil, fmt.Errorf("failed to query schedule slots: %w", err)
	}
	defer rows.Close()

	var slots []db.ScheduleSlot
	for rows.Next() {
		var s db.ScheduleSlot
		if err := rows.Scan(&s.ID, &s.Year, &s.Month, &s.Date, &s.Time, &s.Type, &s.CategoryKey, &s.Assigned, &s.AssignedNames, &s.Fixed); err != nil {
			return nil, fmt.Errorf("failed to scan schedule slot: %w", err)
		}
		slots = append(slots, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating schedule slots: %w", err)
	}

	return slots, nil
}

// SaveSchedule replaces the stored schedule for a month with the given slots.
// The delete and inserts run in one transaction so a failed save leaves the
// previous schedule intact.
func (d *DB) SaveSchedule(ctx context.Context, year, month int, slots []db.ScheduleSlot) error {
	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `DELETE FROM schedule_slot WHERE year = $1 AND month = $2`, year, month)
	if err != nil {
		return fmt.Errorf("failed to delete existing schedule: %w", err)
	}

	for _, s := range slots {
		id := s.ID
		if id == "" {
			id = uuid.New().String()
		}
		_, err := tx.Exec(ctx, `
			INSERT INTO schedule_slot (id, year, month, slot_date, slot_time, type, category_key, assigned, assigned_names, fixed)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`, id, year, month, s.Date, s.Time, s.Type, s.CategoryKey, s.Assigned, s.AssignedNames, s.Fixed)
		if err != nil {
			return fmt.Errorf("failed to insert schedule slot: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// IsScheduleConfirmed reports whether the month's schedule has been confirmed
func (d *DB) IsScheduleConfirmed(ctx context.Context, year, month int) (bool, error) {
	var confirmed bool
	err := d.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM schedule_confirmation WHERE year = $1 AND month = $2
		)
	`, year, month).Scan(&confirmed)
	if err != nil {
		return false, fmt.Errorf("failed to query schedule confirmation: %w", err)
	}
	return confirmed, nil
}
