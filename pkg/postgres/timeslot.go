package postgres

import (
	"context"
	"fmt"

	"github.com/jakechorley/interview-allocator/pkg/core/model"
)

// ForRecruitment retrieves the occupied timeslots of a recruitment ordered by start time
func (d *DB) ForRecruitment(ctx context.Context, recruitmentID int64) ([]model.OccupiedTimeslot, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT user_id, recruitment_id, start_time, end_time
		FROM occupied_timeslot
		WHERE recruitment_id = $1
		ORDER BY start_time, end_time, user_id
	`, recruitmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query occupied timeslots: %w", err)
	}
	defer rows.Close()

	var slots []model.OccupiedTimeslot
	for rows.Next() {
		var s model.OccupiedTimeslot
		var userID int64
		if err := rows.Scan(&userID, &s.RecruitmentID, &s.Start, &s.End); err != nil {
			return nil, fmt.Errorf("failed to scan occupied timeslot: %w", err)
		}
		s.UserID = model.UserID(userID)
		slots = append(slots, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating occupied timeslots: %w", err)
	}

	return slots, nil
}
