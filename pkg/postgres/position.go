package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jakechorley/interview-allocator/pkg/core/model"
	"github.com/jakechorley/interview-allocator/pkg/db"
)

// groupMembers selects the positions sharing interviews with position $1, including itself
const groupMembers = `
	SELECT p.id
	FROM position p
	JOIN position target ON target.id = $1
	WHERE p.id = target.id
	   OR (target.shared_interview_group_id IS NOT NULL
	       AND p.shared_interview_group_id = target.shared_interview_group_id)
`

// GetPosition retrieves a single position
func (d *DB) GetPosition(ctx context.Context, positionID int64) (*model.Position, error) {
	var p model.Position
	err := d.pool.QueryRow(ctx, `
		SELECT id, recruitment_id, name, shared_interview_group_id
		FROM position
		WHERE id = $1
	`, positionID).Scan(&p.ID, &p.RecruitmentID, &p.Name, &p.SharedInterviewGroupID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("position %d: %w", positionID, db.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query position: %w", err)
	}
	return &p, nil
}

// ListPositions retrieves the positions of a recruitment ordered by ID
func (d *DB) ListPositions(ctx context.Context, recruitmentID int64) ([]model.Position, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, recruitment_id, name, shared_interview_group_id
		FROM position
		WHERE recruitment_id = $1
		ORDER BY id
	`, recruitmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query positions: %w", err)
	}
	defer rows.Close()

	var positions []model.Position
	for rows.Next() {
		var p model.Position
		if err := rows.Scan(&p.ID, &p.RecruitmentID, &p.Name, &p.SharedInterviewGroupID); err != nil {
			return nil, fmt.Errorf("failed to scan position: %w", err)
		}
		positions = append(positions, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating positions: %w", err)
	}

	return positions, nil
}

// GetEligibleInterviewers retrieves the interviewers of the position and of
// every position in its shared interview group
func (d *DB) GetEligibleInterviewers(ctx context.Context, positionID int64) ([]model.UserID, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT DISTINCT pi.user_id
		FROM position_interviewer pi
		WHERE pi.position_id IN (`+groupMembers+`)
		ORDER BY pi.user_id
	`, positionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query interviewers: %w", err)
	}
	defer rows.Close()

	var interviewers []model.UserID
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan interviewer: %w", err)
		}
		interviewers = append(interviewers, model.UserID(id))
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating interviewers: %w", err)
	}

	return interviewers, nil
}

// GetRecruitmentWindow retrieves the recruitment the position belongs to
func (d *DB) GetRecruitmentWindow(ctx context.Context, positionID int64) (*model.Recruitment, error) {
	var r model.Recruitment
	err := d.pool.QueryRow(ctx, `
		SELECT r.id, r.name, r.visible_from, r.application_deadline
		FROM recruitment r
		JOIN position p ON p.recruitment_id = r.id
		WHERE p.id = $1
	`, positionID).Scan(&r.ID, &r.Name, &r.VisibleFrom, &r.ApplicationDeadline)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("recruitment for position %d: %w", positionID, db.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query recruitment: %w", err)
	}
	return &r, nil
}

// GetSectionGroups groups the eligible interviewers by section.
// Interviewers without a section are left out.
func (d *DB) GetSectionGroups(ctx context.Context, positionID int64) (map[model.SectionID][]model.UserID, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT DISTINCT u.section_id, u.id
		FROM position_interviewer pi
		JOIN app_user u ON u.id = pi.user_id
		WHERE pi.position_id IN (`+groupMembers+`)
		  AND u.section_id IS NOT NULL
		ORDER BY u.section_id, u.id
	`, positionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query section groups: %w", err)
	}
	defer rows.Close()

	groups := make(map[model.SectionID][]model.UserID)
	for rows.Next() {
		var sectionID, userID int64
		if err := rows.Scan(&sectionID, &userID); err != nil {
			return nil, fmt.Errorf("failed to scan section member: %w", err)
		}
		groups[model.SectionID(sectionID)] = append(groups[model.SectionID(sectionID)], model.UserID(userID))
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating section groups: %w", err)
	}

	return groups, nil
}
