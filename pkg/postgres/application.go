package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jakechorley/interview-allocator/pkg/core/model"
	"github.com/jakechorley/interview-allocator/pkg/db"
)

const applicationColumns = `a.id, a.position_id, a.applicant_id, a.withdrawn, a.interview_id::text, a.notified`

func scanApplications(rows pgx.Rows) ([]model.Application, error) {
	defer rows.Close()

	var apps []model.Application
	for rows.Next() {
		var a model.Application
		var applicantID int64
		if err := rows.Scan(&a.ID, &a.PositionID, &applicantID, &a.Withdrawn, &a.InterviewID, &a.Notified); err != nil {
			return nil, fmt.Errorf("failed to scan application: %w", err)
		}
		a.ApplicantID = model.UserID(applicantID)
		apps = append(apps, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating applications: %w", err)
	}

	return apps, nil
}

// ApplicationsForPosition retrieves every application of a position in list order
func (d *DB) ApplicationsForPosition(ctx context.Context, positionID int64) ([]model.Application, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT `+applicationColumns+`
		FROM application a
		WHERE a.position_id = $1
		ORDER BY a.created_at, a.id
	`, positionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query applications: %w", err)
	}
	return scanApplications(rows)
}

// PendingForPosition retrieves non-withdrawn applications without an interview in list order
func (d *DB) PendingForPosition(ctx context.Context, positionID int64) ([]model.Application, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT `+applicationColumns+`
		FROM application a
		WHERE a.position_id = $1
		  AND NOT a.withdrawn
		  AND a.interview_id IS NULL
		ORDER BY a.created_at, a.id
	`, positionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending applications: %w", err)
	}
	return scanApplications(rows)
}

// PendingForApplicantInGroup retrieves the applicant's pending applications for
// positions in the shared interview group
func (d *DB) PendingForApplicantInGroup(ctx context.Context, applicantID model.UserID, groupID int64) ([]model.Application, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT `+applicationColumns+`
		FROM application a
		JOIN position p ON p.id = a.position_id
		WHERE a.applicant_id = $1
		  AND p.shared_interview_group_id = $2
		  AND NOT a.withdrawn
		  AND a.interview_id IS NULL
		ORDER BY a.created_at, a.id
	`, int64(applicantID), groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to query shared group applications: %w", err)
	}
	return scanApplications(rows)
}

// SharedGroupInterview retrieves the earliest interview the applicant already
// has for a position in the shared interview group, or nil
func (d *DB) SharedGroupInterview(ctx context.Context, applicantID model.UserID, groupID int64) (*model.Interview, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT `+interviewColumns+`
		FROM interview i
		LEFT JOIN interview_interviewer ii ON ii.interview_id = i.id
		WHERE i.id IN (
			SELECT a.interview_id
			FROM application a
			JOIN position p ON p.id = a.position_id
			WHERE a.applicant_id = $1
			  AND p.shared_interview_group_id = $2
			  AND NOT a.withdrawn
			  AND a.interview_id IS NOT NULL
		)
		GROUP BY i.id
		ORDER BY i.interview_time
		LIMIT 1
	`, int64(applicantID), groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to query shared group interview: %w", err)
	}

	interviews, err := scanInterviews(rows)
	if err != nil {
		return nil, err
	}
	if len(interviews) == 0 {
		return nil, nil
	}
	return &interviews[0], nil
}

// LinkInterview sets the interview of an application
func (d *DB) LinkInterview(ctx context.Context, applicationID int64, interviewID string) error {
	tag, err := d.pool.Exec(ctx, `
		UPDATE application SET interview_id = $2::text::uuid WHERE id = $1
	`, applicationID, interviewID)
	if err != nil {
		return fmt.Errorf("failed to link application to interview: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("application %d: %w", applicationID, db.ErrNotFound)
	}
	return nil
}

// MarkNotified records that the applicant was told about their interview
func (d *DB) MarkNotified(ctx context.Context, applicationID int64) error {
	tag, err := d.pool.Exec(ctx, `
		UPDATE application SET notified = TRUE WHERE id = $1
	`, applicationID)
	if err != nil {
		return fmt.Errorf("failed to mark application notified: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("application %d: %w", applicationID, db.ErrNotFound)
	}
	return nil
}
