package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jakechorley/interview-allocator/pkg/core/model"
)

// interviewColumns must be used with a LEFT JOIN on interview_interviewer ii and GROUP BY i.id
const interviewColumns = `
	i.id::text, i.recruitment_id, i.position_id, i.interview_time, i.location,
	COALESCE(array_agg(ii.user_id ORDER BY ii.user_id) FILTER (WHERE ii.user_id IS NOT NULL), '{}')
`

func scanInterviews(rows pgx.Rows) ([]model.Interview, error) {
	defer rows.Close()

	var interviews []model.Interview
	for rows.Next() {
		var iv model.Interview
		var interviewers []int64
		if err := rows.Scan(&iv.ID, &iv.RecruitmentID, &iv.PositionID, &iv.Time, &iv.Location, &interviewers); err != nil {
			return nil, fmt.Errorf("failed to scan interview: %w", err)
		}
		iv.Interviewers = make([]model.UserID, 0, len(interviewers))
		for _, id := range interviewers {
			iv.Interviewers = append(iv.Interviewers, model.UserID(id))
		}
		interviews = append(interviews, iv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating interviews: %w", err)
	}

	return interviews, nil
}

// ExistingForRecruitment retrieves every interview of a recruitment
func (d *DB) ExistingForRecruitment(ctx context.Context, recruitmentID int64) ([]model.Interview, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT `+interviewColumns+`
		FROM interview i
		LEFT JOIN interview_interviewer ii ON ii.interview_id = i.id
		WHERE i.recruitment_id = $1
		GROUP BY i.id
		ORDER BY i.interview_time
	`, recruitmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query interviews: %w", err)
	}
	return scanInterviews(rows)
}

// InterviewsForPosition retrieves the interviews of a position ordered by time
func (d *DB) InterviewsForPosition(ctx context.Context, positionID int64) ([]model.Interview, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT `+interviewColumns+`
		FROM interview i
		LEFT JOIN interview_interviewer ii ON ii.interview_id = i.id
		WHERE i.position_id = $1
		GROUP BY i.id
		ORDER BY i.interview_time
	`, positionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query position interviews: %w", err)
	}
	return scanInterviews(rows)
}

// Create inserts an interview together with its interviewers
func (d *DB) Create(ctx context.Context, interview model.NewInterview) (*model.Interview, error) {
	created := model.Interview{
		ID:            uuid.NewString(),
		RecruitmentID: interview.RecruitmentID,
		PositionID:    interview.PositionID,
		Time:          interview.Time,
		Location:      interview.Location,
		Interviewers:  interview.Interviewers,
	}

	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO interview (id, recruitment_id, position_id, interview_time, location)
		VALUES ($1::text::uuid, $2, $3, $4, $5)
	`, created.ID, created.RecruitmentID, created.PositionID, created.Time.UTC(), created.Location)
	if err != nil {
		return nil, fmt.Errorf("failed to insert interview: %w", err)
	}

	for _, user := range created.Interviewers {
		_, err := tx.Exec(ctx, `
			INSERT INTO interview_interviewer (interview_id, user_id)
			VALUES ($1::text::uuid, $2)
		`, created.ID, int64(user))
		if err != nil {
			return nil, fmt.Errorf("failed to insert interview interviewer: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &created, nil
}

// HasConflict reports whether the applicant has an interview in the recruitment overlapping [start, end)
func (d *DB) HasConflict(ctx context.Context, applicantID model.UserID, recruitmentID int64, start, end time.Time) (bool, error) {
	var conflict bool
	err := d.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1
			FROM application a
			JOIN interview i ON i.id = a.interview_id
			WHERE a.applicant_id = $1
			  AND NOT a.withdrawn
			  AND i.recruitment_id = $2
			  AND i.interview_time < $4
			  AND i.interview_time + make_interval(secs => $5) > $3
		)
	`, int64(applicantID), recruitmentID, start.UTC(), end.UTC(), model.InterviewDuration.Seconds()).Scan(&conflict)
	if err != nil {
		return false, fmt.Errorf("failed to query interview conflicts: %w", err)
	}
	return conflict, nil
}
