package allocator

import (
	"context"
	"time"

	"github.com/jakechorley/interview-allocator/pkg/core/model"
)

// PositionStore provides read access to positions and their interviewers
type PositionStore interface {
	GetPosition(ctx context.Context, positionID int64) (*model.Position, error)

	// GetEligibleInterviewers returns everyone who may interview for the position.
	// For positions in a shared interview group this covers the whole group.
	GetEligibleInterviewers(ctx context.Context, positionID int64) ([]model.UserID, error)

	GetRecruitmentWindow(ctx context.Context, positionID int64) (*model.Recruitment, error)
	GetSectionGroups(ctx context.Context, positionID int64) (map[model.SectionID][]model.UserID, error)
}

// ApplicationStore provides access to applications
type ApplicationStore interface {
	// PendingForPosition returns non-withdrawn applications without an interview, in list order
	PendingForPosition(ctx context.Context, positionID int64) ([]model.Application, error)

	// PendingForApplicantInGroup returns the applicant's pending applications
	// for any position in the shared interview group
	PendingForApplicantInGroup(ctx context.Context, applicantID model.UserID, groupID int64) ([]model.Application, error)

	// SharedGroupInterview returns an interview the applicant already has for a
	// position in the group, or nil
	SharedGroupInterview(ctx context.Context, applicantID model.UserID, groupID int64) (*model.Interview, error)

	LinkInterview(ctx context.Context, applicationID int64, interviewID string) error
}

// InterviewStore provides access to interviews
type InterviewStore interface {
	ExistingForRecruitment(ctx context.Context, recruitmentID int64) ([]model.Interview, error)
	Create(ctx context.Context, interview model.NewInterview) (*model.Interview, error)

	// HasConflict reports whether the applicant already has an interview in the
	// recruitment overlapping [start, end)
	HasConflict(ctx context.Context, applicantID model.UserID, recruitmentID int64, start, end time.Time) (bool, error)
}

// OccupiedTimeslotStore provides the unavailability records of a recruitment
type OccupiedTimeslotStore interface {
	ForRecruitment(ctx context.Context, recruitmentID int64) ([]model.OccupiedTimeslot, error)
}

// Stores bundles every collaborator the allocator reads from or writes to
type Stores interface {
	PositionStore
	ApplicationStore
	InterviewStore
	OccupiedTimeslotStore
}
