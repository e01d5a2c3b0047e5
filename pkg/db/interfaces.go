package db

import (
	"context"
	"errors"
	"time"

	"github.com/jakechorley/interview-allocator/pkg/core/model"
)

var (
	// ErrNotFound is returned when a requested record does not exist
	ErrNotFound = errors.New("not found")

	// ErrPositionLocked is returned when another run holds the position lock
	ErrPositionLocked = errors.New("position is locked by another allocation run")
)

// PositionStore defines the interface for position database operations
type PositionStore interface {
	GetPosition(ctx context.Context, positionID int64) (*model.Position, error)
	ListPositions(ctx context.Context, recruitmentID int64) ([]model.Position, error)
	GetEligibleInterviewers(ctx context.Context, positionID int64) ([]model.UserID, error)
	GetRecruitmentWindow(ctx context.Context, positionID int64) (*model.Recruitment, error)
	GetSectionGroups(ctx context.Context, positionID int64) (map[model.SectionID][]model.UserID, error)
}

// ApplicationStore defines the interface for application database operations
type ApplicationStore interface {
	ApplicationsForPosition(ctx context.Context, positionID int64) ([]model.Application, error)
	PendingForPosition(ctx context.Context, positionID int64) ([]model.Application, error)
	PendingForApplicantInGroup(ctx context.Context, applicantID model.UserID, groupID int64) ([]model.Application, error)
	SharedGroupInterview(ctx context.Context, applicantID model.UserID, groupID int64) (*model.Interview, error)
	LinkInterview(ctx context.Context, applicationID int64, interviewID string) error
	MarkNotified(ctx context.Context, applicationID int64) error
}

// InterviewStore defines the interface for interview database operations
type InterviewStore interface {
	ExistingForRecruitment(ctx context.Context, recruitmentID int64) ([]model.Interview, error)
	InterviewsForPosition(ctx context.Context, positionID int64) ([]model.Interview, error)
	Create(ctx context.Context, interview model.NewInterview) (*model.Interview, error)
	HasConflict(ctx context.Context, applicantID model.UserID, recruitmentID int64, start, end time.Time) (bool, error)
}

// OccupiedTimeslotStore defines the interface for occupied timeslot database operations
type OccupiedTimeslotStore interface {
	ForRecruitment(ctx context.Context, recruitmentID int64) ([]model.OccupiedTimeslot, error)
}

// UserStore defines the interface for user database operations
type UserStore interface {
	GetUsers(ctx context.Context, ids []model.UserID) (map[model.UserID]model.User, error)
}

// Locker serialises allocation runs per position
type Locker interface {
	// LockPosition returns ErrPositionLocked if another run holds the lock.
	// The returned function releases it.
	LockPosition(ctx context.Context, positionID int64) (func(), error)
}

// Database defines the interface for all database operations.
// Both the in-memory MemoryDB and postgres.DB implement this interface.
type Database interface {
	PositionStore
	ApplicationStore
	InterviewStore
	OccupiedTimeslotStore
	UserStore
	Locker
}
