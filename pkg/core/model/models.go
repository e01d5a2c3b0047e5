package model

import (
	"slices"
	"time"
)

// InterviewDuration is the length of every allocated interview
const InterviewDuration = 30 * time.Minute

// UserID identifies a user (interviewer or applicant)
type UserID int64

// SectionID identifies the section an interviewer belongs to
type SectionID int64

// User represents a person known to the recruitment system
type User struct {
	ID        UserID
	FirstName string
	LastName  string
	Email     string
}

// FullName returns "FirstName LastName", trimmed when either part is missing
func (u User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	default:
		return u.FirstName + " " + u.LastName
	}
}

// Recruitment bounds the window in which interviews can be held
type Recruitment struct {
	ID                  int64
	Name                string
	VisibleFrom         time.Time
	ApplicationDeadline time.Time
}

// Position is a role applicants apply for within a recruitment
type Position struct {
	ID            int64
	RecruitmentID int64
	Name          string

	// SharedInterviewGroupID is set when the position shares interviews with
	// other positions. An applicant who applied to several positions in the
	// same group gets a single interview.
	SharedInterviewGroupID *int64
}

// HasSharedInterviews reports whether the position belongs to a shared interview group
func (p Position) HasSharedInterviews() bool {
	return p.SharedInterviewGroupID != nil
}

// Application links one applicant to one position
type Application struct {
	ID          int64
	PositionID  int64
	ApplicantID UserID
	Withdrawn   bool
	InterviewID *string
	Notified    bool
}

// Pending reports whether the application still needs an interview
func (a Application) Pending() bool {
	return !a.Withdrawn && a.InterviewID == nil
}

// Interview is a scheduled interview slot
type Interview struct {
	ID            string
	RecruitmentID int64
	PositionID    int64
	Time          time.Time
	Location      string
	Interviewers  []UserID
}

// End returns the time the interview finishes
func (iv Interview) End() time.Time {
	return iv.Time.Add(InterviewDuration)
}

// HasInterviewer reports whether the user interviews in this slot
func (iv Interview) HasInterviewer(user UserID) bool {
	return slices.Contains(iv.Interviewers, user)
}

// NewInterview holds the fields needed to create an interview
type NewInterview struct {
	RecruitmentID int64
	PositionID    int64
	Time          time.Time
	Location      string
	Interviewers  []UserID
}

// OccupiedTimeslot marks a user as unavailable during [Start, End)
type OccupiedTimeslot struct {
	UserID        UserID
	RecruitmentID int64
	Start         time.Time
	End           time.Time
}

// Overlaps uses half-open semantics: touching boundaries do not overlap
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

// Overlaps reports whether the timeslot overlaps [start, end)
func (o OccupiedTimeslot) Overlaps(start, end time.Time) bool {
	return Overlaps(o.Start, o.End, start, end)
}
