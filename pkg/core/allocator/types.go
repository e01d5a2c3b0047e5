package allocator

import (
	"slices"
	"time"

	"github.com/jakechorley/interview-allocator/pkg/core/model"
)

// TimeBlock is a contiguous interval during which the set of available
// interviewers for a position does not change.
// Blocks are derived data: generated per allocation run and never persisted.
type TimeBlock struct {
	PositionID int64
	Start      time.Time
	End        time.Time

	// AvailableInterviewers is kept sorted by ID
	AvailableInterviewers []model.UserID

	// Rating is filled in by RankBlocks
	Rating int
}

// Date returns the calendar date of the block start in the block's location
func (b *TimeBlock) Date() string {
	return b.Start.Format("2006-01-02")
}

// Duration returns the length of the block
func (b *TimeBlock) Duration() time.Duration {
	return b.End.Sub(b.Start)
}

// AvailableCount returns the number of interviewers available for the whole block
func (b *TimeBlock) AvailableCount() int {
	return len(b.AvailableInterviewers)
}

// IsAvailable returns true if the interviewer is available during this block
func (b *TimeBlock) IsAvailable(user model.UserID) bool {
	_, found := slices.BinarySearch(b.AvailableInterviewers, user)
	return found
}

// PositionProfile is the read-only view of a position used while generating
// and rating blocks
type PositionProfile struct {
	Position    model.Position
	Recruitment model.Recruitment

	// Interviewers eligible to interview for the position, sorted by ID
	Interviewers []model.UserID

	// Sections groups the interviewers by the section they belong to
	Sections map[model.SectionID][]model.UserID
}

// SpansMultipleSections reports whether the interviewers come from more than one section.
// Section-aware rating only applies in that case.
func (p *PositionProfile) SpansMultipleSections() bool {
	return len(p.Sections) > 1
}

// AllocatedInterview is an interview together with the applications linked to it
type AllocatedInterview struct {
	Interview    model.Interview
	Applications []model.Application
}

// ApplicantIDs returns the distinct applicants attending the interview
func (a AllocatedInterview) ApplicantIDs() []model.UserID {
	ids := make([]model.UserID, 0, len(a.Applications))
	for _, app := range a.Applications {
		if !slices.Contains(ids, app.ApplicantID) {
			ids = append(ids, app.ApplicantID)
		}
	}
	return ids
}

// AllocationOutcome represents the result of an allocation run
type AllocationOutcome struct {
	Profile *PositionProfile

	// Floor is the earliest time an interview could be scheduled in this run
	Floor time.Time

	// Created contains interviews created during this run, in creation order
	Created []AllocatedInterview

	// Reused contains applications linked to an interview that already existed
	// for another position in the same shared interview group
	Reused []AllocatedInterview

	// Pending contains the applications that could not be allocated
	Pending []model.Application
}

// Count returns the number of interviews created during the run
func (o *AllocationOutcome) Count() int {
	return len(o.Created)
}

// sortedUserIDs returns a sorted copy without duplicates
func sortedUserIDs(ids []model.UserID) []model.UserID {
	out := slices.Clone(ids)
	slices.Sort(out)
	return slices.Compact(out)
}
