package allocator

import (
	"time"

	"github.com/jakechorley/interview-allocator/pkg/core/model"
)

type busyInterval struct {
	start time.Time
	end   time.Time
}

// InterviewerAvailability tracks when interviewers are committed to interviews
// during one allocation run. It is seeded from the interviews that already exist
// so earlier runs are respected, and discarded when the run ends.
type InterviewerAvailability struct {
	busy map[model.UserID][]busyInterval
}

// NewInterviewerAvailability creates an index seeded with existing interviews
func NewInterviewerAvailability(existing []model.Interview) *InterviewerAvailability {
	ia := &InterviewerAvailability{
		busy: make(map[model.UserID][]busyInterval),
	}
	for _, interview := range existing {
		ia.MarkUnavailable(interview.Interviewers, interview.Time, interview.End())
	}
	return ia
}

// IsAvailable returns true if no busy interval of the interviewer overlaps [start, end)
func (ia *InterviewerAvailability) IsAvailable(user model.UserID, start, end time.Time) bool {
	for _, interval := range ia.busy[user] {
		if model.Overlaps(interval.start, interval.end, start, end) {
			return false
		}
	}
	return true
}

// MarkUnavailable records [start, end) as busy for each interviewer
func (ia *InterviewerAvailability) MarkUnavailable(users []model.UserID, start, end time.Time) {
	for _, user := range users {
		ia.busy[user] = append(ia.busy[user], busyInterval{start: start, end: end})
	}
}

// Available filters candidates down to those free during [start, end), preserving order
func (ia *InterviewerAvailability) Available(candidates []model.UserID, start, end time.Time) []model.UserID {
	available := make([]model.UserID, 0, len(candidates))
	for _, user := range candidates {
		if ia.IsAvailable(user, start, end) {
			available = append(available, user)
		}
	}
	return available
}
