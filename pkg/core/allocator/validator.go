package allocator

import (
	"fmt"
	"time"

	"github.com/jakechorley/interview-allocator/pkg/core/model"
)

// Validation rule names
const (
	RuleInterviewerOverlap = "InterviewerOverlap"
	RuleApplicantOverlap   = "ApplicantOverlap"
	RuleNoticePeriod       = "NoticePeriod"
	RuleNoInterviewers     = "NoInterviewers"
)

// ValidateAllocation checks the interviews of a run against the invariants every
// allocation must hold. An empty slice indicates the allocation is valid.
func ValidateAllocation(interviews []AllocatedInterview, floor time.Time) []InterviewValidationError {
	var errors []InterviewValidationError

	for i, a := range interviews {
		iv := a.Interview

		if len(iv.Interviewers) == 0 {
			errors = append(errors, InterviewValidationError{
				InterviewID:   iv.ID,
				InterviewTime: iv.Time,
				Rule:          RuleNoInterviewers,
				Description:   "interview has no interviewers",
			})
		}

		if !floor.IsZero() && iv.Time.Before(floor) {
			errors = append(errors, InterviewValidationError{
				InterviewID:   iv.ID,
				InterviewTime: iv.Time,
				Rule:          RuleNoticePeriod,
				Description:   fmt.Sprintf("starts before the earliest allowed time %s", floor.Format(time.RFC3339)),
			})
		}

		for _, b := range interviews[i+1:] {
			other := b.Interview
			if !model.Overlaps(iv.Time, iv.End(), other.Time, other.End()) {
				continue
			}

			for _, user := range iv.Interviewers {
				if other.HasInterviewer(user) {
					errors = append(errors, InterviewValidationError{
						InterviewID:   iv.ID,
						InterviewTime: iv.Time,
						Rule:          RuleInterviewerOverlap,
						Description:   fmt.Sprintf("interviewer %d also interviews in %s", user, other.ID),
					})
				}
			}

			otherApplicants := b.ApplicantIDs()
			for _, applicant := range a.ApplicantIDs() {
				for _, o := range otherApplicants {
					if o == applicant {
						errors = append(errors, InterviewValidationError{
							InterviewID:   iv.ID,
							InterviewTime: iv.Time,
							Rule:          RuleApplicantOverlap,
							Description:   fmt.Sprintf("applicant %d also attends %s", applicant, other.ID),
						})
					}
				}
			}
		}
	}

	return errors
}
