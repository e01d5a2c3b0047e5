package allocator

import (
	"errors"
	"fmt"
)

// Allocation failures. All of them are terminal for the run: the caller has
// to change the inputs or wait before trying again.
var (
	// ErrNoTimeBlocksAvailable is returned when no block could be generated,
	// e.g. the recruitment window has passed or the position has no interviewers
	ErrNoTimeBlocksAvailable = errors.New("no time blocks available")

	// ErrNoApplicationsWithoutInterviews is returned when every application is
	// withdrawn or already has an interview
	ErrNoApplicationsWithoutInterviews = errors.New("no applications without interviews")

	// ErrNoFutureTimeSlots is returned when every block ends within the notice period
	ErrNoFutureTimeSlots = errors.New("no time slots outside the notice period")

	// ErrAllApplicantsUnavailable is returned when interviewers were free but
	// every applicant conflicted with every attempted slot
	ErrAllApplicantsUnavailable = errors.New("all applicants unavailable")

	// ErrNoAvailableInterviewers is returned when every attempted slot lacked
	// free interviewers
	ErrNoAvailableInterviewers = errors.New("no available interviewers")

	// ErrInsufficientTimeBlocks is returned when only some applications were allocated
	ErrInsufficientTimeBlocks = errors.New("insufficient time blocks")
)

// AllocationError carries the failure kind together with how far the run got.
// errors.Is matches against the Kind sentinel.
type AllocationError struct {
	Kind       error
	PositionID int64

	// Allocated is the number of interviews created before the run stopped
	Allocated int

	// Remaining is the number of applications left without an interview
	Remaining int
}

func (e *AllocationError) Error() string {
	if e.Kind == ErrInsufficientTimeBlocks {
		return fmt.Sprintf("position %d: %v: allocated %d interviews, %d applications remain",
			e.PositionID, e.Kind, e.Allocated, e.Remaining)
	}
	return fmt.Sprintf("position %d: %v", e.PositionID, e.Kind)
}

func (e *AllocationError) Unwrap() error {
	return e.Kind
}

func newAllocationError(kind error, positionID int64, allocated, remaining int) *AllocationError {
	return &AllocationError{
		Kind:       kind,
		PositionID: positionID,
		Allocated:  allocated,
		Remaining:  remaining,
	}
}

// IsAllocationFailure reports whether err belongs to the allocation taxonomy
// rather than being an I/O or configuration error
func IsAllocationFailure(err error) bool {
	var allocErr *AllocationError
	return errors.As(err, &allocErr)
}
