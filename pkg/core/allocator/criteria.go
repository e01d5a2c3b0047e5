package allocator

import (
	"fmt"
	"time"
)

// InterviewValidationError represents a broken allocation invariant for a specific interview
type InterviewValidationError struct {
	InterviewID   string
	InterviewTime time.Time
	Rule          string
	Description   string
}

func (e InterviewValidationError) String() string {
	return fmt.Sprintf("%s [%s] %s: %s", e.InterviewTime.Format("2006-01-02 15:04"), e.InterviewID, e.Rule, e.Description)
}

// BlockCriterion contributes to the rating of a time block.
// Blocks are tried in descending rating order, so criteria decide which slots
// are offered first.
type BlockCriterion interface {
	// Name returns a human-readable identifier for this criterion
	Name() string

	// Score returns the unweighted contribution of the block.
	// Return 0 if this criterion doesn't apply to the position.
	Score(block *TimeBlock, profile *PositionProfile) float64

	// Weight is multiplied with Score before the contributions are summed
	Weight() float64
}
