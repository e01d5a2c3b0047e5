package criteria

import (
	"github.com/jakechorley/interview-allocator/pkg/core/allocator"
)

// AvailabilityCriterion prefers blocks where more interviewers are free.
//
// Score:
//   - The number of interviewers available for the whole block
type AvailabilityCriterion struct {
	weight float64
}

// NewAvailabilityCriterion creates a new AvailabilityCriterion with the given weight
func NewAvailabilityCriterion(weight float64) *AvailabilityCriterion {
	return &AvailabilityCriterion{
		weight: weight,
	}
}

func (c *AvailabilityCriterion) Name() string {
	return "Availability"
}

func (c *AvailabilityCriterion) Score(block *allocator.TimeBlock, profile *allocator.PositionProfile) float64 {
	return float64(block.AvailableCount())
}

func (c *AvailabilityCriterion) Weight() float64 {
	return c.weight
}
