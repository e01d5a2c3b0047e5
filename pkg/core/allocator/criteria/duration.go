package criteria

import (
	"github.com/jakechorley/interview-allocator/pkg/core/allocator"
)

// DurationCriterion prefers longer blocks, which can hold more interviews
// with the same panel.
//
// Score:
//   - The block length in hours (fractional)
type DurationCriterion struct {
	weight float64
}

// NewDurationCriterion creates a new DurationCriterion with the given weight
func NewDurationCriterion(weight float64) *DurationCriterion {
	return &DurationCriterion{
		weight: weight,
	}
}

func (c *DurationCriterion) Name() string {
	return "Duration"
}

func (c *DurationCriterion) Score(block *allocator.TimeBlock, profile *allocator.PositionProfile) float64 {
	return block.Duration().Hours()
}

func (c *DurationCriterion) Weight() float64 {
	return c.weight
}
