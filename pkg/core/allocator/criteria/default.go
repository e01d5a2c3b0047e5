package criteria

import "github.com/jakechorley/interview-allocator/pkg/core/allocator"

// Block rating weights
const (
	WeightAvailability     = 2.0
	WeightDuration         = 0.5
	WeightSectionDiversity = 5.0
	WeightSectionCoverage  = 3.0
)

// Default returns the criteria used to rate blocks:
//
//	rating = available*2 + hours*0.5 [+ diversity*5 + avgPerSection*3 when interviewers span several sections]
func Default() []allocator.BlockCriterion {
	return []allocator.BlockCriterion{
		NewAvailabilityCriterion(WeightAvailability),
		NewDurationCriterion(WeightDuration),
		NewSectionDiversityCriterion(WeightSectionDiversity),
		NewSectionCoverageCriterion(WeightSectionCoverage),
	}
}
