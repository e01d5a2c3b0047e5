package criteria

import (
	"github.com/jakechorley/interview-allocator/pkg/core/allocator"
	"github.com/jakechorley/interview-allocator/pkg/core/model"
)

// SectionDiversityCriterion prefers blocks where interviewers from many
// sections are free at the same time. A single slot in such a block can cover
// the interview requirements of several sections.
//
// Score:
//   - (sections with at least one available interviewer) / (total sections)
//   - 0 unless the position's interviewers span more than one section
type SectionDiversityCriterion struct {
	weight float64
}

// NewSectionDiversityCriterion creates a new SectionDiversityCriterion with the given weight
func NewSectionDiversityCriterion(weight float64) *SectionDiversityCriterion {
	return &SectionDiversityCriterion{
		weight: weight,
	}
}

func (c *SectionDiversityCriterion) Name() string {
	return "SectionDiversity"
}

func (c *SectionDiversityCriterion) Score(block *allocator.TimeBlock, profile *allocator.PositionProfile) float64 {
	if !profile.SpansMultipleSections() {
		return 0
	}

	represented := 0
	for _, members := range profile.Sections {
		if availableInSection(block, members) > 0 {
			represented++
		}
	}

	return float64(represented) / float64(len(profile.Sections))
}

func (c *SectionDiversityCriterion) Weight() float64 {
	return c.weight
}

// SectionCoverageCriterion prefers blocks with deep availability in every section.
//
// Score:
//   - Mean over sections of the number of available interviewers in that section
//   - 0 unless the position's interviewers span more than one section
type SectionCoverageCriterion struct {
	weight float64
}

// NewSectionCoverageCriterion creates a new SectionCoverageCriterion with the given weight
func NewSectionCoverageCriterion(weight float64) *SectionCoverageCriterion {
	return &SectionCoverageCriterion{
		weight: weight,
	}
}

func (c *SectionCoverageCriterion) Name() string {
	return "SectionCoverage"
}

func (c *SectionCoverageCriterion) Score(block *allocator.TimeBlock, profile *allocator.PositionProfile) float64 {
	if !profile.SpansMultipleSections() {
		return 0
	}

	total := 0
	for _, members := range profile.Sections {
		total += availableInSection(block, members)
	}

	return float64(total) / float64(len(profile.Sections))
}

func (c *SectionCoverageCriterion) Weight() float64 {
	return c.weight
}

// availableInSection counts the section members available for the whole block
func availableInSection(block *allocator.TimeBlock, members []model.UserID) int {
	count := 0
	for _, member := range members {
		if block.IsAvailable(member) {
			count++
		}
	}
	return count
}
