package allocator

import (
	"math"
	"sort"
)

// RateBlock sums the weighted criterion scores of a block.
// The rating is floored to an integer and never negative.
func RateBlock(block *TimeBlock, profile *PositionProfile, criteria []BlockCriterion) int {
	total := 0.0
	for _, criterion := range criteria {
		total += criterion.Score(block, profile) * criterion.Weight()
	}

	rating := int(math.Floor(total))
	if rating < 0 {
		return 0
	}
	return rating
}

// RankBlocks rates every block and sorts them in-place: highest rating first,
// and among equally rated blocks the earliest start first.
func RankBlocks(blocks []*TimeBlock, profile *PositionProfile, criteria []BlockCriterion) {
	for _, block := range blocks {
		block.Rating = RateBlock(block, profile, criteria)
	}

	sort.SliceStable(blocks, func(i, j int) bool {
		if blocks[i].Rating != blocks[j].Rating {
			return blocks[i].Rating > blocks[j].Rating
		}
		return blocks[i].Start.Before(blocks[j].Start)
	})
}
