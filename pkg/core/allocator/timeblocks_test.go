package allocator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakechorley/interview-allocator/pkg/core/model"
)

func at(day, hour, minute int) time.Time {
	return time.Date(2024, 3, day, hour, minute, 0, 0, time.UTC)
}

func occupied(user model.UserID, start, end time.Time) model.OccupiedTimeslot {
	return model.OccupiedTimeslot{UserID: user, RecruitmentID: 1, Start: start, End: end}
}

func TestGenerateBlocks_MergesConstantAvailability(t *testing.T) {
	unavailability := []model.OccupiedTimeslot{
		occupied(1, at(5, 11, 0), at(5, 12, 0)),
	}

	blocks := GenerateBlocks(10, []model.UserID{1, 2}, at(5, 9, 0), at(5, 12, 0), unavailability, 30*time.Minute)

	require.Len(t, blocks, 2, "Should merge 30 minute steps with the same availability")
	assert.Equal(t, at(5, 9, 0), blocks[0].Start)
	assert.Equal(t, at(5, 11, 0), blocks[0].End)
	assert.Equal(t, []model.UserID{1, 2}, blocks[0].AvailableInterviewers)
	assert.Equal(t, at(5, 11, 0), blocks[1].Start)
	assert.Equal(t, at(5, 12, 0), blocks[1].End)
	assert.Equal(t, []model.UserID{2}, blocks[1].AvailableInterviewers)
}

func TestGenerateBlocks_DropsEmptyBlocksAfterMerging(t *testing.T) {
	unavailability := []model.OccupiedTimeslot{
		occupied(1, at(5, 9, 0), at(5, 10, 0)),
	}

	blocks := GenerateBlocks(10, []model.UserID{1}, at(5, 8, 0), at(5, 11, 0), unavailability, 30*time.Minute)

	// The empty block separates the two, so they are not merged
	require.Len(t, blocks, 2)
	assert.Equal(t, at(5, 8, 0), blocks[0].Start)
	assert.Equal(t, at(5, 9, 0), blocks[0].End)
	assert.Equal(t, at(5, 10, 0), blocks[1].Start)
	assert.Equal(t, at(5, 11, 0), blocks[1].End)
}

func TestGenerateBlocks_TouchingBoundariesDoNotOverlap(t *testing.T) {
	unavailability := []model.OccupiedTimeslot{
		occupied(1, at(5, 8, 0), at(5, 9, 0)),
		occupied(1, at(5, 10, 0), at(5, 11, 0)),
	}

	blocks := GenerateBlocks(10, []model.UserID{1}, at(5, 9, 0), at(5, 10, 0), unavailability, 30*time.Minute)

	require.Len(t, blocks, 1)
	assert.Equal(t, at(5, 9, 0), blocks[0].Start)
	assert.Equal(t, at(5, 10, 0), blocks[0].End)
}

func TestGenerateBlocks_PartialOverlapBlocksWholeStep(t *testing.T) {
	unavailability := []model.OccupiedTimeslot{
		occupied(2, at(5, 9, 10), at(5, 9, 20)),
	}

	blocks := GenerateBlocks(10, []model.UserID{1, 2}, at(5, 9, 0), at(5, 10, 0), unavailability, 30*time.Minute)

	require.Len(t, blocks, 2)
	assert.Equal(t, []model.UserID{1}, blocks[0].AvailableInterviewers)
	assert.Equal(t, at(5, 9, 30), blocks[0].End)
	assert.Equal(t, []model.UserID{1, 2}, blocks[1].AvailableInterviewers)
}

func TestGenerateBlocks_NoInterviewers(t *testing.T) {
	blocks := GenerateBlocks(10, nil, at(5, 9, 0), at(5, 10, 0), nil, 30*time.Minute)
	assert.Empty(t, blocks)
}

func TestGenerateBlocks_ClipsLastStep(t *testing.T) {
	blocks := GenerateBlocks(10, []model.UserID{1}, at(5, 9, 0), at(5, 9, 45), nil, 30*time.Minute)

	require.Len(t, blocks, 1)
	assert.Equal(t, at(5, 9, 45), blocks[0].End)
}

func TestGenerateRecruitmentBlocks_OneInterviewerBusy(t *testing.T) {
	blocks := GenerateRecruitmentBlocks(BlockWindow{
		PositionID:   10,
		Interviewers: []model.UserID{1, 2, 3},
		Unavailability: []model.OccupiedTimeslot{
			occupied(2, at(5, 10, 0), at(5, 10, 30)),
		},
		From:           at(5, 0, 0),
		Until:          at(6, 0, 0),
		DailyStartHour: 8,
		DailyEndHour:   23,
		Location:       time.UTC,
		Interval:       30 * time.Minute,
	})

	require.Len(t, blocks, 3)

	assert.Equal(t, at(5, 8, 0), blocks[0].Start)
	assert.Equal(t, at(5, 10, 0), blocks[0].End)
	assert.Equal(t, 3, blocks[0].AvailableCount())

	assert.Equal(t, at(5, 10, 0), blocks[1].Start)
	assert.Equal(t, at(5, 10, 30), blocks[1].End)
	assert.Equal(t, []model.UserID{1, 3}, blocks[1].AvailableInterviewers)

	assert.Equal(t, at(5, 10, 30), blocks[2].Start)
	assert.Equal(t, at(5, 23, 0), blocks[2].End)
	assert.Equal(t, 3, blocks[2].AvailableCount())

	for _, block := range blocks {
		assert.Equal(t, "2024-03-05", block.Date())
	}
}

func TestGenerateRecruitmentBlocks_MultipleDaysWithExcludedDay(t *testing.T) {
	blocks := GenerateRecruitmentBlocks(BlockWindow{
		PositionID:     10,
		Interviewers:   []model.UserID{1},
		From:           at(4, 0, 0),
		Until:          at(7, 0, 0),
		DailyStartHour: 9,
		DailyEndHour:   17,
		Location:       time.UTC,
		ExcludeDay: func(day time.Time) bool {
			return day.Day() == 5
		},
	})

	require.Len(t, blocks, 2)
	assert.Equal(t, at(4, 9, 0), blocks[0].Start)
	assert.Equal(t, at(4, 17, 0), blocks[0].End)
	assert.Equal(t, at(6, 9, 0), blocks[1].Start)
	assert.Equal(t, at(6, 17, 0), blocks[1].End)
}

func TestGenerateRecruitmentBlocks_AlignsStartToGrid(t *testing.T) {
	blocks := GenerateRecruitmentBlocks(BlockWindow{
		PositionID:     10,
		Interviewers:   []model.UserID{1},
		From:           at(5, 10, 10),
		Until:          at(5, 12, 0),
		DailyStartHour: 8,
		DailyEndHour:   23,
		Location:       time.UTC,
	})

	require.Len(t, blocks, 1)
	assert.Equal(t, at(5, 10, 30), blocks[0].Start, "Should start on the next interval boundary")
	assert.Equal(t, at(5, 12, 0), blocks[0].End, "Should stop at the deadline")
}

func TestGenerateRecruitmentBlocks_EmptyWindow(t *testing.T) {
	blocks := GenerateRecruitmentBlocks(BlockWindow{
		PositionID:     10,
		Interviewers:   []model.UserID{1},
		From:           at(6, 0, 0),
		Until:          at(5, 0, 0),
		DailyStartHour: 8,
		DailyEndHour:   23,
		Location:       time.UTC,
	})

	assert.Empty(t, blocks)
}

func TestGenerateRecruitmentBlocks_UsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)

	blocks := GenerateRecruitmentBlocks(BlockWindow{
		PositionID:     10,
		Interviewers:   []model.UserID{1},
		From:           time.Date(2024, 3, 5, 0, 0, 0, 0, loc),
		Until:          time.Date(2024, 3, 6, 0, 0, 0, 0, loc),
		DailyStartHour: 9,
		DailyEndHour:   10,
		Location:       loc,
	})

	require.Len(t, blocks, 1)
	assert.Equal(t, at(5, 7, 0), blocks[0].Start.UTC())
}
