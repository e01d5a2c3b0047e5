package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jakechorley/interview-allocator/internal/config"
	"github.com/jakechorley/interview-allocator/pkg/core/model"
)

func TestListTimeBlocks(t *testing.T) {
	m := newServiceDB(at(7, 0, 0))
	m.AddUser(model.User{ID: 101, FirstName: "Jon", LastName: "Lie"})
	m.AddInterviewer(10, 101, 1)
	// Jon is busy on Tuesday, so Wednesday has more interviewers
	m.AddOccupiedTimeslot(model.OccupiedTimeslot{UserID: 101, RecruitmentID: 1, Start: at(5, 0, 0), End: at(6, 0, 0)})

	listing, err := ListTimeBlocks(context.Background(), m, testConfig(), zap.NewNop(), 10, fixedNow)
	require.NoError(t, err)

	require.Len(t, listing.Blocks, 2)
	assert.Equal(t, at(6, 9, 0), listing.Blocks[0].Start, "block with both interviewers is ranked first")
	assert.Equal(t, []model.UserID{100, 101}, listing.Blocks[0].AvailableInterviewers)
	assert.Equal(t, at(5, 9, 0), listing.Blocks[1].Start)
	assert.Greater(t, listing.Blocks[0].Rating, listing.Blocks[1].Rating)

	assert.Equal(t, "Treasurer", listing.Profile.Position.Name)
	assert.Equal(t, "Ida", listing.Names[100])
	assert.Equal(t, "Jon", listing.Names[101])
	assert.Empty(t, m.Interviews(), "listing never allocates")
}

func TestListTimeBlocks_RespectsBlackouts(t *testing.T) {
	m := newServiceDB(at(7, 0, 0))
	cfg := testConfig()
	cfg.Blackouts = []config.Blackout{{RRule: "FREQ=WEEKLY;BYDAY=WE"}}

	listing, err := ListTimeBlocks(context.Background(), m, cfg, zap.NewNop(), 10, fixedNow)
	require.NoError(t, err)

	require.Len(t, listing.Blocks, 1)
	assert.Equal(t, at(5, 9, 0), listing.Blocks[0].Start)
}

func TestListTimeBlocks_UnknownPosition(t *testing.T) {
	m := newServiceDB(at(7, 0, 0))

	_, err := ListTimeBlocks(context.Background(), m, testConfig(), zap.NewNop(), 99, fixedNow)
	assert.Error(t, err)
}
