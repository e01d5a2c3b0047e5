package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jakechorley/interview-allocator/internal/config"
	"github.com/jakechorley/interview-allocator/pkg/core/allocator"
	"github.com/jakechorley/interview-allocator/pkg/core/model"
	"github.com/jakechorley/interview-allocator/pkg/db"
)

func TestAllocateInterviews_Success(t *testing.T) {
	ctx := context.Background()
	m := newServiceDB(at(6, 0, 0))
	addApplicant(m, 10, kari)
	addApplicant(m, 10, ola)

	result, err := AllocateInterviews(ctx, m, testConfig(), zap.NewNop(), 10, AllocateOptions{Now: fixedNow})
	require.NoError(t, err)

	require.Len(t, result.Positions, 1)
	position := result.Positions[0]
	assert.NoError(t, position.Err)
	assert.Empty(t, position.Violations)
	assert.Equal(t, 2, result.Created())
	assert.False(t, result.DryRun)

	interviews := m.Interviews()
	require.Len(t, interviews, 2)
	assert.Equal(t, at(5, 9, 0), interviews[0].Time)
	assert.Equal(t, at(5, 9, 30), interviews[1].Time)
	assert.Equal(t, "Room for Treasurer", interviews[0].Location)
	assert.Equal(t, []model.UserID{100}, interviews[0].Interviewers)

	for _, app := range m.Applications() {
		assert.NotNil(t, app.InterviewID, "application %d should be linked", app.ID)
	}
}

func TestAllocateInterviews_DryRunWritesNothing(t *testing.T) {
	ctx := context.Background()
	m := newServiceDB(at(6, 0, 0))
	addApplicant(m, 10, kari)
	addApplicant(m, 10, ola)

	result, err := AllocateInterviews(ctx, m, testConfig(), zap.NewNop(), 10, AllocateOptions{Now: fixedNow, DryRun: true})
	require.NoError(t, err)

	assert.True(t, result.DryRun)
	assert.Equal(t, 2, result.Created())
	assert.Empty(t, m.Interviews(), "dry run must not create interviews")
	for _, app := range m.Applications() {
		assert.Nil(t, app.InterviewID)
	}
}

func TestAllocateInterviews_LimitToFirstApplicant(t *testing.T) {
	ctx := context.Background()
	m := newServiceDB(at(6, 0, 0))
	addApplicant(m, 10, kari)
	addApplicant(m, 10, ola)

	result, err := AllocateInterviews(ctx, m, testConfig(), zap.NewNop(), 10, AllocateOptions{Now: fixedNow, LimitToFirstApplicant: true})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Created())
	assert.NoError(t, result.Positions[0].Err)
	require.Len(t, result.Positions[0].Outcome.Pending, 1)
	assert.Equal(t, ola.ID, result.Positions[0].Outcome.Pending[0].ApplicantID)
}

func TestAllocateInterviews_SkipsBlackoutDays(t *testing.T) {
	ctx := context.Background()
	// Tuesday 5th and Wednesday 6th
	m := newServiceDB(at(7, 0, 0))
	addApplicant(m, 10, kari)

	cfg := testConfig()
	cfg.Blackouts = []config.Blackout{{RRule: "FREQ=WEEKLY;BYDAY=TU", Reason: "board meeting"}}

	result, err := AllocateInterviews(ctx, m, cfg, zap.NewNop(), 10, AllocateOptions{Now: fixedNow})
	require.NoError(t, err)
	require.NoError(t, result.Positions[0].Err)

	interviews := m.Interviews()
	require.Len(t, interviews, 1)
	assert.Equal(t, at(6, 9, 0), interviews[0].Time)
}

func TestAllocateInterviews_TaxonomyErrorIsRecorded(t *testing.T) {
	ctx := context.Background()
	m := newServiceDB(at(6, 0, 0))

	result, err := AllocateInterviews(ctx, m, testConfig(), zap.NewNop(), 10, AllocateOptions{Now: fixedNow})
	require.NoError(t, err, "allocation failures are reported per position")

	require.Len(t, result.Positions, 1)
	assert.ErrorIs(t, result.Positions[0].Err, allocator.ErrNoApplicationsWithoutInterviews)
	require.NotNil(t, result.Positions[0].Outcome)
	assert.Equal(t, 0, result.Created())
}

func TestAllocateInterviews_PartialAllocation(t *testing.T) {
	ctx := context.Background()
	m := newServiceDB(at(6, 0, 0))
	addApplicant(m, 10, kari)
	addApplicant(m, 10, ola)
	addApplicant(m, 10, model.User{ID: 202, FirstName: "Per", Email: "per@example.org"})

	result, err := AllocateInterviews(ctx, m, testConfig(), zap.NewNop(), 10, AllocateOptions{Now: fixedNow})
	require.NoError(t, err)

	position := result.Positions[0]
	var allocErr *allocator.AllocationError
	require.ErrorAs(t, position.Err, &allocErr)
	assert.ErrorIs(t, position.Err, allocator.ErrInsufficientTimeBlocks)
	assert.Equal(t, 2, allocErr.Allocated)
	assert.Equal(t, 1, allocErr.Remaining)
	assert.Len(t, m.Interviews(), 2, "created interviews are kept")
}

func TestAllocateInterviews_PositionLocked(t *testing.T) {
	ctx := context.Background()
	m := newServiceDB(at(6, 0, 0))
	addApplicant(m, 10, kari)

	unlock, err := m.LockPosition(ctx, 10)
	require.NoError(t, err)
	defer unlock()

	_, err = AllocateInterviews(ctx, m, testConfig(), zap.NewNop(), 10, AllocateOptions{Now: fixedNow})
	assert.ErrorIs(t, err, db.ErrPositionLocked)
	assert.Empty(t, m.Interviews())
}

func TestAllocateInterviews_ReleasesLock(t *testing.T) {
	ctx := context.Background()
	m := newServiceDB(at(6, 0, 0))
	addApplicant(m, 10, kari)

	_, err := AllocateInterviews(ctx, m, testConfig(), zap.NewNop(), 10, AllocateOptions{Now: fixedNow})
	require.NoError(t, err)

	unlock, err := m.LockPosition(ctx, 10)
	require.NoError(t, err, "lock should be released after the run")
	unlock()
}

func TestAllocateInterviews_UnknownPosition(t *testing.T) {
	m := newServiceDB(at(6, 0, 0))

	_, err := AllocateInterviews(context.Background(), m, testConfig(), zap.NewNop(), 99, AllocateOptions{Now: fixedNow})
	require.Error(t, err)
	assert.ErrorIs(t, err, db.ErrNotFound)
	assert.False(t, allocator.IsAllocationFailure(err))
}

func TestAllocateInterviews_InvalidBlackout(t *testing.T) {
	m := newServiceDB(at(6, 0, 0))
	addApplicant(m, 10, kari)

	cfg := testConfig()
	cfg.Blackouts = []config.Blackout{{RRule: "FREQ=SOMETIMES"}}

	_, err := AllocateInterviews(context.Background(), m, cfg, zap.NewNop(), 10, AllocateOptions{Now: fixedNow})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse rrule")
}

func TestAllocateRecruitment_AllPositions(t *testing.T) {
	ctx := context.Background()
	m := newServiceDB(at(6, 0, 0))
	m.AddPosition(model.Position{ID: 11, RecruitmentID: 1, Name: "Secretary"})
	m.AddUser(model.User{ID: 101, FirstName: "Jon", LastName: "Lie"})
	m.AddInterviewer(11, 101, 2)
	addApplicant(m, 10, kari)
	addApplicant(m, 11, ola)

	result, err := AllocateRecruitment(ctx, m, testConfig(), zap.NewNop(), 1, AllocateOptions{Now: fixedNow})
	require.NoError(t, err)

	require.Len(t, result.Positions, 2)
	assert.Equal(t, int64(10), result.Positions[0].PositionID)
	assert.Equal(t, int64(11), result.Positions[1].PositionID)
	assert.Equal(t, 2, result.Created())

	interviews := m.Interviews()
	require.Len(t, interviews, 2)
	// Start times are unique within the recruitment
	assert.Equal(t, at(5, 9, 0), interviews[0].Time)
	assert.Equal(t, at(5, 9, 30), interviews[1].Time)
	assert.Equal(t, int64(11), interviews[1].PositionID)
}

func TestAllocateRecruitment_DryRunSharesPendingWrites(t *testing.T) {
	ctx := context.Background()
	m := newServiceDB(at(6, 0, 0))
	m.AddPosition(model.Position{ID: 11, RecruitmentID: 1, Name: "Secretary"})
	m.AddUser(model.User{ID: 101, FirstName: "Jon", LastName: "Lie"})
	m.AddInterviewer(11, 101, 2)
	addApplicant(m, 10, kari)
	addApplicant(m, 11, ola)

	result, err := AllocateRecruitment(ctx, m, testConfig(), zap.NewNop(), 1, AllocateOptions{Now: fixedNow, DryRun: true})
	require.NoError(t, err)

	require.Len(t, result.Positions, 2)
	first := result.Positions[0].Outcome.Created[0].Interview
	second := result.Positions[1].Outcome.Created[0].Interview
	assert.NotEqual(t, first.Time, second.Time, "second position sees the first position's pending interview")
	assert.Empty(t, m.Interviews())
}

func TestAllocateRecruitment_NoPositions(t *testing.T) {
	m := newServiceDB(at(6, 0, 0))

	_, err := AllocateRecruitment(context.Background(), m, testConfig(), zap.NewNop(), 42, AllocateOptions{Now: fixedNow})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "has no positions")
}

func TestBlackoutDays(t *testing.T) {
	recruitment := model.Recruitment{VisibleFrom: at(4, 0, 0), ApplicationDeadline: at(18, 0, 0)}

	matches, err := blackoutDays([]config.Blackout{
		{RRule: "FREQ=WEEKLY;BYDAY=SA,SU"},
		{RRule: "DTSTART=20240313T000000Z;FREQ=DAILY;COUNT=1", Reason: "exam day"},
	}, recruitment, time.UTC, zap.NewNop())
	require.NoError(t, err)
	require.NotNil(t, matches)

	assert.True(t, matches(at(9, 0, 0)), "Saturday")
	assert.True(t, matches(at(10, 12, 0)), "Sunday")
	assert.True(t, matches(at(13, 0, 0)), "explicit DTSTART")
	assert.False(t, matches(at(11, 0, 0)), "Monday")
	assert.False(t, matches(at(14, 0, 0)), "COUNT=1 stops after the first day")
}

func TestBlackoutDays_None(t *testing.T) {
	matches, err := blackoutDays(nil, model.Recruitment{}, time.UTC, zap.NewNop())
	require.NoError(t, err)
	assert.Nil(t, matches)
}

func TestBlackoutDays_UsesLocation(t *testing.T) {
	oslo, err := time.LoadLocation("Europe/Oslo")
	require.NoError(t, err)

	recruitment := model.Recruitment{VisibleFrom: at(4, 0, 0), ApplicationDeadline: at(8, 0, 0)}
	matches, err := blackoutDays([]config.Blackout{{RRule: "FREQ=WEEKLY;BYDAY=TU"}}, recruitment, oslo, zap.NewNop())
	require.NoError(t, err)

	tuesdayMorning := time.Date(2024, time.March, 5, 0, 30, 0, 0, oslo)
	assert.True(t, matches(tuesdayMorning))
	// 23:30 UTC on Monday is already Tuesday in Oslo
	assert.True(t, matches(time.Date(2024, time.March, 4, 23, 30, 0, 0, time.UTC)))
	assert.False(t, matches(time.Date(2024, time.March, 4, 22, 30, 0, 0, time.UTC)))
}
