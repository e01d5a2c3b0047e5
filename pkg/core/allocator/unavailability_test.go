package allocator

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakechorley/interview-allocator/pkg/core/model"
)

// mockTimeslotStore implements OccupiedTimeslotStore for testing
type mockTimeslotStore struct {
	slots []model.OccupiedTimeslot
	err   error
}

func (m *mockTimeslotStore) ForRecruitment(ctx context.Context, recruitmentID int64) ([]model.OccupiedTimeslot, error) {
	if m.err != nil {
		return nil, m.err
	}
	var result []model.OccupiedTimeslot
	for _, slot := range m.slots {
		if slot.RecruitmentID == recruitmentID {
			result = append(result, slot)
		}
	}
	return result, nil
}

func TestResolveUnavailability_OrderedByStart(t *testing.T) {
	store := &mockTimeslotStore{
		slots: []model.OccupiedTimeslot{
			occupied(2, at(5, 14, 0), at(5, 15, 0)),
			occupied(1, at(5, 9, 0), at(5, 10, 0)),
			occupied(3, at(5, 9, 0), at(5, 9, 30)),
		},
	}

	slots, err := ResolveUnavailability(context.Background(), store, 1)
	require.NoError(t, err)
	require.Len(t, slots, 3)

	assert.Equal(t, model.UserID(3), slots[0].UserID, "Equal starts are ordered by end")
	assert.Equal(t, model.UserID(1), slots[1].UserID)
	assert.Equal(t, model.UserID(2), slots[2].UserID)
}

func TestResolveUnavailability_FiltersUsers(t *testing.T) {
	store := &mockTimeslotStore{
		slots: []model.OccupiedTimeslot{
			occupied(1, at(5, 9, 0), at(5, 10, 0)),
			occupied(2, at(5, 11, 0), at(5, 12, 0)),
			occupied(3, at(5, 13, 0), at(5, 14, 0)),
		},
	}

	slots, err := ResolveUnavailability(context.Background(), store, 1, 1, 3)
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.Equal(t, model.UserID(1), slots[0].UserID)
	assert.Equal(t, model.UserID(3), slots[1].UserID)
}

func TestResolveUnavailability_EmptyRecruitment(t *testing.T) {
	slots, err := ResolveUnavailability(context.Background(), &mockTimeslotStore{}, 1)
	require.NoError(t, err)
	assert.NotNil(t, slots)
	assert.Empty(t, slots)
}

func TestResolveUnavailability_StoreError(t *testing.T) {
	storeErr := errors.New("connection refused")

	_, err := ResolveUnavailability(context.Background(), &mockTimeslotStore{err: storeErr}, 1)
	assert.ErrorIs(t, err, storeErr)
}
