package allocator

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/jakechorley/interview-allocator/pkg/core/model"
)

// ResolveUnavailability returns the occupied timeslots of a recruitment ordered by
// start time. When users are given, only their timeslots are returned.
// A recruitment without timeslots yields an empty slice.
func ResolveUnavailability(
	ctx context.Context,
	store OccupiedTimeslotStore,
	recruitmentID int64,
	users ...model.UserID,
) ([]model.OccupiedTimeslot, error) {
	slots, err := store.ForRecruitment(ctx, recruitmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch occupied timeslots: %w", err)
	}

	result := make([]model.OccupiedTimeslot, 0, len(slots))
	for _, slot := range slots {
		if len(users) > 0 && !slices.Contains(users, slot.UserID) {
			continue
		}
		result = append(result, slot)
	}

	slices.SortStableFunc(result, func(a, b model.OccupiedTimeslot) int {
		return cmp.Or(
			a.Start.Compare(b.Start),
			a.End.Compare(b.End),
			cmp.Compare(a.UserID, b.UserID),
		)
	})

	return result, nil
}

// groupByUser indexes sorted timeslots by user, preserving order
func groupByUser(slots []model.OccupiedTimeslot) map[model.UserID][]model.OccupiedTimeslot {
	byUser := make(map[model.UserID][]model.OccupiedTimeslot)
	for _, slot := range slots {
		byUser[slot.UserID] = append(byUser[slot.UserID], slot)
	}
	return byUser
}
