package services

import (
	"cmp"
	"slices"
	"strconv"

	"github.com/jakechorley/interview-allocator/pkg/clients/sheetsclient"
	"github.com/jakechorley/interview-allocator/pkg/core/model"
)

// displayNames computes unique short names, stable regardless of map order
func displayNames(users map[model.UserID]model.User) map[model.UserID]string {
	list := make([]model.User, 0, len(users))
	for _, u := range users {
		list = append(list, u)
	}
	slices.SortFunc(list, func(a, b model.User) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return sheetsclient.ComputeDisplayNames(list)
}

// nameOf falls back to the ID for users missing from the store
func nameOf(names map[model.UserID]string, id model.UserID) string {
	if name, ok := names[id]; ok && name != "" {
		return name
	}
	return "#" + strconv.FormatInt(int64(id), 10)
}

// linkedApplications groups the live applications by the interview they are linked to
func linkedApplications(apps []model.Application) map[string][]model.Application {
	linked := make(map[string][]model.Application)
	for _, app := range apps {
		if app.Withdrawn || app.InterviewID == nil {
			continue
		}
		linked[*app.InterviewID] = append(linked[*app.InterviewID], app)
	}
	return linked
}
