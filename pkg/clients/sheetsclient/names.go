package sheetsclient

import (
	"github.com/jakechorley/interview-allocator/pkg/core/model"
)

// ComputeDisplayNames picks the shortest unambiguous name for each user:
// - If first name is unique: use first name only
// - If first name + first letter of surname is unique: use "FirstName L."
// - Otherwise: use full name "FirstName LastName"
func ComputeDisplayNames(users []model.User) map[model.UserID]string {
	firstNameCounts := make(map[string]int)
	initialCounts := make(map[string]int)
	for _, u := range users {
		firstNameCounts[u.FirstName]++
		if key, ok := withInitial(u); ok {
			initialCounts[key]++
		}
	}

	names := make(map[model.UserID]string, len(users))
	for _, u := range users {
		if u.FirstName != "" && firstNameCounts[u.FirstName] == 1 {
			names[u.ID] = u.FirstName
			continue
		}

		if key, ok := withInitial(u); ok && initialCounts[key] == 1 {
			names[u.ID] = key
			continue
		}

		names[u.ID] = u.FullName()
	}

	return names
}

func withInitial(u model.User) (string, bool) {
	if u.FirstName == "" || u.LastName == "" {
		return "", false
	}
	return u.FirstName + " " + string([]rune(u.LastName)[0]) + ".", true
}
