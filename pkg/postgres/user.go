package postgres

import (
	"context"
	"fmt"

	"github.com/jakechorley/interview-allocator/pkg/core/model"
)

// GetUsers retrieves users by ID. Unknown IDs are left out of the result.
func (d *DB) GetUsers(ctx context.Context, ids []model.UserID) (map[model.UserID]model.User, error) {
	users := make(map[model.UserID]model.User, len(ids))
	if len(ids) == 0 {
		return users, nil
	}

	raw := make([]int64, 0, len(ids))
	for _, id := range ids {
		raw = append(raw, int64(id))
	}

	rows, err := d.pool.Query(ctx, `
		SELECT id, first_name, last_name, email
		FROM app_user
		WHERE id = ANY($1)
	`, raw)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var u model.User
		var id int64
		if err := rows.Scan(&id, &u.FirstName, &u.LastName, &u.Email); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		u.ID = model.UserID(id)
		users[u.ID] = u
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}

	return users, nil
}
