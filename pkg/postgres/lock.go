package postgres

import (
	"context"
	"fmt"

	"github.com/jakechorley/interview-allocator/pkg/db"
)

// allocationLockNamespace is the first key of the advisory locks taken per position
const allocationLockNamespace int32 = 0x1A7E

// LockPosition takes a session advisory lock for the position on a dedicated
// connection. Returns db.ErrPositionLocked if another session holds it.
func (d *DB) LockPosition(ctx context.Context, positionID int64) (func(), error) {
	conn, err := d.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire connection: %w", err)
	}

	var locked bool
	err = conn.QueryRow(ctx, `SELECT pg_try_advisory_lock($1, $2)`, allocationLockNamespace, int32(positionID)).Scan(&locked)
	if err != nil {
		conn.Release()
		return nil, fmt.Errorf("failed to take advisory lock: %w", err)
	}
	if !locked {
		conn.Release()
		return nil, fmt.Errorf("position %d: %w", positionID, db.ErrPositionLocked)
	}

	return func() {
		// Unlock even if the caller's context was cancelled
		conn.Exec(context.Background(), `SELECT pg_advisory_unlock($1, $2)`, allocationLockNamespace, int32(positionID))
		conn.Release()
	}, nil
}
