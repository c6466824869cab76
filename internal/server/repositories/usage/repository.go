// Package usage persists the per-user quota rows (api_usage table).
package usage

import "context"

type Repository interface {
	// Insert creates the quota row. Fails if one already exists.
	Insert(ctx context.Context, userID string, limit, used int) error

	// Ensure creates the quota row only if absent. Idempotent; used for
	// defensive self-healing before metering.
	Ensure(ctx context.Context, userID string, limit, used int) error

	// Increment atomically adds amount to the used counter and stamps the
	// last-request timestamp. Returns false when no row was affected, which
	// signals the user has no quota row.
	Increment(ctx context.Context, userID string, amount int, at string) (bool, error)
}
