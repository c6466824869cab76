// Package endpointstats persists aggregate call counters keyed by
// (HTTP method, logical path).
package endpointstats

import (
	"context"

	"github.com/jbtolen/wastesort/internal/server/models"
)

type Repository interface {
	// Record upserts the counter for (method, path): insert with count=1 or
	// increment and refresh the last-call timestamp. The upsert is atomic at
	// the storage layer; callers never read-modify-write.
	Record(ctx context.Context, method, path, at string) error

	// List returns all counters ordered by call count, busiest first.
	List(ctx context.Context) ([]models.EndpointStat, error)
}
