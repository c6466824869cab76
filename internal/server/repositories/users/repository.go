// Package users persists identity records. Reads always join the api_usage
// row so callers see current quota counters without a second query.
package users

import (
	"context"

	"github.com/jbtolen/wastesort/internal/server/models"
)

type Repository interface {
	// Insert writes the user row only. The quota row is created by the
	// usage repository inside the same transaction (see store.CreateUser).
	Insert(ctx context.Context, user *models.User) error

	// GetByEmail looks a user up case-insensitively. Absence is reported as
	// common.ErrorNotFound, not a failure.
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	GetByID(ctx context.Context, id string) (*models.User, error)

	// Count reports the number of user rows. Used as the legacy-hydration guard.
	Count(ctx context.Context) (int, error)

	// UsageStats lists every user's quota state for the admin surface.
	UsageStats(ctx context.Context) ([]models.UserUsageStat, error)
}
