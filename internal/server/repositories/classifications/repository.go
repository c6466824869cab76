// Package classifications persists classification audit rows. The result
// payload is stored as serialized text and rehydrated on read.
package classifications

import (
	"context"

	"github.com/jbtolen/wastesort/internal/server/models"
)

type Repository interface {
	Insert(ctx context.Context, c *models.Classification) error

	// GetByID returns common.ErrorNotFound for a missing id.
	GetByID(ctx context.Context, id string) (*models.Classification, error)

	// ListByUser lists a user's rows, newest first. Anonymous rows
	// (user_id IS NULL) are never listed here.
	ListByUser(ctx context.Context, userID string) ([]models.Classification, error)

	// Update replaces the result and/or status. A nil field keeps the stored
	// value. Returns common.ErrorNotFound when the row does not exist.
	Update(ctx context.Context, id string, resultJSON, status *string) error

	// Delete removes the row, reporting whether one existed.
	Delete(ctx context.Context, id string) (bool, error)
}
