package classify

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/jbtolen/wastesort/internal/logging"
	"github.com/jbtolen/wastesort/internal/server/models"
	"github.com/jbtolen/wastesort/internal/server/store"
)

// Recorder writes classification audit rows. Persistence is best effort:
// an audit row that cannot be written is logged and dropped, never surfaced
// to the caller, so a storage hiccup cannot fail a classification that the
// classifier service already answered.
type Recorder struct {
	store  *store.Store
	logger logging.Logger
}

func NewRecorder(st *store.Store, logger logging.Logger) *Recorder {
	return &Recorder{store: st, logger: logger}
}

// Persist saves one audit row and returns it. userID is nil for anonymous
// callers. On storage failure the row is returned anyway with its generated
// ID so the caller can still respond.
func (r *Recorder) Persist(ctx context.Context, userID *string, imagePath *string, result json.RawMessage, status string) *models.Classification {
	c := &models.Classification{
		ID:        uuid.NewString(),
		UserID:    userID,
		ImagePath: imagePath,
		Result:    result,
		Status:    status,
	}

	if err := r.store.SaveClassification(ctx, c); err != nil {
		r.logger.Warn(ctx, "failed to persist classification audit row", "id", c.ID, "error", err)
	}

	return c
}
