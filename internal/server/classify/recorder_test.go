package classify

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jbtolen/wastesort/internal/logging"
	"github.com/jbtolen/wastesort/internal/server/models"
	"github.com/jbtolen/wastesort/internal/server/store"
)

func newRecorder(t *testing.T) (*Recorder, *store.Store) {
	t.Helper()

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))

	st, err := store.Open(context.Background(), filepath.Join(t.TempDir(), "app.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	return NewRecorder(st, logger), st
}

func TestRecorder_PersistsRow(t *testing.T) {
	r, st := newRecorder(t)
	ctx := context.Background()

	owner := "u1"
	ref := "uploads/2026/1/1/key"
	rec := r.Persist(ctx, &owner, &ref, json.RawMessage(`{"class":"metal"}`), models.StatusCompleted)
	require.NotEmpty(t, rec.ID)

	saved, err := st.GetClassification(ctx, rec.ID)
	require.NoError(t, err)
	require.NotNil(t, saved.UserID)
	assert.Equal(t, "u1", *saved.UserID)
	require.NotNil(t, saved.ImagePath)
	assert.Equal(t, ref, *saved.ImagePath)
	assert.Equal(t, models.StatusCompleted, saved.Status)
}

func TestRecorder_StoreFailureIsSwallowed(t *testing.T) {
	r, st := newRecorder(t)

	// A closed store makes every insert fail; Persist must still hand back
	// the row so the response can carry an id.
	require.NoError(t, st.Close())

	rec := r.Persist(context.Background(), nil, nil, nil, models.StatusFailed)
	require.NotNil(t, rec)
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, models.StatusFailed, rec.Status)
}
