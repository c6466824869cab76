package auth

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jbtolen/wastesort/internal/common"
	"github.com/jbtolen/wastesort/internal/logging"
	"github.com/jbtolen/wastesort/internal/server/config"
	"github.com/jbtolen/wastesort/internal/server/models"
	"github.com/jbtolen/wastesort/internal/server/store"
)

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func newTestService(t *testing.T) *Service {
	t.Helper()

	st, err := store.Open(context.Background(), filepath.Join(t.TempDir(), "app.db"), testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.TokenValidity = time.Hour

	return NewService(st, cfg, testLogger())
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	first := "Alice"
	profile, err := svc.Register(ctx, "  Alice@Example.COM ", "pw123", &first)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", profile.Email)
	assert.Equal(t, models.RoleUser, profile.Role)
	require.NotNil(t, profile.FirstName)
	assert.Equal(t, "Alice", *profile.FirstName)
	assert.Equal(t, 0, profile.Usage.Used)

	token, logged, err := svc.Login(ctx, "alice@example.com", "pw123")
	require.NoError(t, err)
	assert.Equal(t, profile.ID, logged.ID)

	claims, ok := svc.Verify(token)
	require.True(t, ok)
	assert.Equal(t, profile.ID, claims.Subject)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.Equal(t, models.RoleUser, claims.Role)
}

func TestRegister_Validation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "", "pw", nil)
	require.ErrorIs(t, err, common.ErrorValidation)

	_, err = svc.Register(ctx, "a@b.c", "", nil)
	require.ErrorIs(t, err, common.ErrorValidation)
}

func TestRegister_DuplicateEmailCaseInsensitive(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "a@b.c", "pw", nil)
	require.NoError(t, err)

	_, err = svc.Register(ctx, "A@B.C", "other", nil)
	require.ErrorIs(t, err, common.ErrorAlreadyExists)
}

func TestLogin_FailuresAreIndistinguishable(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "a@b.c", "pw", nil)
	require.NoError(t, err)

	_, _, errUnknown := svc.Login(ctx, "nobody@b.c", "pw")
	_, _, errWrongPw := svc.Login(ctx, "a@b.c", "wrong")

	require.ErrorIs(t, errUnknown, common.ErrorInvalidCredentials)
	require.ErrorIs(t, errWrongPw, common.ErrorInvalidCredentials)
	assert.Equal(t, errUnknown.Error(), errWrongPw.Error())
}

func TestVerify_BadToken(t *testing.T) {
	svc := newTestService(t)

	_, ok := svc.Verify("not.a.jwt")
	assert.False(t, ok)

	_, ok = svc.Verify("")
	assert.False(t, ok)
}

func TestSeedAdmin_Idempotent(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	admin, err := svc.SeedAdmin(ctx)
	require.NoError(t, err)
	require.NotNil(t, admin)
	assert.Equal(t, models.RoleAdmin, admin.Role)

	again, err := svc.SeedAdmin(ctx)
	require.NoError(t, err)
	assert.Equal(t, admin.ID, again.ID)

	// The seeded account logs in with the configured password.
	_, logged, err := svc.Login(ctx, admin.Email, "111")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, logged.Role)
}

func TestSeedAdmin_NoOpWithoutCredentials(t *testing.T) {
	svc := newTestService(t)
	svc.adminEmail = ""

	profile, err := svc.SeedAdmin(context.Background())
	require.NoError(t, err)
	assert.Nil(t, profile)
}
