package store

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/jbtolen/wastesort/internal/server/models"
	"github.com/jbtolen/wastesort/internal/server/repositories/repomanager"
)

// CreateUser writes two rows in one transaction; if the quota insert fails
// the user insert must be rolled back, not left behind.
func TestCreateUser_RollsBackWhenUsageInsertFails(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	st := &Store{db: db, rm: &repomanager.PostgresRepositoryManager{}, logger: testLogger()}

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT\s+INTO\s+users`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT\s+INTO\s+api_usage`).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	_, err = st.CreateUser(context.Background(), &models.User{
		ID: "u1", Email: "a@b.c", PasswordHash: "h",
	}, 20)
	require.Error(t, err)

	require.NoError(t, mock.ExpectationsWereMet())
}
