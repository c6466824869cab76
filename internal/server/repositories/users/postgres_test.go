package users

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jbtolen/wastesort/internal/common"
	"github.com/jbtolen/wastesort/internal/server/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

const insertPattern = `(?s)^INSERT\s+INTO\s+users\s*\(id,\s*email,\s*password_hash,\s*first_name,\s*role,\s*created_at\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5,\s*\$6\)\s*$`

func TestInsert_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(insertPattern).
		WithArgs("u1", "a@b.c", "hash", nil, "user", "2026-01-01T00:00:00Z").
		WillReturnResult(sqlmock.NewResult(0, 1))

	u := &models.User{ID: "u1", Email: "a@b.c", PasswordHash: "hash", Role: "user", CreatedAt: "2026-01-01T00:00:00Z"}
	if err := repo.Insert(context.Background(), u); err != nil {
		t.Fatalf("Insert error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestInsert_DuplicateEmail(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(insertPattern).
		WithArgs("u1", "a@b.c", "hash", nil, "user", "2026-01-01T00:00:00Z").
		WillReturnError(&pgconn.PgError{Code: "23505"})

	u := &models.User{ID: "u1", Email: "a@b.c", PasswordHash: "hash", Role: "user", CreatedAt: "2026-01-01T00:00:00Z"}
	err := repo.Insert(context.Background(), u)
	if !errors.Is(err, common.ErrorAlreadyExists) {
		t.Fatalf("expected common.ErrorAlreadyExists, got %v", err)
	}
}

func TestInsert_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(insertPattern).
		WithArgs("u1", "a@b.c", "hash", nil, "user", "2026-01-01T00:00:00Z").
		WillReturnError(errors.New("db down"))

	u := &models.User{ID: "u1", Email: "a@b.c", PasswordHash: "hash", Role: "user", CreatedAt: "2026-01-01T00:00:00Z"}
	err := repo.Insert(context.Background(), u)
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestGetByEmail_ScansJoinedRow(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	cols := []string{"id", "email", "password_hash", "first_name", "role", "created_at", "used", "quota_limit", "last_request_at"}
	rows := sqlmock.NewRows(cols).
		AddRow("u1", "a@b.c", "hash", "Alice", "user", "2026-01-01T00:00:00Z", 3, 20, "2026-01-02T00:00:00Z")

	mock.ExpectQuery(`(?s)SELECT\s+u\.id,.*FROM\s+users\s+u\s+LEFT\s+JOIN\s+api_usage.*LOWER\(u\.email\)\s*=\s*LOWER\(\$1\)`).
		WithArgs("a@b.c").
		WillReturnRows(rows)

	u, err := repo.GetByEmail(context.Background(), "a@b.c")
	if err != nil {
		t.Fatalf("GetByEmail error: %v", err)
	}
	if u.ID != "u1" || u.Usage.Used != 3 || u.Usage.Limit != 20 {
		t.Fatalf("unexpected user: %+v", u)
	}
	if u.FirstName == nil || *u.FirstName != "Alice" {
		t.Fatalf("unexpected first name: %+v", u.FirstName)
	}
	if u.Usage.LastRequestAt == nil {
		t.Fatalf("expected last request timestamp")
	}
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)SELECT\s+u\.id,.*WHERE\s+u\.id\s*=\s*\$1`).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "missing")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected common.ErrorNotFound, got %v", err)
	}
}

func TestUsageStats(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"email", "role", "used", "quota_limit"}).
		AddRow("a@b.c", "user", 3, 20).
		AddRow("b@b.c", "admin", 0, 50)

	mock.ExpectQuery(`(?s)SELECT\s+u\.email,\s*u\.role,.*ORDER\s+BY\s+u\.email`).
		WillReturnRows(rows)

	stats, err := repo.UsageStats(context.Background())
	if err != nil {
		t.Fatalf("UsageStats error: %v", err)
	}
	if len(stats) != 2 || stats[0].Email != "a@b.c" || stats[1].Limit != 50 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}
