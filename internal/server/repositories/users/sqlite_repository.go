package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jbtolen/wastesort/internal/common"
	"github.com/jbtolen/wastesort/internal/dbx"
	"github.com/jbtolen/wastesort/internal/server/models"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const userSelectSQLite = `
	SELECT u.id, u.email, u.password_hash, u.first_name, u.role, u.created_at,
	       COALESCE(au.used, 0), COALESCE(au.quota_limit, 20), au.last_request_at
	FROM users u
	LEFT JOIN api_usage au ON au.user_id = u.id`

func (r *SQLiteRepository) Insert(ctx context.Context, user *models.User) error {
	query := `INSERT INTO users (id, email, password_hash, first_name, role, created_at)
	          VALUES (?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.Email, user.PasswordHash, user.FirstName, user.Role, user.CreatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return common.ErrorAlreadyExists
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := userSelectSQLite + ` WHERE LOWER(u.email) = LOWER(?)`
	return scanUser(r.db.QueryRowContext(ctx, query, email))
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := userSelectSQLite + ` WHERE u.id = ?`
	return scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *SQLiteRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM users`).Scan(&count); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return count, nil
}

func (r *SQLiteRepository) UsageStats(ctx context.Context) ([]models.UserUsageStat, error) {
	query := `
		SELECT u.email, u.role, COALESCE(au.used, 0), COALESCE(au.quota_limit, 20)
		FROM users u
		LEFT JOIN api_usage au ON au.user_id = u.id
		ORDER BY u.email`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []models.UserUsageStat
	for rows.Next() {
		var s models.UserUsageStat
		if err := rows.Scan(&s.Email, &s.Role, &s.Used, &s.Limit); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// scanUser maps one joined users+api_usage row. Shared by both backends
// because the column order of the SELECT is identical.
func scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	var firstName, lastRequestAt sql.NullString

	err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &firstName,
		&user.Role, &user.CreatedAt,
		&user.Usage.Used, &user.Usage.Limit, &lastRequestAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if firstName.Valid {
		user.FirstName = &firstName.String
	}
	if lastRequestAt.Valid {
		user.Usage.LastRequestAt = &lastRequestAt.String
	}
	return user, nil
}
