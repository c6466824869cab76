package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jbtolen/wastesort/internal/common"
	"github.com/jbtolen/wastesort/internal/dbx"
	"github.com/jbtolen/wastesort/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const userSelectPostgres = `
	SELECT u.id, u.email, u.password_hash, u.first_name, u.role, u.created_at,
	       COALESCE(au.used, 0), COALESCE(au.quota_limit, 20), au.last_request_at
	FROM users u
	LEFT JOIN api_usage au ON au.user_id = u.id`

func (r *PostgresRepository) Insert(ctx context.Context, user *models.User) error {
	query := `INSERT INTO users (id, email, password_hash, first_name, role, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.Email, user.PasswordHash, user.FirstName, user.Role, user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return common.ErrorAlreadyExists
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := userSelectPostgres + ` WHERE LOWER(u.email) = LOWER($1)`
	return scanUser(r.db.QueryRowContext(ctx, query, email))
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := userSelectPostgres + ` WHERE u.id = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM users`).Scan(&count); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return count, nil
}

func (r *PostgresRepository) UsageStats(ctx context.Context) ([]models.UserUsageStat, error) {
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
