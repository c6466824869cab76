package usage

import (
	"context"
	"fmt"

	"github.com/jbtolen/wastesort/internal/dbx"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Insert(ctx context.Context, userID string, limit, used int) error {
	query := `INSERT INTO api_usage (user_id, quota_limit, used) VALUES ($1, $2, $3)`
	if _, err := r.db.ExecContext(ctx, query, userID, limit, used); err != nil {
		return fmt.Errorf("failed to insert usage row: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Ensure(ctx context.Context, userID string, limit, used int) error {
	query := `INSERT INTO api_usage (user_id, quota_limit, used)
	          VALUES ($1, $2, $3)
	          ON CONFLICT(user_id) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, query, userID, limit, used); err != nil {
		return fmt.Errorf("failed to ensure usage row: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Increment(ctx context.Context, userID string, amount int, at string) (bool, error) {
	query := `UPDATE api_usage
	          SET used = used + $1, last_request_at = $2
	          WHERE user_id = $3`

	res, err := r.db.ExecContext(ctx, query, amount, at, userID)
	if err != nil {
		return false, fmt.Errorf("failed to increment usage: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return ra > 0, nil
}
