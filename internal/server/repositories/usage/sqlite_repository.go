package usage

import (
	"context"
	"fmt"

	"github.com/jbtolen/wastesort/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Insert(ctx context.Context, userID string, limit, used int) error {
	query := `INSERT INTO api_usage (user_id, quota_limit, used) VALUES (?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, query, userID, limit, used); err != nil {
		return fmt.Errorf("failed to insert usage row: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Ensure(ctx context.Context, userID string, limit, used int) error {
	query := `INSERT INTO api_usage (user_id, quota_limit, used)
	          VALUES (?, ?, ?)
	          ON CONFLICT(user_id) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, query, userID, limit, used); err != nil {
		return fmt.Errorf("failed to ensure usage row: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Increment(ctx context.Context, userID string, amount int, at string) (bool, error) {
	query := `UPDATE api_usage
	          SET used = used + ?, last_request_at = ?
	          WHERE user_id = ?`

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
