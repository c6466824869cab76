package classifications

import (
	"context"
	"fmt"

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

func (r *PostgresRepository) Insert(ctx context.Context, c *models.Classification) error {
	query := `INSERT INTO classifications (id, user_id, image_path, result_json, status, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.ExecContext(ctx, query,
		c.ID, c.UserID, c.ImagePath, string(c.Result), c.Status, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert classification: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Classification, error) {
	query := `SELECT id, user_id, image_path, result_json, status, created_at
	          FROM classifications WHERE id = $1`
	return scanClassification(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]models.Classification, error) {
	query := `SELECT id, user_id, image_path, result_json, status, created_at
	          FROM classifications
	          WHERE user_id = $1
	          ORDER BY created_at DESC, id`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to select classifications: %w", err)
	}
	defer rows.Close()

	var result []models.Classification
	for rows.Next() {
		c, err := scanClassificationRow(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) Update(ctx context.Context, id string, resultJSON, status *string) error {
	query := `UPDATE classifications
	          SET result_json = COALESCE($1, result_json),
	              status = COALESCE($2, status)
	          WHERE id = $3`

	res, err := r.db.ExecContext(ctx, query, resultJSON, status, id)
	if err != nil {
		return fmt.Errorf("failed to update classification: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM classifications WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete classification: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return ra > 0, nil
}
