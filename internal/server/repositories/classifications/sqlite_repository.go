package classifications

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

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

func (r *SQLiteRepository) Insert(ctx context.Context, c *models.Classification) error {
	query := `INSERT INTO classifications (id, user_id, image_path, result_json, status, created_at)
	          VALUES (?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		c.ID, c.UserID, c.ImagePath, string(c.Result), c.Status, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert classification: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.Classification, error) {
	query := `SELECT id, user_id, image_path, result_json, status, created_at
	          FROM classifications WHERE id = ?`
	return scanClassification(r.db.QueryRowContext(ctx, query, id))
}

func (r *SQLiteRepository) ListByUser(ctx context.Context, userID string) ([]models.Classification, error) {
	query := `SELECT id, user_id, image_path, result_json, status, created_at
	          FROM classifications
	          WHERE user_id = ?
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

func (r *SQLiteRepository) Update(ctx context.Context, id string, resultJSON, status *string) error {
	query := `UPDATE classifications
	          SET result_json = COALESCE(?, result_json),
	              status = COALESCE(?, status)
	          WHERE id = ?`

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

func (r *SQLiteRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM classifications WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete classification: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return ra > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClassification(row *sql.Row) (*models.Classification, error) {
	c, err := scanClassificationRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, err
	}
	return c, nil
}

func scanClassificationRow(s rowScanner) (*models.Classification, error) {
	c := &models.Classification{}
	var userID, imagePath sql.NullString
	var resultJSON string

	if err := s.Scan(&c.ID, &userID, &imagePath, &resultJSON, &c.Status, &c.CreatedAt); err != nil {
		return nil, err
	}

	if userID.Valid {
		c.UserID = &userID.String
	}
	if imagePath.Valid {
		c.ImagePath = &imagePath.String
	}
	c.Result = json.RawMessage(resultJSON)
	return c, nil
}
