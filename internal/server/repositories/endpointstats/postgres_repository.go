package endpointstats

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jbtolen/wastesort/internal/dbx"
	"github.com/jbtolen/wastesort/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Record(ctx context.Context, method, path, at string) error {
	query := `INSERT INTO endpoint_stats (method, path, request_count, last_call_at)
	          VALUES ($1, $2, 1, $3)
	          ON CONFLICT(method, path)
	          DO UPDATE SET
	            request_count = endpoint_stats.request_count + 1,
	            last_call_at = excluded.last_call_at`

	if _, err := r.db.ExecContext(ctx, query, method, path, at); err != nil {
		return fmt.Errorf("failed to upsert endpoint stat: %w", err)
	}
	return nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]models.EndpointStat, error) {
	query := `SELECT method, path, request_count, last_call_at
	          FROM endpoint_stats
	          ORDER BY request_count DESC, method, path`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select endpoint stats: %w", err)
	}
	defer rows.Close()

	var result []models.EndpointStat
	for rows.Next() {
		var s models.EndpointStat
		var lastCallAt sql.NullString
		if err := rows.Scan(&s.Method, &s.Path, &s.RequestCount, &lastCallAt); err != nil {
			return nil, err
		}
		if lastCallAt.Valid {
			s.LastCallAt = &lastCallAt.String
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
