package repomanager

import (
	"context"
	"database/sql"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/jbtolen/wastesort/internal/dbx"
	"github.com/jbtolen/wastesort/internal/server/migrations"
	"github.com/jbtolen/wastesort/internal/server/repositories/classifications"
	"github.com/jbtolen/wastesort/internal/server/repositories/endpointstats"
	"github.com/jbtolen/wastesort/internal/server/repositories/usage"
	"github.com/jbtolen/wastesort/internal/server/repositories/users"
)

// PostgresRepositoryManager vends PostgreSQL-backed repository
// implementations.
type PostgresRepositoryManager struct{}

func (m *PostgresRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Usage(db dbx.DBTX) usage.Repository {
	return usage.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) EndpointStats(db dbx.DBTX) endpointstats.Repository {
	return endpointstats.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Classifications(db dbx.DBTX) classifications.Repository {
	return classifications.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) DriverName() string { return "pgx" }

func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return gooseUpContext(ctx, db, "postgres")
}
