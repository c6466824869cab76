package repomanager

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite" // pure-Go SQLite driver

	"github.com/jbtolen/wastesort/internal/dbx"
	"github.com/jbtolen/wastesort/internal/server/migrations"
	"github.com/jbtolen/wastesort/internal/server/repositories/classifications"
	"github.com/jbtolen/wastesort/internal/server/repositories/endpointstats"
	"github.com/jbtolen/wastesort/internal/server/repositories/usage"
	"github.com/jbtolen/wastesort/internal/server/repositories/users"
)

// SQLiteRepositoryManager vends sqlite-backed repository implementations.
type SQLiteRepositoryManager struct{}

func (m *SQLiteRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewSQLiteRepository(db)
}

func (m *SQLiteRepositoryManager) Usage(db dbx.DBTX) usage.Repository {
	return usage.NewSQLiteRepository(db)
}

func (m *SQLiteRepositoryManager) EndpointStats(db dbx.DBTX) endpointstats.Repository {
	return endpointstats.NewSQLiteRepository(db)
}

func (m *SQLiteRepositoryManager) Classifications(db dbx.DBTX) classifications.Repository {
	return classifications.NewSQLiteRepository(db)
}

func (m *SQLiteRepositoryManager) DriverName() string { return "sqlite" }

func (m *SQLiteRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}
	return gooseUpContext(ctx, db, "sqlite")
}
