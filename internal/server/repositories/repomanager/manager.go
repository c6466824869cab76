// Package repomanager wires repository constructors to a SQL backend and
// exposes the schema migration hook. Two backends are supported: sqlite
// (the default, file-backed) and PostgreSQL.
package repomanager

import (
	"context"
	"database/sql"
	"strings"

	"github.com/pressly/goose/v3"

	"github.com/jbtolen/wastesort/internal/dbx"
	"github.com/jbtolen/wastesort/internal/server/repositories/classifications"
	"github.com/jbtolen/wastesort/internal/server/repositories/endpointstats"
	"github.com/jbtolen/wastesort/internal/server/repositories/usage"
	"github.com/jbtolen/wastesort/internal/server/repositories/users"
)

// RepositoryManager vends backend-specific repository implementations bound
// to the provided DBTX (either *sql.DB or *sql.Tx).
type RepositoryManager interface {
	Users(db dbx.DBTX) users.Repository
	Usage(db dbx.DBTX) usage.Repository
	EndpointStats(db dbx.DBTX) endpointstats.Repository
	Classifications(db dbx.DBTX) classifications.Repository

	// DriverName is the database/sql driver to open the DSN with.
	DriverName() string

	// RunMigrations applies the embedded goose migrations. Idempotent; safe
	// to call on every process start.
	RunMigrations(ctx context.Context, db *sql.DB) error
}

// ForDSN picks the manager for a DSN: postgres URLs get the PostgreSQL
// backend, everything else is treated as a sqlite file path.
func ForDSN(dsn string) RepositoryManager {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return &PostgresRepositoryManager{}
	}
	return &SQLiteRepositoryManager{}
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}
