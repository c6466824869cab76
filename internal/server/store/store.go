// Package store owns the relational schema lifecycle and every persistence
// operation of the service. All multi-row writes run inside a single
// transaction; conflicting single-row writes are serialized by atomic SQL at
// the storage layer, never by caller-side locking.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jbtolen/wastesort/internal/dbx"
	"github.com/jbtolen/wastesort/internal/filex"
	"github.com/jbtolen/wastesort/internal/logging"
	"github.com/jbtolen/wastesort/internal/server/models"
	"github.com/jbtolen/wastesort/internal/server/repositories/repomanager"
)

type Store struct {
	db     *sql.DB
	rm     repomanager.RepositoryManager
	logger logging.Logger
}

// Open connects to the database selected by the DSN, applies pragmas for the
// sqlite backend, and runs the idempotent schema migrations. Re-running on an
// already-migrated database is a no-op.
func Open(ctx context.Context, dsn string, logger logging.Logger) (*Store, error) {
	rm := repomanager.ForDSN(dsn)

	if rm.DriverName() == "sqlite" && dsn != ":memory:" && !strings.HasPrefix(dsn, "file:") {
		if _, err := filex.EnsureParentDir(dsn); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open(rm.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	if rm.DriverName() == "sqlite" {
		// One writer connection keeps modernc/sqlite free of SQLITE_BUSY
		// under concurrent requests; WAL keeps readers unblocked.
		db.SetMaxOpenConns(1)
		for _, pragma := range []string{
			`PRAGMA foreign_keys = ON`,
			`PRAGMA journal_mode = WAL`,
		} {
			if _, err := db.ExecContext(ctx, pragma); err != nil {
				_ = db.Close()
				return nil, fmt.Errorf("db pragma error: %w", err)
			}
		}
	}

	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db migration error: %w", err)
	}

	return &Store{db: db, rm: rm, logger: logger.With("module", "store")}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// DB exposes the underlying handle for the seeding CLI.
func (s *Store) DB() *sql.DB { return s.db }

// CreateUser inserts the user row and its zeroed quota row in one
// transaction. A duplicate email (case-insensitive) yields
// common.ErrorAlreadyExists with no partial rows left behind.
func (s *Store) CreateUser(ctx context.Context, user *models.User, quotaLimit int) (*models.User, error) {
	if user.CreatedAt == "" {
		user.CreatedAt = nowRFC3339()
	}
	if user.Role == "" {
		user.Role = models.RoleUser
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.rm.Users(tx).Insert(ctx, user); err != nil {
			return err
		}
		return s.rm.Usage(tx).Insert(ctx, user.ID, quotaLimit, 0)
	})
	if err != nil {
		return nil, err
	}

	return s.GetUserByID(ctx, user.ID)
}

// GetUserByEmail looks the user up case-insensitively, quota counters
// included. Absence is common.ErrorNotFound, a normal outcome for callers.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.rm.Users(s.db).GetByEmail(ctx, email)
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return s.rm.Users(s.db).GetByID(ctx, id)
}

// EnsureUsageRow creates the quota row only if absent. Idempotent.
func (s *Store) EnsureUsageRow(ctx context.Context, userID string, quotaLimit, used int) error {
	return s.rm.Usage(s.db).Ensure(ctx, userID, quotaLimit, used)
}

// IncrementUsage adds amount to the used counter and stamps the request
// time. Returns false when the user has no quota row; callers must not
// assume success silently.
func (s *Store) IncrementUsage(ctx context.Context, userID string, amount int) (bool, error) {
	return s.rm.Usage(s.db).Increment(ctx, userID, amount, nowRFC3339())
}

// RecordEndpointCall upserts the (method, path) counter. Safe under
// concurrent calls for the same key.
func (s *Store) RecordEndpointCall(ctx context.Context, method, path string) error {
	return s.rm.EndpointStats(s.db).Record(ctx, method, path, nowRFC3339())
}

func (s *Store) EndpointStats(ctx context.Context) ([]models.EndpointStat, error) {
	return s.rm.EndpointStats(s.db).List(ctx)
}

func (s *Store) UserUsageStats(ctx context.Context) ([]models.UserUsageStat, error) {
	return s.rm.Users(s.db).UsageStats(ctx)
}

// SaveClassification persists one audit row. The result payload is
// normalized to serialized JSON text before storage.
func (s *Store) SaveClassification(ctx context.Context, c *models.Classification) error {
	if c.Status == "" {
		c.Status = models.StatusCompleted
	}
	if c.CreatedAt == "" {
		c.CreatedAt = nowRFC3339()
	}
	if len(c.Result) == 0 {
		c.Result = json.RawMessage("null")
	}
	return s.rm.Classifications(s.db).Insert(ctx, c)
}

func (s *Store) GetClassification(ctx context.Context, id string) (*models.Classification, error) {
	return s.rm.Classifications(s.db).GetByID(ctx, id)
}

func (s *Store) ListClassificationsByUser(ctx context.Context, userID string) ([]models.Classification, error) {
	return s.rm.Classifications(s.db).ListByUser(ctx, userID)
}

// UpdateClassification replaces the result and/or status of a row; a nil
// result or empty status keeps the stored value.
func (s *Store) UpdateClassification(ctx context.Context, id string, result json.RawMessage, status string) error {
	var resultJSON, statusArg *string
	if result != nil {
		text := string(result)
		resultJSON = &text
	}
	if status != "" {
		statusArg = &status
	}
	return s.rm.Classifications(s.db).Update(ctx, id, resultJSON, statusArg)
}

func (s *Store) DeleteClassification(ctx context.Context, id string) (bool, error) {
	return s.rm.Classifications(s.db).Delete(ctx, id)
}

func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339)
}
