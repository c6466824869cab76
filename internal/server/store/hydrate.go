package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/jbtolen/wastesort/internal/dbx"
	"github.com/jbtolen/wastesort/internal/server/models"
)

// ImportResult reports the outcome of a legacy hydration attempt: either a
// count of imported users or a skip with its reason.
type ImportResult struct {
	Imported int
	Skipped  bool
	Reason   string
}

// HydrateLegacy imports users from the deprecated flat-file export, if and
// only if the users table is empty. The whole import runs in one
// transaction. Missing, unreadable, or malformed export files are not
// fatal: the result is a skip with a reason and startup proceeds with zero
// users. Once at least one user exists by any means this is a no-op.
//
// The returned error is non-nil only when the store itself cannot be read.
func (s *Store) HydrateLegacy(ctx context.Context, path string, defaultQuotaLimit int) (ImportResult, error) {
	count, err := s.rm.Users(s.db).Count(ctx)
	if err != nil {
		return ImportResult{}, fmt.Errorf("legacy hydration: %w", err)
	}
	if count > 0 {
		return ImportResult{Skipped: true, Reason: "users already present"}, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		reason := "no legacy export found"
		if !os.IsNotExist(err) {
			reason = fmt.Sprintf("legacy export unreadable: %v", err)
			s.logger.Warn(ctx, "legacy import skipped", "reason", reason)
		}
		return ImportResult{Skipped: true, Reason: reason}, nil
	}

	var export models.LegacyExport
	if err := json.Unmarshal(raw, &export); err != nil {
		reason := fmt.Sprintf("legacy export malformed: %v", err)
		s.logger.Warn(ctx, "legacy import skipped", "reason", reason)
		return ImportResult{Skipped: true, Reason: reason}, nil
	}
	if len(export.Users) == 0 {
		return ImportResult{Skipped: true, Reason: "legacy export holds no users"}, nil
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		usersRepo := s.rm.Users(tx)
		usageRepo := s.rm.Usage(tx)

		for _, legacy := range export.Users {
			role := legacy.Role
			if role == "" {
				role = models.RoleUser
			}
			user := &models.User{
				ID:           legacy.ID,
				Email:        legacy.Email,
				PasswordHash: legacy.PasswordHash,
				Role:         role,
				CreatedAt:    nowRFC3339(),
			}
			if err := usersRepo.Insert(ctx, user); err != nil {
				return err
			}

			used, limit := 0, defaultQuotaLimit
			if legacy.Usage != nil {
				used = legacy.Usage.Used
				if legacy.Usage.Limit > 0 {
					limit = legacy.Usage.Limit
				}
			}
			if err := usageRepo.Insert(ctx, user.ID, limit, used); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		// Rolled back; boot continues with zero users.
		reason := fmt.Sprintf("legacy import failed: %v", err)
		s.logger.Warn(ctx, "legacy import skipped", "reason", reason)
		return ImportResult{Skipped: true, Reason: reason}, nil
	}

	s.logger.Info(ctx, "imported users from legacy export", "count", len(export.Users))
	return ImportResult{Imported: len(export.Users)}, nil
}
