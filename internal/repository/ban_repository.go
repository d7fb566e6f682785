package repository

import (
	"context"
	"log/slog"

	"github.com/rhnyadav/aitoolsbox/internal/database"
	apperrors "github.com/rhnyadav/aitoolsbox/internal/errors"
)

// BanRepository defines persistence operations for the ban list.
type BanRepository interface {
	// Ban inserts a ban record if absent; banning twice keeps one record.
	Ban(ctx context.Context, userID int64) error
	// Unban deletes the record; unbanning a non-banned user is a no-op.
	Unban(ctx context.Context, userID int64) error
	IsBanned(ctx context.Context, userID int64) (bool, error)
	Count(ctx context.Context) (int64, error)
}

type banRepository struct {
	db  *database.DB
	log *slog.Logger
}

// NewBanRepository creates a SQL-backed ban repository.
func NewBanRepository(db *database.DB, log *slog.Logger) BanRepository {
	return &banRepository{
		db:  db,
		log: log,
	}
}

func (r *banRepository) Ban(ctx context.Context, userID int64) error {
	const query = `
		INSERT INTO banned_users (user_id)
		VALUES (?)
		ON CONFLICT (user_id) DO NOTHING
	`

	opCtx, cancel := r.db.OperationContext(ctx)
	defer cancel()

	if _, err := r.db.ExecContext(opCtx, r.db.Rebind(query), userID); err != nil {
		if r.log != nil {
			r.log.Error("failed to ban user", slog.Int64("user_id", userID), slog.Any("error", err))
		}
		return apperrors.NewStorageError(err)
	}

	return nil
}

func (r *banRepository) Unban(ctx context.Context, userID int64) error {
	const query = `DELETE FROM banned_users WHERE user_id = ?`

	opCtx, cancel := r.db.OperationContext(ctx)
	defer cancel()

	if _, err := r.db.ExecContext(opCtx, r.db.Rebind(query), userID); err != nil {
		if r.log != nil {
			r.log.Error("failed to unban user", slog.Int64("user_id", userID), slog.Any("error", err))
		}
		return apperrors.NewStorageError(err)
	}

	return nil
}

func (r *banRepository) IsBanned(ctx context.Context, userID int64) (bool, error) {
	const query = `SELECT 1 FROM banned_users WHERE user_id = ?`

	opCtx, cancel := r.db.OperationContext(ctx)
	defer cancel()

	var one int
	err := r.db.QueryRowContext(opCtx, r.db.Rebind(query), userID).Scan(&one)
	switch {
	case err == nil:
		return true, nil
	case isNoRows(err):
		return false, nil
	default:
		if r.log != nil {
			r.log.Error("failed to check ban", slog.Int64("user_id", userID), slog.Any("error", err))
		}
		return false, apperrors.NewStorageError(err)
	}
}

func (r *banRepository) Count(ctx context.Context) (int64, error) {
	const query = `SELECT COUNT(*) FROM banned_users`

	opCtx, cancel := r.db.OperationContext(ctx)
	defer cancel()

	var count int64
	if err := r.db.QueryRowContext(opCtx, query).Scan(&count); err != nil {
		if r.log != nil {
			r.log.Error("failed to count bans", slog.Any("error", err))
		}
		return 0, apperrors.NewStorageError(err)
	}

	return count, nil
}
