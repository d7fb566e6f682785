package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/rhnyadav/aitoolsbox/internal/database"
	"github.com/rhnyadav/aitoolsbox/internal/domain"
	apperrors "github.com/rhnyadav/aitoolsbox/internal/errors"
)

// AuditRepository appends to the usage and ad-impression logs. Both tables
// are append-only; the core never mutates or deletes rows.
type AuditRepository interface {
	RecordUsage(ctx context.Context, userID int64, tool string) error
	RecordAdImpression(ctx context.Context, userID int64) error
	UsageCount(ctx context.Context) (int64, error)
	TopTools(ctx context.Context, limit int) ([]domain.ToolUsage, error)
}

type auditRepository struct {
	db  *database.DB
	log *slog.Logger
}

// NewAuditRepository creates a SQL-backed audit repository.
func NewAuditRepository(db *database.DB, log *slog.Logger) AuditRepository {
	return &auditRepository{
		db:  db,
		log: log,
	}
}

func (r *auditRepository) RecordUsage(ctx context.Context, userID int64, tool string) error {
	const query = `
		INSERT INTO usage_logs (user_id, tool, used_at)
		VALUES (?, ?, ?)
	`

	opCtx, cancel := r.db.OperationContext(ctx)
	defer cancel()

	if _, err := r.db.ExecContext(opCtx, r.db.Rebind(query), userID, tool, time.Now().UTC()); err != nil {
		if r.log != nil {
			r.log.Error("failed to record tool usage",
				slog.Int64("user_id", userID),
				slog.String("tool", tool),
				slog.Any("error", err),
			)
		}
		return apperrors.NewStorageError(err)
	}

	return nil
}

func (r *auditRepository) RecordAdImpression(ctx context.Context, userID int64) error {
	const query = `
		INSERT INTO ad_logs (user_id, shown_at)
		VALUES (?, ?)
	`

	opCtx, cancel := r.db.OperationContext(ctx)
	defer cancel()

	if _, err := r.db.ExecContext(opCtx, r.db.Rebind(query), userID, time.Now().UTC()); err != nil {
		if r.log != nil {
			r.log.Error("failed to record ad impression", slog.Int64("user_id", userID), slog.Any("error", err))
		}
		return apperrors.NewStorageError(err)
	}

	return nil
}

func (r *auditRepository) UsageCount(ctx context.Context) (int64, error) {
	const query = `SELECT COUNT(*) FROM usage_logs`

	opCtx, cancel := r.db.OperationContext(ctx)
	defer cancel()

	var count int64
	if err := r.db.QueryRowContext(opCtx, query).Scan(&count); err != nil {
		if r.log != nil {
			r.log.Error("failed to count usage logs", slog.Any("error", err))
		}
		return 0, apperrors.NewStorageError(err)
	}

	return count, nil
}

func (r *auditRepository) TopTools(ctx context.Context, limit int) ([]domain.ToolUsage, error) {
	const query = `
		SELECT tool, COUNT(*) AS uses
		FROM usage_logs
		GROUP BY tool
		ORDER BY uses DESC, tool
		LIMIT ?
	`

	if limit <= 0 {
		limit = 5
	}

	opCtx, cancel := r.db.OperationContext(ctx)
	defer cancel()

	rows, err := r.db.QueryContext(opCtx, r.db.Rebind(query), limit)
	if err != nil {
		if r.log != nil {
			r.log.Error("failed to query top tools", slog.Any("error", err))
		}
		return nil, apperrors.NewStorageError(err)
	}
	defer rows.Close()

	var usages []domain.ToolUsage
	for rows.Next() {
		var usage domain.ToolUsage
		if err := rows.Scan(&usage.Tool, &usage.Count); err != nil {
			return nil, apperrors.NewStorageError(err)
		}
		usages = append(usages, usage)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStorageError(err)
	}

	return usages, nil
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
