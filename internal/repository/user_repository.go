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

// UserRepository defines persistence operations for users.
type UserRepository interface {
	// Upsert inserts the user if absent. Re-insertion of an existing id is
	// a no-op: the first observed username and first name win.
	Upsert(ctx context.Context, id int64, username, firstName string) error
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	ListIDs(ctx context.Context) ([]int64, error)
	Count(ctx context.Context) (int64, error)
}

type userRepository struct {
	db  *database.DB
	log *slog.Logger
}

// NewUserRepository creates a SQL-backed user repository.
func NewUserRepository(db *database.DB, log *slog.Logger) UserRepository {
	return &userRepository{
		db:  db,
		log: log,
	}
}

func (r *userRepository) Upsert(ctx context.Context, id int64, username, firstName string) error {
	const query = `
		INSERT INTO users (user_id, username, first_name, joined_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id) DO NOTHING
	`

	opCtx, cancel := r.db.OperationContext(ctx)
	defer cancel()

	if _, err := r.db.ExecContext(opCtx, r.db.Rebind(query), id, username, firstName, time.Now().UTC()); err != nil {
		if r.log != nil {
			r.log.Error("failed to upsert user", slog.Int64("user_id", id), slog.Any("error", err))
		}
		return apperrors.NewStorageError(err)
	}

	return nil
}

func (r *userRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	const query = `
		SELECT user_id, username, first_name, joined_at
		FROM users
		WHERE user_id = ?
	`

	opCtx, cancel := r.db.OperationContext(ctx)
	defer cancel()

	row := r.db.QueryRowContext(opCtx, r.db.Rebind(query), id)

	var user domain.User
	if err := row.Scan(&user.ID, &user.Username, &user.FirstName, &user.JoinedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}

		if r.log != nil {
			r.log.Error("failed to fetch user", slog.Int64("user_id", id), slog.Any("error", err))
		}
		return nil, apperrors.NewStorageError(err)
	}

	return &user, nil
}

func (r *userRepository) ListIDs(ctx context.Context) ([]int64, error) {
	const query = `SELECT user_id FROM users ORDER BY user_id`

	opCtx, cancel := r.db.OperationContext(ctx)
	defer cancel()

	rows, err := r.db.QueryContext(opCtx, query)
	if err != nil {
		if r.log != nil {
			r.log.Error("failed to list user ids", slog.Any("error", err))
		}
		return nil, apperrors.NewStorageError(err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, apperrors.NewStorageError(err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStorageError(err)
	}

	return ids, nil
}

func (r *userRepository) Count(ctx context.Context) (int64, error) {
	const query = `SELECT COUNT(*) FROM users`

	opCtx, cancel := r.db.OperationContext(ctx)
	defer cancel()

	var count int64
	if err := r.db.QueryRowContext(opCtx, query).Scan(&count); err != nil {
		if r.log != nil {
			r.log.Error("failed to count users", slog.Any("error", err))
		}
		return 0, apperrors.NewStorageError(err)
	}

	return count, nil
}
