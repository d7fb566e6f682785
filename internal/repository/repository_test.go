package repository

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rhnyadav/aitoolsbox/internal/database"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func openTestDB(t *testing.T) *database.DB {
	t.Helper()

	ctx := context.Background()

	db, err := database.Open(ctx, database.DialectSQLite, ":memory:", time.Second, testLogger())
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})

	require.NoError(t, db.Init(ctx))

	return db
}

func TestUserRepository_UpsertAndFind(t *testing.T) {
	db := openTestDB(t)
	repo := NewUserRepository(db, testLogger())
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, 42, "alice", "Alice"))

	user, err := repo.FindByID(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, int64(42), user.ID)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "Alice", user.FirstName)
	assert.False(t, user.JoinedAt.IsZero())
}

func TestUserRepository_UpsertFirstWriteWins(t *testing.T) {
	db := openTestDB(t)
	repo := NewUserRepository(db, testLogger())
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, 42, "alice", "Alice"))
	require.NoError(t, repo.Upsert(ctx, 42, "renamed", "Renamed"))

	user, err := repo.FindByID(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "Alice", user.FirstName)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestUserRepository_FindByIDMissing(t *testing.T) {
	db := openTestDB(t)
	repo := NewUserRepository(db, testLogger())

	_, err := repo.FindByID(context.Background(), 99)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestUserRepository_ListIDs(t *testing.T) {
	db := openTestDB(t)
	repo := NewUserRepository(db, testLogger())
	ctx := context.Background()

	ids, err := repo.ListIDs(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)

	require.NoError(t, repo.Upsert(ctx, 3, "c", "C"))
	require.NoError(t, repo.Upsert(ctx, 1, "a", "A"))
	require.NoError(t, repo.Upsert(ctx, 2, "b", "B"))

	ids, err = repo.ListIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, ids)
}

func TestBanRepository_BanIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	repo := NewBanRepository(db, testLogger())
	ctx := context.Background()

	require.NoError(t, repo.Ban(ctx, 42))
	require.NoError(t, repo.Ban(ctx, 42))

	banned, err := repo.IsBanned(ctx, 42)
	require.NoError(t, err)
	assert.True(t, banned)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestBanRepository_IsBannedUnknownUser(t *testing.T) {
	db := openTestDB(t)
	repo := NewBanRepository(db, testLogger())

	banned, err := repo.IsBanned(context.Background(), 99)
	require.NoError(t, err)
	assert.False(t, banned)
}

func TestBanRepository_UnbanRestoresAccess(t *testing.T) {
	db := openTestDB(t)
	repo := NewBanRepository(db, testLogger())
	ctx := context.Background()

	require.NoError(t, repo.Ban(ctx, 42))
	require.NoError(t, repo.Unban(ctx, 42))

	banned, err := repo.IsBanned(ctx, 42)
	require.NoError(t, err)
	assert.False(t, banned)

	// Unbanning a user who was never banned is a no-op.
	require.NoError(t, repo.Unban(ctx, 7))
}

func TestBanRepository_BanUnregisteredUser(t *testing.T) {
	db := openTestDB(t)
	repo := NewBanRepository(db, testLogger())
	ctx := context.Background()

	// The ban list is independent of the users table.
	require.NoError(t, repo.Ban(ctx, 12345))

	banned, err := repo.IsBanned(ctx, 12345)
	require.NoError(t, err)
	assert.True(t, banned)
}

func TestAuditRepository_RecordUsageAppends(t *testing.T) {
	db := openTestDB(t)
	repo := NewAuditRepository(db, testLogger())
	ctx := context.Background()

	require.NoError(t, repo.RecordUsage(ctx, 42, "yt"))
	require.NoError(t, repo.RecordUsage(ctx, 42, "yt"))
	require.NoError(t, repo.RecordUsage(ctx, 7, "ig"))

	count, err := repo.UsageCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestAuditRepository_TopTools(t *testing.T) {
	db := openTestDB(t)
	repo := NewAuditRepository(db, testLogger())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.RecordUsage(ctx, 42, "yt"))
	}
	require.NoError(t, repo.RecordUsage(ctx, 42, "ig"))

	top, err := repo.TopTools(ctx, 5)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "yt", top[0].Tool)
	assert.Equal(t, int64(3), top[0].Count)
	assert.Equal(t, "ig", top[1].Tool)
	assert.Equal(t, int64(1), top[1].Count)
}

func TestAuditRepository_TopToolsHonorsLimit(t *testing.T) {
	db := openTestDB(t)
	repo := NewAuditRepository(db, testLogger())
	ctx := context.Background()

	for _, tool := range []string{"yt", "ig", "fb"} {
		require.NoError(t, repo.RecordUsage(ctx, 42, tool))
	}

	top, err := repo.TopTools(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, top, 2)
}

func TestAuditRepository_RecordAdImpression(t *testing.T) {
	db := openTestDB(t)
	repo := NewAuditRepository(db, testLogger())
	ctx := context.Background()

	require.NoError(t, repo.RecordAdImpression(ctx, 42))

	var count int64
	require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM ad_logs").Scan(&count))
	assert.Equal(t, int64(1), count)
}
