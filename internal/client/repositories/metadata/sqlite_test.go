package metadata

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/authdash/internal/dbx"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE metadata (
  key        TEXT PRIMARY KEY,
  value      BLOB NOT NULL,
  updated_at INTEGER NOT NULL
);`)
	require.NoError(t, err)
	return db
}

func fixedClock(ts time.Time) func() time.Time {
	return func() time.Time { return ts }
}

func TestSetAndGet_InsertThenGet(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ts := time.UnixMilli(1_700_000_000_000)
	r.now = fixedClock(ts)
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "authToken", []byte("tok1")))

	it, err := r.Get(ctx, "authToken")
	require.NoError(t, err)
	assert.Equal(t, "authToken", it.Key)
	assert.Equal(t, []byte("tok1"), it.Value)
	assert.True(t, it.UpdatedAt.Equal(ts))
}

func TestGet_NotExists_ReturnsErrNotFound(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)

	it, err := r.Get(context.Background(), "absent")
	require.ErrorIs(t, err, ErrNotFound)
	require.Nil(t, it)
}

func TestSet_UpsertOverwritesValueAndTimestamp(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	r.now = fixedClock(time.UnixMilli(1000))
	require.NoError(t, r.Set(ctx, "k", []byte("old")))
	r.now = fixedClock(time.UnixMilli(2000))
	require.NoError(t, r.Set(ctx, "k", []byte("new")))

	it, err := r.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, []byte("new"), it.Value)
	require.Equal(t, int64(2000), it.UpdatedAt.UnixMilli())
}

func TestList_ReturnsAllItemsSorted(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "b", []byte{0xBB, 0xCC}))
	require.NoError(t, r.Set(ctx, "a", []byte{0xAA}))

	items, err := r.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "a", items[0].Key)
	assert.Equal(t, []byte{0xAA}, items[0].Value)
	assert.Equal(t, "b", items[1].Key)
}

func TestDelete_RemovesKey_AndIsIdempotent(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "x", []byte{0x01}))
	require.NoError(t, r.Delete(ctx, "x"))

	_, err := r.Get(ctx, "x")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, r.Delete(ctx, "x"))
}

func TestClear_RemovesAllKeys(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "a", []byte{1}))
	require.NoError(t, r.Set(ctx, "b", []byte{2}))
	require.NoError(t, r.Clear(ctx))

	items, err := r.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestRepository_InsideRolledBackTx_LeavesNoTrace(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := NewSQLiteRepository(tx).Set(ctx, "k", []byte("v")); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = NewSQLiteRepository(db).Get(ctx, "k")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRepository_DBErrorsWrapped(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, db.Close())

	_, err := r.Get(ctx, "k")
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrNotFound)
	require.Contains(t, err.Error(), "failed to get metadata[k]")

	err = r.Set(ctx, "k", []byte("v"))
	require.Contains(t, err.Error(), "failed to set metadata[k]")

	err = r.Delete(ctx, "k")
	require.Contains(t, err.Error(), "failed to delete metadata[k]")

	err = r.Clear(ctx)
	require.Contains(t, err.Error(), "failed to clear metadata")

	_, err = r.List(ctx)
	require.Contains(t, err.Error(), "failed to list metadata")
}
