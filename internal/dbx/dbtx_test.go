package dbx_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/authdash/internal/client/client"
	"github.com/dmitrijs2005/authdash/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/authdash/internal/common"
	"github.com/dmitrijs2005/authdash/internal/dbx"
)

func openSessionDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := client.InitDatabase(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// replaceToken swaps whatever the database holds for token, the way the
// token store saves a session, and then returns fail.
func replaceToken(token string, fail error) func(context.Context, dbx.DBTX) error {
	return func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := repo.Clear(ctx); err != nil {
			return err
		}
		if err := repo.Set(ctx, common.TokenMetadataKey, []byte(token)); err != nil {
			return err
		}
		return fail
	}
}

func storedToken(t *testing.T, db *sql.DB) string {
	t.Helper()
	it, err := metadata.NewSQLiteRepository(db).Get(context.Background(), common.TokenMetadataKey)
	if errors.Is(err, metadata.ErrNotFound) {
		return ""
	}
	require.NoError(t, err)
	return string(it.Value)
}

func seed(t *testing.T, db *sql.DB, token string) {
	t.Helper()
	require.NoError(t, metadata.NewSQLiteRepository(db).Set(context.Background(), common.TokenMetadataKey, []byte(token)))
}

func TestWithTx_CommitReplacesToken(t *testing.T) {
	db := openSessionDB(t)
	seed(t, db, "tok1")

	require.NoError(t, dbx.WithTx(context.Background(), db, nil, replaceToken("tok2", nil)))
	assert.Equal(t, "tok2", storedToken(t, db))
}

func TestWithTx_FailureKeepsPreviousToken(t *testing.T) {
	db := openSessionDB(t)
	seed(t, db, "tok1")
	boom := errors.New("boom")

	err := dbx.WithTx(context.Background(), db, nil, replaceToken("tok2", boom))
	require.ErrorIs(t, err, boom)
	assert.Equal(t, "tok1", storedToken(t, db), "the cleared table is restored by the rollback")
}

func TestWithTx_PanicRollsBackAndPropagates(t *testing.T) {
	db := openSessionDB(t)
	seed(t, db, "tok1")

	assert.PanicsWithValue(t, "kaput", func() {
		_ = dbx.WithTx(context.Background(), db, nil, func(ctx context.Context, tx dbx.DBTX) error {
			require.NoError(t, replaceToken("tok2", nil)(ctx, tx))
			panic("kaput")
		})
	})
	assert.Equal(t, "tok1", storedToken(t, db))
}

func TestWithTx_BeginErrorIsWrapped(t *testing.T) {
	db := openSessionDB(t)
	require.NoError(t, db.Close())

	called := false
	err := dbx.WithTx(context.Background(), db, nil, func(context.Context, dbx.DBTX) error {
		called = true
		return nil
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "begin tx")
	assert.False(t, called)
}
