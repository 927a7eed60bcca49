package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/authdash/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/authdash/internal/common"
	"github.com/dmitrijs2005/authdash/internal/dbx"
)

// ErrNoToken means durable storage holds no token: the client is anonymous.
var ErrNoToken = errors.New("no stored token")

// TokenStore keeps the bearer token across process restarts.
type TokenStore interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// SQLiteTokenStore keeps the token under common.TokenMetadataKey in the
// local metadata table.
type SQLiteTokenStore struct {
	db *sql.DB
}

func NewSQLiteTokenStore(db *sql.DB) *SQLiteTokenStore {
	return &SQLiteTokenStore{db: db}
}

func (s *SQLiteTokenStore) Load(ctx context.Context) (string, error) {
	it, err := metadata.NewSQLiteRepository(s.db).Get(ctx, common.TokenMetadataKey)
	if errors.Is(err, metadata.ErrNotFound) {
		return "", ErrNoToken
	}
	if err != nil {
		return "", err
	}
	if len(it.Value) == 0 {
		return "", ErrNoToken
	}
	return string(it.Value), nil
}

// SavedAt reports when the stored token was written.
func (s *SQLiteTokenStore) SavedAt(ctx context.Context) (time.Time, error) {
	it, err := metadata.NewSQLiteRepository(s.db).Get(ctx, common.TokenMetadataKey)
	if errors.Is(err, metadata.ErrNotFound) {
		return time.Time{}, ErrNoToken
	}
	if err != nil {
		return time.Time{}, err
	}
	return it.UpdatedAt, nil
}

// Save replaces whatever the storage held with token, in one transaction.
func (s *SQLiteTokenStore) Save(ctx context.Context, token string) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := repo.Clear(ctx); err != nil {
			return err
		}
		if err := repo.Set(ctx, common.TokenMetadataKey, []byte(token)); err != nil {
			return fmt.Errorf("save token: %w", err)
		}
		return nil
	})
}

// Clear wipes the storage entirely.
func (s *SQLiteTokenStore) Clear(ctx context.Context) error {
	return metadata.NewSQLiteRepository(s.db).Clear(ctx)
}
