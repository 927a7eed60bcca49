// Package metadata is the durable key/value store of the client, backed by
// the local sqlite database. It plays the role a browser's local storage
// plays for a web client.
package metadata

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get when the key is absent.
var ErrNotFound = errors.New("metadata key not found")

// Item is a stored value with the time it was last written.
type Item struct {
	Key       string
	Value     []byte
	UpdatedAt time.Time
}

type Repository interface {
	Get(ctx context.Context, key string) (*Item, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) ([]Item, error)
	Clear(ctx context.Context) error
}
