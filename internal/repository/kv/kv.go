// Package kv defines the persistent key/value contract the stock store and
// sales ledger are built on. Each key holds one JSON-serialized sequence of
// records; writers always replace the whole value.
package kv

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned by Get when no value is stored under the key.
var ErrKeyNotFound = errors.New("key not found")

// Store abstracts the persistent key/value backend.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
}
