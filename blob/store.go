// Package blob stores named byte blobs. Writing an existing key replaces its content.
package blob

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("blob not found")

type Store interface {
	Put(ctx context.Context, key string, content []byte, mediaType string) error
	// Get returns an error wrapping ErrNotFound when the key does not exist.
	Get(ctx context.Context, key string) ([]byte, error)
	Exists(ctx context.Context, key string) (bool, error)
	// Delete is a no-op for missing keys.
	Delete(ctx context.Context, key string) error
	// List returns every key with the given prefix in lexical order.
	List(ctx context.Context, prefix string) ([]string, error)
}
