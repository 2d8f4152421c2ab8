// Package kv defines the namespaced key-value storage used for per-client
// state such as favorites. A namespace plays the role of one browser's
// local storage.
package kv

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the key is absent.
var ErrNotFound = errors.New("kv: not found")

// UpdateFunc computes the new value of a key from its current one. Returning
// keep=false deletes the key.
type UpdateFunc func(old []byte, found bool) (value []byte, keep bool, err error)

// Store is a namespaced key-value store. Update must apply the
// read-modify-write atomically per key.
type Store interface {
	Get(ctx context.Context, namespace, key string) ([]byte, error)
	Put(ctx context.Context, namespace, key string, value []byte) error
	Delete(ctx context.Context, namespace, key string) error
	Update(ctx context.Context, namespace, key string, fn UpdateFunc) error
	// Keys lists the keys of a namespace in ascending order.
	Keys(ctx context.Context, namespace string) ([]string, error)
}
