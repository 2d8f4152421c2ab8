package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Clark-Hu/cinescope/internal/kv"
)

// KVRepository stores namespaced key-value entries in Postgres. It
// implements kv.Store.
type KVRepository struct {
	pool *pgxpool.Pool
}

var _ kv.Store = (*KVRepository)(nil)

// Get returns the value of key, or kv.ErrNotFound.
func (r *KVRepository) Get(ctx context.Context, namespace, key string) ([]byte, error) {
	const query = `SELECT value FROM kv_entries WHERE namespace = $1 AND key = $2`
	var value []byte
	if err := r.pool.QueryRow(ctx, query, namespace, key).Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, kv.ErrNotFound
		}
		return nil, err
	}
	return value, nil
}

// Put inserts or replaces the value of key.
func (r *KVRepository) Put(ctx context.Context, namespace, key string, value []byte) error {
	_, err := r.pool.Exec(ctx, upsertEntry, namespace, key, nonNil(value))
	return err
}

// Delete removes key. Deleting an absent key is not an error.
func (r *KVRepository) Delete(ctx context.Context, namespace, key string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM kv_entries WHERE namespace = $1 AND key = $2`, namespace, key)
	return err
}

// Update runs fn under a transaction-scoped advisory lock on (namespace,
// key), so concurrent writers of the same key are serialized even when the
// row does not exist yet.
func (r *KVRepository) Update(ctx context.Context, namespace, key string, fn kv.UpdateFunc) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, lockEntry, namespace, key); err != nil {
			return fmt.Errorf("lock entry: %w", err)
		}

		var old []byte
		found := true
		err := tx.QueryRow(ctx, `SELECT value FROM kv_entries WHERE namespace = $1 AND key = $2`, namespace, key).Scan(&old)
		if err != nil {
			if !errors.Is(err, pgx.ErrNoRows) {
				return err
			}
			found = false
		}

		value, keep, err := fn(old, found)
		if err != nil {
			return err
		}
		if keep {
			_, err = tx.Exec(ctx, upsertEntry, namespace, key, nonNil(value))
			return err
		}
		if found {
			_, err = tx.Exec(ctx, `DELETE FROM kv_entries WHERE namespace = $1 AND key = $2`, namespace, key)
		}
		return err
	})
}

// Keys lists the keys stored in a namespace, sorted.
func (r *KVRepository) Keys(ctx context.Context, namespace string) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT key FROM kv_entries WHERE namespace = $1 ORDER BY key`, namespace)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

// lockEntry takes the two-key form of the advisory lock so namespace and
// key are hashed separately.
const lockEntry = `SELECT pg_advisory_xact_lock(hashtext($1), hashtext($2))`

const upsertEntry = `
    INSERT INTO kv_entries (namespace, key, value)
    VALUES ($1, $2, $3)
    ON CONFLICT (namespace, key)
    DO UPDATE SET value = EXCLUDED.value, updated_at = now()
`

func nonNil(b []byte) []byte {
	if b == nil {
		return []byte{}
	}
	return b
}
