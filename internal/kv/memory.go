package kv

import (
	"context"
	"sort"
	"sync"
)

// Memory is an in-process Store. It is used by tests and by the server when
// no database is configured.
type Memory struct {
	mu   sync.Mutex
	data map[string]map[string][]byte
}

// NewMemory returns an empty Memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string]map[string][]byte)}
}

func (m *Memory) Get(ctx context.Context, namespace, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.data[namespace][key]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(val), nil
}

func (m *Memory) Put(ctx context.Context, namespace, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.set(namespace, key, value)
	return nil
}

func (m *Memory) Delete(ctx context.Context, namespace, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.remove(namespace, key)
	return nil
}

func (m *Memory) Update(ctx context.Context, namespace, key string, fn UpdateFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	old, found := m.data[namespace][key]
	value, keep, err := fn(clone(old), found)
	if err != nil {
		return err
	}
	if keep {
		m.set(namespace, key, value)
	} else {
		m.remove(namespace, key)
	}
	return nil
}

func (m *Memory) Keys(ctx context.Context, namespace string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.data[namespace]))
	for k := range m.data[namespace] {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

func (m *Memory) set(namespace, key string, value []byte) {
	ns, ok := m.data[namespace]
	if !ok {
		ns = make(map[string][]byte)
		m.data[namespace] = ns
	}
	ns[key] = clone(value)
}

func (m *Memory) remove(namespace, key string) {
	ns, ok := m.data[namespace]
	if !ok {
		return
	}
	delete(ns, key)
	if len(ns) == 0 {
		delete(m.data, namespace)
	}
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
