// internal/common/database/memory.go
package database

import (
	"context"
	"sync"
)

// MemoryNamespace keeps values in process memory. It is the default backend
// and the one used in tests.
type MemoryNamespace struct {
	mu     sync.RWMutex
	values map[string][]byte
}

var _ Namespace = (*MemoryNamespace)(nil)

func NewMemory() *MemoryNamespace {
	return &MemoryNamespace{values: make(map[string][]byte)}
}

func (m *MemoryNamespace) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.values[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

func (m *MemoryNamespace) Put(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	stored := make([]byte, len(value))
	copy(stored, value)

	m.mu.Lock()
	m.values[key] = stored
	m.mu.Unlock()
	return nil
}

func (m *MemoryNamespace) Close() error {
	return nil
}
