// Package kv provides the key-value stores behind session persistence.
package kv

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/spf13/afero"
)

// Kind names a store backend.
type Kind string

const (
	KindMemory Kind = "memory"
	KindFile   Kind = "file"
	KindSQLite Kind = "sqlite"
)

// Store is the interface every backend satisfies. It matches session.Store
// plus Close.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context) ([]string, error)
	Close() error
}

// Open returns the backend for kind. path is ignored by the memory store.
func Open(kind Kind, fs afero.Fs, path string) (Store, error) {
	switch kind {
	case KindMemory, "":
		return NewMemory(), nil
	case KindFile:
		return NewFile(fs, path)
	case KindSQLite:
		return NewSQLite(path)
	default:
		return nil, fmt.Errorf("unknown store %q (want memory, file or sqlite)", kind)
	}
}

// Memory is an in-process store.
type Memory struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemory returns an empty memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string]string)}
}

func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// Keys returns the stored keys in sorted order.
func (m *Memory) Keys(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return sortedKeys(m.data), nil
}

func (m *Memory) Close() error { return nil }

func sortedKeys(data map[string]string) []string {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
