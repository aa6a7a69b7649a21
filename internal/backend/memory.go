package backend

import (
	"context"
	"strings"
	"sync"
)

// MemoryStore is an in-process PathStore and BlobStore. It backs the
// dev mode and the test suite.
type MemoryStore struct {
	mu    sync.RWMutex
	data  map[string]string
	blobs map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data:  make(map[string]string),
		blobs: make(map[string][]byte),
	}
}

func (m *MemoryStore) Get(ctx context.Context, path string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.data[path]
	if !ok {
		return "", ErrNotFound
	}
	return value, nil
}

func (m *MemoryStore) Set(ctx context.Context, path string, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data[path] = value
	return nil
}

func (m *MemoryStore) List(ctx context.Context, prefix string) (map[string]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]string)
	for path, value := range m.data {
		if strings.HasPrefix(path, prefix+"/") {
			out[childKey(prefix, path)] = value
		}
	}
	return out, nil
}

func (m *MemoryStore) Put(ctx context.Context, path string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	buf := make([]byte, len(data))
	copy(buf, data)
	m.blobs[path] = buf
	return nil
}

func (m *MemoryStore) Fetch(ctx context.Context, path string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.blobs[path]
	if !ok {
		return nil, ErrNotFound
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	return buf, nil
}
