package hashstore

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory Conn implementation for testing and
// embedding. Each method is atomic; the mutex plays the role of the remote
// store's per-command atomicity. Thread-safe for concurrent use.
type MemoryStore struct {
	mu     sync.RWMutex
	hashes map[string]map[string]string
}

var _ Conn = (*MemoryStore)(nil)

// NewMemoryStore creates a new in-memory hash store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		hashes: make(map[string]map[string]string),
	}
}

// Len returns the number of fields in the named hash.
func (m *MemoryStore) Len(_ context.Context, name string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return int64(len(m.hashes[name])), nil
}

// Exists reports whether field is present in the named hash.
func (m *MemoryStore) Exists(_ context.Context, name, field string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.hashes[name][field]
	return ok, nil
}

// Get returns the value stored under field.
func (m *MemoryStore) Get(_ context.Context, name, field string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.hashes[name][field]
	return value, ok, nil
}

// Set stores value under field, creating the hash if needed.
func (m *MemoryStore) Set(_ context.Context, name, field, value string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	hash, ok := m.hashes[name]
	if !ok {
		hash = make(map[string]string)
		m.hashes[name] = hash
	}

	_, existed := hash[field]
	hash[field] = value
	return !existed, nil
}

// Del removes the given fields. A hash with no fields left is destroyed.
func (m *MemoryStore) Del(_ context.Context, name string, fields ...string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	hash, ok := m.hashes[name]
	if !ok {
		return 0, nil
	}

	var removed int64
	for _, field := range fields {
		if _, ok := hash[field]; ok {
			delete(hash, field)
			removed++
		}
	}

	if len(hash) == 0 {
		delete(m.hashes, name)
	}

	return removed, nil
}

// SetAll stores every entry atomically.
func (m *MemoryStore) SetAll(_ context.Context, name string, entries map[string]string) (int64, error) {
	if len(entries) == 0 {
		return 0, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	hash, ok := m.hashes[name]
	if !ok {
		hash = make(map[string]string)
		m.hashes[name] = hash
	}

	var created int64
	for field, value := range entries {
		if _, existed := hash[field]; !existed {
			created++
		}
		hash[field] = value
	}

	return created, nil
}

// Drop deletes the entire hash.
func (m *MemoryStore) Drop(_ context.Context, name string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.hashes[name]; !ok {
		return 0, nil
	}

	delete(m.hashes, name)
	return 1, nil
}

// Keys returns all field names of the named hash.
func (m *MemoryStore) Keys(_ context.Context, name string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	hash := m.hashes[name]
	keys := make([]string, 0, len(hash))
	for field := range hash {
		keys = append(keys, field)
	}
	return keys, nil
}

// Values returns all field values of the named hash.
func (m *MemoryStore) Values(_ context.Context, name string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	hash := m.hashes[name]
	values := make([]string, 0, len(hash))
	for _, value := range hash {
		values = append(values, value)
	}
	return values, nil
}

// GetAll returns a copy of the named hash. Mutating the returned map does
// not affect the store.
func (m *MemoryStore) GetAll(_ context.Context, name string) (map[string]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	hash := m.hashes[name]
	copied := make(map[string]string, len(hash))
	for field, value := range hash {
		copied[field] = value
	}
	return copied, nil
}
