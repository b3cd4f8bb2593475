package storage

import (
	"encoding/json"
	"fmt"
	"sync"
)

// MemoryStore is an in-memory KVStore and BlobStore, safe for
// concurrent use. Values round-trip through JSON so stored records are
// fully decoupled from the caller's structs, same as the file backend.
type MemoryStore struct {
	mu    sync.RWMutex
	keys  map[string][]byte
	blobs map[string][]byte
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		keys:  make(map[string][]byte),
		blobs: make(map[string][]byte),
	}
}

// Get implements KVStore
func (ms *MemoryStore) Get(key string, out interface{}) error {
	ms.mu.RLock()
	data, ok := ms.keys[key]
	ms.mu.RUnlock()
	if !ok {
		return ErrNotFound
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("storage: decode %q: %w", key, err)
	}
	return nil
}

// Put implements KVStore
func (ms *MemoryStore) Put(key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("storage: encode %q: %w", key, err)
	}
	ms.mu.Lock()
	ms.keys[key] = data
	ms.mu.Unlock()
	return nil
}

// Delete implements KVStore
func (ms *MemoryStore) Delete(key string) error {
	ms.mu.Lock()
	delete(ms.keys, key)
	ms.mu.Unlock()
	return nil
}

// SaveBlob implements BlobStore
func (ms *MemoryStore) SaveBlob(id string, data []byte) error {
	cp := make([]byte, len(data))
	copy(cp, data)
	ms.mu.Lock()
	ms.blobs[id] = cp
	ms.mu.Unlock()
	return nil
}

// LoadBlob implements BlobStore
func (ms *MemoryStore) LoadBlob(id string) ([]byte, error) {
	ms.mu.RLock()
	data, ok := ms.blobs[id]
	ms.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return cp, nil
}

// DeleteBlob implements BlobStore
func (ms *MemoryStore) DeleteBlob(id string) error {
	ms.mu.Lock()
	delete(ms.blobs, id)
	ms.mu.Unlock()
	return nil
}
