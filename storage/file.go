package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileStore persists records as pretty-printed JSON files and blobs as
// raw files, all under a single root directory. Writes go through a
// temp file and rename so a crash mid-write never leaves a truncated
// record behind.
type FileStore struct {
	root string
}

// NewFileStore opens a file store rooted at dir, creating the layout
// if needed
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("storage: empty root directory")
	}
	if err := os.MkdirAll(filepath.Join(dir, "blobs"), 0o755); err != nil {
		return nil, fmt.Errorf("storage: create root: %w", err)
	}
	return &FileStore{root: dir}, nil
}

// Root returns the store's root directory
func (fs *FileStore) Root() string {
	return fs.root
}

// Get implements KVStore
func (fs *FileStore) Get(key string, out interface{}) error {
	data, err := os.ReadFile(fs.keyPath(key))
	if err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return fmt.Errorf("storage: read %q: %w", key, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("storage: decode %q: %w", key, err)
	}
	return nil
}

// Put implements KVStore
func (fs *FileStore) Put(key string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("storage: encode %q: %w", key, err)
	}
	return fs.atomicWrite(fs.keyPath(key), data)
}

// Delete implements KVStore
func (fs *FileStore) Delete(key string) error {
	err := os.Remove(fs.keyPath(key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage: delete %q: %w", key, err)
	}
	return nil
}

// SaveBlob implements BlobStore
func (fs *FileStore) SaveBlob(id string, data []byte) error {
	return fs.atomicWrite(fs.blobPath(id), data)
}

// LoadBlob implements BlobStore
func (fs *FileStore) LoadBlob(id string) ([]byte, error) {
	data, err := os.ReadFile(fs.blobPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("storage: read blob %q: %w", id, err)
	}
	return data, nil
}

// DeleteBlob implements BlobStore
func (fs *FileStore) DeleteBlob(id string) error {
	err := os.Remove(fs.blobPath(id))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage: delete blob %q: %w", id, err)
	}
	return nil
}

func (fs *FileStore) atomicWrite(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("storage: write %q: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("storage: commit %q: %w", path, err)
	}
	return nil
}

func (fs *FileStore) keyPath(key string) string {
	return filepath.Join(fs.root, sanitize(key)+".json")
}

func (fs *FileStore) blobPath(id string) string {
	return filepath.Join(fs.root, "blobs", sanitize(id)+".bin")
}

// sanitize keeps keys inside the store directory regardless of what
// characters they carry
func sanitize(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "_"
	}
	return b.String()
}
