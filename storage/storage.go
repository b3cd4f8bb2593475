// Package storage defines the persistence interfaces and the two
// standard backends: a JSON-file store for local profiles and an
// in-memory store for tests.
package storage

import "errors"

// ErrNotFound is returned when a key or blob does not exist
var ErrNotFound = errors.New("storage: not found")

// Well-known keys for the persisted records. Versioned suffixes change
// when a record's shape changes incompatibly.
const (
	KeySettings   = "resona_settings_v3"
	KeyStats      = "resona_stats_v3"
	KeyRecordings = "resona_recordings_meta"
	KeySessions   = "resona_sessions_v2"
	KeyGoals      = "resona_goals"
)

// KVStore persists small JSON-encodable records under string keys
type KVStore interface {
	// Get decodes the value stored under key into out. Returns
	// ErrNotFound when the key does not exist.
	Get(key string, out interface{}) error

	// Put encodes v and stores it under key, replacing any prior value
	Put(key string, v interface{}) error

	// Delete removes a key. Deleting a missing key is not an error.
	Delete(key string) error
}

// BlobStore persists large opaque binaries (recorded audio) by ID
type BlobStore interface {
	// SaveBlob stores data under id, replacing any prior blob
	SaveBlob(id string, data []byte) error

	// LoadBlob returns the blob stored under id, or ErrNotFound
	LoadBlob(id string) ([]byte, error)

	// DeleteBlob removes a blob. Deleting a missing blob is not an error.
	DeleteBlob(id string) error
}
