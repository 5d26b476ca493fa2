// Package storage provides blob stores for uploaded file content.
package storage

import "errors"

// ErrBlobNotFound is returned when a storage key does not exist.
var ErrBlobNotFound = errors.New("storage: blob not found")

// BlobInfo describes a stored blob.
type BlobInfo struct {
	Key  string `json:"key"`
	Size int64  `json:"size"`
}

// Provider is a keyed blob store. Keys are slash-separated relative
// paths; implementations must reject keys that escape the store root.
type Provider interface {
	// Driver returns the provider identifier recorded on file rows.
	Driver() string
	// Write stores content under key, replacing any existing blob.
	Write(key string, content []byte) error
	// Read returns the blob content for key.
	Read(key string) ([]byte, error)
	// Delete removes the blob for key. Deleting a missing key is an error.
	Delete(key string) error
	// List returns all blobs under the store root.
	List() ([]BlobInfo, error)
}
