// Package storage defines the document store abstraction used by the reference server.
package storage

import "github.com/starford/pastebin/internal/models"

// Provider is the interface for document file operations. Keys are flat
// identifiers; they never contain path separators. Documents are write-once,
// so there is no delete.
type Provider interface {
	// List returns metadata for every stored document.
	List() ([]models.PasteMetadata, error)
	// Read returns the raw bytes stored under key.
	// A missing key yields an error wrapping os.ErrNotExist.
	Read(key string) ([]byte, error)
	// Write atomically stores content under key.
	Write(key string, content []byte) error
}
