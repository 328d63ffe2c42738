// Package document models a single paste: a draft until it is saved, or a
// read-only copy of a stored document once loaded. A Document locks at most
// once and never unlocks; showing another paste requires a new Document.
package document

import (
	"context"
	"fmt"
	"sync"

	"github.com/starford/pastebin/internal/apperr"
	"github.com/starford/pastebin/internal/models"
)

// Remote is the store a Document reads from and writes to.
type Remote interface {
	Fetch(ctx context.Context, key string) (models.Paste, error)
	Create(ctx context.Context, content string) (models.Paste, error)
}

// Result is the key and content of a locked Document.
type Result struct {
	Key     string
	Content string
}

// Document is one paste's lifecycle. It is safe for concurrent use; Load and
// Save calls on the same instance run one at a time.
type Document struct {
	remote Remote

	// opMu serializes remote operations so the locked check and the request
	// that may set it are never interleaved with another call.
	opMu sync.Mutex

	mu      sync.Mutex
	key     string
	content string
	locked  bool
}

// New returns an unlocked draft bound to remote.
func New(remote Remote) *Document {
	return &Document{remote: remote}
}

// Key returns the document key and whether it is set.
func (d *Document) Key() (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.key, d.key != ""
}

// Content returns the stored content of a locked document, or "" for a draft.
func (d *Document) Content() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.content
}

// Locked reports whether the document has been loaded or saved.
func (d *Document) Locked() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.locked
}

// Snapshot returns the locked key and content. ok is false for a draft.
func (d *Document) Snapshot() (Result, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return Result{Key: d.key, Content: d.content}, d.locked
}

// Load fetches key from the store and locks the document with the result.
// Errors wrap apperr.ErrNotFound, apperr.ErrTransport, apperr.ErrInvalidKey
// or apperr.ErrAlreadyLocked and leave the document untouched.
func (d *Document) Load(ctx context.Context, key string) (Result, error) {
	if key == "" {
		return Result{}, fmt.Errorf("document: load: %w", apperr.ErrInvalidKey)
	}

	d.opMu.Lock()
	defer d.opMu.Unlock()

	if d.Locked() {
		return Result{}, fmt.Errorf("document: load %s: %w", key, apperr.ErrAlreadyLocked)
	}

	p, err := d.remote.Fetch(ctx, key)
	if err != nil {
		return Result{}, fmt.Errorf("document: load %s: %w", key, err)
	}
	return d.lock(key, p.Data), nil
}

// Save stores content as a new document and locks this one with the key and
// content the store returned. A locked document reports
// apperr.ErrAlreadyLocked without contacting the store. On
// apperr.ErrTooLarge or apperr.ErrTransport the document stays unlocked so
// the caller may retry.
func (d *Document) Save(ctx context.Context, content string) (Result, error) {
	d.opMu.Lock()
	defer d.opMu.Unlock()

	if d.Locked() {
		return Result{}, fmt.Errorf("document: save: %w", apperr.ErrAlreadyLocked)
	}

	p, err := d.remote.Create(ctx, content)
	if err != nil {
		return Result{}, fmt.Errorf("document: save: %w", err)
	}
	if p.Key == "" {
		return Result{}, fmt.Errorf("document: save: %w: store returned no key", apperr.ErrTransport)
	}
	return d.lock(p.Key, p.Data), nil
}

func (d *Document) lock(key, content string) Result {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.key = key
	d.content = content
	d.locked = true
	return Result{Key: key, Content: content}
}
