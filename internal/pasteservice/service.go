// Package pasteservice implements the reference store's document rules:
// content-addressed keys, a maximum length and newline normalization.
package pasteservice

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/starford/pastebin/internal/apperr"
	"github.com/starford/pastebin/internal/checksum"
	"github.com/starford/pastebin/internal/models"
	"github.com/starford/pastebin/internal/storage"
)

// Defaults used when no option overrides them.
const (
	DefaultMaxLength = 400_000
	DefaultKeyLength = 10
)

// CreateHook is called after a document is stored for the first time.
type CreateHook func(p models.Paste)

// Option configures a Service.
type Option func(*Service)

// WithMaxLength sets the largest accepted document, in bytes.
func WithMaxLength(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxLength = n
		}
	}
}

// WithKeyLength sets the number of hex characters in generated keys.
func WithKeyLength(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.keyLength = n
		}
	}
}

// WithCreateHook registers fn to run after each new document is stored.
func WithCreateHook(fn CreateHook) Option {
	return func(s *Service) {
		s.onCreate = fn
	}
}

// Service coordinates storage for the store API.
type Service struct {
	store     storage.Provider
	maxLength int
	keyLength int
	onCreate  CreateHook
}

// NewService creates a new paste service.
func NewService(store storage.Provider, opts ...Option) *Service {
	s := &Service{
		store:     store,
		maxLength: DefaultMaxLength,
		keyLength: DefaultKeyLength,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// MaxLength returns the largest accepted document, in bytes.
func (s *Service) MaxLength() int {
	return s.maxLength
}

// Get returns the document stored under key.
func (s *Service) Get(_ context.Context, key string) (models.Paste, error) {
	data, err := s.store.Read(key)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) || errors.Is(err, apperr.ErrInvalidKey) {
			return models.Paste{}, apperr.ErrNotFound
		}
		return models.Paste{}, err
	}
	return models.Paste{Key: key, Data: string(data)}, nil
}

// Create stores content under a key derived from it. Storing the same
// content twice yields the same key and does not rewrite the file.
func (s *Service) Create(_ context.Context, content []byte) (models.Paste, error) {
	normalized := Normalize(content)
	if len(normalized) > s.maxLength {
		return models.Paste{}, fmt.Errorf("pasteservice: %d bytes: %w", len(normalized), apperr.ErrTooLarge)
	}

	key := checksum.Key(normalized, s.keyLength)
	existing, err := s.store.Read(key)
	switch {
	case err == nil && string(existing) == string(normalized):
		return models.Paste{Key: key, Data: string(existing)}, nil
	case err == nil:
		// Prefix collision with different content: fall back to the full digest.
		key = checksum.Sum(normalized)
	case !errors.Is(err, os.ErrNotExist):
		return models.Paste{}, err
	}

	if err := s.store.Write(key, normalized); err != nil {
		return models.Paste{}, err
	}
	p := models.Paste{Key: key, Data: string(normalized)}
	if s.onCreate != nil {
		s.onCreate(p)
	}
	return p, nil
}

// Normalize converts CRLF and lone CR line endings to LF.
func Normalize(content []byte) []byte {
	s := string(content)
	if !strings.Contains(s, "\r") {
		return content
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return []byte(s)
}
