// Package apperr holds the error kinds shared by the client, the session
// controller and the reference store.
package apperr

import "errors"

var (
	// ErrNotFound is returned when the store has no document for a key.
	ErrNotFound = errors.New("not found")
	// ErrTooLarge is returned when the store rejects content as too long.
	ErrTooLarge = errors.New("too large")
	// ErrAlreadyLocked is returned by a document that was already loaded or saved.
	ErrAlreadyLocked = errors.New("already locked")
	// ErrTransport covers network failures and any unexpected store response.
	ErrTransport = errors.New("transport error")
	// ErrInvalidKey is returned for an empty or malformed key.
	ErrInvalidKey = errors.New("invalid key")
)

// User-visible wording for each error kind.
const (
	NoticeNotFound  = "Document not found."
	NoticeTooLarge  = "Document exceeds maximum length."
	NoticeTransport = "Could not reach the paste service."
	NoticeInvalid   = "Invalid paste key."
	NoticeUnknown   = "Something went wrong."
)

// UserFacing reports whether err is an expected condition that the user
// should see as a notice rather than a failure.
func UserFacing(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrTooLarge) || errors.Is(err, ErrInvalidKey)
}

// Notice returns the text shown to the user for err.
func Notice(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return NoticeNotFound
	case errors.Is(err, ErrTooLarge):
		return NoticeTooLarge
	case errors.Is(err, ErrInvalidKey):
		return NoticeInvalid
	case errors.Is(err, ErrTransport):
		return NoticeTransport
	default:
		return NoticeUnknown
	}
}
