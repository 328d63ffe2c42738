// Package models defines the domain types shared by the client and the store.
package models

import "time"

// Paste is the wire representation of a stored document.
// GET /documents/{key} may omit Key; POST /documents always sets it.
type Paste struct {
	Key  string `json:"key,omitempty"`
	Data string `json:"data"`
}

// PasteMetadata describes a stored document without its content.
type PasteMetadata struct {
	Key       string    `json:"key"`
	Size      int64     `json:"size"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RecentEntry is one locally recorded paste.
type RecentEntry struct {
	Key     string    `json:"key"`
	Action  string    `json:"action"` // "saved" or "loaded"
	Preview string    `json:"preview"`
	SeenAt  time.Time `json:"seen_at"`
}

// Recent entry actions.
const (
	ActionSaved  = "saved"
	ActionLoaded = "loaded"
)
