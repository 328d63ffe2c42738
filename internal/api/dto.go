package api

import "github.com/starford/pastebin/internal/models"

// DocumentResponse is returned by GET /documents/{key} and POST /documents.
// Key is always set, unlike the stored models.Paste.
type DocumentResponse struct {
	Key  string `json:"key"`
	Data string `json:"data"`
}

func toResponse(p models.Paste) DocumentResponse {
	return DocumentResponse{Key: p.Key, Data: p.Data}
}
