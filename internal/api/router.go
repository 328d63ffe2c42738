// Package api implements the reference paste store's HTTP surface using chi.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/starford/pastebin/internal/pasteservice"
)

// NewRouter creates a chi router with the store routes mounted.
// sseHandler, if non-nil, is mounted at GET /events.
func NewRouter(svc *pasteservice.Service, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()

	r.Post("/documents", h.CreateDocument)
	r.Get("/documents/{key}", h.GetDocument)
	r.Get("/raw/{key}", h.GetRaw)

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	r.Get("/{key}", h.SharePage)

	return r
}
