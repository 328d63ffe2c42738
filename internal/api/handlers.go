package api

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/starford/pastebin/internal/apperr"
	"github.com/starford/pastebin/internal/pasteservice"
)

// Handler holds API route handlers.
type Handler struct {
	svc *pasteservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *pasteservice.Service) *Handler {
	return &Handler{svc: svc}
}

// CreateDocument handles POST /documents. The body is the raw paste text.
//
//	@Summary		Store a new document
//	@Tags			documents
//	@Accept			plain
//	@Produce		json
//	@Success		200		{object}	DocumentResponse
//	@Failure		400		{object}	errResponse
//	@Router			/documents [post]
func (h *Handler) CreateDocument(w http.ResponseWriter, r *http.Request) {
	// CRLF normalization can at most halve the size, so read twice the limit
	// before deciding.
	r.Body = http.MaxBytesReader(w, r.Body, int64(h.svc.MaxLength())*2+1)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeJSON(w, http.StatusBadRequest, errorBody(apperr.NoticeTooLarge))
			return
		}
		writeJSON(w, http.StatusBadRequest, errorBody("failed to read body"))
		return
	}

	doc, err := h.svc.Create(r.Context(), body)
	if err != nil {
		if errors.Is(err, apperr.ErrTooLarge) {
			writeJSON(w, http.StatusBadRequest, errorBody(apperr.NoticeTooLarge))
		} else {
			slog.Error("create document failed", slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("Error adding document."))
		}
		return
	}
	slog.Debug("document stored", slog.String("key", doc.Key), slog.Int("size", len(doc.Data)))
	writeJSON(w, http.StatusOK, toResponse(doc))
}

// GetDocument handles GET /documents/{key}.
//
//	@Summary		Get a document by key
//	@Tags			documents
//	@Produce		json
//	@Param			key	path		string	true	"Document key"
//	@Success		200	{object}	DocumentResponse
//	@Failure		404	{object}	errResponse
//	@Router			/documents/{key} [get]
func (h *Handler) GetDocument(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	doc, err := h.svc.Get(r.Context(), key)
	if err != nil {
		h.writeGetError(w, key, err)
		return
	}
	writeJSON(w, http.StatusOK, toResponse(doc))
}

// GetRaw handles GET /raw/{key} and returns the content as plain text.
//
//	@Summary		Get a document as plain text
//	@Tags			documents
//	@Produce		plain
//	@Param			key	path		string	true	"Document key"
//	@Success		200	{string}	string
//	@Failure		404	{object}	errResponse
//	@Router			/raw/{key} [get]
func (h *Handler) GetRaw(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	doc, err := h.svc.Get(r.Context(), key)
	if err != nil {
		h.writeGetError(w, key, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, doc.Data)
}

// SharePage handles GET /{key}. The store has no web editor, so share links
// redirect to the raw view.
func (h *Handler) SharePage(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	if _, err := h.svc.Get(r.Context(), key); err != nil {
		h.writeGetError(w, key, err)
		return
	}
	http.Redirect(w, r, "/raw/"+url.PathEscape(key), http.StatusFound)
}

func (h *Handler) writeGetError(w http.ResponseWriter, key string, err error) {
	if errors.Is(err, apperr.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, errorBody(apperr.NoticeNotFound))
		return
	}
	slog.Error("get document failed", slog.String("key", key), slog.String("error", err.Error()))
	writeJSON(w, http.StatusInternalServerError, errorBody("Error retrieving document."))
}
