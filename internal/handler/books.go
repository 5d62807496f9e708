package handler

import (
	"net/http"
	"time"

	"github.com/Dan9191/book-service/internal/auth"
	"github.com/Dan9191/book-service/internal/export"
	"github.com/Dan9191/book-service/internal/models"
	"github.com/google/uuid"
)

// ListBooks returns the catalog
func (h *Handler) ListBooks(w http.ResponseWriter, r *http.Request) {
	books, err := h.svc.ListBooks(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, books)
}

// ExportBooks renders the catalog with like counts as XML
func (h *Handler) ExportBooks(w http.ResponseWriter, r *http.Request) {
	books, err := h.svc.ListBooksWithLikes(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.WriteHeader(http.StatusOK)
	if err := export.WriteCatalog(w, books, time.Now()); err != nil {
		h.log.Errorf("Failed to export catalog: %v", err)
	}
}

// GetBook returns a single book
func (h *Handler) GetBook(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	book, err := h.svc.GetBook(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, book)
}

// CreateBook adds a book
func (h *Handler) CreateBook(w http.ResponseWriter, r *http.Request) {
	var req models.BookRequest
	if err := h.decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	book, err := h.svc.CreateBook(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, book)
}

// UpdateBook replaces a book's fields
func (h *Handler) UpdateBook(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req models.BookRequest
	if err := h.decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	if _, err := h.svc.UpdateBook(r.Context(), id, req); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeSuccess(w)
}

// DeleteBook removes a book
func (h *Handler) DeleteBook(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.svc.DeleteBook(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeSuccess(w)
}

// likeTarget decodes a like body. userId defaults to the caller.
func (h *Handler) likeTarget(w http.ResponseWriter, r *http.Request) (actor auth.Identity, bookID, userID uuid.UUID, err error) {
	actor, err = identity(r)
	if err != nil {
		return actor, uuid.Nil, uuid.Nil, err
	}
	var req models.LikeRequest
	if err := h.decode(w, r, &req); err != nil {
		return actor, uuid.Nil, uuid.Nil, err
	}

	// both already validated as uuids
	bookID = uuid.MustParse(req.BookID)
	userID = actor.UserID
	if req.UserID != "" {
		userID = uuid.MustParse(req.UserID)
	}
	return actor, bookID, userID, nil
}

// LikeBook records that a user likes a book
func (h *Handler) LikeBook(w http.ResponseWriter, r *http.Request) {
	actor, bookID, userID, err := h.likeTarget(w, r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.svc.Like(r.Context(), actor, bookID, userID); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeSuccess(w)
}

// UnlikeBook removes a like
func (h *Handler) UnlikeBook(w http.ResponseWriter, r *http.Request) {
	actor, bookID, userID, err := h.likeTarget(w, r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.svc.Unlike(r.Context(), actor, bookID, userID); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeSuccess(w)
}
