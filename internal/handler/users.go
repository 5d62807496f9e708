package handler

import (
	"net/http"

	"github.com/Dan9191/book-service/internal/models"
)

// ListUsers returns all users with their liked books
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.ListUsers(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, users)
}

// GetUser returns a single user
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	user, err := h.svc.GetUser(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, user)
}

// LikedBooks returns the books a user likes
func (h *Handler) LikedBooks(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	books, err := h.svc.LikedBooks(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, books)
}

// UpdateUser changes a user's email, role or password
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	actor, err := identity(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req models.UpdateUserRequest
	if err := h.decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	if _, err := h.svc.UpdateUser(r.Context(), actor, id, req); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeSuccess(w)
}

// DeleteUser removes a user with its password and likes
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	actor, err := identity(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.svc.DeleteUser(r.Context(), actor, id); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeSuccess(w)
}
