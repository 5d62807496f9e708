package handler

import (
	"net/http"

	"github.com/Dan9191/book-service/internal/middleware"
	"github.com/Dan9191/book-service/internal/models"
	"github.com/gorilla/mux"
)

// NewRouter wires every route with its protection level. Static paths under
// /books are registered before /books/{id}. Logging and recovery wrap the
// whole router so unmatched routes and panics are logged too.
func (h *Handler) NewRouter(verifier middleware.TokenVerifier) http.Handler {
	public := middleware.Guard(middleware.Public, verifier, h.cookie.Name, h.log)
	protected := middleware.Guard(middleware.Protected, verifier, h.cookie.Name, h.log)
	elevated := func(next http.Handler) http.Handler {
		return protected(middleware.RequireRole(models.RoleElevated)(next))
	}

	r := mux.NewRouter()
	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()

	// Auth
	api.Handle("/auth/register", public(http.HandlerFunc(h.Register))).Methods(http.MethodPost)
	api.Handle("/auth/login", public(http.HandlerFunc(h.Login))).Methods(http.MethodPost)
	api.Handle("/auth/logout", public(http.HandlerFunc(h.Logout))).Methods(http.MethodPost)

	// Books
	api.Handle("/books", public(http.HandlerFunc(h.ListBooks))).Methods(http.MethodGet)
	api.Handle("/books", protected(http.HandlerFunc(h.CreateBook))).Methods(http.MethodPost)
	api.Handle("/books/export.xml", public(http.HandlerFunc(h.ExportBooks))).Methods(http.MethodGet)
	api.Handle("/books/like", protected(http.HandlerFunc(h.LikeBook))).Methods(http.MethodPost)
	api.Handle("/books/like", protected(http.HandlerFunc(h.UnlikeBook))).Methods(http.MethodDelete)
	api.Handle("/books/{id}", public(http.HandlerFunc(h.GetBook))).Methods(http.MethodGet)
	api.Handle("/books/{id}", protected(http.HandlerFunc(h.UpdateBook))).Methods(http.MethodPut)
	api.Handle("/books/{id}", protected(http.HandlerFunc(h.DeleteBook))).Methods(http.MethodDelete)

	// Users
	api.Handle("/users", elevated(http.HandlerFunc(h.ListUsers))).Methods(http.MethodGet)
	api.Handle("/users/{id}", protected(http.HandlerFunc(h.GetUser))).Methods(http.MethodGet)
	api.Handle("/users/{id}", protected(http.HandlerFunc(h.UpdateUser))).Methods(http.MethodPut)
	api.Handle("/users/{id}", protected(http.HandlerFunc(h.DeleteUser))).Methods(http.MethodDelete)
	api.Handle("/users/{id}/books", protected(http.HandlerFunc(h.LikedBooks))).Methods(http.MethodGet)

	return middleware.Logging(h.log)(middleware.Recover(h.log)(r))
}
