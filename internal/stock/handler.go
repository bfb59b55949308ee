// internal/stock/handler.go
package stock

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Routes mounts the stock ledger surface.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/books", h.handleAddBook)
	r.Get("/books/{id}", h.handleGetBook)
	r.Put("/books/{id}/borrow", h.handleBorrow)
	r.Put("/books/{id}/return", h.handleReturn)
}

func (h *Handler) handleAddBook(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title    string `json:"title"`
		Author   string `json:"author"`
		Quantity int    `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	if req.Title == "" || req.Quantity < 0 {
		writeError(w, http.StatusBadRequest, "bad_request", "title required and quantity must be non-negative")
		return
	}

	book, err := h.service.Add(r.Context(), req.Title, req.Author, req.Quantity)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", "failed to add book")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(book)
}

func (h *Handler) handleGetBook(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid book ID")
		return
	}

	book, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.writeLedgerError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(book)
}

func (h *Handler) handleBorrow(w http.ResponseWriter, r *http.Request) {
	h.handleAdjust(w, r, h.service.Reserve)
}

func (h *Handler) handleReturn(w http.ResponseWriter, r *http.Request) {
	h.handleAdjust(w, r, h.service.Release)
}

func (h *Handler) handleAdjust(w http.ResponseWriter, r *http.Request, adjust func(ctx context.Context, id uuid.UUID) error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid book ID")
		return
	}

	if err := adjust(r.Context(), id); err != nil {
		h.writeLedgerError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (h *Handler) writeLedgerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrBookNotFound):
		writeError(w, http.StatusNotFound, "book_not_found", "book not found")
	case errors.Is(err, ErrOutOfStock):
		writeError(w, http.StatusConflict, "out_of_stock", "no copies available")
	case errors.Is(err, ErrAtCapacity):
		writeError(w, http.StatusConflict, "at_capacity", "all copies already on shelf")
	default:
		writeError(w, http.StatusInternalServerError, "internal", "stock ledger failure")
	}
}

func writeError(w http.ResponseWriter, status int, kind, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": kind, "message": message})
}
