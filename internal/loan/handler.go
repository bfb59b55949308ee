// internal/loan/handler.go
package loan

import (
	"encoding/json"
	"errors"
	"net/http"

	"lendflow/internal/clients"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Routes mounts the loan surface.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/loans/borrow", h.handleBorrow)
	r.Put("/loans/{id}/return", h.handleReturn)
	r.Get("/loans/{id}", h.handleGet)
}

func (h *Handler) handleBorrow(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(r.URL.Query().Get("userId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid or missing userId")
		return
	}
	bookID, err := uuid.Parse(r.URL.Query().Get("bookId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid or missing bookId")
		return
	}

	l, err := h.service.Borrow(r.Context(), userID, bookID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(l)
}

func (h *Handler) handleReturn(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid loan ID")
		return
	}

	l, err := h.service.Return(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(l)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid loan ID")
		return
	}

	l, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(l)
}

// writeServiceError maps orchestrator failures to stable error kinds.
// Internal detail never crosses the boundary; operators get it from logs.
func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	var commErr *clients.CommunicationError
	var integrityErr *IntegrityError

	switch {
	case errors.Is(err, ErrBookNotAvailable):
		writeError(w, http.StatusConflict, "book_not_available", "no copies of this book are available")
	case errors.Is(err, ErrBookAlreadyBorrowed):
		writeError(w, http.StatusConflict, "book_already_borrowed", "user already has an active loan for this book")
	case errors.Is(err, ErrLoanAlreadyReturned):
		writeError(w, http.StatusConflict, "loan_already_returned", "this loan has already been returned")
	case errors.Is(err, ErrStockInconsistency):
		writeError(w, http.StatusConflict, "stock_inconsistency", "stock ledger disagrees with this loan; try again later")
	case errors.Is(err, ErrLoanNotFound):
		writeError(w, http.StatusNotFound, "loan_not_found", "loan not found")
	case errors.Is(err, ErrBookNotFound):
		writeError(w, http.StatusNotFound, "book_not_found", "book not found")
	case errors.Is(err, clients.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "user_not_found", "user not found")
	case errors.As(err, &integrityErr):
		writeError(w, http.StatusInternalServerError, "integrity_alarm", "the operation failed and automatic cleanup also failed; operators have been notified")
	case errors.As(err, &commErr):
		writeError(w, http.StatusBadGateway, "collaborator_unreachable", "a dependent service could not be reached; retry later")
	default:
		writeError(w, http.StatusInternalServerError, "internal", "internal error")
	}
}

func writeError(w http.ResponseWriter, status int, kind, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": kind, "message": message})
}
