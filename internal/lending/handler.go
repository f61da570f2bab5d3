package lending

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/fathurrohman/library-management/internal/account"
	"github.com/fathurrohman/library-management/internal/auth"
	"github.com/fathurrohman/library-management/internal/transport"
	"github.com/fathurrohman/library-management/pkg/logger"
)

type ServiceAPI interface {
	IssueBook(ctx context.Context, librarianID, studentID, bookID int64) (*Borrowing, error)
	ReturnBook(ctx context.Context, borrowingID int64) (*Borrowing, error)
	ListActiveLoans(ctx context.Context, userID *int64) ([]*Borrowing, error)
	ListFines(ctx context.Context, limit, offset int) ([]*Borrowing, error)
	RequestBook(ctx context.Context, studentID, bookID int64) (*BookRequest, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
	}
}

// IssueBook hands one copy to a student. Librarian only; the caller comes
// from the token, the student and book from the body.
func (h *Handler) IssueBook(w http.ResponseWriter, r *http.Request) {
	caller, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var dto IssueBookDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := dto.Validate(); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	borrowing, err := h.Service.IssueBook(r.Context(), caller.ID, dto.StudentID, dto.BookID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, borrowing)
}

func (h *Handler) ReturnBook(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid borrowing ID")
		return
	}

	borrowing, err := h.Service.ReturnBook(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, borrowing)
}

// ListActiveLoans returns open loans. Students only ever see their own;
// librarians and admins see everything, or one user via ?user_id=.
func (h *Handler) ListActiveLoans(w http.ResponseWriter, r *http.Request) {
	caller, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var scope *int64
	if caller.Role == account.RoleStudent {
		scope = &caller.ID
	} else if userIDStr := r.URL.Query().Get("user_id"); userIDStr != "" {
		userID, err := strconv.ParseInt(userIDStr, 10, 64)
		if err != nil {
			h.WriteError(w, http.StatusBadRequest, "invalid user_id")
			return
		}
		scope = &userID
	}

	loans, err := h.Service.ListActiveLoans(r.Context(), scope)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"loans": loans,
	})
}

func (h *Handler) ListFines(w http.ResponseWriter, r *http.Request) {
	limit, offset := paginationParams(r)

	fines, err := h.Service.ListFines(r.Context(), limit, offset)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"fines":  fines,
		"limit":  limit,
		"offset": offset,
	})
}

// RequestBook records the caller's interest in a book that is out.
func (h *Handler) RequestBook(w http.ResponseWriter, r *http.Request) {
	caller, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var dto RequestBookDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := dto.Validate(); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	req, err := h.Service.RequestBook(r.Context(), caller.ID, dto.BookID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, req)
}

func paginationParams(r *http.Request) (limit, offset int) {
	limit = 20
	offset = 0

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}

	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			offset = o
		}
	}

	return limit, offset
}
