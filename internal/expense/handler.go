package expense

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/fieldops/advance-settlement/internal/auth"
	"github.com/fieldops/advance-settlement/internal/transport"
	"github.com/fieldops/advance-settlement/pkg/logger"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	CreateExpense(userID int64, dto CreateExpenseDTO) (*Expense, error)
	GetExpenseByID(id, userID int64, isAdmin bool) (*Expense, error)
	GetUserExpenses(userID int64, limit, offset int) ([]*Expense, error)
	GetAllExpenses(limit, offset int) ([]*Expense, error)
	GetUnreconciled(limit, offset int) ([]*Expense, error)
	UpdateExpense(id, userID int64, isAdmin bool, dto UpdateExpenseDTO) (*Expense, error)
	DeleteExpense(id, userID int64, isAdmin bool) error
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

func (h *Handler) CreateExpense(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto CreateExpenseDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("CreateExpense: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// Admins may file on behalf of staff; everyone else files for themselves.
	targetUser := user.ID
	if dto.UserID != 0 && dto.UserID != user.ID {
		if !user.IsAdmin() {
			h.WriteError(w, http.StatusForbidden, "cannot create expense for another user")
			return
		}
		targetUser = dto.UserID
	}

	exp, err := h.Service.CreateExpense(targetUser, dto)
	if err != nil {
		h.Logger.Error("CreateExpense: service error", "error", err, "user_id", targetUser)

		switch err {
		case ErrAdvanceNotFound:
			h.WriteError(w, http.StatusNotFound, "advance not found")
		case ErrAdvanceNotActive:
			h.WriteError(w, http.StatusBadRequest, "advance is not open for expenses")
		case ErrAdvanceHasExpense:
			h.WriteError(w, http.StatusConflict, "advance already has an expense")
		default:
			h.HandleServiceError(w, err)
		}
		return
	}

	h.Logger.Info("CreateExpense: expense created",
		"expense_id", exp.ID,
		"user_id", targetUser,
		"total_paise", exp.TotalPaise)

	h.WriteJSON(w, http.StatusCreated, exp)
}

func (h *Handler) GetExpense(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	expenseID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid expense ID")
		return
	}

	exp, err := h.Service.GetExpenseByID(expenseID, user.ID, user.IsAdmin())
	if err != nil {
		switch err {
		case ErrExpenseNotFound:
			h.WriteError(w, http.StatusNotFound, "expense not found")
		case ErrUnauthorizedAccess:
			h.WriteError(w, http.StatusForbidden, "access denied")
		default:
			h.WriteError(w, http.StatusInternalServerError, "failed to get expense")
		}
		return
	}

	h.WriteJSON(w, http.StatusOK, exp)
}

// UpdateExpense modifies a pending expense in place. Together with
// delete-while-pending this covers the modify action the advance view
// advertises.
func (h *Handler) UpdateExpense(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	expenseID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid expense ID")
		return
	}

	var dto UpdateExpenseDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("UpdateExpense: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	exp, err := h.Service.UpdateExpense(expenseID, user.ID, user.IsAdmin(), dto)
	if err != nil {
		h.Logger.Error("UpdateExpense: service error", "error", err, "expense_id", expenseID, "user_id", user.ID)

		switch err {
		case ErrExpenseNotFound:
			h.WriteError(w, http.StatusNotFound, "expense not found")
		case ErrUnauthorizedAccess:
			h.WriteError(w, http.StatusForbidden, "access denied")
		case ErrExpenseSettled:
			h.WriteError(w, http.StatusBadRequest, "settled expenses cannot be modified")
		default:
			h.HandleServiceError(w, err)
		}
		return
	}

	h.WriteJSON(w, http.StatusOK, exp)
}

func (h *Handler) ListExpenses(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	limit, offset := h.pagination(r)

	var (
		expenses []*Expense
		err      error
	)
	if user.IsAdmin() {
		expenses, err = h.Service.GetAllExpenses(limit, offset)
	} else {
		expenses, err = h.Service.GetUserExpenses(user.ID, limit, offset)
	}
	if err != nil {
		h.Logger.Error("ListExpenses: service error", "error", err, "user_id", user.ID)
		h.WriteError(w, http.StatusInternalServerError, "failed to list expenses")
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"expenses": expenses,
		"limit":    limit,
		"offset":   offset,
	})
}

// ListUnreconciled returns without-advance expenses awaiting admin action.
func (h *Handler) ListUnreconciled(w http.ResponseWriter, r *http.Request) {
	limit, offset := h.pagination(r)

	expenses, err := h.Service.GetUnreconciled(limit, offset)
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, "failed to list unreconciled expenses")
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"expenses": expenses,
		"limit":    limit,
		"offset":   offset,
	})
}

func (h *Handler) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	expenseID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid expense ID")
		return
	}

	if err := h.Service.DeleteExpense(expenseID, user.ID, user.IsAdmin()); err != nil {
		h.Logger.Error("DeleteExpense: service error", "error", err, "expense_id", expenseID, "user_id", user.ID)

		switch err {
		case ErrExpenseNotFound:
			h.WriteError(w, http.StatusNotFound, "expense not found")
		case ErrUnauthorizedAccess:
			h.WriteError(w, http.StatusForbidden, "access denied")
		case ErrExpenseSettled:
			h.WriteError(w, http.StatusBadRequest, "settled expenses cannot be deleted")
		default:
			h.WriteError(w, http.StatusInternalServerError, "failed to delete expense")
		}
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) pagination(r *http.Request) (limit, offset int) {
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
