package advance

import (
	"context"
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
	CreateAdvance(adminID int64, dto CreateAdvanceDTO) (*Advance, error)
	GetAdvance(advanceID int64) (*Advance, error)
	View(advanceID int64) (*AdvanceView, error)
	CalculateBalance(advanceID int64) (Balance, error)
	Settle(ctx context.Context, advanceID, adminID int64) (*Advance, error)
	Cancel(advanceID int64) error
	ListForStaff(staffID int64, limit, offset int) ([]*AdvanceView, error)
	ListAll(limit, offset int) ([]*AdvanceView, error)
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

func (h *Handler) CreateAdvance(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto CreateAdvanceDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("CreateAdvance: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	adv, err := h.Service.CreateAdvance(user.ID, dto)
	if err != nil {
		h.Logger.Error("CreateAdvance: service error", "error", err, "admin_id", user.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("CreateAdvance: advance created",
		"advance_id", adv.ID,
		"staff_id", adv.StaffID,
		"amount_paise", adv.AmountPaise)

	h.WriteJSON(w, http.StatusCreated, adv)
}

func (h *Handler) GetAdvance(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	advanceID, err := h.advanceIDParam(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid advance ID")
		return
	}

	view, err := h.Service.View(advanceID)
	if err != nil {
		switch err {
		case ErrAdvanceNotFound:
			h.WriteError(w, http.StatusNotFound, "advance not found")
		default:
			h.WriteError(w, http.StatusInternalServerError, "failed to get advance")
		}
		return
	}

	if !user.IsAdmin() && view.StaffID != user.ID {
		h.Logger.Warn("GetAdvance: unauthorized access", "advance_id", advanceID, "user_id", user.ID)
		h.WriteError(w, http.StatusForbidden, "access denied")
		return
	}

	h.WriteJSON(w, http.StatusOK, view)
}

func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	advanceID, err := h.advanceIDParam(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid advance ID")
		return
	}

	adv, err := h.Service.GetAdvance(advanceID)
	if err != nil {
		switch err {
		case ErrAdvanceNotFound:
			h.WriteError(w, http.StatusNotFound, "advance not found")
		default:
			h.WriteError(w, http.StatusInternalServerError, "failed to get advance")
		}
		return
	}

	if !user.IsAdmin() && adv.StaffID != user.ID {
		h.Logger.Warn("GetBalance: unauthorized access", "advance_id", advanceID, "user_id", user.ID)
		h.WriteError(w, http.StatusForbidden, "access denied")
		return
	}

	balance, err := h.Service.CalculateBalance(advanceID)
	if err != nil {
		h.Logger.Error("GetBalance: service error", "error", err, "advance_id", advanceID)
		h.WriteError(w, http.StatusInternalServerError, "failed to calculate balance")
		return
	}

	h.WriteJSON(w, http.StatusOK, balance)
}

func (h *Handler) ListAdvances(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	limit, offset := h.pagination(r)

	var (
		views []*AdvanceView
		err   error
	)
	if user.IsAdmin() {
		views, err = h.Service.ListAll(limit, offset)
	} else {
		views, err = h.Service.ListForStaff(user.ID, limit, offset)
	}
	if err != nil {
		h.Logger.Error("ListAdvances: service error", "error", err, "user_id", user.ID)
		h.WriteError(w, http.StatusInternalServerError, "failed to list advances")
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"advances": views,
		"limit":    limit,
		"offset":   offset,
	})
}

func (h *Handler) SettleAdvance(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	advanceID, err := h.advanceIDParam(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid advance ID")
		return
	}

	adv, err := h.Service.Settle(r.Context(), advanceID, user.ID)
	if err != nil {
		h.Logger.Error("SettleAdvance: service error", "error", err, "advance_id", advanceID, "admin_id", user.ID)

		switch err {
		case ErrAdvanceNotFound:
			h.WriteError(w, http.StatusNotFound, "advance not found")
		case ErrAdvanceCancelled:
			h.WriteError(w, http.StatusBadRequest, "advance is cancelled")
		default:
			h.WriteError(w, http.StatusInternalServerError, "failed to settle advance")
		}
		return
	}

	h.Logger.Info("SettleAdvance: advance settled", "advance_id", advanceID, "admin_id", user.ID)
	h.WriteJSON(w, http.StatusOK, adv)
}

func (h *Handler) CancelAdvance(w http.ResponseWriter, r *http.Request) {
	advanceID, err := h.advanceIDParam(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid advance ID")
		return
	}

	if err := h.Service.Cancel(advanceID); err != nil {
		switch err {
		case ErrAdvanceNotFound:
			h.WriteError(w, http.StatusNotFound, "advance not found")
		case ErrAdvanceSettled:
			h.WriteError(w, http.StatusBadRequest, "advance is already settled")
		case ErrAdvanceHasExpense:
			h.WriteError(w, http.StatusConflict, "advance has a linked expense")
		default:
			h.WriteError(w, http.StatusInternalServerError, "failed to cancel advance")
		}
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

func (h *Handler) advanceIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
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
