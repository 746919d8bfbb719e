package transportpay

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
	CreatePayment(user *auth.User, dto CreateTransportPaymentDTO) (*TransportPayment, error)
	GetPayment(id int64) (*TransportPayment, error)
	GetUserPayments(userID int64, limit, offset int) ([]*TransportPayment, error)
	GetAllPayments(limit, offset int) ([]*TransportPayment, error)
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

func (h *Handler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto CreateTransportPaymentDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("CreatePayment: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	payment, err := h.Service.CreatePayment(user, dto)
	if err != nil {
		h.Logger.Error("CreatePayment: service error", "error", err, "user_id", user.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, payment)
}

func (h *Handler) GetPayment(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	paymentID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid payment ID")
		return
	}

	payment, err := h.Service.GetPayment(paymentID)
	if err != nil {
		switch err {
		case ErrPaymentNotFound:
			h.WriteError(w, http.StatusNotFound, "transport payment not found")
		default:
			h.Logger.Error("GetPayment: service error", "error", err, "payment_id", paymentID)
			h.WriteError(w, http.StatusInternalServerError, "failed to get transport payment")
		}
		return
	}

	if !user.IsAdmin() && payment.EnteredBy != user.ID {
		h.WriteError(w, http.StatusNotFound, "transport payment not found")
		return
	}

	h.WriteJSON(w, http.StatusOK, payment)
}

func (h *Handler) ListPayments(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	limit, offset := h.pagination(r)

	var (
		payments []*TransportPayment
		err      error
	)
	if user.IsAdmin() {
		payments, err = h.Service.GetAllPayments(limit, offset)
	} else {
		payments, err = h.Service.GetUserPayments(user.ID, limit, offset)
	}
	if err != nil {
		h.Logger.Error("ListPayments: service error", "error", err, "user_id", user.ID)
		h.WriteError(w, http.StatusInternalServerError, "failed to list transport payments")
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"payments": payments,
		"limit":    limit,
		"offset":   offset,
	})
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
