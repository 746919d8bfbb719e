package collection

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
	CreateCollection(user *auth.User, dto CreateCollectionDTO) (*Collection, error)
	Approve(ctx context.Context, collectionID, approverID int64, approverName string) (*Collection, error)
	GetUserCollections(userID int64, limit, offset int) ([]*Collection, error)
	GetAllCollections(limit, offset int) ([]*Collection, error)
	GetPendingApproval(limit, offset int) ([]*Collection, error)
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

func (h *Handler) CreateCollection(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto CreateCollectionDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("CreateCollection: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	col, err := h.Service.CreateCollection(user, dto)
	if err != nil {
		h.Logger.Error("CreateCollection: service error", "error", err, "user_id", user.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, col)
}

func (h *Handler) ApproveCollection(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	collectionID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid collection ID")
		return
	}

	col, err := h.Service.Approve(r.Context(), collectionID, user.ID, user.Name)
	if err != nil {
		h.Logger.Error("ApproveCollection: service error", "error", err, "collection_id", collectionID)

		switch err {
		case ErrCollectionNotFound:
			h.WriteError(w, http.StatusNotFound, "collection not found")
		default:
			h.WriteError(w, http.StatusInternalServerError, "failed to approve collection")
		}
		return
	}

	h.Logger.Info("ApproveCollection: collection approved", "collection_id", collectionID, "admin_id", user.ID)
	h.WriteJSON(w, http.StatusOK, col)
}

func (h *Handler) ListCollections(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	limit, offset := h.pagination(r)

	var (
		collections []*Collection
		err         error
	)
	if user.IsAdmin() {
		collections, err = h.Service.GetAllCollections(limit, offset)
	} else {
		collections, err = h.Service.GetUserCollections(user.ID, limit, offset)
	}
	if err != nil {
		h.Logger.Error("ListCollections: service error", "error", err, "user_id", user.ID)
		h.WriteError(w, http.StatusInternalServerError, "failed to list collections")
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"collections": collections,
		"limit":       limit,
		"offset":      offset,
	})
}

func (h *Handler) ListPendingApproval(w http.ResponseWriter, r *http.Request) {
	limit, offset := h.pagination(r)

	collections, err := h.Service.GetPendingApproval(limit, offset)
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, "failed to list pending collections")
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"collections": collections,
		"limit":       limit,
		"offset":      offset,
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
