package item

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-veracity/internal/httpx"
	"github.com/ovaphlow/pitchfork/service-veracity/internal/session"
	"github.com/ovaphlow/pitchfork/service-veracity/internal/validation"
)

// Handler contains dependencies for handling item endpoints.
type Handler struct {
	svc    *Service
	logger *zap.SugaredLogger
}

// NewHandler constructs a new Handler.
func NewHandler(svc *Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

type createRequest struct {
	ProductDBID     string   `json:"productDBId"`
	ProgramQuantity *float64 `json:"programQuantity"`
	FactQuantity    *float64 `json:"factQuantity"`
	Comment         string   `json:"comment"`
}

type statusRequest struct {
	ItemID  string `json:"itemId"`
	Comment string `json:"comment"`
}

// Create handles POST /api/create-items.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req []createRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, httpx.ErrBadPayload.Error())
		return
	}
	batch := make([]NewItem, len(req))
	for i, in := range req {
		batch[i] = NewItem{
			ProductDBID:     in.ProductDBID,
			ProgramQuantity: in.ProgramQuantity,
			FactQuantity:    in.FactQuantity,
			Comment:         in.Comment,
		}
	}
	id := session.FromContext(r.Context())
	n, err := h.svc.Create(r.Context(), id, batch)
	if err != nil {
		h.fail(w, "create items", err)
		return
	}
	h.logger.Infow("created items", "user_id", id.UserID, "count", n)
	httpx.JSON(w, http.StatusCreated, map[string]any{"message": "ok", "count": n})
}

// List handles GET /api/get-items.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.List(r.Context(), session.FromContext(r.Context()))
	if err != nil {
		h.fail(w, "list items", err)
		return
	}
	httpx.JSON(w, http.StatusOK, items)
}

// Start handles POST /api/start-item.
func (h *Handler) Start(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, httpx.ErrBadPayload.Error())
		return
	}
	id := session.FromContext(r.Context())
	if err := h.svc.Start(r.Context(), id, req.ItemID); err != nil {
		h.fail(w, "start item", err)
		return
	}
	h.logger.Infow("started item", "user_id", id.UserID, "item_id", req.ItemID)
	httpx.OK(w, http.StatusOK)
}

// Close handles POST /api/close-item.
func (h *Handler) Close(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, httpx.ErrBadPayload.Error())
		return
	}
	id := session.FromContext(r.Context())
	if err := h.svc.Close(r.Context(), id, req.ItemID, req.Comment); err != nil {
		h.fail(w, "close item", err)
		return
	}
	h.logger.Infow("closed item", "user_id", id.UserID, "item_id", req.ItemID)
	httpx.OK(w, http.StatusOK)
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		httpx.Error(w, http.StatusBadRequest, verr.Message)
	case errors.Is(err, ErrNoIdentity):
		httpx.Error(w, http.StatusUnauthorized, session.MsgMissingToken)
	case errors.Is(err, ErrForbidden):
		httpx.Error(w, http.StatusForbidden, ErrForbidden.Error())
	case errors.Is(err, ErrProductNotFound):
		httpx.Error(w, http.StatusNotFound, ErrProductNotFound.Error())
	case errors.Is(err, ErrNotUpdated):
		httpx.Error(w, http.StatusNotFound, ErrNotUpdated.Error())
	default:
		h.logger.Errorw(op+" failed", "err", err)
		httpx.Error(w, http.StatusInternalServerError, httpx.MsgServerError)
	}
}
