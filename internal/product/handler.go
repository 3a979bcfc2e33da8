package product

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-veracity/internal/httpx"
	"github.com/ovaphlow/pitchfork/service-veracity/internal/session"
	"github.com/ovaphlow/pitchfork/service-veracity/internal/validation"
)

// Handler contains dependencies for handling catalog endpoints.
type Handler struct {
	svc    *Service
	logger *zap.SugaredLogger
}

// NewHandler constructs a new Handler.
func NewHandler(svc *Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

type uploadRequest struct {
	Data []json.RawMessage `json:"data"`
}

type getOneRequest struct {
	ProductID json.RawMessage `json:"productId"`
}

// Upload handles POST /api/upload-products.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	var req uploadRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, httpx.ErrBadPayload.Error())
		return
	}
	n, err := h.svc.Upload(r.Context(), req.Data)
	if err != nil {
		var verr *validation.Error
		if errors.As(err, &verr) {
			httpx.Error(w, http.StatusBadRequest, verr.Message)
			return
		}
		h.logger.Errorw("upload products", "err", err)
		httpx.Error(w, http.StatusInternalServerError, "failed to upload products")
		return
	}
	if id := session.FromContext(r.Context()); id != nil {
		h.logger.Infow("uploaded products", "user_id", id.UserID, "rows", n)
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"message": "ok", "count": n})
}

// GetOne handles POST /api/get-one-product.
func (h *Handler) GetOne(w http.ResponseWriter, r *http.Request) {
	var req getOneRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, httpx.ErrBadPayload.Error())
		return
	}
	businessID := ""
	if s := scalarString(req.ProductID); s != nil {
		businessID = *s
	}
	p, err := h.svc.Get(r.Context(), businessID)
	if err != nil {
		var verr *validation.Error
		switch {
		case errors.As(err, &verr):
			httpx.Error(w, http.StatusBadRequest, verr.Message)
		case errors.Is(err, ErrNotFound):
			httpx.Error(w, http.StatusNotFound, "product not found")
		default:
			h.logger.Errorw("get product", "err", err)
			httpx.Error(w, http.StatusInternalServerError, httpx.MsgServerError)
		}
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}
