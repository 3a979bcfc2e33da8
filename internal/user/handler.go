package user

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-veracity/internal/httpx"
	"github.com/ovaphlow/pitchfork/service-veracity/internal/session"
	"github.com/ovaphlow/pitchfork/service-veracity/internal/validation"
)

// Handler exposes HTTP endpoints for registration, login and session state.
type Handler struct {
	svc     *UserService
	gate    *session.Gate
	cookies session.Cookies
	logger  *zap.SugaredLogger
}

func NewHandler(svc *UserService, gate *session.Gate, cookies session.Cookies, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, gate: gate, cookies: cookies, logger: logger}
}

// RegisterRequest request body for the register endpoint.
type RegisterRequest struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	BusinessID  string `json:"businessId"`
	Department  *int   `json:"department"`
	Subdivision string `json:"subdivision"`
	Password    string `json:"password"`
}

// LoginRequest login payload.
type LoginRequest struct {
	BusinessID string `json:"businessId"`
	Password   string `json:"password"`
}

const (
	msgDuplicate      = "user is already registered"
	msgBadCredentials = "invalid business id or password"
)

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		h.logger.Debugw("invalid register payload", "err", err)
		httpx.Error(w, http.StatusBadRequest, httpx.ErrBadPayload.Error())
		return
	}
	u, token, err := h.svc.Register(r.Context(), validation.Registration{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		BusinessID:  req.BusinessID,
		Department:  req.Department,
		Subdivision: req.Subdivision,
		Password:    req.Password,
	})
	if err != nil {
		var verr *validation.Error
		switch {
		case errors.As(err, &verr):
			httpx.Error(w, http.StatusBadRequest, verr.Message)
		case errors.Is(err, ErrDuplicate):
			httpx.Error(w, http.StatusConflict, msgDuplicate)
		default:
			h.logger.Errorw("register failed", "err", err)
			httpx.Error(w, http.StatusInternalServerError, httpx.MsgServerError)
		}
		return
	}
	h.logger.Infow("created user", "user_id", u.ID, "business_id", u.BusinessID)
	h.cookies.Set(w, token)
	httpx.JSON(w, http.StatusCreated, u.Summary())
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		h.logger.Debugw("invalid login payload", "err", err)
		httpx.Error(w, http.StatusBadRequest, validation.MsgCredentials)
		return
	}
	u, token, err := h.svc.Login(r.Context(), req.BusinessID, req.Password)
	if err != nil {
		var verr *validation.Error
		switch {
		case errors.As(err, &verr):
			httpx.Error(w, http.StatusBadRequest, verr.Message)
		case errors.Is(err, ErrBadCredentials):
			h.logger.Debugw("login failed", "business_id", req.BusinessID, "remote", r.RemoteAddr)
			httpx.Error(w, http.StatusUnauthorized, msgBadCredentials)
		default:
			h.logger.Errorw("login failed", "err", err)
			httpx.Error(w, http.StatusInternalServerError, httpx.MsgServerError)
		}
		return
	}
	h.cookies.Set(w, token)
	httpx.JSON(w, http.StatusOK, u.Summary())
}

// Auth returns the caller resolved by the gate.
func (h *Handler) Auth(w http.ResponseWriter, r *http.Request) {
	id := session.FromContext(r.Context())
	if id == nil {
		httpx.Error(w, http.StatusUnauthorized, session.MsgMissingToken)
		return
	}
	h.logger.Debugw("authenticated", "business_id", id.BusinessID)
	httpx.JSON(w, http.StatusOK, id.Summary())
}

// Logout always clears the cookie; when the presented session is still current the
// stored token is cleared as well.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if id, _, err := h.gate.Authenticate(r); err == nil {
		if err := h.svc.Logout(r.Context(), id.UserID); err != nil {
			h.logger.Warnw("clear session token", "user_id", id.UserID, "err", err)
		}
	}
	h.cookies.Clear(w)
	httpx.OK(w, http.StatusOK)
}
