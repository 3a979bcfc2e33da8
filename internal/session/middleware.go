package session

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-veracity/internal/httpx"
)

// ErrStaleSession is returned by resolvers when the presented token is not the one
// last issued to the user, or the user no longer exists.
var ErrStaleSession = errors.New("stale session")

// Messages written by the gate.
const (
	MsgMissingToken = "missing authorization token"
	MsgInvalidToken = "invalid authorization token"
	MsgStaleSession = "session is no longer valid"
)

// IdentityResolver loads the caller for a verified token and checks it is the user's
// current session token.
type IdentityResolver interface {
	ResolveSession(ctx context.Context, userID, token string) (*Identity, error)
}

// Gate authenticates requests from the session cookie.
type Gate struct {
	tokens   *TokenService
	resolver IdentityResolver
	logger   *zap.SugaredLogger
}

func NewGate(tokens *TokenService, resolver IdentityResolver, logger *zap.SugaredLogger) *Gate {
	return &Gate{tokens: tokens, resolver: resolver, logger: logger}
}

// Authenticate verifies the cookie token and resolves the caller. The returned error is
// ErrInvalidToken, ErrStaleSession, http.ErrNoCookie or a storage error.
func (g *Gate) Authenticate(r *http.Request) (*Identity, string, error) {
	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return nil, "", http.ErrNoCookie
	}
	claims, err := g.tokens.Parse(c.Value)
	if err != nil {
		return nil, "", err
	}
	id, err := g.resolver.ResolveSession(r.Context(), claims.UserID, c.Value)
	if err != nil {
		return nil, "", err
	}
	return id, c.Value, nil
}

// Middleware rejects unauthenticated requests with 401 and attaches the identity to
// the request context otherwise.
func (g *Gate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, _, err := g.Authenticate(r)
		switch {
		case err == nil:
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		case errors.Is(err, http.ErrNoCookie):
			httpx.Error(w, http.StatusUnauthorized, MsgMissingToken)
		case errors.Is(err, ErrInvalidToken):
			g.logger.Debugw("rejected session token", "path", r.URL.Path, "err", err)
			httpx.Error(w, http.StatusUnauthorized, MsgInvalidToken)
		case errors.Is(err, ErrStaleSession):
			g.logger.Debugw("stale session token", "path", r.URL.Path)
			httpx.Error(w, http.StatusUnauthorized, MsgStaleSession)
		default:
			g.logger.Errorw("resolve session", "path", r.URL.Path, "err", err)
			httpx.Error(w, http.StatusInternalServerError, httpx.MsgServerError)
		}
	})
}
