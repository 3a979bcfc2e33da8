package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubResolver struct {
	current map[string]string
	err     error
	calls   int
}

func (s *stubResolver) ResolveSession(ctx context.Context, userID, token string) (*Identity, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	if s.current[userID] != token {
		return nil, ErrStaleSession
	}
	return &Identity{UserID: userID, BusinessID: "61234567", Subdivision: "Логистика"}, nil
}

func newTestGate(t *testing.T, resolver IdentityResolver) (*Gate, *TokenService) {
	t.Helper()
	tokens := NewTokenService([]byte("gate-secret"), DefaultTTL)
	return NewGate(tokens, resolver, zap.NewNop().Sugar()), tokens
}

func serveGate(g *Gate, cookie *http.Cookie) (*httptest.ResponseRecorder, *Identity) {
	var seen *Identity
	h := g.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = FromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))
	req := httptest.NewRequest(http.MethodGet, "/api/get-items", nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec, seen
}

func TestGateMissingCookie(t *testing.T) {
	g, _ := newTestGate(t, &stubResolver{})

	rec, seen := serveGate(g, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), MsgMissingToken)
	assert.Nil(t, seen)
}

func TestGateInvalidTokenSkipsResolver(t *testing.T) {
	resolver := &stubResolver{}
	g, _ := newTestGate(t, resolver)

	rec, seen := serveGate(g, &http.Cookie{Name: CookieName, Value: "garbage"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), MsgInvalidToken)
	assert.Nil(t, seen)
	assert.Zero(t, resolver.calls)
}

func TestGateExpiredToken(t *testing.T) {
	resolver := &stubResolver{current: map[string]string{}}
	g, tokens := newTestGate(t, resolver)
	tokens.now = func() time.Time { return time.Now().Add(-9 * time.Hour) }
	token, _, err := tokens.Issue("7", "61234567")
	require.NoError(t, err)
	tokens.now = time.Now
	resolver.current["7"] = token

	rec, _ := serveGate(g, &http.Cookie{Name: CookieName, Value: token})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Zero(t, resolver.calls)
}

func TestGateStaleToken(t *testing.T) {
	resolver := &stubResolver{current: map[string]string{}}
	g, tokens := newTestGate(t, resolver)
	old, _, err := tokens.Issue("7", "61234567")
	require.NoError(t, err)
	fresh, _, err := tokens.Issue("7", "61234567")
	require.NoError(t, err)
	resolver.current["7"] = fresh

	rec, _ := serveGate(g, &http.Cookie{Name: CookieName, Value: old})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), MsgStaleSession)

	rec, seen := serveGate(g, &http.Cookie{Name: CookieName, Value: fresh})
	assert.Equal(t, http.StatusNoContent, rec.Code)
	require.NotNil(t, seen)
	assert.Equal(t, "7", seen.UserID)
	assert.True(t, seen.IsLogistics())
}

func TestGateResolverFailure(t *testing.T) {
	g, tokens := newTestGate(t, &stubResolver{err: errors.New("db down")})
	token, _, err := tokens.Issue("7", "61234567")
	require.NoError(t, err)

	rec, _ := serveGate(g, &http.Cookie{Name: CookieName, Value: token})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "db down")
}

func TestCookies(t *testing.T) {
	c := Cookies{Secure: true, TTL: DefaultTTL}

	rec := httptest.NewRecorder()
	c.Set(rec, "tok")
	set := rec.Result().Cookies()
	require.Len(t, set, 1)
	assert.Equal(t, CookieName, set[0].Name)
	assert.Equal(t, "tok", set[0].Value)
	assert.Equal(t, 28800, set[0].MaxAge)
	assert.True(t, set[0].HttpOnly)
	assert.True(t, set[0].Secure)
	assert.Equal(t, http.SameSiteNoneMode, set[0].SameSite)

	rec = httptest.NewRecorder()
	c.Clear(rec)
	cleared := rec.Result().Cookies()
	require.Len(t, cleared, 1)
	assert.Less(t, cleared[0].MaxAge, 0)
}
