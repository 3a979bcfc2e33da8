package session

import (
	"net/http"
	"time"
)

// CookieName carries the session token.
const CookieName = "auth_token"

// Cookies writes and clears the session cookie. Secure is disabled only for local
// development over plain HTTP.
type Cookies struct {
	Secure bool
	TTL    time.Duration
}

func (c Cookies) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteNoneMode,
	}
}

// Set stores token in the cookie for the session lifetime.
func (c Cookies) Set(w http.ResponseWriter, token string) {
	ttl := c.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	http.SetCookie(w, c.cookie(token, int(ttl/time.Second)))
}

// Clear expires the cookie on the client.
func (c Cookies) Clear(w http.ResponseWriter) {
	http.SetCookie(w, c.cookie("", -1))
}
