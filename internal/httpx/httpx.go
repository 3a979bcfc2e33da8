// Package httpx provides the JSON request and response helpers shared by handlers.
package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
)

// MaxBodyBytes bounds JSON request bodies; catalog uploads can be large.
const MaxBodyBytes = 50 << 20

// MsgServerError is the only message exposed for unexpected failures.
const MsgServerError = "internal server error"

// ErrBadPayload is returned by DecodeJSON for unreadable or malformed bodies.
var ErrBadPayload = errors.New("invalid payload")

// JSON writes v as a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Error writes a `{"error": msg}` response.
func Error(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, map[string]string{"error": msg})
}

// OK writes a `{"message": "ok"}` response.
func OK(w http.ResponseWriter, status int) {
	JSON(w, status, map[string]string{"message": "ok"})
}

// DecodeJSON reads the request body into dst.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errors.Join(ErrBadPayload, err)
	}
	return nil
}
