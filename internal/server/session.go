package server

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
)

const sessionCookieName = "reviewdeck_session"

// ensureSession returns the caller's session id, minting a cookie when the
// request carries none. The id only distinguishes event-stream consumers;
// it authorizes nothing.
func ensureSession(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(sessionCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return ""
	}
	id := hex.EncodeToString(buf)
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}
