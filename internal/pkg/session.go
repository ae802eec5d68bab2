package pkg

import (
	"net/http"
	"time"

	"github.com/google/uuid"
)

// GenerateNewSessionID - random identifier of one browser or terminal session.
func GenerateNewSessionID() string {
	return uuid.NewString()
}

func IsValidSessionID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// SessionID returns the session stored in the named cookie. ok is false when
// the cookie is missing or does not hold a session id.
func SessionID(req *http.Request, cookieName string) (string, bool) {
	cookie, err := req.Cookie(cookieName)
	if err != nil || !IsValidSessionID(cookie.Value) {
		return "", false
	}

	return cookie.Value, true
}

func NewSessionCookie(name, id string, ttl time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    id,
		Path:     "/",
		Expires:  time.Now().Add(ttl),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}
