package rest

import (
	"context"
	"net/http"

	"github.com/rocketscienceinc/tictactoe-history/internal/pkg"
)

type sessionKey struct{}

// withSession makes sure the request belongs to a session, issuing a new
// cookie on the first visit.
func (that *Server) withSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, ok := pkg.SessionID(r, that.session.CookieName)
		if !ok {
			sessionID = pkg.GenerateNewSessionID()
			http.SetCookie(w, pkg.NewSessionCookie(that.session.CookieName, sessionID, that.session.TTL))
			that.logger.Info("session cookie not found, new one created", "session", sessionID)
		}

		next(w, r.WithContext(context.WithValue(r.Context(), sessionKey{}, sessionID)))
	}
}

func sessionFromContext(ctx context.Context) string {
	sessionID, _ := ctx.Value(sessionKey{}).(string)
	return sessionID
}
