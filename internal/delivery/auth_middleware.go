package delivery

import (
	"net/http"
	"strings"

	"github.com/Vovarama1992/braille_bridge/internal/ports"
	"github.com/Vovarama1992/braille_bridge/internal/session"
)

const MsgLoginFirst = "Please log in first."

// AuthMiddleware only requires a bearer token; the backend validates it.
// The session is passed on through the request context.
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := r.Header.Get("Authorization")
		token := strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
		if h == "" || !strings.HasPrefix(h, "Bearer ") || token == "" {
			writeError(w, http.StatusUnauthorized, MsgLoginFirst)
			return
		}

		ctx := session.WithContext(r.Context(), ports.Session{Token: token})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
