package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/ayush/taskgate/internal/auth"
)

// SessionSource resolves the markers stored under a device scope.
type SessionSource interface {
	Current(ctx context.Context, scope string) (*auth.Session, error)
}

// RequireAuth is middleware that reads the device cookie, loads the session
// markers for that device and injects the session into the request context.
// Requests without a session are told to go back to the login screen.
func RequireAuth(sessions SessionSource) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(auth.DeviceCookie)
			if err != nil || cookie.Value == "" {
				unauthorized(w, "not authenticated")
				return
			}

			sess, err := sessions.Current(r.Context(), auth.DeviceScope(cookie.Value))
			if err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(map[string]string{"error": "session lookup failed"})
				return
			}
			if sess == nil {
				unauthorized(w, "not authenticated")
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithSession(r.Context(), sess)))
		})
	}
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": msg, "redirect": auth.LoginRoute})
}
