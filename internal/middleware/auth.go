package middleware

import (
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/templui/heartroom/internal/ctxkeys"
	"github.com/templui/heartroom/internal/httputil"
	"github.com/templui/heartroom/internal/service"
)

// TokenVerifier resolves an auth token to a user id.
type TokenVerifier interface {
	VerifyJWT(token string) (string, error)
	ClearJWTCookie(w http.ResponseWriter)
}

// AuthMiddleware adds the user id to the context when the request carries a
// valid token. Requests without one continue as guests.
func AuthMiddleware(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, fromCookie := requestToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			userID, err := verifier.VerifyJWT(token)
			if err != nil {
				// Stale cookie, drop it and continue as guest
				if fromCookie {
					verifier.ClearJWTCookie(w)
				}
				next.ServeHTTP(w, r)
				return
			}

			ctx := ctxkeys.WithUserID(r.Context(), userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// requestToken reads the bearer header first, then the auth cookie. Browsers
// cannot set headers on websocket upgrades, so those may pass ?token=.
func requestToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1]), false
		}
	}

	cookie, err := r.Cookie(service.AuthCookieName)
	if err == nil && cookie.Value != "" {
		return cookie.Value, true
	}

	if websocket.IsWebSocketUpgrade(r) {
		return r.URL.Query().Get("token"), false
	}
	return "", false
}

// RequireAuth rejects guests with 401.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ctxkeys.UserID(r.Context()) == "" {
			httputil.WriteUnauthorized(w, "Authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
