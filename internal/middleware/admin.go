package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"agritrade-backend/internal/auth"
	"agritrade-backend/internal/transport"
)

// AdminAuth admits requests carrying the static X-Admin-Key, or an access
// token for an allow-listed admin in the Authorization header or the access
// cookie. The identity is placed in the context. A valid token whose owner is
// no longer allow-listed is refused and its cookies are expired.
func AdminAuth(adminKey string, sessions *auth.Sessions, cookieSecure bool, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if adminKey == "" && sessions == nil {
				transport.WriteError(w, http.StatusServiceUnavailable, "admin auth not configured", nil)
				return
			}

			if adminKey != "" && r.Header.Get("X-Admin-Key") == adminKey {
				ctx := auth.WithIdentity(r.Context(), auth.Identity{ID: "api-key", DisplayName: "API key"})
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			if sessions != nil {
				if token := accessToken(r); token != "" {
					id, err := sessions.Verify(token)
					if err == nil {
						next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), id)))
						return
					}
					if errors.Is(err, auth.ErrNotAllowed) {
						WithRequest(log, r).Warn("admin auth: identity not allow-listed", slog.String("email", id.Email))
						ClearAuthCookies(w, cookieSecure)
						transport.WriteError(w, http.StatusForbidden, "forbidden", nil)
						return
					}
				}
			}

			transport.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		})
	}
}

// accessToken prefers a bearer token over the access cookie.
func accessToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		scheme, token, ok := strings.Cut(header, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
	}
	if cookie, err := r.Cookie(AccessCookie); err == nil {
		return cookie.Value
	}
	return ""
}
