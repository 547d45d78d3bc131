package middleware

import (
	"net/http"
	"time"

	"agritrade-backend/internal/auth"
)

const (
	AccessCookie  = "agri_access"
	RefreshCookie = "agri_refresh"

	refreshCookiePath = "/api/v1/admin"
)

func SetAuthCookies(w http.ResponseWriter, tokens auth.Tokens, accessTTL, refreshTTL time.Duration, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     AccessCookie,
		Value:    tokens.Access,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(accessTTL.Seconds()),
	})
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookie,
		Value:    tokens.Refresh,
		Path:     refreshCookiePath,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(refreshTTL.Seconds()),
	})
}

// ClearAuthCookies expires both session cookies, signing the browser out.
func ClearAuthCookies(w http.ResponseWriter, secure bool) {
	expire := time.Now().Add(-1 * time.Hour)
	for _, c := range []struct{ name, path string }{
		{AccessCookie, "/"},
		{RefreshCookie, refreshCookiePath},
	} {
		http.SetCookie(w, &http.Cookie{
			Name:     c.name,
			Value:    "",
			Path:     c.path,
			HttpOnly: true,
			Secure:   secure,
			SameSite: http.SameSiteLaxMode,
			Expires:  expire,
			MaxAge:   -1,
		})
	}
}
