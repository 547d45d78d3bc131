package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"agritrade-backend/internal/auth"
	"agritrade-backend/internal/httpx"
	"agritrade-backend/internal/metrics"
	"agritrade-backend/internal/middleware"
	"agritrade-backend/internal/transport"
)

type AdminLoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AdminSessionResponse struct {
	Status string        `json:"status"`
	User   auth.Identity `json:"user"`
}

func (s *Server) AdminLogin(w http.ResponseWriter, r *http.Request) {
	log := middleware.WithRequest(s.Log, r)
	var req AdminLoginRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("admin login: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if err := s.Val.Struct(req); err != nil {
		log.Warn("admin login: validation error")
		transport.WriteError(w, http.StatusBadRequest, "validation error", httpx.ValidationDetails(s.Val.ValidationErrors(err)))
		return
	}

	if s.Sessions == nil {
		log.Warn("admin login: not configured")
		transport.WriteError(w, http.StatusServiceUnavailable, "admin auth not configured", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	id, tokens, err := s.Sessions.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			metrics.RecordAuthAttempt("invalid")
			log.Warn("admin login: invalid credentials", slog.String("email", req.Email))
			transport.WriteError(w, http.StatusUnauthorized, "invalid credentials", nil)
		case errors.Is(err, auth.ErrNotAllowed):
			metrics.RecordAuthAttempt("not_allowed")
			log.Warn("admin login: not allow-listed", slog.String("email", id.Email))
			middleware.ClearAuthCookies(w, s.CookieSecure)
			transport.WriteError(w, http.StatusForbidden, "account is not allowed", nil)
		default:
			log.Error("admin login: error", slog.String("error", err.Error()))
			transport.WriteError(w, http.StatusInternalServerError, "login failed", nil)
		}
		return
	}

	metrics.RecordAuthAttempt("success")
	middleware.SetAuthCookies(w, tokens, s.AccessTTL, s.RefreshTTL, s.CookieSecure)
	log.Info("admin login: ok", slog.String("email", id.Email))
	transport.WriteJSON(w, http.StatusOK, AdminSessionResponse{Status: "ok", User: id})
}

func (s *Server) AdminRefresh(w http.ResponseWriter, r *http.Request) {
	log := middleware.WithRequest(s.Log, r)
	if s.Sessions == nil {
		log.Warn("admin refresh: not configured")
		transport.WriteError(w, http.StatusServiceUnavailable, "admin auth not configured", nil)
		return
	}

	refreshCookie, err := r.Cookie(middleware.RefreshCookie)
	if err != nil || refreshCookie.Value == "" {
		log.Warn("admin refresh: missing refresh token")
		transport.WriteError(w, http.StatusUnauthorized, "missing refresh token", nil)
		return
	}

	id, tokens, err := s.Sessions.Refresh(refreshCookie.Value)
	if err != nil {
		middleware.ClearAuthCookies(w, s.CookieSecure)
		if errors.Is(err, auth.ErrNotAllowed) {
			log.Warn("admin refresh: not allow-listed", slog.String("email", id.Email))
			transport.WriteError(w, http.StatusForbidden, "account is not allowed", nil)
			return
		}
		log.Warn("admin refresh: invalid refresh token")
		transport.WriteError(w, http.StatusUnauthorized, "invalid refresh token", nil)
		return
	}

	middleware.SetAuthCookies(w, tokens, s.AccessTTL, s.RefreshTTL, s.CookieSecure)
	log.Info("admin refresh: ok", slog.String("email", id.Email))
	transport.WriteJSON(w, http.StatusOK, AdminSessionResponse{Status: "ok", User: id})
}

func (s *Server) AdminLogout(w http.ResponseWriter, r *http.Request) {
	log := middleware.WithRequest(s.Log, r)
	middleware.ClearAuthCookies(w, s.CookieSecure)
	log.Info("admin logout: ok")
	transport.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// AdminMe returns the identity AdminAuth resolved for this request.
func (s *Server) AdminMe(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		transport.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	transport.WriteJSON(w, http.StatusOK, AdminSessionResponse{Status: "ok", User: id})
}
