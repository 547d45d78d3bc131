package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"agritrade-backend/internal/middleware"
	"agritrade-backend/internal/transport"
)

func (s *Server) Healthz(w http.ResponseWriter, r *http.Request) {
	if s.Ping != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.Ping(ctx); err != nil {
			middleware.WithRequest(s.Log, r).Error("healthz: dependency down", slog.String("error", err.Error()))
			transport.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	transport.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
