package handlers

import (
	"context"
	"log/slog"
	"time"

	"agritrade-backend/internal/auth"
	"agritrade-backend/internal/validation"
)

// Server holds the admin session and health endpoints.
type Server struct {
	Sessions     *auth.Sessions
	Val          *validation.Validator
	Log          *slog.Logger
	CookieSecure bool
	AccessTTL    time.Duration
	RefreshTTL   time.Duration
	// Ping checks the backing stores for /healthz. Nil means always healthy.
	Ping func(ctx context.Context) error
}
