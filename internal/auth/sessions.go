package auth

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotAllowed         = errors.New("account is not allowed to access the admin area")
	ErrInvalidToken       = errors.New("invalid token")
)

// Sessions is the admin session manager. It is created once at startup and
// handed to whatever needs the current admin identity.
type Sessions struct {
	users     UserStore
	tokens    *Manager
	allowlist map[string]struct{}
}

type Tokens struct {
	Access  string
	Refresh string
}

func NewSessions(users UserStore, tokens *Manager, allowlist []string) *Sessions {
	allowed := make(map[string]struct{}, len(allowlist))
	for _, email := range allowlist {
		if email = normalizeEmail(email); email != "" {
			allowed[email] = struct{}{}
		}
	}
	return &Sessions{users: users, tokens: tokens, allowlist: allowed}
}

// Allowed reports whether the email is on the admin allow-list. The match is
// exact after lower-casing and trimming.
func (s *Sessions) Allowed(email string) bool {
	_, ok := s.allowlist[normalizeEmail(email)]
	return ok
}

// SignIn authenticates the user and then enforces the allow-list. An identity
// that authenticates but is not allow-listed gets ErrNotAllowed together with
// the identity, so the caller can log it and clear any session it holds.
func (s *Sessions) SignIn(ctx context.Context, email, password string) (Identity, Tokens, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Identity{}, Tokens{}, ErrInvalidCredentials
		}
		return Identity{}, Tokens{}, fmt.Errorf("find user: %w", err)
	}
	if err := ComparePassword(user.PasswordHash, password); err != nil {
		return Identity{}, Tokens{}, ErrInvalidCredentials
	}

	id := user.Identity()
	if !s.Allowed(id.Email) {
		return id, Tokens{}, ErrNotAllowed
	}

	tokens, err := s.issue(id)
	if err != nil {
		return Identity{}, Tokens{}, err
	}
	return id, tokens, nil
}

// Refresh exchanges a refresh token for a new token pair.
func (s *Sessions) Refresh(refreshToken string) (Identity, Tokens, error) {
	id, err := s.verify(refreshToken, tokenTypeRefresh)
	if err != nil {
		return id, Tokens{}, err
	}
	tokens, err := s.issue(id)
	if err != nil {
		return Identity{}, Tokens{}, err
	}
	return id, tokens, nil
}

// Verify checks an access token. The allow-list is consulted on every call so
// removing an address revokes its sessions.
func (s *Sessions) Verify(accessToken string) (Identity, error) {
	return s.verify(accessToken, tokenTypeAccess)
}

func (s *Sessions) verify(token, tokenType string) (Identity, error) {
	if s.tokens == nil || token == "" {
		return Identity{}, ErrInvalidToken
	}
	claims, err := s.tokens.Parse(token)
	if err != nil || claims.Role != RoleAdmin || claims.Type != tokenType {
		return Identity{}, ErrInvalidToken
	}
	id := claims.Identity()
	if !s.Allowed(id.Email) {
		return id, ErrNotAllowed
	}
	return id, nil
}

func (s *Sessions) issue(id Identity) (Tokens, error) {
	if s.tokens == nil {
		return Tokens{}, errors.New("token manager not configured")
	}
	access, err := s.tokens.NewAccessToken(id)
	if err != nil {
		return Tokens{}, fmt.Errorf("access token: %w", err)
	}
	refresh, err := s.tokens.NewRefreshToken(id)
	if err != nil {
		return Tokens{}, fmt.Errorf("refresh token: %w", err)
	}
	return Tokens{Access: access, Refresh: refresh}, nil
}

type identityKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}
