package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
)

type fakeUsers map[string]User

func (f fakeUsers) FindByEmail(ctx context.Context, email string) (User, error) {
	u, ok := f[normalizeEmail(email)]
	if !ok {
		return User{}, mongo.ErrNoDocuments
	}
	return u, nil
}

func newTestSessions(t *testing.T, allowlist ...string) *Sessions {
	t.Helper()
	hash, err := HashPassword("s3cret!")
	require.NoError(t, err)

	users := fakeUsers{
		"owner@example.com":  {ID: "u1", Email: "owner@example.com", DisplayName: "Owner", PasswordHash: hash, Role: RoleAdmin},
		"intern@example.com": {ID: "u2", Email: "intern@example.com", PasswordHash: hash, Role: RoleAdmin},
	}
	manager := &Manager{
		Secret:     []byte("test-secret"),
		AccessTTL:  time.Minute,
		RefreshTTL: time.Hour,
		Issuer:     "agritrade-backend",
	}
	return NewSessions(users, manager, allowlist)
}

func TestSignInAllowListed(t *testing.T) {
	s := newTestSessions(t, "Owner@Example.com")

	id, tokens, err := s.SignIn(context.Background(), " owner@example.com ", "s3cret!")
	require.NoError(t, err)
	assert.Equal(t, "u1", id.ID)
	assert.NotEmpty(t, tokens.Access)
	assert.NotEmpty(t, tokens.Refresh)

	verified, err := s.Verify(tokens.Access)
	require.NoError(t, err)
	assert.Equal(t, "owner@example.com", verified.Email)
	assert.Equal(t, "Owner", verified.DisplayName)
}

func TestSignInNotAllowListed(t *testing.T) {
	s := newTestSessions(t, "owner@example.com")

	id, tokens, err := s.SignIn(context.Background(), "intern@example.com", "s3cret!")
	assert.ErrorIs(t, err, ErrNotAllowed)
	assert.Equal(t, "intern@example.com", id.Email)
	assert.Empty(t, tokens.Access)
}

func TestSignInBadCredentials(t *testing.T) {
	s := newTestSessions(t, "owner@example.com")

	_, _, err := s.SignIn(context.Background(), "owner@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = s.SignIn(context.Background(), "nobody@example.com", "s3cret!")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestVerifyRechecksAllowList(t *testing.T) {
	s := newTestSessions(t, "owner@example.com")
	_, tokens, err := s.SignIn(context.Background(), "owner@example.com", "s3cret!")
	require.NoError(t, err)

	revoked := NewSessions(s.users, s.tokens, nil)
	_, err = revoked.Verify(tokens.Access)
	assert.ErrorIs(t, err, ErrNotAllowed)
}

func TestTokenTypesAreNotInterchangeable(t *testing.T) {
	s := newTestSessions(t, "owner@example.com")
	_, tokens, err := s.SignIn(context.Background(), "owner@example.com", "s3cret!")
	require.NoError(t, err)

	_, err = s.Verify(tokens.Refresh)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, _, err = s.Refresh(tokens.Access)
	assert.ErrorIs(t, err, ErrInvalidToken)

	id, refreshed, err := s.Refresh(tokens.Refresh)
	require.NoError(t, err)
	assert.Equal(t, "u1", id.ID)
	assert.NotEmpty(t, refreshed.Access)
}

func TestIdentityContext(t *testing.T) {
	_, ok := IdentityFromContext(context.Background())
	assert.False(t, ok)

	ctx := WithIdentity(context.Background(), Identity{ID: "u1"})
	id, ok := IdentityFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, "u1", id.ID)
}
