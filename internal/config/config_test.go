package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("TZ", "UTC")
	t.Setenv("MONGO_URI", "mongodb://db.internal:27017/farmdesk?retryWrites=true")
	t.Setenv("FRONTEND_ORIGINS", "https://example.com, https://admin.example.com ,")
	t.Setenv("ADMIN_ALLOWLIST", "Owner@Example.com,sales@example.com")
	t.Setenv("BREVO_SENDER_EMAIL", "sales@example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "farmdesk", cfg.MongoDB)
	assert.Equal(t, []string{"https://example.com", "https://admin.example.com"}, cfg.FrontendOrigins)
	assert.Equal(t, []string{"owner@example.com", "sales@example.com"}, cfg.AdminAllowlist)
	assert.Equal(t, "sales@example.com", cfg.ReplyToEmail)
	assert.Equal(t, 15*time.Minute, cfg.AccessTTL())
	assert.Equal(t, 60*time.Second, cfg.CacheTTL())
}

func TestLoadInvalidTimezone(t *testing.T) {
	t.Setenv("TZ", "Nowhere/Atlantis")
	_, err := Load()
	assert.Error(t, err)
}

func TestMongoDBFromURI(t *testing.T) {
	tests := []struct {
		uri  string
		want string
	}{
		{"mongodb://localhost:27017/agritrade", "agritrade"},
		{"mongodb://localhost:27017/", ""},
		{"mongodb://localhost:27017/a/b", "a"},
		{"://bad", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, mongoDBFromURI(tt.uri), tt.uri)
	}
}
