package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *BrevoClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := NewBrevoClient("key-123", "sales@example.com", "Sales Desk", false)
	require.NotNil(t, c)
	c.endpoint = srv.URL
	return c
}

func TestNewBrevoClientDisabled(t *testing.T) {
	assert.Nil(t, NewBrevoClient("", "sales@example.com", "", false))
	assert.Nil(t, NewBrevoClient("key", " ", "", false))

	var c *BrevoClient
	_, err := c.Send(context.Background(), Message{ToEmail: "a@b.c", Subject: "s", Message: "m"})
	assert.ErrorIs(t, err, ErrMailerDisabled)
}

func TestSendPlainMessage(t *testing.T) {
	var got brevoSendRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "key-123", r.Header.Get("api-key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"messageId":"<abc@smtp>"}`))
	})

	id, err := c.Send(context.Background(), Message{
		ToEmail:  "buyer@example.com",
		ToName:   "Buyer",
		FromName: "Grain Desk",
		ReplyTo:  "replies@example.com",
		Subject:  "Your maize quote",
		Message:  "Hello <Buyer>,\nprice attached.\n\nRegards",
	})
	require.NoError(t, err)
	assert.Equal(t, "<abc@smtp>", id)

	assert.Equal(t, "Grain Desk", got.Sender.Name)
	assert.Equal(t, "sales@example.com", got.Sender.Email)
	require.NotNil(t, got.ReplyTo)
	assert.Equal(t, "replies@example.com", got.ReplyTo.Email)
	assert.Zero(t, got.TemplateID)
	assert.Contains(t, got.HTMLContent, "Hello &lt;Buyer&gt;,<br/>price attached.")
	assert.Contains(t, got.HTMLContent, "<p>Regards</p>")
	assert.Equal(t, "Hello <Buyer>,\nprice attached.\n\nRegards", got.TextContent)
}

func TestSendWithTemplate(t *testing.T) {
	var got brevoSendRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"messageId":"m-1"}`))
	})

	_, err := c.Send(context.Background(), Message{ToEmail: "b@example.com", ToName: "B", Subject: "S", Message: "M", TemplateID: 7})
	require.NoError(t, err)
	assert.Equal(t, 7, got.TemplateID)
	assert.Empty(t, got.HTMLContent)
	assert.Equal(t, "M", got.Params["message"])
	assert.Equal(t, "Sales Desk", got.Sender.Name)
}

func TestSendProviderError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":"invalid_parameter","message":"email is not valid in to"}`))
	})

	_, err := c.Send(context.Background(), Message{ToEmail: "bad", Subject: "S", Message: "M"})
	var perr *ProviderError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, http.StatusBadRequest, perr.Status)
	assert.Equal(t, "email is not valid in to", perr.Text)
}

func TestSendRejectsEmptyFields(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("provider must not be called")
	})
	for _, msg := range []Message{
		{Subject: "S", Message: "M"},
		{ToEmail: "a@b.c", Message: "M"},
		{ToEmail: "a@b.c", Subject: "S", Message: "  "},
	} {
		_, err := c.Send(context.Background(), msg)
		assert.Error(t, err)
	}
}

func TestInquiryAlerter(t *testing.T) {
	var got brevoSendRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"messageId":"m-2"}`))
	})

	alerter := NewInquiryAlerter(c, "inbox@example.com")
	err := alerter.NotifyNewInquiry(context.Background(), InquirySummary{
		ID: "abc", Name: "Kamau", Email: "kamau@example.com", ProductInterest: "Avocado", Message: "Need 2 tonnes",
	})
	require.NoError(t, err)
	assert.Equal(t, "inbox@example.com", got.To[0].Email)
	assert.Equal(t, "kamau@example.com", got.ReplyTo.Email)
	assert.True(t, strings.HasPrefix(got.Subject, "New inquiry: Avocado"))
	assert.Contains(t, got.HTMLContent, "not provided")

	assert.NoError(t, NewInquiryAlerter(nil, "inbox@example.com").NotifyNewInquiry(context.Background(), InquirySummary{}))
}
