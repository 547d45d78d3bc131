package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultBrevoEndpoint = "https://api.brevo.com/v3/smtp/email"

var ErrMailerDisabled = errors.New("email dispatch is not configured")

// Message is one outbound transactional email. When TemplateID is set the
// provider-side template renders Subject and Message from params.
type Message struct {
	ToEmail    string
	ToName     string
	FromName   string
	ReplyTo    string
	Subject    string
	Message    string
	TemplateID int
}

type BrevoClient struct {
	apiKey      string
	senderEmail string
	senderName  string
	sandbox     bool
	endpoint    string
	httpClient  *http.Client
}

// NewBrevoClient returns nil when the API key or sender is missing; callers
// treat a nil client as "mail disabled".
func NewBrevoClient(apiKey, senderEmail, senderName string, sandbox bool) *BrevoClient {
	if strings.TrimSpace(apiKey) == "" || strings.TrimSpace(senderEmail) == "" {
		return nil
	}
	if strings.TrimSpace(senderName) == "" {
		senderName = senderEmail
	}
	return &BrevoClient{
		apiKey:      apiKey,
		senderEmail: senderEmail,
		senderName:  senderName,
		sandbox:     sandbox,
		endpoint:    defaultBrevoEndpoint,
		httpClient:  &http.Client{Timeout: 8 * time.Second},
	}
}

func (c *BrevoClient) SenderName() string {
	if c == nil {
		return ""
	}
	return c.senderName
}

// Send dispatches msg and returns the provider message id.
func (c *BrevoClient) Send(ctx context.Context, msg Message) (string, error) {
	if c == nil {
		return "", ErrMailerDisabled
	}
	if strings.TrimSpace(msg.ToEmail) == "" {
		return "", errors.New("missing recipient email")
	}
	if strings.TrimSpace(msg.Subject) == "" {
		return "", errors.New("missing subject")
	}
	if strings.TrimSpace(msg.Message) == "" {
		return "", errors.New("missing message")
	}

	fromName := msg.FromName
	if strings.TrimSpace(fromName) == "" {
		fromName = c.senderName
	}

	payload := brevoSendRequest{
		Sender: brevoContact{
			Name:  fromName,
			Email: c.senderEmail,
		},
		To: []brevoContact{
			{
				Email: msg.ToEmail,
				Name:  msg.ToName,
			},
		},
		Subject: msg.Subject,
	}
	if msg.ReplyTo != "" {
		payload.ReplyTo = &brevoContact{Email: msg.ReplyTo}
	}
	if msg.TemplateID > 0 {
		payload.TemplateID = msg.TemplateID
		payload.Params = map[string]string{
			"to_name": msg.ToName,
			"subject": msg.Subject,
			"message": msg.Message,
		}
	} else {
		html, err := renderPlainMessageHTML(msg.Message)
		if err != nil {
			return "", err
		}
		payload.HTMLContent = html
		payload.TextContent = msg.Message
	}
	return c.post(ctx, payload)
}

func (c *BrevoClient) post(ctx context.Context, payload brevoSendRequest) (string, error) {
	if c.sandbox {
		payload.Headers = map[string]string{
			"X-Sib-Sandbox": "drop",
		}
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("brevo marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("brevo create request: %w", err)
	}
	req.Header.Set("accept", "application/json")
	req.Header.Set("content-type", "application/json")
	req.Header.Set("api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("brevo request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", &ProviderError{Status: resp.StatusCode, Text: providerText(body)}
	}

	var out brevoSendResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("brevo decode response: %w", err)
	}
	if strings.TrimSpace(out.MessageID) == "" {
		return "", errors.New("brevo response missing messageId")
	}
	return out.MessageID, nil
}

// ProviderError is a non-2xx answer from the email provider. Text is the
// provider's own message when it sent one.
type ProviderError struct {
	Status int
	Text   string
}

func (e *ProviderError) Error() string {
	if e.Text == "" {
		return fmt.Sprintf("brevo send failed: status=%d", e.Status)
	}
	return fmt.Sprintf("brevo send failed: status=%d: %s", e.Status, e.Text)
}

func providerText(body []byte) string {
	var parsed brevoErrorResponse
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Message != "" {
		return parsed.Message
	}
	return strings.TrimSpace(string(body))
}

type brevoSendRequest struct {
	Sender      brevoContact      `json:"sender"`
	To          []brevoContact    `json:"to"`
	ReplyTo     *brevoContact     `json:"replyTo,omitempty"`
	Subject     string            `json:"subject"`
	HTMLContent string            `json:"htmlContent,omitempty"`
	TextContent string            `json:"textContent,omitempty"`
	TemplateID  int               `json:"templateId,omitempty"`
	Params      map[string]string `json:"params,omitempty"`
	Headers     map[string]string `json:"headers,omitempty"`
}

type brevoContact struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

type brevoSendResponse struct {
	MessageID string `json:"messageId"`
}

type brevoErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
