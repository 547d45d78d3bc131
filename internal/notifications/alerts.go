package notifications

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// InquiryAlerter emails the sales inbox whenever the public contact form
// creates an inquiry.
type InquiryAlerter struct {
	client *BrevoClient
	to     string
}

func NewInquiryAlerter(client *BrevoClient, to string) *InquiryAlerter {
	return &InquiryAlerter{client: client, to: strings.TrimSpace(to)}
}

func (a *InquiryAlerter) NotifyNewInquiry(ctx context.Context, s InquirySummary) error {
	if a == nil || a.client == nil || a.to == "" {
		return nil
	}
	html, err := buildNewInquiryHTML(s)
	if err != nil {
		return err
	}
	subject := fmt.Sprintf("New inquiry: %s (%s)", s.ProductInterest, s.Name)
	if strings.TrimSpace(s.ProductInterest) == "" {
		subject = fmt.Sprintf("New inquiry from %s", s.Name)
	}
	_, err = a.client.sendRaw(ctx, a.to, subject, html, s.Email)
	return err
}

func (c *BrevoClient) sendRaw(ctx context.Context, toEmail, subject, html, replyTo string) (string, error) {
	if c == nil {
		return "", ErrMailerDisabled
	}
	if strings.TrimSpace(html) == "" {
		return "", errors.New("missing html body")
	}
	payload := brevoSendRequest{
		Sender:      brevoContact{Name: c.senderName, Email: c.senderEmail},
		To:          []brevoContact{{Email: toEmail}},
		Subject:     subject,
		HTMLContent: html,
	}
	if replyTo != "" {
		payload.ReplyTo = &brevoContact{Email: replyTo}
	}
	return c.post(ctx, payload)
}
