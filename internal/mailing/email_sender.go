package mailing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ignite/newsletter/internal/domain"
)

// HTTPClient sends email through a Postmark-style HTTP API:
// POST {baseURL}/email with a JSON body and a server token header.
type HTTPClient struct {
	baseURL string
	sender  domain.SubscriberEmail
	token   string
	timeout time.Duration
	client  HTTPDoer
}

// NewHTTPClient creates an API client. The timeout applies both to the
// underlying http.Client and to the request context.
func NewHTTPClient(baseURL string, sender domain.SubscriberEmail, token string, timeout time.Duration) *HTTPClient {
	timeout = orDefault(timeout)
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		sender:  sender,
		token:   token,
		timeout: timeout,
		client:  &http.Client{Timeout: timeout},
	}
}

type sendEmailRequest struct {
	From     string `json:"From"`
	To       string `json:"To"`
	Subject  string `json:"Subject"`
	HtmlBody string `json:"HtmlBody"`
	TextBody string `json:"TextBody"`
}

// Send posts one message. Any transport failure, timeout or non-2xx status is
// returned as a *NotificationError.
func (c *HTTPClient) Send(ctx context.Context, recipient domain.SubscriberEmail, subject, htmlBody, textBody string) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(sendEmailRequest{
		From:     c.sender.String(),
		To:       recipient.String(),
		Subject:  subject,
		HtmlBody: htmlBody,
		TextBody: textBody,
	})
	if err != nil {
		return &NotificationError{Provider: "http", Err: fmt.Errorf("encode request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/email", bytes.NewReader(body))
	if err != nil {
		return &NotificationError{Provider: "http", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Postmark-Server-Token", c.token)

	resp, err := c.client.Do(req)
	if err != nil {
		return &NotificationError{Provider: "http", Err: err}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &NotificationError{
			Provider:   "http",
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status %s", resp.Status),
		}
	}
	return nil
}
