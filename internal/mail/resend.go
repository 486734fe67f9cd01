// Package mail delivers subscriber reports: a Resend API client for the
// actual sending and an html/template renderer for the report body.
package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// resendEndpoint is the Resend transactional email API.
const resendEndpoint = "https://api.resend.com/emails"

// ResendClient sends email through the Resend HTTP API.
type ResendClient struct {
	apiKey     string
	from       string
	replyTo    string
	httpClient *http.Client
	endpoint   string
	logger     *slog.Logger
}

// NewResendClient creates a Resend sender. replyTo may be empty.
func NewResendClient(apiKey, from, replyTo string, timeout time.Duration, logger *slog.Logger) *ResendClient {
	return &ResendClient{
		apiKey:     apiKey,
		from:       from,
		replyTo:    replyTo,
		httpClient: &http.Client{Timeout: timeout},
		endpoint:   resendEndpoint,
		logger:     logger,
	}
}

type resendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
	ReplyTo string   `json:"reply_to,omitempty"`
}

type resendResponse struct {
	ID string `json:"id"`
}

// Send delivers one HTML email. A non-2xx provider response is an error;
// callers decide whether a failed send aborts anything.
func (c *ResendClient) Send(ctx context.Context, to, subject, html string) error {
	payload, err := json.Marshal(resendRequest{
		From:    c.from,
		To:      []string{to},
		Subject: subject,
		HTML:    html,
		ReplyTo: c.replyTo,
	})
	if err != nil {
		return fmt.Errorf("mail.ResendClient.Send: marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("mail.ResendClient.Send: create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("mail.ResendClient.Send: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("mail.ResendClient.Send: resend API error: status %d: %s", resp.StatusCode, body)
	}

	var out resendResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return fmt.Errorf("mail.ResendClient.Send: decode response: %w", err)
	}

	c.logger.Info("email sent", "to", to, "message_id", out.ID)
	return nil
}
