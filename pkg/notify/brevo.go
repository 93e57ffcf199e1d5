package notify

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/duyuru-hq/haber-sentry/pkg/httpclient"
)

// DefaultBrevoEndpoint is the Brevo transactional email API endpoint.
const DefaultBrevoEndpoint = "https://api.brevo.com/v3/smtp/email"

const defaultSendTimeout = 15 * time.Second

// BrevoConfig holds the settings for the Brevo email sender.
type BrevoConfig struct {
	APIKey      string
	Endpoint    string
	SenderName  string
	SenderEmail string
	Timeout     time.Duration
}

// brevoParty is one sender or recipient in a Brevo payload.
type brevoParty struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

// brevoPayload is the request body for the Brevo smtp/email call.
type brevoPayload struct {
	Sender      brevoParty   `json:"sender"`
	To          []brevoParty `json:"to"`
	Subject     string       `json:"subject"`
	HTMLContent string       `json:"htmlContent"`
}

// brevoSender implements EmailSender against the Brevo HTTP API.
type brevoSender struct {
	cfg    BrevoConfig
	client httpclient.Client
	log    Logger
}

// NewBrevoSender builds an EmailSender that posts through the Brevo API.
// Unlike feed fetches the send path gets its own, shorter timeout.
func NewBrevoSender(cfg BrevoConfig, client httpclient.Client, log Logger) (EmailSender, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("brevo api key is empty")
	}
	if strings.TrimSpace(cfg.SenderEmail) == "" {
		return nil, fmt.Errorf("brevo sender email is empty")
	}
	if strings.TrimSpace(cfg.Endpoint) == "" {
		cfg.Endpoint = DefaultBrevoEndpoint
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultSendTimeout
	}
	if client == nil {
		client = httpclient.NewRestyClient(cfg.Timeout)
	}

	return &brevoSender{
		cfg:    cfg,
		client: client,
		log:    ensureLogger(log),
	}, nil
}

// Send posts the notification to the Brevo API. Status 200 and 201 count as
// delivered; everything else is an error for the caller to handle.
func (s *brevoSender) Send(ctx context.Context, n Notification) error {
	if strings.TrimSpace(n.Recipient) == "" {
		return fmt.Errorf("notification recipient is empty")
	}

	payload := brevoPayload{
		Sender:      brevoParty{Name: s.cfg.SenderName, Email: s.cfg.SenderEmail},
		To:          []brevoParty{{Email: n.Recipient}},
		Subject:     n.Subject,
		HTMLContent: n.HTML,
	}

	headers := map[string]string{
		"accept":       "application/json",
		"api-key":      s.cfg.APIKey,
		"content-type": "application/json",
	}

	resp, err := s.client.Post(ctx, s.cfg.Endpoint, headers, payload)
	if err != nil {
		return fmt.Errorf("brevo send: %w", err)
	}

	status := resp.StatusCode()
	if status != http.StatusOK && status != http.StatusCreated {
		return fmt.Errorf("brevo send returned status %d body: %s", status, bodySnippet(resp.Body()))
	}

	s.log.DebugObj("email delivered", "brevo_delivery", map[string]any{
		"recipient": n.Recipient,
		"subject":   n.Subject,
		"status":    status,
	})
	return nil
}

func bodySnippet(body []byte) string {
	const maxLen = 512
	s := strings.TrimSpace(string(body))
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	if s == "" {
		return "<empty>"
	}
	return s
}
