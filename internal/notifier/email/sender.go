// Package email delivers notification events to recipients over a
// Brevo-compatible transactional email API.
package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"skillex/pkg/logger"
)

type Sender interface {
	Send(ctx context.Context, toEmail, toName, subject, body string) error
}

type party struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

type payload struct {
	Sender      party   `json:"sender"`
	To          []party `json:"to"`
	Subject     string  `json:"subject"`
	TextContent string  `json:"textContent"`
}

// APISender posts one transactional email per event. The API key travels in
// the api-key header, Brevo style.
type APISender struct {
	apiURL      string
	apiKey      string
	senderEmail string
	senderName  string
	client      *http.Client
	log         *logger.Logger
}

func NewAPISender(apiURL, apiKey, senderEmail, senderName string, log *logger.Logger) (*APISender, error) {
	if apiURL == "" || apiKey == "" {
		return nil, fmt.Errorf("email API URL and key are required")
	}
	if senderEmail == "" {
		return nil, fmt.Errorf("sender email is required")
	}

	return &APISender{
		apiURL:      apiURL,
		apiKey:      apiKey,
		senderEmail: senderEmail,
		senderName:  senderName,
		client:      &http.Client{Timeout: 10 * time.Second},
		log:         log,
	}, nil
}

func (s *APISender) Send(ctx context.Context, toEmail, toName, subject, body string) error {
	if toEmail == "" || !strings.Contains(toEmail, "@") {
		return fmt.Errorf("invalid recipient email: %q", toEmail)
	}
	if toName == "" {
		toName = toEmail[:strings.Index(toEmail, "@")]
	}

	data, err := json.Marshal(payload{
		Sender:      party{Name: s.senderName, Email: s.senderEmail},
		To:          []party{{Name: toName, Email: toEmail}},
		Subject:     subject,
		TextContent: body,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal email payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create email request: %w", err)
	}
	req.Header.Set("accept", "application/json")
	req.Header.Set("content-type", "application/json")
	req.Header.Set("api-key", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call email API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("email API returned %d: %s", resp.StatusCode, string(respBody))
	}

	s.log.Info("Email delivered", "recipient", toEmail, "subject", subject)
	return nil
}

// LogSender logs would-be deliveries instead of sending. Used when the email
// API is not configured.
type LogSender struct {
	Log *logger.Logger
}

func (s *LogSender) Send(ctx context.Context, toEmail, toName, subject, body string) error {
	s.Log.Info("Email delivery skipped, API not configured",
		"recipient", toEmail,
		"subject", subject,
	)
	return nil
}
