// Package mailer sends transactional email through the SendGrid v3 API.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

var ErrNotConfigured = errors.New("mailer: SENDGRID_API_KEY not set")

type Message struct {
	ToEmail string
	ToName  string
	Subject string
	HTML    string
	Text    string
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

type Config struct {
	APIKey    string
	BaseURL   string
	FromEmail string
	FromName  string
}

type SendGrid struct {
	cfg Config
}

func NewSendGrid(cfg Config) *SendGrid {
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.sendgrid.com"
	}
	return &SendGrid{cfg: cfg}
}

// SendError is a rejection by the SendGrid API.
type SendError struct {
	Status int
	Body   string
}

func (e *SendError) Error() string {
	return fmt.Sprintf("mailer: sendgrid returned %d: %s", e.Status, e.Body)
}

// Send delivers one message. Any non-2xx answer is returned as *SendError;
// there is no retry.
func (s *SendGrid) Send(ctx context.Context, msg Message) error {
	if s.cfg.APIKey == "" {
		return ErrNotConfigured
	}
	if msg.ToEmail == "" {
		return errors.New("mailer: recipient email required")
	}

	from := mail.NewEmail(s.cfg.FromName, s.cfg.FromEmail)
	to := mail.NewEmail(msg.ToName, msg.ToEmail)
	m := mail.NewSingleEmail(from, msg.Subject, to, msg.Text, msg.HTML)

	req := sendgrid.GetRequest(s.cfg.APIKey, "/v3/mail/send", s.cfg.BaseURL)
	req.Method = rest.Post
	req.Body = mail.GetRequestBody(m)

	resp, err := sendgrid.MakeRequestWithContext(ctx, req)
	if err != nil {
		return fmt.Errorf("mailer: send to %s: %w", msg.ToEmail, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &SendError{Status: resp.StatusCode, Body: resp.Body}
	}
	return nil
}
