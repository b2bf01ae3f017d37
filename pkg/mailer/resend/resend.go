// Package resend delivers mailer emails through the Resend API.
package resend

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/resend/resend-go/v3"

	"github.com/royalton/portal/pkg/mailer"
)

// Config is read from the environment. An empty APIKey disables delivery.
type Config struct {
	APIKey    string `env:"RESEND_API_KEY"`
	FromEmail string `env:"RESEND_FROM_EMAIL" envDefault:"no-reply@royalton.example"`
	FromName  string `env:"RESEND_FROM_NAME" envDefault:"Royalton Logistics"`
}

// Sender implements mailer.Sender.
type Sender struct {
	client *resend.Client
	from   string
}

func New(cfg Config) *Sender {
	return &Sender{
		client: resend.NewClient(cfg.APIKey),
		from:   mailer.Address(cfg.FromName, cfg.FromEmail),
	}
}

func (s *Sender) Send(ctx context.Context, email *mailer.Email) error {
	req := &resend.SendEmailRequest{
		From:    s.from,
		To:      email.To,
		Subject: email.Subject,
		Html:    email.HTML,
		Text:    email.Text,
		ReplyTo: email.ReplyTo,
	}
	for _, name := range slices.Sorted(maps.Keys(email.Tags)) {
		req.Tags = append(req.Tags, resend.Tag{Name: name, Value: email.Tags[name]})
	}

	if _, err := s.client.Emails.SendWithContext(ctx, req); err != nil {
		return fmt.Errorf("resend: %w", err)
	}
	return nil
}

var _ mailer.Sender = (*Sender)(nil)
