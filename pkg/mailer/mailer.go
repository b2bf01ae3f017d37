// Package mailer renders markdown email templates and hands them to a
// delivery provider.
//
// A template is a markdown file with YAML frontmatter:
//
//	---
//	subject: "Shipment {{.TrackingNumber}} created"
//	preheader: We have your parcel details
//	---
//	Hello {{.Name}}, ...
//
// Subject and body are executed as text/template with the send data, the
// body is converted with goldmark and wrapped in the HTML layout.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

var (
	ErrNoRecipient        = errors.New("mailer: no recipient")
	ErrTemplateNotFound   = errors.New("mailer: template not found")
	ErrInvalidFrontmatter = errors.New("mailer: invalid frontmatter")
	ErrRenderFailed       = errors.New("mailer: render failed")
	ErrSendFailed         = errors.New("mailer: send failed")
)

// Config is read from the environment.
type Config struct {
	FallbackSubject string `env:"MAILER_FALLBACK_SUBJECT" envDefault:"Royalton Logistics"`
	ProductName     string `env:"MAILER_PRODUCT_NAME" envDefault:"Royalton Logistics"`
	BaseURL         string `env:"APP_BASE_URL" envDefault:"http://localhost:8080"`
}

// Email is a rendered message.
type Email struct {
	To      []string
	Subject string
	HTML    string
	Text    string
	ReplyTo string
	Tags    map[string]string
}

// Sender delivers a rendered message.
type Sender interface {
	Send(ctx context.Context, email *Email) error
}

// Message names a template and the data to execute it with.
type Message struct {
	To       string
	Template string
	Data     any
	ReplyTo  string
	Tags     map[string]string
}

// Mailer renders and sends templated messages.
type Mailer struct {
	sender   Sender
	renderer *Renderer
}

func New(sender Sender, renderer *Renderer) *Mailer {
	return &Mailer{sender: sender, renderer: renderer}
}

// Send renders msg and delivers it.
func (m *Mailer) Send(ctx context.Context, msg Message) error {
	if strings.TrimSpace(msg.To) == "" {
		return ErrNoRecipient
	}
	email, err := m.renderer.Render(msg.Template, msg.Data)
	if err != nil {
		return err
	}
	email.To = []string{msg.To}
	email.ReplyTo = msg.ReplyTo
	email.Tags = msg.Tags

	if err := m.sender.Send(ctx, email); err != nil {
		return errors.Join(ErrSendFailed, err)
	}
	return nil
}

// LogSender writes messages to a logger instead of delivering them. It is
// used when no provider key is configured.
type LogSender struct {
	Logger *slog.Logger
}

func (s LogSender) Send(ctx context.Context, email *Email) error {
	s.Logger.InfoContext(ctx, "email not delivered, no provider configured",
		slog.String("to", strings.Join(email.To, ",")),
		slog.String("subject", email.Subject),
		slog.Int("html_bytes", len(email.HTML)),
	)
	return nil
}

// Address formats an RFC 5322 mailbox.
func Address(name, email string) string {
	if name == "" {
		return email
	}
	return fmt.Sprintf("%q <%s>", name, email)
}
