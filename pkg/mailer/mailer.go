// Package mailer delivers transactional email through SendGrid, or only logs
// the message when no API key is configured.
package mailer

import (
	"context"
	"fmt"
	"strings"

	"github.com/campusshelf/library-backend/pkg/config"
	"github.com/campusshelf/library-backend/pkg/logger"
	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Message is a single plain/HTML email.
type Message struct {
	ToName    string
	ToAddress string
	Subject   string
	PlainText string
	HTML      string
}

func (m Message) validate() error {
	if strings.TrimSpace(m.ToAddress) == "" {
		return fmt.Errorf("recipient address required")
	}
	if strings.TrimSpace(m.Subject) == "" {
		return fmt.Errorf("subject required")
	}
	return nil
}

// Sender delivers one message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type sendgridClient interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

// SendgridSender sends through the SendGrid v3 mail API.
type SendgridSender struct {
	client sendgridClient
	from   *mail.Email
	logg   *logger.Logger
}

// New picks the SendGrid sender when an API key is configured and the
// logging sender otherwise.
func New(cfg config.SendgridConfig, logg *logger.Logger) Sender {
	if !cfg.Enabled() {
		return NewLogSender(logg)
	}
	return newSendgridSender(sendgrid.NewSendClient(cfg.APIKey), cfg, logg)
}

func newSendgridSender(client sendgridClient, cfg config.SendgridConfig, logg *logger.Logger) *SendgridSender {
	if logg == nil {
		logg = logger.Nop()
	}
	return &SendgridSender{
		client: client,
		from:   mail.NewEmail(cfg.FromName, cfg.DefaultFrom),
		logg:   logg,
	}
}

func (s *SendgridSender) Send(ctx context.Context, msg Message) error {
	if err := msg.validate(); err != nil {
		return err
	}
	to := mail.NewEmail(msg.ToName, msg.ToAddress)
	body := mail.NewSingleEmail(s.from, msg.Subject, to, msg.PlainText, msg.HTML)

	resp, err := s.client.SendWithContext(ctx, body)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid send: status %d: %s", resp.StatusCode, resp.Body)
	}
	s.logg.Debug(s.logg.WithField(ctx, "to", msg.ToAddress), "email sent")
	return nil
}

// LogSender records messages in the log instead of delivering them.
type LogSender struct {
	logg *logger.Logger
}

func NewLogSender(logg *logger.Logger) *LogSender {
	if logg == nil {
		logg = logger.Nop()
	}
	return &LogSender{logg: logg}
}

func (s *LogSender) Send(ctx context.Context, msg Message) error {
	if err := msg.validate(); err != nil {
		return err
	}
	logCtx := s.logg.WithFields(ctx, map[string]any{
		"to":      msg.ToAddress,
		"subject": msg.Subject,
	})
	s.logg.Info(logCtx, "email delivery disabled; message logged only")
	return nil
}
