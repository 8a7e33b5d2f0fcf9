package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"premises-access-control/internal/email"
)

// Sink receives a finished report for delivery. Implementations do not
// surface delivery confirmation back to the core.
type Sink interface {
	Deliver(ctx context.Context, r *Weekly, recipients []string) error
}

var ErrNoRecipients = errors.New("no report recipients configured")

// EmailSink renders the report to HTML and mails it.
type EmailSink struct {
	client *email.Client
	logger *slog.Logger
}

func NewEmailSink(client *email.Client) *EmailSink {
	return &EmailSink{
		client: client,
		logger: slog.With("component", "report-sink"),
	}
}

func (s *EmailSink) Deliver(ctx context.Context, r *Weekly, recipients []string) error {
	if len(recipients) == 0 {
		return ErrNoRecipients
	}

	html, err := RenderHTML(r)
	if err != nil {
		return err
	}

	msg := &email.Message{
		To:      recipients,
		Subject: Subject(r),
		HTML:    html,
	}
	if err := s.client.Send(ctx, msg); err != nil {
		return fmt.Errorf("send report email: %w", err)
	}

	s.logger.Info("Weekly report delivered", "recipients", len(recipients))
	return nil
}
